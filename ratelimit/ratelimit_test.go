package ratelimit

import (
	"testing"
	"time"

	"go_resale_bot/database"

	"github.com/stretchr/testify/assert"
)

func TestRuleFor(t *testing.T) {
	assert.Equal(t, Rule{Hours: 24, Limit: 1}, RuleFor(database.SubBasic))
	assert.Equal(t, Rule{Hours: 12, Limit: 3}, RuleFor(database.SubBasicPlus))
	assert.Equal(t, Rule{Hours: 12, Limit: 10}, RuleFor(database.SubShop))
	// Неизвестная подписка трактуется как BASIC
	assert.Equal(t, Rule{Hours: 24, Limit: 1}, RuleFor(database.Subscription("PREMIUM")))
}

func TestExceeded(t *testing.T) {
	rule := RuleFor(database.SubBasicPlus)
	assert.False(t, rule.Exceeded(0))
	assert.False(t, rule.Exceeded(2))
	// Равенство лимиту уже блокирует следующий пост
	assert.True(t, rule.Exceeded(3))
	assert.True(t, rule.Exceeded(4))
}

func TestRemaining(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rule := Rule{Hours: 12, Limit: 3}

	oldest := now.Add(-10 * time.Hour)
	assert.Equal(t, 2*time.Hour, Remaining(oldest, rule, now))

	// Пост уже вышел из окна
	oldest = now.Add(-13 * time.Hour)
	assert.True(t, Remaining(oldest, rule, now) <= 0)
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 хв"},
		{-time.Minute, "0 хв"},
		{30 * time.Second, "1 хв"},
		{59 * time.Minute, "59 хв"},
		{59*time.Minute + 30*time.Second, "1 год"},
		{time.Hour, "1 год"},
		{90 * time.Minute, "1 год 30 хв"},
		{25 * time.Hour, "25 год"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRemaining(tt.d), "duration %v", tt.d)
	}
}
