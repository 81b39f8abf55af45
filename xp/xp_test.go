package xp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRankFor(t *testing.T) {
	tests := []struct {
		xp   int
		want string
	}{
		{0, "Новачок"},
		{49, "Новачок"},
		{50, "Учасник"},
		{149, "Учасник"},
		{150, "Активіст"},
		{300, "Авторитет"},
		{600, "Ветеран"},
		{999, "Ветеран"},
		{1000, "Легенда"},
		{50000, "Легенда"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RankFor(tt.xp), "xp=%d", tt.xp)
	}
}

func TestRecalcRankKeepsSpecialRanks(t *testing.T) {
	assert.Equal(t, RankReseller, RecalcRank(RankReseller, 5000))
	assert.Equal(t, RankAdmin, RecalcRank(RankAdmin, 0))
	assert.Equal(t, "Учасник", RecalcRank("Новачок", 60))
}

func TestNextRank(t *testing.T) {
	next, ok := NextRank(60)
	assert.True(t, ok)
	assert.Equal(t, Threshold{150, "Активіст"}, next)

	_, ok = NextRank(1000)
	assert.False(t, ok)
}

func TestAccrueFreshDay(t *testing.T) {
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	a := Accrue(10, 0, nil, now)
	assert.True(t, a.Changed)
	assert.Equal(t, 11, a.XP)
	assert.Equal(t, 1, a.DailyXP)
	assert.Equal(t, "2025-03-02", a.Date)

	// Вчерашняя дата тоже означает новый день
	yesterday := "2025-03-01"
	a = Accrue(10, 100, &yesterday, now)
	assert.True(t, a.Changed)
	assert.Equal(t, 11, a.XP)
	assert.Equal(t, 1, a.DailyXP)
}

func TestAccrueSameDay(t *testing.T) {
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	today := "2025-03-02"

	a := Accrue(10, 5, &today, now)
	assert.True(t, a.Changed)
	assert.Equal(t, 11, a.XP)
	assert.Equal(t, 6, a.DailyXP)
}

func TestAccrueDailyCap(t *testing.T) {
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	today := "2025-03-02"

	a := Accrue(500, 99, &today, now)
	assert.True(t, a.Changed)
	assert.Equal(t, 100, a.DailyXP)

	// 101-е сообщение дня ничего не меняет
	a = Accrue(501, 100, &today, now)
	assert.False(t, a.Changed)
	assert.Equal(t, 501, a.XP)
	assert.Equal(t, 100, a.DailyXP)
}
