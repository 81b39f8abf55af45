package antiflood

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldWarnSuppressesRepeats(t *testing.T) {
	s := NewSuppressor(30 * time.Second)

	assert.True(t, s.ShouldWarn(1))
	assert.False(t, s.ShouldWarn(1))
	assert.False(t, s.ShouldWarn(1))

	// Другой пользователь не задет
	assert.True(t, s.ShouldWarn(2))
}

func TestShouldWarnAfterCooldown(t *testing.T) {
	s := NewSuppressor(50 * time.Millisecond)

	assert.True(t, s.ShouldWarn(1))
	assert.False(t, s.ShouldWarn(1))

	time.Sleep(120 * time.Millisecond)
	assert.True(t, s.ShouldWarn(1))
}
