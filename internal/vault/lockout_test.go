package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockoutGuard_OpensAfterCooldown(t *testing.T) {
	g := NewLockoutGuard(3, 5*time.Minute)
	now := time.Now()
	g.now = func() time.Time { return now }

	assert.False(t, g.IsLockedOut())

	g.RecordFailure()
	g.RecordFailure()
	assert.False(t, g.IsLockedOut(), "below the limit, still open")

	g.RecordFailure()
	assert.True(t, g.IsLockedOut(), "limit reached, locked")

	now = now.Add(5*time.Minute + time.Second)
	assert.False(t, g.IsLockedOut(), "cooldown elapsed, open again")
}

func TestLockoutGuard_ResetClearsState(t *testing.T) {
	g := NewLockoutGuard(2, time.Minute)
	now := time.Now()
	g.now = func() time.Time { return now }

	g.RecordFailure()
	g.RecordFailure()
	assert.True(t, g.IsLockedOut())
	assert.Equal(t, 2, g.FailedAttempts())

	g.Reset()
	assert.False(t, g.IsLockedOut())
	assert.Equal(t, 0, g.FailedAttempts())
}
