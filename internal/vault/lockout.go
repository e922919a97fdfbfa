package vault

import "time"

const (
	// DefaultMaxAttempts is the number of consecutive failed authentications
	// that triggers a lockout.
	DefaultMaxAttempts = 5

	// DefaultLockoutCooldown is how long authentication stays rejected after
	// the attempt limit is reached.
	DefaultLockoutCooldown = 5 * time.Minute
)

// LockoutGuard tracks failed authentication attempts and enforces a
// cool-down window. While locked, authentication is rejected before the
// password is even checked, so a correct password cannot bypass the window.
//
// The counters live in process memory only and reset on restart.
// Not safe for concurrent use on its own; callers serialize access
// alongside authenticate calls.
type LockoutGuard struct {
	failedAttempts int
	lockedUntil    time.Time
	maxAttempts    int
	cooldown       time.Duration
	now            func() time.Time
}

func NewLockoutGuard(maxAttempts int, cooldown time.Duration) *LockoutGuard {
	return &LockoutGuard{maxAttempts: maxAttempts, cooldown: cooldown, now: time.Now}
}

// IsLockedOut reports whether authentication should currently be rejected.
// The lock releases automatically once the cooldown has elapsed.
func (g *LockoutGuard) IsLockedOut() bool {
	return g.now().Before(g.lockedUntil)
}

// RecordFailure counts a failed attempt, engaging the lockout once the
// limit is reached.
func (g *LockoutGuard) RecordFailure() {
	g.failedAttempts++
	if g.failedAttempts >= g.maxAttempts {
		g.lockedUntil = g.now().Add(g.cooldown)
	}
}

// Reset clears the failure counter and any pending lockout. Called after a
// successful authentication.
func (g *LockoutGuard) Reset() {
	g.failedAttempts = 0
	g.lockedUntil = time.Time{}
}

// FailedAttempts returns the current consecutive-failure count.
func (g *LockoutGuard) FailedAttempts() int {
	return g.failedAttempts
}
