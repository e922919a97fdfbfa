package vault

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/securevault/internal/common"
)

// DefaultIdleTimeout is how long a session survives without activity.
const DefaultIdleTimeout = 5 * time.Minute

// Session holds the live symmetric key and last-activity timestamp for the
// currently authenticated caller. Expiry is enforced lazily: the first
// access past the idle timeout wipes the key and reports the expiry. There
// is no background timer.
type Session struct {
	mu            sync.Mutex
	key           []byte
	establishedAt time.Time
	lastActivity  time.Time
	idleTimeout   time.Duration
	now           func() time.Time
}

func NewSession(idleTimeout time.Duration) *Session {
	return &Session{idleTimeout: idleTimeout, now: time.Now}
}

// Establish stores a copy of the key and starts the activity clock.
// Only call after the master password has been verified.
func (s *Session) Establish(key []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	common.WipeByteArray(s.key)
	s.key = append([]byte(nil), key...)
	now := s.now()
	s.establishedAt = now
	s.lastActivity = now
}

// Validate returns nil while the session is live. It returns
// common.ErrSessionExpired exactly once when the idle timeout has elapsed
// (wiping the key as a side effect) and common.ErrDenied when no session
// is established.
func (s *Session) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return common.ErrDenied
	}
	if s.now().Sub(s.lastActivity) > s.idleTimeout {
		s.clearLocked()
		return common.ErrSessionExpired
	}
	return nil
}

// Touch updates the last-activity timestamp. Call on every successful
// authenticated operation.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = s.now()
}

// Key returns the session key, or nil when no session is established.
// The returned slice aliases internal state; callers must not retain it
// past the operation.
func (s *Session) Key() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// LastActivity returns the time of the most recent authenticated operation.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Clear discards the key immediately, independent of the timeout.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	common.WipeByteArray(s.key)
	s.key = nil
	s.establishedAt = time.Time{}
	s.lastActivity = time.Time{}
}
