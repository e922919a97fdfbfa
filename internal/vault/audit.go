package vault

import (
	"sync"
	"time"
)

// DefaultAuditCapacity bounds the in-memory audit trail.
const DefaultAuditCapacity = 1000

// Audit action tags.
const (
	ActionLogin       = "LOGIN"
	ActionLogout      = "LOGOUT"
	ActionAdd         = "ADD_CREDENTIAL"
	ActionView        = "VIEW_CREDENTIAL"
	ActionList        = "LIST_CREDENTIALS"
	ActionUpdate      = "UPDATE_CREDENTIAL"
	ActionDelete      = "DELETE_CREDENTIAL"
	ActionSearch      = "SEARCH_CREDENTIALS"
	ActionShareToken  = "GENERATE_SHARE_TOKEN"
	ActionExportVault = "EXPORT_VAULT"
)

// AuditEntry records one sensitive operation. Details must never contain
// secret field values; service names and counts are fine, passwords are not.
type AuditEntry struct {
	Timestamp    time.Time      `json:"timestamp"`
	Action       string         `json:"action"`
	CredentialID string         `json:"credential_id,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// AuditTrail is a fixed-capacity, append-only ring of AuditEntry values.
// Once full, each append evicts the oldest entry. The trail is held in
// memory only and is lost on process exit.
//
// Safe for concurrent use.
type AuditTrail struct {
	mu       sync.Mutex
	entries  []AuditEntry
	start    int
	count    int
	capacity int
	now      func() time.Time
}

func NewAuditTrail(capacity int) *AuditTrail {
	return &AuditTrail{
		entries:  make([]AuditEntry, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// Record appends an entry, evicting the oldest if the trail is full.
func (t *AuditTrail) Record(action, credentialID string, details map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := AuditEntry{
		Timestamp:    t.now(),
		Action:       action,
		CredentialID: credentialID,
		Details:      details,
	}

	if t.count < t.capacity {
		t.entries[(t.start+t.count)%t.capacity] = entry
		t.count++
		return
	}
	t.entries[t.start] = entry
	t.start = (t.start + 1) % t.capacity
}

// Recent returns up to n of the newest entries in chronological order
// (most recent last).
func (t *AuditTrail) Recent(n int) []AuditEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n > t.count {
		n = t.count
	}
	if n <= 0 {
		return []AuditEntry{}
	}

	out := make([]AuditEntry, 0, n)
	first := t.count - n
	for i := first; i < t.count; i++ {
		out = append(out, t.entries[(t.start+i)%t.capacity])
	}
	return out
}

// Len returns the number of entries currently retained.
func (t *AuditTrail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}
