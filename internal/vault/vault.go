package vault

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/google/uuid"
)

// Vault is the facade the adapters talk to: one explicit instance per
// vault file, no process-wide state. Mutations take the write lock for the
// whole read-decrypt-mutate-encrypt-write cycle so interleaved writers can
// never drop each other's changes; non-mutating reads share the read lock.
type Vault struct {
	mu    sync.RWMutex
	store *Store
	audit *AuditTrail
}

func New(path string, opts ...StoreOption) *Vault {
	return &Vault{
		store: NewStore(path, opts...),
		audit: NewAuditTrail(DefaultAuditCapacity),
	}
}

// Exists reports whether the vault file is present.
func (v *Vault) Exists() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.store.Exists()
}

// Create initializes a new vault protected by password.
func (v *Vault) Create(password string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.store.Create(password)
}

// Authenticate verifies the master password, establishing a session on
// success. Failures and lockouts return generic errors with no hint as to
// which part was wrong.
func (v *Vault) Authenticate(password string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	err := v.store.Authenticate(password)
	v.audit.Record(ActionLogin, "", map[string]any{"success": err == nil})
	return err
}

// IsAuthenticated reports whether a live session exists. Calling it past
// the idle timeout discards the session key as a side effect.
func (v *Vault) IsAuthenticated() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.store.session.Validate() == nil
}

// IsLockedOut reports whether authentication is currently rejected.
func (v *Vault) IsLockedOut() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.store.lockout.IsLockedOut()
}

// Logout discards the session key immediately.
func (v *Vault) Logout() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.audit.Record(ActionLogout, "", nil)
	v.store.Logout()
}

// Add assigns a fresh id and timestamps to the new credential, inserts it,
// and persists the vault.
func (v *Vault) Add(c CredentialCreate) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id, err := v.add(c)
	v.audit.Record(ActionAdd, id, map[string]any{
		"service_name": c.ServiceName,
		"success":      err == nil,
	})
	return id, err
}

func (v *Vault) add(c CredentialCreate) (string, error) {
	records, err := v.store.ReadAll()
	if err != nil {
		return "", err
	}

	now := time.Now()
	cred := Credential{
		ID:          uuid.NewString(),
		ServiceName: c.ServiceName,
		Username:    c.Username,
		Password:    c.Password,
		Notes:       c.Notes,
		Tags:        append([]string(nil), c.Tags...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	records[cred.ID] = cred

	if err := v.store.WriteAll(records); err != nil {
		return "", err
	}
	v.store.session.Touch()
	return cred.ID, nil
}

// Get returns a credential by id or common.ErrNotFound.
func (v *Vault) Get(id string) (*Credential, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	cred, err := v.get(id)
	details := map[string]any{"success": err == nil}
	if cred != nil {
		details["service_name"] = cred.ServiceName
	}
	v.audit.Record(ActionView, id, details)
	return cred, err
}

func (v *Vault) get(id string) (*Credential, error) {
	records, err := v.store.ReadAll()
	if err != nil {
		return nil, err
	}
	cred, ok := records[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	v.store.session.Touch()
	return &cred, nil
}

// List returns every credential, oldest first.
func (v *Vault) List() ([]Credential, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	records, err := v.store.ReadAll()
	if err != nil {
		v.audit.Record(ActionList, "", map[string]any{"success": false})
		return nil, err
	}
	v.store.session.Touch()
	v.audit.Record(ActionList, "", map[string]any{"success": true, "count": len(records)})
	return sortByCreation(records), nil
}

// Update applies only the supplied fields, bumps UpdatedAt, and persists.
// CreatedAt is never modified.
func (v *Vault) Update(id string, upd CredentialUpdate) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	fields, err := v.update(id, upd)
	v.audit.Record(ActionUpdate, id, map[string]any{
		"success":        err == nil,
		"updated_fields": fields,
	})
	return err
}

func (v *Vault) update(id string, upd CredentialUpdate) ([]string, error) {
	records, err := v.store.ReadAll()
	if err != nil {
		return nil, err
	}
	cred, ok := records[id]
	if !ok {
		return nil, common.ErrNotFound
	}

	fields := make([]string, 0, 5)
	if upd.ServiceName != nil {
		cred.ServiceName = *upd.ServiceName
		fields = append(fields, "service_name")
	}
	if upd.Username != nil {
		cred.Username = *upd.Username
		fields = append(fields, "username")
	}
	if upd.Password != nil {
		cred.Password = *upd.Password
		fields = append(fields, "password")
	}
	if upd.Notes != nil {
		cred.Notes = *upd.Notes
		fields = append(fields, "notes")
	}
	if upd.Tags != nil {
		cred.Tags = append([]string(nil), (*upd.Tags)...)
		fields = append(fields, "tags")
	}

	cred.UpdatedAt = time.Now()
	records[id] = cred

	if err := v.store.WriteAll(records); err != nil {
		return nil, err
	}
	v.store.session.Touch()
	return fields, nil
}

// Delete removes a credential by id.
func (v *Vault) Delete(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	err := v.delete(id)
	v.audit.Record(ActionDelete, id, map[string]any{"success": err == nil})
	return err
}

func (v *Vault) delete(id string) error {
	records, err := v.store.ReadAll()
	if err != nil {
		return err
	}
	if _, ok := records[id]; !ok {
		return common.ErrNotFound
	}
	delete(records, id)

	if err := v.store.WriteAll(records); err != nil {
		return err
	}
	v.store.session.Touch()
	return nil
}

// Search filters credentials by a case-insensitive substring query over
// service name, username and notes, and by tag overlap. Both filters
// compose with AND; with neither, everything is returned. Results come
// back oldest first.
func (v *Vault) Search(query string, tags []string) ([]Credential, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	records, err := v.store.ReadAll()
	if err != nil {
		v.audit.Record(ActionSearch, "", map[string]any{"success": false})
		return nil, err
	}

	matched := make(map[string]Credential, len(records))
	for id, cred := range records {
		if matchesQuery(cred, query) && matchesTags(cred, tags) {
			matched[id] = cred
		}
	}

	v.store.session.Touch()
	v.audit.Record(ActionSearch, "", map[string]any{
		"success":       true,
		"query":         query,
		"tags":          tags,
		"results_count": len(matched),
	})
	return sortByCreation(matched), nil
}

func matchesQuery(c Credential, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.ServiceName), q) ||
		strings.Contains(strings.ToLower(c.Username), q) ||
		strings.Contains(strings.ToLower(c.Notes), q)
}

func matchesTags(c Credential, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(c.Tags))
	for _, t := range c.Tags {
		have[t] = struct{}{}
	}
	for _, t := range tags {
		if _, ok := have[t]; ok {
			return true
		}
	}
	return false
}

func sortByCreation(records map[string]Credential) []Credential {
	out := make([]Credential, 0, len(records))
	for _, c := range records {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// IssueShareToken builds a self-contained sharing token for one credential.
// The token needs no vault state to be redeemed later.
func (v *Vault) IssueShareToken(id string, ttl time.Duration) (string, time.Time, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	cred, err := v.get(id)
	if err != nil {
		v.audit.Record(ActionShareToken, id, map[string]any{"success": false})
		return "", time.Time{}, err
	}

	token, expiresAt, err := IssueShareToken(*cred, ttl)
	v.audit.Record(ActionShareToken, id, map[string]any{
		"success":      err == nil,
		"service_name": cred.ServiceName,
		"expires_in":   ttl.Seconds(),
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Export re-encrypts the full credential set under exportPassword with a
// fresh salt, unrelated to the vault's own key material.
func (v *Vault) Export(exportPassword string) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	records, err := v.store.ReadAll()
	if err != nil {
		v.audit.Record(ActionExportVault, "", map[string]any{"success": false})
		return "", err
	}

	blob, err := ExportRecords(records, exportPassword)
	v.audit.Record(ActionExportVault, "", map[string]any{
		"success":           err == nil,
		"credentials_count": len(records),
	})
	if err != nil {
		return "", err
	}
	v.store.session.Touch()
	return blob, nil
}

// AuditLog returns up to limit recent audit entries, oldest first. It
// requires a valid session.
func (v *Vault) AuditLog(limit int) ([]AuditEntry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if err := v.store.session.Validate(); err != nil {
		return nil, err
	}
	v.store.session.Touch()
	return v.audit.Recent(limit), nil
}

// Stats reports vault-level statistics.
func (v *Vault) Stats() (*Stats, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if err := v.store.session.Validate(); err != nil {
		return nil, err
	}

	records, err := v.store.ReadAll()
	if err != nil {
		return nil, err
	}
	meta, err := v.store.Metadata()
	if err != nil {
		return nil, err
	}

	v.store.session.Touch()
	return &Stats{
		TotalCredentials: len(records),
		CreatedAt:        meta.CreatedAt,
		LastAccessed:     v.store.session.LastActivity(),
		VaultSize:        v.store.Size(),
	}, nil
}
