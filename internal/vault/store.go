package vault

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/cryptox"
	"github.com/dmitrijs2005/securevault/internal/filex"
	"github.com/dmitrijs2005/securevault/internal/hsm"
)

// vaultFile is the on-disk layout: metadata in the clear, all credentials
// inside one authenticated-encryption blob. Both sections are required to
// open a vault.
type vaultFile struct {
	Metadata    Metadata `json:"metadata"`
	Credentials []byte   `json:"credentials"`
}

// Store owns the persisted vault file together with the session and the
// lockout guard that gate access to it. ReadAll/WriteAll are the only
// persistence primitives: the encrypted blob is always replaced as a whole.
//
// Store methods are not self-serializing; the Vault facade holds the lock
// around each read-modify-write cycle.
type Store struct {
	path    string
	session *Session
	lockout *LockoutGuard
	wrapper hsm.Provider
}

// StoreOption customizes a Store at construction time.
type StoreOption func(*Store)

// WithIdleTimeout overrides the session idle timeout.
func WithIdleTimeout(d time.Duration) StoreOption {
	return func(s *Store) { s.session = NewSession(d) }
}

// WithLockoutPolicy overrides the failed-attempt limit and cooldown.
func WithLockoutPolicy(maxAttempts int, cooldown time.Duration) StoreOption {
	return func(s *Store) { s.lockout = NewLockoutGuard(maxAttempts, cooldown) }
}

// WithKeyWrapper attaches an optional key-wrapping provider. When present,
// vault creation stores the master key wrapped by the provider, and
// authentication verifies the unwrap round-trips to the derived key.
func WithKeyWrapper(p hsm.Provider) StoreOption {
	return func(s *Store) { s.wrapper = p }
}

func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:    path,
		session: NewSession(DefaultIdleTimeout),
		lockout: NewLockoutGuard(DefaultMaxAttempts, DefaultLockoutCooldown),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Exists reports whether a vault file is present at the store's path.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Create initializes a new vault: fresh salt, password verifier, and a
// valid empty encrypted blob, persisted together. It fails with
// common.ErrAlreadyExists if a vault is already present.
//
// Create does not establish a session; callers authenticate afterwards.
func (s *Store) Create(password string) error {
	if s.Exists() {
		return common.ErrAlreadyExists
	}

	salt := cryptox.GenerateSalt()
	verifier, err := cryptox.HashPassword([]byte(password))
	if err != nil {
		return fmt.Errorf("hash master password: %w", err)
	}

	key := cryptox.DeriveKey([]byte(password), salt)
	defer common.WipeByteArray(key)

	blob, err := cryptox.SealJSON(map[string]Credential{}, key)
	if err != nil {
		return fmt.Errorf("seal empty vault: %w", err)
	}

	meta := Metadata{
		Salt:      salt,
		Verifier:  verifier,
		CreatedAt: time.Now(),
		Version:   common.SchemaVersion,
	}

	if s.wrapper != nil && s.wrapper.Available() {
		wrapped, err := s.wrapper.EncryptKey(key)
		if err != nil {
			return fmt.Errorf("wrap master key: %w", err)
		}
		meta.WrappedKey = wrapped
	}

	return s.save(&vaultFile{Metadata: meta, Credentials: blob})
}

// Authenticate verifies the master password and establishes a session on
// success. The lockout guard is consulted before the verifier, so a correct
// password during a lockout still fails.
func (s *Store) Authenticate(password string) error {
	if s.lockout.IsLockedOut() {
		return common.ErrLockedOut
	}

	vf, err := s.load()
	if err != nil {
		return err
	}

	if !cryptox.VerifyPassword([]byte(password), vf.Metadata.Verifier) {
		s.lockout.RecordFailure()
		return common.ErrDenied
	}

	key := cryptox.DeriveKey([]byte(password), vf.Metadata.Salt)
	defer common.WipeByteArray(key)

	// Tamper evidence: the wrapped copy of the master key must unwrap to
	// the key we just derived.
	if s.wrapper != nil && s.wrapper.Available() && len(vf.Metadata.WrappedKey) > 0 {
		unwrapped, err := s.wrapper.DecryptKey(vf.Metadata.WrappedKey)
		if err != nil {
			return fmt.Errorf("%w: unwrap master key: %v", common.ErrCorrupt, err)
		}
		match := subtle.ConstantTimeCompare(unwrapped, key) == 1
		common.WipeByteArray(unwrapped)
		if !match {
			return fmt.Errorf("%w: wrapped key mismatch", common.ErrCorrupt)
		}
	}

	s.lockout.Reset()
	s.session.Establish(key)
	return nil
}

// ReadAll decrypts and returns the full credential map. It requires a valid
// session. A blob that cannot be decrypted or parsed yields
// common.ErrCorrupt, never a panic.
func (s *Store) ReadAll() (map[string]Credential, error) {
	if err := s.session.Validate(); err != nil {
		return nil, err
	}

	vf, err := s.load()
	if err != nil {
		return nil, err
	}

	records := map[string]Credential{}
	if err := cryptox.OpenJSON(vf.Credentials, s.session.Key(), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorrupt, err)
	}
	return records, nil
}

// WriteAll serializes and re-encrypts the entire credential map, replacing
// the stored blob. This is the only mutation primitive; there are no
// incremental updates.
func (s *Store) WriteAll(records map[string]Credential) error {
	if err := s.session.Validate(); err != nil {
		return err
	}

	vf, err := s.load()
	if err != nil {
		return err
	}

	blob, err := cryptox.SealJSON(records, s.session.Key())
	if err != nil {
		return fmt.Errorf("seal credentials: %w", err)
	}

	vf.Credentials = blob
	return s.save(vf)
}

// Metadata returns the vault's unencrypted metadata section.
func (s *Store) Metadata() (*Metadata, error) {
	vf, err := s.load()
	if err != nil {
		return nil, err
	}
	return &vf.Metadata, nil
}

// Size returns the vault file size in bytes, or 0 when absent.
func (s *Store) Size() int64 {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Logout discards the session key immediately.
func (s *Store) Logout() {
	s.session.Clear()
}

func (s *Store) load() (*vaultFile, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.ErrNoVault
		}
		return nil, fmt.Errorf("read vault file: %w", err)
	}

	vf := &vaultFile{}
	if err := json.Unmarshal(raw, vf); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorrupt, err)
	}
	if len(vf.Metadata.Salt) == 0 || len(vf.Metadata.Verifier) == 0 || len(vf.Credentials) == 0 {
		return nil, fmt.Errorf("%w: missing vault sections", common.ErrCorrupt)
	}
	return vf, nil
}

func (s *Store) save(vf *vaultFile) error {
	raw, err := json.Marshal(vf)
	if err != nil {
		return fmt.Errorf("marshal vault file: %w", err)
	}
	if err := filex.WriteFileAtomic(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write vault file: %w", err)
	}
	return nil
}
