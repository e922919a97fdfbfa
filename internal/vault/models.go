package vault

import "time"

// Credential is a single stored secret. It exists in plaintext only in
// process memory during an authenticated session; at rest it lives inside
// the vault's encrypted blob.
type Credential struct {
	ID          string    `json:"id"`
	ServiceName string    `json:"service_name"`
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	Notes       string    `json:"notes,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CredentialCreate carries the caller-supplied fields of a new credential.
// ID and timestamps are assigned by the engine.
type CredentialCreate struct {
	ServiceName string   `json:"service_name"`
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	Notes       string   `json:"notes,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// CredentialUpdate is a partial update: only non-nil fields are applied.
// An explicit pointer per field distinguishes "leave unchanged" from
// "set to the zero value".
type CredentialUpdate struct {
	ServiceName *string   `json:"service_name,omitempty"`
	Username    *string   `json:"username,omitempty"`
	Password    *string   `json:"password,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// SharePayload is the shareable subset of a credential carried inside a
// sharing token. Internal fields (id, timestamps, tags) are never shared.
type SharePayload struct {
	ServiceName string `json:"service_name"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Notes       string `json:"notes,omitempty"`
}

// Stats summarizes the vault for status displays.
type Stats struct {
	TotalCredentials int       `json:"total_credentials"`
	CreatedAt        time.Time `json:"created_at"`
	LastAccessed     time.Time `json:"last_accessed"`
	VaultSize        int64     `json:"vault_size"`
}

// Metadata is the unencrypted section of the vault file. It is written once
// at vault creation and read on every open. Salt and Verifier are base64 in
// JSON ([]byte encoding).
type Metadata struct {
	Salt      []byte    `json:"salt"`
	Verifier  []byte    `json:"verifier"`
	CreatedAt time.Time `json:"created_at"`
	Version   string    `json:"version"`

	// WrappedKey holds the master key wrapped by the optional key-wrapping
	// provider. Empty when no provider was configured at creation.
	WrappedKey []byte `json:"wrapped_key,omitempty"`
}
