// Package hsm defines the pluggable key-wrapping capability of the vault.
// A Provider can wrap (encrypt) and unwrap (decrypt) key material so that
// the master key can be stored at rest in a form only the provider can open.
//
// The provider is an optional hardening layer, not part of the vault's
// correctness argument: a vault created without one behaves identically.
package hsm

// Provider wraps and unwraps key material.
type Provider interface {
	// EncryptKey wraps plaintext key material into an opaque blob.
	EncryptKey(plaintext []byte) ([]byte, error)

	// DecryptKey unwraps a blob produced by EncryptKey.
	DecryptKey(wrapped []byte) ([]byte, error)

	// Available reports whether the provider is initialized and usable.
	Available() bool
}
