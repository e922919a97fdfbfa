// Package cryptox implements the cryptographic primitives of the vault:
// password-based key derivation, the master-password verifier, and
// authenticated encryption of serialized values.
//
// Key derivation and the verifier are deliberately separate primitives.
// The verifier is a bcrypt hash stored in vault metadata; it cannot be
// inverted into the PBKDF2-derived encryption key, so leaking the metadata
// file alone does not expose vault contents.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securevault/internal/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// SaltSize is the per-vault (and per-export) salt length.
	SaltSize = 16

	nonceSize     = 12
	kdfIterations = 100_000
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// DeriveKey derives a symmetric encryption key from a password and salt
// using PBKDF2-HMAC-SHA256. The same (password, salt) pair always yields
// the same key; different salts make identical passwords unlinkable.
func DeriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, kdfIterations, KeySize, sha256.New)
}

// HashPassword produces a storable verifier for the master password.
func HashPassword(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
}

// VerifyPassword reports whether password matches the stored verifier.
func VerifyPassword(password, verifier []byte) bool {
	return bcrypt.CompareHashAndPassword(verifier, password) == nil
}

// GenerateSalt returns a fresh random salt of SaltSize bytes.
func GenerateSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// GenerateKey returns a fresh random AES-256 key, used for one-off
// sharing-token keys.
func GenerateKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// Encrypt seals plaintext with AES-256-GCM under key. A random 12-byte
// nonce is generated per call and prepended to the returned ciphertext.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(nonceSize)
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a nonce-prefixed AES-256-GCM ciphertext produced by Encrypt.
// Any tampering with the ciphertext or a wrong key yields an error.
func Decrypt(ciphertext, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < nonceSize {
		return nil, ErrCiphertextTooShort
	}
	nonce, ct := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return aead.Open(nil, nonce, ct, nil)
}

// SealJSON serializes v to JSON and encrypts it under key.
func SealJSON(v any, key []byte) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return Encrypt(plaintext, key)
}

// OpenJSON decrypts a ciphertext produced by SealJSON and unmarshals the
// plaintext into v.
func OpenJSON(ciphertext, key []byte, v any) error {
	plaintext, err := Decrypt(ciphertext, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
