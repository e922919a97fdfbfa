// Package common defines shared constants and sentinel errors used across
// the vault core and its adapters. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Vault lifecycle errors.
	ErrAlreadyExists = errors.New("vault already exists")
	ErrNoVault       = errors.New("vault does not exist")

	// Authentication and session errors.
	ErrDenied         = errors.New("access denied")
	ErrLockedOut      = errors.New("too many failed attempts, try again later")
	ErrSessionExpired = errors.New("session expired")

	// Credential errors.
	ErrNotFound = errors.New("credential not found")

	// Persistence errors. A corrupt vault is distinct from a wrong password:
	// the file itself could not be read or decrypted.
	ErrCorrupt = errors.New("vault data corrupt")

	// Sharing token errors (malformed, undecryptable or expired).
	ErrInvalidToken = errors.New("invalid or expired token")
)
