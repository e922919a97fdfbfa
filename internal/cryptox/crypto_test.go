package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt-16byt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != KeySize {
		t.Errorf("expected %d byte key, got %d", KeySize, len(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveKey(password, []byte("salt-1"))
	key2 := DeriveKey(password, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestHashPassword_Verify(t *testing.T) {
	password := []byte("longenough1")

	verifier, err := HashPassword(password)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(password, verifier))
	assert.False(t, VerifyPassword([]byte("wrong"), verifier))

	// the verifier must not be the derived key
	salt := GenerateSalt()
	assert.NotEqual(t, DeriveKey(password, salt), verifier)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := GenerateKey()
	plaintext := []byte("attack at dawn")

	ct, err := Encrypt(plaintext, key)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ct)

	got, err := Decrypt(ct, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecrypt_WrongKey(t *testing.T) {
	ct, err := Encrypt([]byte("data"), GenerateKey())
	require.NoError(t, err)

	_, err = Decrypt(ct, GenerateKey())
	assert.Error(t, err)
}

func TestDecrypt_Tampered(t *testing.T) {
	key := GenerateKey()
	ct, err := Encrypt([]byte("data"), key)
	require.NoError(t, err)

	ct[len(ct)-1] ^= 0xff
	_, err = Decrypt(ct, key)
	assert.Error(t, err)
}

func TestDecrypt_TooShort(t *testing.T) {
	_, err := Decrypt([]byte("short"), GenerateKey())
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestSealOpenJSON(t *testing.T) {
	type record struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}

	key := GenerateKey()
	in := record{Name: "alice", N: 7}

	ct, err := SealJSON(in, key)
	require.NoError(t, err)

	var out record
	require.NoError(t, OpenJSON(ct, key, &out))
	assert.Equal(t, in, out)
}

func TestGenerateSalt(t *testing.T) {
	s1 := GenerateSalt()
	s2 := GenerateSalt()
	assert.Len(t, s1, SaltSize)
	assert.NotEqual(t, s1, s2)
}
