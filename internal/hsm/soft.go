package hsm

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/securevault/internal/filex"
)

const (
	softKeyFileName = "master.pem"
	softKeyBits     = 2048
)

// SoftProvider is a software stand-in for a hardware security module.
// It keeps an RSA-2048 keypair on disk under a key directory and wraps
// key material with RSA-OAEP. Intended for development and single-machine
// deployments where no real HSM is present.
type SoftProvider struct {
	keyDir string
	priv   *rsa.PrivateKey
}

// NewSoftProvider loads the keypair from keyDir, generating and persisting
// a new one on first use.
func NewSoftProvider(keyDir string) (*SoftProvider, error) {
	dir, err := filex.EnsureDir(keyDir)
	if err != nil {
		return nil, fmt.Errorf("hsm key dir: %w", err)
	}

	p := &SoftProvider{keyDir: dir}

	keyPath := filepath.Join(dir, softKeyFileName)
	raw, err := os.ReadFile(keyPath)
	switch {
	case err == nil:
		priv, err := parseKey(raw)
		if err != nil {
			return nil, err
		}
		p.priv = priv
	case errors.Is(err, os.ErrNotExist):
		priv, err := rsa.GenerateKey(rand.Reader, softKeyBits)
		if err != nil {
			return nil, fmt.Errorf("generate hsm key: %w", err)
		}
		block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)}
		if err := filex.WriteFileAtomic(keyPath, pem.EncodeToMemory(block), 0o600); err != nil {
			return nil, fmt.Errorf("persist hsm key: %w", err)
		}
		p.priv = priv
	default:
		return nil, fmt.Errorf("read hsm key: %w", err)
	}

	return p, nil
}

func parseKey(raw []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errors.New("hsm key file is not PEM")
	}
	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse hsm key: %w", err)
	}
	return priv, nil
}

func (p *SoftProvider) EncryptKey(plaintext []byte) ([]byte, error) {
	if p.priv == nil {
		return nil, errors.New("hsm provider not initialized")
	}
	return rsa.EncryptOAEP(sha256.New(), rand.Reader, &p.priv.PublicKey, plaintext, nil)
}

func (p *SoftProvider) DecryptKey(wrapped []byte) ([]byte, error) {
	if p.priv == nil {
		return nil, errors.New("hsm provider not initialized")
	}
	return rsa.DecryptOAEP(sha256.New(), rand.Reader, p.priv, wrapped, nil)
}

func (p *SoftProvider) Available() bool {
	return p != nil && p.priv != nil
}
