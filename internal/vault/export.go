package vault

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/cryptox"
)

// An export is a portable encrypted snapshot of the credential set, keyed
// independently from the vault: a fresh salt and a key derived from the
// export password. Compromising the export password reveals nothing about
// the vault's master key, and vice versa.

type exportPackage struct {
	Salt []byte `json:"salt"`
	Data []byte `json:"data"`
}

type exportPayload struct {
	Credentials map[string]Credential `json:"credentials"`
	ExportedAt  time.Time             `json:"exported_at"`
	Version     string                `json:"version"`
}

// ExportRecords encrypts the full record map under a key derived from
// exportPassword with a freshly generated salt and returns the result as a
// single transportable string.
func ExportRecords(records map[string]Credential, exportPassword string) (string, error) {
	salt := cryptox.GenerateSalt()
	key := cryptox.DeriveKey([]byte(exportPassword), salt)
	defer common.WipeByteArray(key)

	payload := exportPayload{
		Credentials: records,
		ExportedAt:  time.Now(),
		Version:     common.SchemaVersion,
	}

	ciphertext, err := cryptox.SealJSON(payload, key)
	if err != nil {
		return "", fmt.Errorf("seal export: %w", err)
	}

	raw, err := json.Marshal(exportPackage{Salt: salt, Data: ciphertext})
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}

	return base64.StdEncoding.EncodeToString(raw), nil
}

// ImportRecords is the structural inverse of ExportRecords. A malformed
// package yields common.ErrCorrupt; a structurally valid package that does
// not decrypt under exportPassword yields common.ErrDenied.
func ImportRecords(blob, exportPassword string) (map[string]Credential, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorrupt, err)
	}

	var pkg exportPackage
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorrupt, err)
	}
	if len(pkg.Salt) == 0 || len(pkg.Data) == 0 {
		return nil, fmt.Errorf("%w: missing export sections", common.ErrCorrupt)
	}

	key := cryptox.DeriveKey([]byte(exportPassword), pkg.Salt)
	defer common.WipeByteArray(key)

	var payload exportPayload
	if err := cryptox.OpenJSON(pkg.Data, key, &payload); err != nil {
		return nil, common.ErrDenied
	}

	return payload.Credentials, nil
}
