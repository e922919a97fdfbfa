package vault

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/cryptox"
	"github.com/google/uuid"
)

// A sharing token is a self-contained capsule: a fresh one-off key plus the
// ciphertext of the shared fields and the expiry, base64-packaged into one
// string. Whoever holds the token string can redeem it until the embedded
// expiry; no vault state is consulted at redemption.
//
// Known trade-off carried over from the wire format: because the token
// carries its own key, there is no server-side revocation. Early
// invalidation would require a revocation list keyed by the embedded token
// id, which would break the token's self-contained property.

// shareEnvelope is the outer package: key and ciphertext side by side.
type shareEnvelope struct {
	Key   []byte `json:"key"`
	Token []byte `json:"token"`
}

// shareClaims is the encrypted payload.
type shareClaims struct {
	Credential SharePayload `json:"credential"`
	ExpiresAt  time.Time    `json:"expires_at"`
	TokenID    string       `json:"token_id"`
}

// IssueShareToken builds a time-limited sharing token for the shareable
// fields of c. The token is the sole secret; it is independent of the vault
// session from this point on.
func IssueShareToken(c Credential, ttl time.Duration) (string, time.Time, error) {
	key := cryptox.GenerateKey()
	defer common.WipeByteArray(key)

	expiresAt := time.Now().Add(ttl)
	claims := shareClaims{
		Credential: SharePayload{
			ServiceName: c.ServiceName,
			Username:    c.Username,
			Password:    c.Password,
			Notes:       c.Notes,
		},
		ExpiresAt: expiresAt,
		TokenID:   uuid.NewString(),
	}

	ciphertext, err := cryptox.SealJSON(claims, key)
	if err != nil {
		return "", time.Time{}, err
	}

	raw, err := json.Marshal(shareEnvelope{Key: append([]byte(nil), key...), Token: ciphertext})
	if err != nil {
		return "", time.Time{}, err
	}

	return base64.StdEncoding.EncodeToString(raw), expiresAt, nil
}

// RedeemShareToken decodes and decrypts a sharing token. It is total over
// arbitrary input: any malformed, undecryptable or expired token yields
// common.ErrInvalidToken, never a panic.
func RedeemShareToken(token string) (*SharePayload, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	var env shareEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, common.ErrInvalidToken
	}
	if len(env.Key) != cryptox.KeySize {
		return nil, common.ErrInvalidToken
	}

	var claims shareClaims
	if err := cryptox.OpenJSON(env.Token, env.Key, &claims); err != nil {
		return nil, common.ErrInvalidToken
	}

	if time.Now().After(claims.ExpiresAt) {
		return nil, common.ErrInvalidToken
	}

	payload := claims.Credential
	return &payload, nil
}
