// Package auth issues and validates the bearer tokens the HTTP adapter
// hands to clients after a successful master-password login. The vault
// core enforces its own session independently; these tokens only gate the
// transport layer.
package auth

import (
	"time"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims plus the id of the vault
// session the token was minted for.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string
}

// GenerateToken mints an HS256-signed token bound to sessionID.
func GenerateToken(sessionID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		SessionID: sessionID,
	})

	return token.SignedString(secretKey)
}

// GetSessionIDFromToken validates the token signature and expiry and
// returns the embedded session id.
func GetSessionIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.SessionID, nil
}
