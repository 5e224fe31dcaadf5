package tokens

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the only error ParseAccess returns for a bad token.
// Expired, bad signature, wrong issuer/audience and malformed input are
// deliberately indistinguishable to the caller.
var ErrInvalidToken = errors.New("invalid or expired token")

type AccessClaims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// HasRole reports whether the token carries at least one of the given roles.
func (c *AccessClaims) HasRole(required ...string) bool {
	for _, want := range required {
		for _, got := range c.Roles {
			if got == want {
				return true
			}
		}
	}
	return false
}

// ParseAccess verifies signature, issuer, audience and expiry (zero leeway)
// and returns the decoded claims.
func ParseAccess(raw string, secret []byte, issuer, audience string) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, errors.New("unexpected sign method")
			}
			return secret, nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// Sha256Hex is the at-rest form of refresh token values: the ledger never
// stores the raw value.
func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
