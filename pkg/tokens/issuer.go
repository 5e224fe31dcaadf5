package tokens

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const refreshValueBytes = 64

// Issuer mints the two bearer credentials of a session: a short-lived signed
// access token and a long-lived opaque refresh value. Configuration is loaded
// once at startup and never mutated.
type Issuer struct {
	Secret     []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssueAccess signs an HS256 access token carrying subject id, email and
// role claims plus a fresh jti.
func (i *Issuer) IssueAccess(userID uuid.UUID, email string, roles []string) (string, time.Time, error) {
	exp := time.Now().UTC().Add(i.AccessTTL)
	claims := AccessClaims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    i.Issuer,
			Audience:  jwt.ClaimStrings{i.Audience},
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// NewRefresh generates an opaque refresh value from crypto/rand. The value is
// returned once to the client; only its sha256 goes to the ledger.
func (i *Issuer) NewRefresh() (string, time.Time, error) {
	buf := make([]byte, refreshValueBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, err
	}
	value := base64.RawURLEncoding.EncodeToString(buf)
	return value, time.Now().UTC().Add(i.RefreshTTL), nil
}

// Parse validates a raw access token against this issuer's configuration.
func (i *Issuer) Parse(raw string) (*AccessClaims, error) {
	return ParseAccess(raw, i.Secret, i.Issuer, i.Audience)
}
