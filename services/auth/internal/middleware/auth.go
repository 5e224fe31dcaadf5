package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/msellami/medigate/pkg/tokens"
)

const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRoles  = "roles"
)

type BearerAuth struct {
	Issuer *tokens.Issuer
}

func NewBearerAuth(issuer *tokens.Issuer) *BearerAuth {
	return &BearerAuth{Issuer: issuer}
}

// RequireAuth validates the Authorization bearer token and stashes the
// decoded identity in the echo context. Every failure mode is the same 401.
func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := ExtractBearer(c.Request())
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := m.Issuer.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
		if claims.Subject == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxRoles, claims.Roles)

		return next(c)
	}
}

// RequireRole gates a route group on token roles. Runs after RequireAuth.
func (m *BearerAuth) RequireRole(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get(CtxRoles).([]string)
			if len(roles) == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing role")
			}
			claims := tokens.AccessClaims{Roles: roles}
			if !claims.HasRole(required...) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient rights")
			}
			return next(c)
		}
	}
}

func ExtractBearer(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
