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

	HeaderUserID = "X-User-Id"
	HeaderEmail  = "X-User-Email"
	HeaderRoles  = "X-User-Roles"
)

// JWT validates the bearer token on every request that reaches a protected
// group, then stamps the verified identity onto the forwarded request.
// Downstream services trust these headers, so client-supplied copies are
// stripped unconditionally.
func JWT(secret []byte, issuer, audience string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			req.Header.Del(HeaderUserID)
			req.Header.Del(HeaderEmail)
			req.Header.Del(HeaderRoles)

			raw := bearerToken(req)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			claims, err := tokens.ParseAccess(raw, secret, issuer, audience)
			if err != nil || claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(CtxUserID, claims.Subject)
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxRoles, claims.Roles)

			req.Header.Set(HeaderUserID, claims.Subject)
			req.Header.Set(HeaderEmail, claims.Email)
			req.Header.Set(HeaderRoles, strings.Join(claims.Roles, ","))

			return next(c)
		}
	}
}

// RequireRole rejects with 403 when the token holds none of the required
// roles. Runs after JWT.
func RequireRole(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get(CtxRoles).([]string)
			if len(roles) == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing role")
			}
			claims := tokens.AccessClaims{Roles: roles}
			if !claims.HasRole(required...) {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights to see this page")
			}
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
