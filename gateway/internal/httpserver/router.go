package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/msellami/medigate/gateway/internal/middleware"
)

type Deps struct {
	AuthURL         string
	PatientURL      string
	DoctorURL       string
	AppointmentURL  string
	ImagingURL      string
	RecordURL       string
	NotificationURL string

	JWTSecret   []byte
	JWTIssuer   string
	JWTAudience string
}

// Register wires the public auth surface and the protected downstream
// routes. Auth endpoints (register/login/refresh) are the only paths that
// bypass token validation; everything else must present a valid bearer
// token, and role-scoped groups add a 403 gate on top.
func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, m := range middleware.Common() {
		e.Use(m)
	}

	authProxy, err := newProxy(d.AuthURL, "/api/v1/auth")
	if err != nil {
		return err
	}

	// Only the unauthenticated entry points skip token validation.
	e.POST("/api/v1/auth/register", authProxy)
	e.POST("/api/v1/auth/login", authProxy)
	e.POST("/api/v1/auth/refresh", authProxy)

	api := e.Group("/api/v1")
	api.Use(middleware.JWT(d.JWTSecret, d.JWTIssuer, d.JWTAudience))

	// Logout, change-password, validate and the rest of the auth surface go
	// through the boundary like everything else, with identity headers stamped.
	api.Any("/auth/*", authProxy)

	mount := func(g *echo.Group, prefix, target, strip string) error {
		if target == "" {
			return nil
		}
		proxy, err := newProxy(target, strip)
		if err != nil {
			return err
		}
		g.Any(prefix, proxy)
		g.Any(prefix+"/*", proxy)
		return nil
	}

	// Authenticated routes, any role.
	for prefix, target := range map[string]string{
		"/patients":      d.PatientURL,
		"/appointments":  d.AppointmentURL,
		"/imaging":       d.ImagingURL,
		"/records":       d.RecordURL,
		"/notifications": d.NotificationURL,
	} {
		if err := mount(api, prefix, target, "/api/v1"); err != nil {
			return err
		}
	}

	// Doctor-only surface.
	doctor := api.Group("")
	doctor.Use(middleware.RequireRole("MEDECIN"))
	if err := mount(doctor, "/doctor", d.DoctorURL, "/api/v1/doctor"); err != nil {
		return err
	}

	// Administration maps onto the auth service's user-management API
	// (/api/v1/admin/users/... -> /users/...).
	admin := api.Group("")
	admin.Use(middleware.RequireRole("ADMIN"))
	if err := mount(admin, "/admin", d.AuthURL, "/api/v1/admin"); err != nil {
		return err
	}

	return nil
}
