package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/msellami/medigate/pkg/tokens"
	"github.com/msellami/medigate/services/auth/internal/middleware"
)

type Deps struct {
	AuthHandler  *AuthHTTP
	UsersHandler *UsersHTTP
	Issuer       *tokens.Issuer
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMw := middleware.NewBearerAuth(d.Issuer)

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/refresh", d.AuthHandler.Refresh)

	private := e.Group("")
	private.Use(authMw.RequireAuth)

	private.POST("/logout", d.AuthHandler.Logout)
	private.POST("/change-password", d.AuthHandler.ChangePassword)
	private.GET("/validate", d.AuthHandler.Validate)

	users := e.Group("/users")
	users.Use(authMw.RequireAuth)

	// Self-service profile, any authenticated user.
	users.GET("/me", d.UsersHandler.Me)
	users.PUT("/me", d.UsersHandler.UpdateMe)

	// Doctors may look up individual users; everything else is ADMIN only.
	users.GET("/:id", d.UsersHandler.Get, authMw.RequireRole("ADMIN", "MEDECIN"))

	admin := users.Group("")
	admin.Use(authMw.RequireRole("ADMIN"))

	admin.GET("", d.UsersHandler.List)
	admin.PUT("/:id/profile", d.UsersHandler.UpdateProfile)
	admin.POST("/:id/roles", d.UsersHandler.AssignRole)
	admin.DELETE("/:id/roles/:name", d.UsersHandler.RemoveRole)
	admin.POST("/:id/deactivate", d.UsersHandler.Deactivate)
	admin.POST("/:id/activate", d.UsersHandler.Activate)
}
