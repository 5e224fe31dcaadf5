package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/msellami/medigate/pkg/logging"
	authmw "github.com/msellami/medigate/services/auth/internal/middleware"
	"github.com/msellami/medigate/services/auth/internal/service"
	"github.com/msellami/medigate/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func authOK(message string, res *service.AuthResult) transport.AuthResponse {
	return transport.AuthResponse{
		Success:      true,
		Message:      message,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    &res.ExpiresAt,
		User:         transport.ToUserDTO(res.User, res.Roles),
	}
}

func authFail(message string) transport.AuthResponse {
	return transport.AuthResponse{Success: false, Message: message}
}

// authErrorResponse maps expected orchestrator failures onto status + body.
// Unexpected errors become a generic 500; details stay in the logs.
func authErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, authFail("Données invalides"))
	case errors.Is(err, service.ErrEmailTaken):
		return c.JSON(http.StatusBadRequest, authFail("Un utilisateur avec cet email existe déjà"))
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, authFail("Email ou mot de passe incorrect"))
	case errors.Is(err, service.ErrAccountDisabled):
		return c.JSON(http.StatusUnauthorized, authFail("Ce compte a été désactivé"))
	case errors.Is(err, service.ErrTokenNotFound):
		return c.JSON(http.StatusUnauthorized, authFail("Token invalide"))
	case errors.Is(err, service.ErrTokenInactive):
		return c.JSON(http.StatusUnauthorized, authFail("Token expiré ou révoqué"))
	default:
		logging.FromContext(c.Request().Context()).Error("auth request failed", "error", err)
		return c.JSON(http.StatusInternalServerError, authFail("Une erreur est survenue"))
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, authFail("Données invalides"))
	}

	res, err := h.Svc.Register(ctx, service.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		UserType:        req.UserType,
	})
	if err != nil {
		return authErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, authOK("Inscription réussie", res))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, authFail("Données invalides"))
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return authErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, authOK("Connexion réussie", res))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.RefreshTokenRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, authFail("Refresh token requis"))
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return authErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, authOK("Token rafraîchi", res))
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.RevokeTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "Données invalides"})
	}

	if err := h.Svc.Logout(ctx, req.RefreshToken); err != nil {
		logging.FromContext(ctx).Error("logout failed", "error", err)
		return c.JSON(http.StatusInternalServerError, transport.APIResponse{Success: false, Message: "Une erreur est survenue"})
	}

	return c.JSON(http.StatusOK, transport.APIResponse{Success: true, Message: "Token révoqué avec succès", Data: true})
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, transport.APIResponse{Success: false, Message: "Utilisateur non authentifié"})
	}

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "Données invalides"})
	}

	err = h.Svc.ChangePassword(ctx, userID, service.ChangePasswordInput{
		CurrentPassword:    req.CurrentPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, transport.APIResponse{Success: true, Message: "Mot de passe modifié avec succès", Data: true})
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "Données invalides"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "Mot de passe actuel incorrect"})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "Utilisateur non trouvé"})
	default:
		logging.FromContext(ctx).Error("change password failed", "error", err)
		return c.JSON(http.StatusInternalServerError, transport.APIResponse{Success: false, Message: "Une erreur est survenue"})
	}
}

// Validate echoes the identity decoded from the presented access token.
func (h *AuthHTTP) Validate(c echo.Context) error {
	userID, _ := c.Get(authmw.CtxUserID).(string)
	email, _ := c.Get(authmw.CtxEmail).(string)
	roles, _ := c.Get(authmw.CtxRoles).([]string)

	return c.JSON(http.StatusOK, transport.APIResponse{
		Success: true,
		Message: "Token valide",
		Data: echo.Map{
			"userId": userID,
			"email":  email,
			"roles":  roles,
		},
	})
}

func currentUserID(c echo.Context) (uuid.UUID, error) {
	raw, _ := c.Get(authmw.CtxUserID).(string)
	return uuid.Parse(raw)
}
