package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/msellami/medigate/pkg/logging"
	"github.com/msellami/medigate/services/auth/internal/service"
	"github.com/msellami/medigate/services/auth/internal/transport"
)

// UsersHTTP is the administrative user-management surface (ADMIN only).
type UsersHTTP struct {
	Svc *service.AuthService
}

func usersErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, transport.APIResponse{Success: false, Message: "Utilisateur non trouvé"})
	case errors.Is(err, service.ErrRoleNotFound):
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "Rôle non trouvé"})
	case errors.Is(err, service.ErrRoleAlreadyAssigned):
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "L'utilisateur a déjà ce rôle"})
	default:
		logging.FromContext(c.Request().Context()).Error("users request failed", "error", err)
		return c.JSON(http.StatusInternalServerError, transport.APIResponse{Success: false, Message: "Une erreur est survenue"})
	}
}

func pathUserID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

func intQueryDefault(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Me returns the profile of the authenticated user.
func (h *UsersHTTP) Me(c echo.Context) error {
	id, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, transport.APIResponse{Success: false, Message: "Utilisateur non authentifié"})
	}

	user, roles, err := h.Svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return usersErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, transport.APIResponse{Success: true, Data: transport.ToUserDTO(user, roles)})
}

// UpdateMe lets the authenticated user update their own profile.
func (h *UsersHTTP) UpdateMe(c echo.Context) error {
	id, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, transport.APIResponse{Success: false, Message: "Utilisateur non authentifié"})
	}

	var req transport.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "Données invalides"})
	}

	user, err := h.Svc.UpdateProfile(c.Request().Context(), id, service.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return usersErrorResponse(c, err)
	}

	roles, err := h.Svc.Repo.RolesOf(c.Request().Context(), id)
	if err != nil {
		return usersErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, transport.APIResponse{
		Success: true,
		Message: "Profil mis à jour avec succès",
		Data:    transport.ToUserDTO(user, roles),
	})
}

func (h *UsersHTTP) Get(c echo.Context) error {
	id, err := pathUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "Identifiant invalide"})
	}

	user, roles, err := h.Svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return usersErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, transport.APIResponse{Success: true, Data: transport.ToUserDTO(user, roles)})
}

func (h *UsersHTTP) List(c echo.Context) error {
	page := intQueryDefault(c, "page", 1)
	pageSize := intQueryDefault(c, "pageSize", 20)

	users, err := h.Svc.ListUsers(c.Request().Context(), page, pageSize)
	if err != nil {
		return usersErrorResponse(c, err)
	}

	out := make([]*transport.UserDTO, 0, len(users))
	for i := range users {
		roles, err := h.Svc.Repo.RolesOf(c.Request().Context(), users[i].ID)
		if err != nil {
			return usersErrorResponse(c, err)
		}
		out = append(out, transport.ToUserDTO(&users[i], roles))
	}
	return c.JSON(http.StatusOK, transport.APIResponse{Success: true, Data: out})
}

func (h *UsersHTTP) UpdateProfile(c echo.Context) error {
	id, err := pathUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "Identifiant invalide"})
	}

	var req transport.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "Données invalides"})
	}

	user, err := h.Svc.UpdateProfile(c.Request().Context(), id, service.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return usersErrorResponse(c, err)
	}

	roles, err := h.Svc.Repo.RolesOf(c.Request().Context(), id)
	if err != nil {
		return usersErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, transport.APIResponse{
		Success: true,
		Message: "Profil mis à jour avec succès",
		Data:    transport.ToUserDTO(user, roles),
	})
}

func (h *UsersHTTP) AssignRole(c echo.Context) error {
	id, err := pathUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "Identifiant invalide"})
	}

	var req transport.AssignRoleRequest
	if err := c.Bind(&req); err != nil || req.RoleName == "" {
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "Données invalides"})
	}

	if err := h.Svc.AssignRole(c.Request().Context(), id, req.RoleName); err != nil {
		return usersErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, transport.APIResponse{Success: true, Message: "Rôle assigné avec succès", Data: true})
}

func (h *UsersHTTP) RemoveRole(c echo.Context) error {
	id, err := pathUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "Identifiant invalide"})
	}

	if err := h.Svc.RemoveRole(c.Request().Context(), id, c.Param("name")); err != nil {
		return usersErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, transport.APIResponse{Success: true, Message: "Rôle retiré avec succès", Data: true})
}

func (h *UsersHTTP) Deactivate(c echo.Context) error {
	id, err := pathUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "Identifiant invalide"})
	}

	if err := h.Svc.Deactivate(c.Request().Context(), id); err != nil {
		return usersErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, transport.APIResponse{Success: true, Message: "Compte désactivé", Data: true})
}

func (h *UsersHTTP) Activate(c echo.Context) error {
	id, err := pathUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, transport.APIResponse{Success: false, Message: "Identifiant invalide"})
	}

	if err := h.Svc.Activate(c.Request().Context(), id); err != nil {
		return usersErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, transport.APIResponse{Success: true, Message: "Compte réactivé", Data: true})
}
