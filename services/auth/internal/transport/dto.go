package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/msellami/medigate/services/auth/internal/models"
)

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Phone           string `json:"phone,omitempty"`
	UserType        string `json:"userType"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RevokeTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type AssignRoleRequest struct {
	RoleName string `json:"roleName"`
}

type UserDTO struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"firstName,omitempty"`
	LastName       string     `json:"lastName,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	IsActive       bool       `json:"isActive"`
	EmailConfirmed bool       `json:"emailConfirmed"`
	Roles          []string   `json:"roles"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
}

// AuthResponse is the wire shape of register/login/refresh: a stable success
// flag plus a human-readable message, token material only on success.
type AuthResponse struct {
	Success      bool       `json:"success"`
	Message      string     `json:"message"`
	AccessToken  string     `json:"accessToken,omitempty"`
	RefreshToken string     `json:"refreshToken,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	User         *UserDTO   `json:"user,omitempty"`
}

type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ToUserDTO(user *models.User, roles []string) *UserDTO {
	if roles == nil {
		roles = []string{}
	}
	return &UserDTO{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Phone:          user.Phone,
		IsActive:       user.IsActive,
		EmailConfirmed: user.EmailConfirmed,
		Roles:          roles,
		CreatedAt:      user.CreatedAt,
		LastLoginAt:    user.LastLoginAt,
	}
}
