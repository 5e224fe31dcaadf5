package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	pkg_hash "github.com/msellami/medigate/pkg/hash"
	"github.com/msellami/medigate/pkg/logging"
	"github.com/msellami/medigate/pkg/tokens"
	"github.com/msellami/medigate/services/auth/internal/models"
	"github.com/msellami/medigate/services/auth/internal/repo"
)

const minPasswordLen = 8

type AuthService struct {
	Repo   *repo.GormRepo
	Issuer *tokens.Issuer
	Events EventPublisher
}

type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Phone           string
	UserType        string
}

type ChangePasswordInput struct {
	CurrentPassword    string
	NewPassword        string
	ConfirmNewPassword string
}

// AuthResult is one freshly issued session: the access/refresh pair plus the
// identity it was issued for.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         *models.User
	Roles        []string
}

// resolveRole maps the requested user type onto a seeded role. Unrecognized
// values fall back to PATIENT rather than erroring.
func resolveRole(userType string) string {
	switch strings.ToUpper(userType) {
	case "MEDECIN", "DOCTOR":
		return "MEDECIN"
	default:
		return "PATIENT"
	}
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: format d'email invalide", ErrValidation)
	}
	return nil
}

func validateNewPassword(password, confirm string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: le mot de passe doit contenir au moins 8 caractères", ErrValidation)
	}
	if password != confirm {
		return fmt.Errorf("%w: les mots de passe ne correspondent pas", ErrValidation)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validateNewPassword(in.Password, in.ConfirmPassword); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, fmt.Errorf("%w: le prénom et le nom sont requis", ErrValidation)
	}

	if _, err := s.Repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	pwHash, err := pkg_hash.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:             uuid.New(),
		Email:          strings.ToLower(in.Email),
		PasswordHash:   pwHash,
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Phone:          strings.TrimSpace(in.Phone),
		IsActive:       true,
		EmailConfirmed: false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	roleName := resolveRole(in.UserType)
	if err := s.Repo.CreateWithRole(ctx, user, roleName); err != nil {
		return nil, err
	}

	// The identity is committed at this point. Token issuance failing now
	// leaves a registered-but-not-logged-in user, which the client resolves
	// by logging in.
	result, err := s.issueSession(ctx, user, []string{roleName})
	if err != nil {
		l.Error("token issuance after registration failed", "user_id", user.ID, "error", err)
		return nil, err
	}

	s.publishRegistered(ctx, user, roleName)

	l.Info("user registered", "user_id", user.ID, "role", roleName)
	return result, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.Repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	roles, err := s.Repo.RolesOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	// Prior refresh tokens stay live: concurrent sessions on several
	// devices are allowed.
	result, err := s.issueSession(ctx, user, roles)
	if err != nil {
		return nil, err
	}

	l.Info("user logged in", "user_id", user.ID)
	return result, nil
}

// Refresh rotates a refresh token: the presented value is revoked and a new
// pair is issued. The revocation is a conditional update, so of two
// concurrent calls with the same value exactly one wins; the loser gets
// ErrTokenInactive.
func (s *AuthService) Refresh(ctx context.Context, refreshValue string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	record, err := s.Repo.FindRefreshByValue(ctx, refreshValue)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	if !record.IsActive(time.Now().UTC()) {
		return nil, ErrTokenInactive
	}

	user, err := s.Repo.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTokenInactive
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	rows, err := s.Repo.ConditionalRevoke(ctx, refreshValue, "Token refresh")
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Someone else rotated or revoked it between the read and the
		// update. Never reissue for a token that lost that race.
		return nil, ErrTokenInactive
	}

	roles, err := s.Repo.RolesOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	result, err := s.issueSession(ctx, user, roles)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.SetReplacedBy(ctx, refreshValue, result.RefreshToken); err != nil {
		l.Warn("rotation chain pointer not recorded", "user_id", user.ID, "error", err)
	}

	l.Info("token rotated", "user_id", user.ID)
	return result, nil
}

// Logout revokes the presented refresh token. Unknown or already-revoked
// tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, refreshValue string) error {
	if refreshValue == "" {
		return nil
	}
	_, err := s.Repo.Revoke(ctx, refreshValue, "User logout")
	return err
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, in ChangePasswordInput) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", userID)

	if err := validateNewPassword(in.NewPassword, in.ConfirmNewPassword); err != nil {
		return err
	}

	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !pkg_hash.CheckPassword(user.PasswordHash, in.CurrentPassword) {
		return ErrInvalidCredentials
	}

	pwHash, err := pkg_hash.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePasswordHash(ctx, userID, pwHash); err != nil {
		return err
	}

	// Every live session ends here: all devices must re-authenticate with
	// the new password.
	revoked, err := s.Repo.RevokeAllForUser(ctx, userID, "Password changed")
	if err != nil {
		return err
	}

	l.Info("password changed", "sessions_revoked", revoked)
	return nil
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User, roles []string) (*AuthResult, error) {
	accessToken, expiresAt, err := s.Issuer.IssueAccess(user.ID, user.Email, roles)
	if err != nil {
		return nil, err
	}

	refreshValue, refreshExp, err := s.Issuer.NewRefresh()
	if err != nil {
		return nil, err
	}
	if _, err := s.Repo.SaveRefresh(ctx, user.ID, refreshValue, refreshExp); err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshValue,
		ExpiresAt:    expiresAt,
		User:         user,
		Roles:        roles,
	}, nil
}

// publishRegistered is best effort: a broker outage must never fail the
// registration it announces.
func (s *AuthService) publishRegistered(ctx context.Context, user *models.User, roleName string) {
	if s.Events == nil {
		return
	}

	event := UserRegisteredEvent{
		Type:         EventTypeUserRegistered,
		UserID:       user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		UserType:     roleName,
		RegisteredAt: time.Now().UTC(),
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Events.PublishEvent(pubCtx, user.ID.String(), event); err != nil {
		logging.FromContext(ctx).Error("user_registered publish failed", "user_id", user.ID, "error", err)
	}
}
