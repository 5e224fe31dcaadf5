package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/msellami/medigate/pkg/logging"
	"github.com/msellami/medigate/services/auth/internal/models"
	"github.com/msellami/medigate/services/auth/internal/repo"
)

type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Phone     string
}

func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, []string, error) {
	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	roles, err := s.Repo.RolesOf(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, roles, nil
}

func (s *AuthService) ListUsers(ctx context.Context, page, pageSize int) ([]models.User, error) {
	return s.Repo.ListUsers(ctx, page, pageSize)
}

// UpdateProfile only touches fields that were actually supplied.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if v := strings.TrimSpace(in.FirstName); v != "" {
		user.FirstName = v
	}
	if v := strings.TrimSpace(in.LastName); v != "" {
		user.LastName = v
	}
	if v := strings.TrimSpace(in.Phone); v != "" {
		user.Phone = v
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	if _, err := s.Repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	err := s.Repo.AssignRole(ctx, userID, roleName)
	switch {
	case errors.Is(err, repo.ErrRoleNotFound):
		return ErrRoleNotFound
	case errors.Is(err, repo.ErrRoleAlreadyAssigned):
		return ErrRoleAlreadyAssigned
	default:
		return err
	}
}

func (s *AuthService) RemoveRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	err := s.Repo.RemoveRole(ctx, userID, roleName)
	switch {
	case errors.Is(err, repo.ErrRoleNotFound):
		return ErrRoleNotFound
	case errors.Is(err, repo.ErrNotFound):
		return ErrUserNotFound
	default:
		return err
	}
}

// Deactivate flips the active flag and ends every live session. Deactivation
// is logical: the row is never deleted.
func (s *AuthService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "auth.deactivate", "user_id", userID)

	if err := s.Repo.SetActive(ctx, userID, false); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	revoked, err := s.Repo.RevokeAllForUser(ctx, userID, "Account deactivated")
	if err != nil {
		return err
	}

	l.Info("account deactivated", "sessions_revoked", revoked)
	return nil
}

func (s *AuthService) Activate(ctx context.Context, userID uuid.UUID) error {
	if err := s.Repo.SetActive(ctx, userID, true); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
