package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/msellami/medigate/services/auth/internal/models"
)

func seedUser(t *testing.T, r *GormRepo, email, roleName string) *models.User {
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, r.CreateWithRole(context.Background(), user, roleName))
	return user
}

func TestMigrateSeedsRoles(t *testing.T) {
	r := newTestRepo(t)

	roles, err := r.ListRoles(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	require.ElementsMatch(t, []string{"ADMIN", "MEDECIN", "PATIENT"}, names)
}

func TestFindByEmailCaseInsensitive(t *testing.T) {
	r := newTestRepo(t)
	seedUser(t, r, "alice@example.com", "PATIENT")

	found, err := r.FindByEmail(context.Background(), "ALICE@Example.COM")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", found.Email)

	_, err = r.FindByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateWithRoleUnknownRoleRollsBack(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        "bob@example.com",
		PasswordHash: "hash",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := r.CreateWithRole(ctx, user, "SUPERUSER")
	require.ErrorIs(t, err, ErrRoleNotFound)

	_, err = r.FindByEmail(ctx, "bob@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRolesOfAndAssign(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	user := seedUser(t, r, "alice@example.com", "PATIENT")

	roles, err := r.RolesOf(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"PATIENT"}, roles)

	require.NoError(t, r.AssignRole(ctx, user.ID, "admin"))
	require.ErrorIs(t, r.AssignRole(ctx, user.ID, "ADMIN"), ErrRoleAlreadyAssigned)
	require.ErrorIs(t, r.AssignRole(ctx, user.ID, "SUPERUSER"), ErrRoleNotFound)

	roles, err = r.RolesOf(ctx, user.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"ADMIN", "PATIENT"}, roles)

	require.NoError(t, r.RemoveRole(ctx, user.ID, "ADMIN"))
	require.ErrorIs(t, r.RemoveRole(ctx, user.ID, "ADMIN"), ErrNotFound)
}

func TestSetActiveUnknownUser(t *testing.T) {
	r := newTestRepo(t)
	require.ErrorIs(t, r.SetActive(context.Background(), uuid.New(), false), ErrNotFound)
}

func TestListUsersPaged(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		seedUser(t, r, email, "PATIENT")
	}

	page1, err := r.ListUsers(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)

	page2, err := r.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
}
