package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/msellami/medigate/pkg/tokens"
	"github.com/msellami/medigate/services/auth/internal/repo"
)

type capturedEvent struct {
	Key   string
	Event any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{Key: key, Event: event})
	return nil
}

func newTestService(t *testing.T) (*AuthService, *fakePublisher) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	require.NoError(t, repo.Migrate(db))

	issuer := &tokens.Issuer{
		Secret:     []byte("test-secret-test-secret-test-secret"),
		Issuer:     "medigate",
		Audience:   "medigate-api",
		AccessTTL:  time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	}

	pub := &fakePublisher{}
	svc := &AuthService{
		Repo:   &repo.GormRepo{DB: db},
		Issuer: issuer,
		Events: pub,
	}
	return svc, pub
}

func registerPatient(t *testing.T, svc *AuthService, email string) *AuthResult {
	res, err := svc.Register(context.Background(), RegisterInput{
		Email:           email,
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd!",
		FirstName:       "Alice",
		LastName:        "Martin",
		UserType:        "PATIENT",
	})
	require.NoError(t, err)
	return res
}

func TestRegisterIssuesSession(t *testing.T) {
	svc, pub := newTestService(t)

	res := registerPatient(t, svc, "alice@example.com")
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	require.Equal(t, []string{"PATIENT"}, res.Roles)
	require.Equal(t, "alice@example.com", res.User.Email)
	require.True(t, res.User.IsActive)
	require.NotEqual(t, "Passw0rd!", res.User.PasswordHash)

	claims, err := svc.Issuer.Parse(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, res.User.ID.String(), claims.Subject)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, []string{"PATIENT"}, claims.Roles)

	require.Len(t, pub.events, 1)
	evt, ok := pub.events[0].Event.(UserRegisteredEvent)
	require.True(t, ok)
	require.Equal(t, EventTypeUserRegistered, evt.Type)
	require.Equal(t, res.User.ID, evt.UserID)
}

func TestRegisterDuplicateEmailAnyCase(t *testing.T) {
	svc, _ := newTestService(t)
	registerPatient(t, svc, "alice@example.com")

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:           "ALICE@EXAMPLE.COM",
		Password:        "OtherPass1",
		ConfirmPassword: "OtherPass1",
		FirstName:       "Alice",
		LastName:        "Martin",
		UserType:        "PATIENT",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterRoleResolution(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		userType string
		want     string
	}{
		{"MEDECIN", "MEDECIN"},
		{"DOCTOR", "MEDECIN"},
		{"medecin", "MEDECIN"},
		{"PATIENT", "PATIENT"},
		{"", "PATIENT"},
		{"nurse", "PATIENT"},
	}
	for i, tc := range cases {
		res, err := svc.Register(context.Background(), RegisterInput{
			Email:           "user" + string(rune('a'+i)) + "@example.com",
			Password:        "Passw0rd!",
			ConfirmPassword: "Passw0rd!",
			FirstName:       "Test",
			LastName:        "User",
			UserType:        tc.userType,
		})
		require.NoError(t, err, "userType=%q", tc.userType)
		require.Equal(t, []string{tc.want}, res.Roles, "userType=%q", tc.userType)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)

	base := RegisterInput{
		Email:           "bob@example.com",
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd!",
		FirstName:       "Bob",
		LastName:        "Durand",
	}

	bad := base
	bad.Email = "not-an-email"
	_, err := svc.Register(context.Background(), bad)
	require.ErrorIs(t, err, ErrValidation)

	bad = base
	bad.Password, bad.ConfirmPassword = "short", "short"
	_, err = svc.Register(context.Background(), bad)
	require.ErrorIs(t, err, ErrValidation)

	bad = base
	bad.ConfirmPassword = "Different1!"
	_, err = svc.Register(context.Background(), bad)
	require.ErrorIs(t, err, ErrValidation)

	bad = base
	bad.FirstName = "  "
	_, err = svc.Register(context.Background(), bad)
	require.ErrorIs(t, err, ErrValidation)
}

func TestLoginInvalidCredentialsIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)
	registerPatient(t, svc, "alice@example.com")

	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "Passw0rd!")
	_, errWrongPw := svc.Login(context.Background(), "alice@example.com", "WrongPass1")

	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	require.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	require.Equal(t, errUnknown, errWrongPw)
}

func TestLoginCaseInsensitiveEmail(t *testing.T) {
	svc, _ := newTestService(t)
	registerPatient(t, svc, "alice@example.com")

	res, err := svc.Login(context.Background(), "ALICE@EXAMPLE.COM", "Passw0rd!")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", res.User.Email)
	require.NotNil(t, res.User.LastLoginAt)
}

func TestLoginKeepsPriorSessionsAlive(t *testing.T) {
	svc, _ := newTestService(t)
	first := registerPatient(t, svc, "alice@example.com")

	_, err := svc.Login(context.Background(), "alice@example.com", "Passw0rd!")
	require.NoError(t, err)

	// The registration session still rotates fine after a second login.
	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRotatesSingleUse(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	first := registerPatient(t, svc, "alice@example.com")

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.NotEmpty(t, second.AccessToken)

	// The rotated-out value is burned.
	_, err = svc.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrTokenInactive)

	// The successor works exactly once.
	third, err := svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, second.RefreshToken)
	require.ErrorIs(t, err, ErrTokenInactive)
	require.NotEmpty(t, third.RefreshToken)
}

func TestRefreshRecordsRotationChain(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	first := registerPatient(t, svc, "alice@example.com")

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)

	old, err := svc.Repo.FindRefreshByValue(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.True(t, old.IsRevoked())
	require.Equal(t, "Token refresh", old.RevokedReason)
	require.Equal(t, tokens.Sha256Hex(second.RefreshToken), old.ReplacedBy)
}

func TestRefreshUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Refresh(context.Background(), "never-issued")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRefreshRejectsDeactivatedOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	res := registerPatient(t, svc, "alice@example.com")

	require.NoError(t, svc.Deactivate(ctx, res.User.ID))

	_, err := svc.Refresh(ctx, res.RefreshToken)
	require.Error(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "Passw0rd!")
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	res := registerPatient(t, svc, "alice@example.com")

	require.NoError(t, svc.Logout(ctx, res.RefreshToken))
	require.NoError(t, svc.Logout(ctx, res.RefreshToken))
	require.NoError(t, svc.Logout(ctx, "unknown-value"))
	require.NoError(t, svc.Logout(ctx, ""))

	_, err := svc.Refresh(ctx, res.RefreshToken)
	require.ErrorIs(t, err, ErrTokenInactive)
}

func TestChangePasswordRevokesEverySession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	first := registerPatient(t, svc, "alice@example.com")
	second, err := svc.Login(ctx, "alice@example.com", "Passw0rd!")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, first.User.ID, ChangePasswordInput{
		CurrentPassword:    "Passw0rd!",
		NewPassword:        "NewPassw0rd!",
		ConfirmNewPassword: "NewPassw0rd!",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrTokenInactive)
	_, err = svc.Refresh(ctx, second.RefreshToken)
	require.ErrorIs(t, err, ErrTokenInactive)

	_, err = svc.Login(ctx, "alice@example.com", "Passw0rd!")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice@example.com", "NewPassw0rd!")
	require.NoError(t, err)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	res := registerPatient(t, svc, "alice@example.com")

	err := svc.ChangePassword(ctx, res.User.ID, ChangePasswordInput{
		CurrentPassword:    "WrongPass1",
		NewPassword:        "NewPassw0rd!",
		ConfirmNewPassword: "NewPassw0rd!",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Nothing was revoked.
	_, err = svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
}

func TestAssignAndRemoveRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	res := registerPatient(t, svc, "alice@example.com")

	require.NoError(t, svc.AssignRole(ctx, res.User.ID, "MEDECIN"))
	require.ErrorIs(t, svc.AssignRole(ctx, res.User.ID, "MEDECIN"), ErrRoleAlreadyAssigned)
	require.ErrorIs(t, svc.AssignRole(ctx, res.User.ID, "SUPERUSER"), ErrRoleNotFound)

	_, roles, err := svc.GetUser(ctx, res.User.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"PATIENT", "MEDECIN"}, roles)

	require.NoError(t, svc.RemoveRole(ctx, res.User.ID, "MEDECIN"))
	_, roles, err = svc.GetUser(ctx, res.User.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"PATIENT"}, roles)
}

func TestDeactivateThenActivate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	res := registerPatient(t, svc, "alice@example.com")

	require.NoError(t, svc.Deactivate(ctx, res.User.ID))
	_, err := svc.Login(ctx, "alice@example.com", "Passw0rd!")
	require.ErrorIs(t, err, ErrAccountDisabled)

	require.NoError(t, svc.Activate(ctx, res.User.ID))
	_, err = svc.Login(ctx, "alice@example.com", "Passw0rd!")
	require.NoError(t, err)
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	res := registerPatient(t, svc, "alice@example.com")

	updated, err := svc.UpdateProfile(ctx, res.User.ID, UpdateProfileInput{Phone: "0601020304"})
	require.NoError(t, err)
	require.Equal(t, "Alice", updated.FirstName)
	require.Equal(t, "Martin", updated.LastName)
	require.Equal(t, "0601020304", updated.Phone)
}
