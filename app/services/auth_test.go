package services_test

import (
	"testing"

	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/pkg/testkit"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*services.AuthService, *repositories.UserRepository) {
	t.Helper()
	db := testkit.NewDB(t, &models.User{})
	users := repositories.NewUserRepository(db)
	return services.NewAuthService(users), users
}

func registerInput() services.RegisterInput {
	return services.RegisterInput{
		Username:             "eater",
		Email:                "eater@example.com",
		Password:             "secret-pass",
		PasswordConfirmation: "secret-pass",
		Address:              "1 rue de la Paix",
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, users := newAuthService(t)

	user, err := svc.Register(registerInput())
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, user.Role)
	require.NotEqual(t, "secret-pass", user.Password, "password must be stored hashed")

	stored, err := users.FindByEmail("eater@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, stored.ID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(registerInput())
	require.NoError(t, err)

	dup := registerInput()
	dup.Username = "eater2"
	_, err = svc.Register(dup)
	require.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(registerInput())
	require.NoError(t, err)

	dup := registerInput()
	dup.Email = "eater2@example.com"
	_, err = svc.Register(dup)
	require.ErrorIs(t, err, services.ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(registerInput())
	require.NoError(t, err)

	user, err := svc.Login("eater@example.com", "secret-pass")
	require.NoError(t, err)
	require.Equal(t, "eater", user.Username)

	_, err = svc.Login("eater@example.com", "wrong-pass")
	require.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Unknown email and wrong password look identical to the caller.
	_, err = svc.Login("nobody@example.com", "secret-pass")
	require.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestIssueToken(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(registerInput())
	require.NoError(t, err)

	token, err := svc.IssueToken("eater@example.com", "secret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = svc.IssueToken("eater@example.com", "wrong-pass")
	require.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newAuthService(t)

	user, err := svc.Register(registerInput())
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(user.ID, services.ProfileInput{
		Address: "8 avenue des Gobelins",
		Phone:   "+33 6 12 34 56 78",
	})
	require.NoError(t, err)
	require.Equal(t, "8 avenue des Gobelins", updated.Address)
	require.Equal(t, "+33 6 12 34 56 78", updated.Phone)

	_, err = svc.UpdateProfile(9999, services.ProfileInput{})
	require.ErrorIs(t, err, services.ErrNotFound)
}
