package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/testhelpers"
	"github.com/platefeed/backend/internal/types"
)

func newTestAuthService(t *testing.T) *AuthService {
	return NewAuthService(testhelpers.SetupTestDB(t), "test-secret")
}

func registerRequest(email string) *types.CreateUserRequest {
	return &types.CreateUserRequest{
		Email:     email,
		Username:  email,
		FirstName: "Test",
		LastName:  "User",
		Password:  "password123",
	}
}

func TestRegisterCreatesCollections(t *testing.T) {
	svc := newTestAuthService(t)

	user, err := svc.Register(registerRequest("new@example.com"))
	require.NoError(t, err)

	// Favorites and cart must exist from the moment the user does
	var favorites models.FavoriteRecipe
	assert.NoError(t, svc.db.First(&favorites, "user_id = ?", user.ID).Error)

	var cart models.ShoppingCart
	assert.NoError(t, svc.db.First(&cart, "user_id = ?", user.ID).Error)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Register(registerRequest("taken@example.com"))
	require.NoError(t, err)

	_, err = svc.Register(registerRequest("taken@example.com"))
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := newTestAuthService(t)

	user, err := svc.Register(registerRequest("login@example.com"))
	require.NoError(t, err)

	token, err := svc.Login("login@example.com", "password123")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "login@example.com", claims.Email)
}

func TestLoginGenericErrorForBothFailures(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Register(registerRequest("generic@example.com"))
	require.NoError(t, err)

	_, badPassword := svc.Login("generic@example.com", "wrong")
	_, badEmail := svc.Login("nobody@example.com", "password123")

	// The caller must not learn which credential was wrong
	assert.ErrorIs(t, badPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, badEmail, ErrInvalidCredentials)
}

func TestSetPassword(t *testing.T) {
	svc := newTestAuthService(t)

	user, err := svc.Register(registerRequest("rotate@example.com"))
	require.NoError(t, err)

	err = svc.SetPassword(user.ID, "wrong-current", "newpassword123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.SetPassword(user.ID, "password123", "newpassword123"))

	_, err = svc.Login("rotate@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login("rotate@example.com", "newpassword123")
	assert.NoError(t, err)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := newTestAuthService(t)
	other := NewAuthService(svc.db, "other-secret")

	user, err := svc.Register(registerRequest("tamper@example.com"))
	require.NoError(t, err)

	token, err := other.GenerateToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
