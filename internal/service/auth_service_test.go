package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mfauzi77/paudhi-backend/internal/models"
	appErrors "github.com/mfauzi77/paudhi-backend/pkg/errors"
)

func newAuthService(repo *userRepoStub) *AuthService {
	return NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "paudhi-backend",
	})
}

func seedUser(t *testing.T, repo *userRepoStub, username, password string, role models.UserRole, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	org := "KEMENKES"
	name := models.OrgName(org)
	user := &models.User{
		ID:           "u-" + username,
		Username:     username,
		Email:        username + "@example.go.id",
		PasswordHash: string(hash),
		Role:         role,
		Active:       active,
		Permissions:  models.DefaultPermissions(role),
	}
	if role == models.RoleOrgAdmin {
		user.OrgID = &org
		user.OrgName = &name
	}
	repo.users[user.ID] = user
	return user
}

func TestLoginWithUsernameAndEmail(t *testing.T) {
	repo := newUserRepoStub()
	svc := newAuthService(repo)
	seedUser(t, repo, "kemenkes_admin", "rahasia-123", models.RoleOrgAdmin, true)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Identifier: "kemenkes_admin", Password: "rahasia-123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleOrgAdmin, resp.User.Role)
	require.NotNil(t, resp.User.OrgID)
	assert.Equal(t, "KEMENKES", *resp.User.OrgID)

	resp, err = svc.Login(context.Background(), models.LoginRequest{Identifier: "kemenkes_admin@example.go.id", Password: "rahasia-123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newUserRepoStub()
	svc := newAuthService(repo)
	seedUser(t, repo, "admin_pusat", "rahasia-123", models.RoleAdmin, true)

	_, err := svc.Login(context.Background(), models.LoginRequest{Identifier: "admin_pusat", Password: "salah"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), models.LoginRequest{Identifier: "tidak_ada", Password: "rahasia-123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	repo := newUserRepoStub()
	svc := newAuthService(repo)
	seedUser(t, repo, "nonaktif", "rahasia-123", models.RoleAdmin, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Identifier: "nonaktif", Password: "rahasia-123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := newUserRepoStub()
	svc := newAuthService(repo)
	user := seedUser(t, repo, "kemenkes_admin", "rahasia-123", models.RoleOrgAdmin, true)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Identifier: "kemenkes_admin", Password: "rahasia-123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleOrgAdmin, claims.Role)
	require.NotNil(t, claims.OrgID)
	assert.Equal(t, "KEMENKES", *claims.OrgID)

	_, err = svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := newUserRepoStub()
	svc := newAuthService(repo)
	seedUser(t, repo, "admin_pusat", "rahasia-123", models.RoleAdmin, true)

	login, err := svc.Login(context.Background(), models.LoginRequest{Identifier: "admin_pusat", Password: "rahasia-123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old token was revoked by the rotation.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	repo := newUserRepoStub()
	svc := newAuthService(repo)
	user := seedUser(t, repo, "admin_pusat", "rahasia-123", models.RoleAdmin, true)

	login, err := svc.Login(context.Background(), models.LoginRequest{Identifier: "admin_pusat", Password: "rahasia-123"})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, models.ChangePasswordRequest{OldPassword: "salah", NewPassword: "sandi-baru"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, models.ChangePasswordRequest{OldPassword: "rahasia-123", NewPassword: "sandi-baru"}))

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Identifier: "admin_pusat", Password: "sandi-baru"})
	require.NoError(t, err)
}
