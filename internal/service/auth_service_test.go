package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/classgrid/classgrid-api/internal/dto"
	"github.com/classgrid/classgrid-api/internal/models"
	appErrors "github.com/classgrid/classgrid-api/pkg/errors"
)

type stubUserRepo struct {
	user        *models.User
	lastLoginID string
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	s.lastLoginID = id
	return nil
}

func newAuthFixture(t *testing.T, active bool) (*AuthService, *stubUserRepo) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubUserRepo{user: &models.User{
		ID:           "user-1",
		Email:        "admin@school.test",
		PasswordHash: string(hash),
		Role:         "admin",
		Active:       active,
	}}
	svc := NewAuthService(repo, nil, nil, AuthConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "classgrid",
	})
	return svc, repo
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc, repo := newAuthFixture(t, true)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "admin@school.test",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.Equal(t, "Bearer", resp.TokenType)
	require.Equal(t, int64(3600), resp.ExpiresIn)
	require.Equal(t, "user-1", repo.lastLoginID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "admin", claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t, true)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "admin@school.test",
		Password: "wrong-password",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t, true)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@school.test",
		Password: "s3cret-pass",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	svc, _ := newAuthFixture(t, false)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "admin@school.test",
		Password: "s3cret-pass",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t, true)

	_, err := svc.ValidateToken("not-a-token")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
