package service

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ruchikageeminda97/tms-api/internal/models"
	"github.com/ruchikageeminda97/tms-api/pkg/config"
)

type mockUserRepo struct {
	users map[string]*models.User
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := m.users[username]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, ok := m.users[username]
	return ok, nil
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]*models.User)
	}
	cp := *user
	m.users[user.Username] = &cp
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:     "unit-test-secret",
		Expiration: time.Hour,
		Issuer:     "tms-api-test",
	}
}

func newAuthService(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, testJWTConfig(), validator.New(), zap.NewNop())
}

func validRegisterRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Username: "nadeesha",
		Password: "s3cret-pass",
		Role:     models.RoleAdmin,
		Email:    "nadeesha@example.com",
	}
}

func TestAuthServiceRegister(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	info, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)
	assert.Equal(t, "nadeesha", info.Username)
	assert.Equal(t, models.RoleAdmin, info.Role)

	stored := repo.users["nadeesha"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
}

func TestAuthServiceRegisterUsernameTaken(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	req := validRegisterRequest()
	req.Email = "other@example.com"
	_, err = svc.Register(context.Background(), req)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestAuthServiceRegisterEmailTaken(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	req := validRegisterRequest()
	req.Username = "other"
	_, err = svc.Register(context.Background(), req)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestAuthServiceRegisterRejectsUnknownRole(t *testing.T) {
	svc := newAuthService(&mockUserRepo{})

	req := validRegisterRequest()
	req.Role = "Superuser"
	_, err := svc.Register(context.Background(), req)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestAuthServiceLoginIssuesValidToken(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "nadeesha", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "nadeesha", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "nadeesha", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	svc := newAuthService(&mockUserRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "whatever"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestAuthServiceValidateTokenWrongSecret(t *testing.T) {
	repo := &mockUserRepo{}
	issuer := newAuthService(repo)

	_, err := issuer.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)
	resp, err := issuer.Login(context.Background(), models.LoginRequest{Username: "nadeesha", Password: "s3cret-pass"})
	require.NoError(t, err)

	otherCfg := testJWTConfig()
	otherCfg.Secret = "a-different-secret"
	verifier := NewAuthService(repo, otherCfg, validator.New(), zap.NewNop())

	_, err = verifier.ValidateToken(resp.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestAuthServiceMe(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), validRegisterRequest())
	require.NoError(t, err)

	info, err := svc.Me(context.Background(), "nadeesha")
	require.NoError(t, err)
	assert.Equal(t, "nadeesha@example.com", info.Email)

	_, err = svc.Me(context.Background(), "ghost")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}
