package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ruchikageeminda97/tms-api/internal/models"
	"github.com/ruchikageeminda97/tms-api/internal/service"
	"github.com/ruchikageeminda97/tms-api/pkg/config"
)

const testSecret = "middleware-test-secret"

func testAuthService() *service.AuthService {
	cfg := config.JWTConfig{Secret: testSecret, Expiration: time.Hour, Issuer: "tms-api-test"}
	return service.NewAuthService(nil, cfg, nil, zap.NewNop())
}

func signToken(t *testing.T, role models.UserRole, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := models.JWTClaims{
		Username: "nadeesha",
		Role:     role,
		Email:    "nadeesha@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "nadeesha",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newProtectedRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{JWT(testAuthService())}, handlers...)
	chain = append(chain, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/protected", chain...)
	r.DELETE("/protected", chain...)
	return r
}

func doRequest(r *gin.Engine, method, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTMissingHeader(t *testing.T) {
	r := newProtectedRouter()
	rec := doRequest(r, http.MethodGet, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMalformedHeader(t *testing.T) {
	r := newProtectedRouter()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTValidToken(t *testing.T) {
	r := newProtectedRouter()
	token := signToken(t, models.RoleAdmin, testSecret, time.Now().Add(time.Hour))
	rec := doRequest(r, http.MethodGet, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTExpiredToken(t *testing.T) {
	r := newProtectedRouter()
	token := signToken(t, models.RoleAdmin, testSecret, time.Now().Add(-time.Minute))
	rec := doRequest(r, http.MethodGet, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTWrongSecret(t *testing.T) {
	r := newProtectedRouter()
	token := signToken(t, models.RoleAdmin, "some-other-secret", time.Now().Add(time.Hour))
	rec := doRequest(r, http.MethodGet, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	r := newProtectedRouter(RequireRoles(models.RoleAdmin, models.RoleTeacher))
	token := signToken(t, models.RoleTeacher, testSecret, time.Now().Add(time.Hour))
	rec := doRequest(r, http.MethodGet, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRolesForbidsOtherRole(t *testing.T) {
	r := newProtectedRouter(RequireRoles(models.RoleAdmin))
	token := signToken(t, models.RoleStudent, testSecret, time.Now().Add(time.Hour))
	rec := doRequest(r, http.MethodDelete, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/bare", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bare", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
