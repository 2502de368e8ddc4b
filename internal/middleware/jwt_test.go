package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/classgrid/classgrid-api/internal/service"
)

func newProtectedRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	authSvc := service.NewAuthService(nil, nil, nil, service.AuthConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "classgrid",
	})

	router := gin.New()
	router.GET("/protected", JWT(authSvc), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/admin-only", JWT(authSvc), RequireRole("admin"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	now := time.Now().UTC()
	claims := service.Claims{
		Role:  role,
		Email: "user@school.test",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "classgrid",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestJWTMissingHeader(t *testing.T) {
	router := newProtectedRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestJWTMalformedHeader(t *testing.T) {
	router := newProtectedRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestJWTValidToken(t *testing.T) {
	router := newProtectedRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "staff"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestRequireRoleBlocksOtherRoles(t *testing.T) {
	router := newProtectedRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "staff"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRequireRoleAllowsAdmin(t *testing.T) {
	router := newProtectedRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "admin"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
}
