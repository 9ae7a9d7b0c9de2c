package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brightcart/backend/internal/infrastructure/auth"
	"github.com/brightcart/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAuthSecret = "middleware-test-secret-key-padded-to-32ch"

func testVerifier() *auth.TokenVerifier {
	return auth.NewTokenVerifier(config.AuthConfig{
		Secret: testAuthSecret,
		Leeway: 30 * time.Second,
	})
}

func signTestToken(t *testing.T, subject string, expiresIn time.Duration) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
		Email: "user@example.com",
		Role:  "standard",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testAuthSecret))
	require.NoError(t, err)
	return signed
}

func setupAuthRouter(cfg AuthMiddlewareConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireAuthWithConfig(cfg))
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"external_id": GetExternalID(c),
			"token":       GetBearerToken(c),
		})
	})
	r.GET("/public", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRequireAuthValidToken(t *testing.T) {
	r := setupAuthRouter(AuthMiddlewareConfig{Verifier: testVerifier(), Logger: zap.NewNop()})
	tokenString := signTestToken(t, "idp-user-1", time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+tokenString)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "idp-user-1")
	assert.Contains(t, w.Body.String(), tokenString)
}

func TestRequireAuthMissingHeader(t *testing.T) {
	r := setupAuthRouter(AuthMiddlewareConfig{Verifier: testVerifier()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	r := setupAuthRouter(AuthMiddlewareConfig{Verifier: testVerifier()})

	for _, header := range []string{"Basic abc123", "Bearer", "Bearer "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, header)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	verifier := auth.NewTokenVerifier(config.AuthConfig{
		Secret: testAuthSecret,
		Leeway: time.Second,
	})
	r := setupAuthRouter(AuthMiddlewareConfig{Verifier: verifier})
	tokenString := signTestToken(t, "idp-user-1", -time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+tokenString)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestRequireAuthInvalidSignature(t *testing.T) {
	r := setupAuthRouter(AuthMiddlewareConfig{Verifier: testVerifier()})

	claims := jwt.RegisteredClaims{
		Subject:   "idp-user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte("a-completely-different-secret-key-000000"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+tokenString)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_INVALID")
}

func TestRequireAuthSkipPaths(t *testing.T) {
	r := setupAuthRouter(AuthMiddlewareConfig{
		Verifier:  testVerifier(),
		SkipPaths: []string{"/public"},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthSkipPathPrefixes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireAuthWithConfig(AuthMiddlewareConfig{
		Verifier:         testVerifier(),
		SkipPathPrefixes: []string{"/swagger"},
	}))
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetAuthHelpersWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetAuthClaims(c))
	assert.Empty(t, GetExternalID(c))
	assert.Empty(t, GetBearerToken(c))
}
