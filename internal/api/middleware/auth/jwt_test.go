package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func runProtected(t *testing.T, authorization, query string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, JWTMiddleware(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/protected"+query, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddlewareValidToken(t *testing.T) {
	token, err := GenerateJWT(testSecret, 1)
	require.NoError(t, err)

	rec := runProtected(t, "Bearer "+token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTMiddlewareTokenViaQueryParam(t *testing.T) {
	token, err := GenerateJWT(testSecret, 1)
	require.NoError(t, err)

	rec := runProtected(t, "", "?token="+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTMiddlewareMissingToken(t *testing.T) {
	rec := runProtected(t, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareBadToken(t *testing.T) {
	rec := runProtected(t, "Bearer not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareWrongSecret(t *testing.T) {
	token, err := GenerateJWT("other-secret", 1)
	require.NoError(t, err)

	rec := runProtected(t, "Bearer "+token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareWrongRole(t *testing.T) {
	claims := &Claims{
		Role: "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec := runProtected(t, "Bearer "+token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestJWTMiddlewareExpiredToken(t *testing.T) {
	claims := &Claims{
		Role: AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec := runProtected(t, "Bearer "+token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
