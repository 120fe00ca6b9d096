package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bingoloco/backend/internal/config"
)

func TestLogin(t *testing.T) {
	cfg := &config.Config{
		JWT:   config.JWTConfig{Secret: "test-secret", Expiration: 1},
		Admin: config.AdminConfig{Password: "hunter2"},
	}

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	h, err := NewAuthHandler(cfg, zap.NewNop().Sugar())
	require.NoError(t, err)

	rec := doJSON(e, h.Login, http.MethodPost, "/api/v1/auth/login", `{"password":"hunter2"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestLoginWrongPassword(t *testing.T) {
	cfg := &config.Config{
		JWT:   config.JWTConfig{Secret: "test-secret", Expiration: 1},
		Admin: config.AdminConfig{Password: "hunter2"},
	}

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	h, err := NewAuthHandler(cfg, zap.NewNop().Sugar())
	require.NoError(t, err)

	rec := doJSON(e, h.Login, http.MethodPost, "/api/v1/auth/login", `{"password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, h.Login, http.MethodPost, "/api/v1/auth/login", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
