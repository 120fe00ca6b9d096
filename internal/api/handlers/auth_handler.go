package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bingoloco/backend/internal/api/middleware/auth"
	"github.com/bingoloco/backend/internal/config"
)

// AuthHandler handles operator authentication
type AuthHandler struct {
	cfg          *config.Config
	logger       *zap.SugaredLogger
	passwordHash []byte
}

// NewAuthHandler creates a new AuthHandler. The configured admin password is
// hashed once at startup; only the hash is kept in memory afterwards.
func NewAuthHandler(cfg *config.Config, logger *zap.SugaredLogger) (*AuthHandler, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{
		cfg:          cfg,
		logger:       logger,
		passwordHash: hash,
	}, nil
}

// LoginRequest represents an operator login request
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	Token string `json:"token"`
}

// Login handles operator login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid password")
	}

	token, err := auth.GenerateJWT(h.cfg.JWT.Secret, h.cfg.JWT.Expiration)
	if err != nil {
		h.logger.Errorf("Failed to generate JWT: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, AuthResponse{Token: token})
}
