package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bingoloco/backend/internal/game/manager"
)

// StateHandler exposes the state-query surface
type StateHandler struct {
	gameManager *manager.GameManager
	logger      *zap.SugaredLogger
}

// NewStateHandler creates a new StateHandler
func NewStateHandler(gameManager *manager.GameManager, logger *zap.SugaredLogger) *StateHandler {
	return &StateHandler{
		gameManager: gameManager,
		logger:      logger,
	}
}

// GetAdminState returns the full operator projection, including pending
// players and the card pool
func (h *StateHandler) GetAdminState(c echo.Context) error {
	return c.JSON(http.StatusOK, h.gameManager.AdminState())
}

// GetPublicState returns the reduced remote-player projection
func (h *StateHandler) GetPublicState(c echo.Context) error {
	return c.JSON(http.StatusOK, h.gameManager.PublicState())
}

// LookupPlayer finds a player by name for the player login flow
func (h *StateHandler) LookupPlayer(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing player name")
	}

	player := h.gameManager.FindPlayerByName(name)
	if player == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Player not found")
	}

	return c.JSON(http.StatusOK, player)
}
