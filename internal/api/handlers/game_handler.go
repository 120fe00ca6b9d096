package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bingoloco/backend/internal/game/manager"
	"github.com/bingoloco/backend/internal/game/models"
)

// GameHandler exposes the operator command surface
type GameHandler struct {
	gameManager *manager.GameManager
	logger      *zap.SugaredLogger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(gameManager *manager.GameManager, logger *zap.SugaredLogger) *GameHandler {
	return &GameHandler{
		gameManager: gameManager,
		logger:      logger,
	}
}

// AddPlayerRequest represents a reservation request
type AddPlayerRequest struct {
	Name    string   `json:"name" validate:"required"`
	CardIDs []string `json:"cardIds" validate:"required,min=1"`
}

// PoolSizeRequest represents a pool-size update
type PoolSizeRequest struct {
	Size int `json:"size" validate:"required,min=1"`
}

// CardPriceRequest represents a card-price update
type CardPriceRequest struct {
	Price float64 `json:"price" validate:"required,gt=0"`
}

// DistributionRequest updates the percentage for one prize tier. The tiers
// are not forced to sum to 100; the UI only warns about that.
type DistributionRequest struct {
	Tier       string  `json:"tier" validate:"required,oneof=first second third house"`
	Percentage float64 `json:"percentage" validate:"min=0,max=100"`
}

// DauberRequest represents a marker change
type DauberRequest struct {
	Dauber string `json:"dauber" validate:"required,oneof=star flame diamond clover"`
}

// AddPlayer creates a pending reservation
func (h *GameHandler) AddPlayer(c echo.Context) error {
	var req AddPlayerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	player, err := h.gameManager.AddPlayer(req.Name, req.CardIDs)
	if err != nil {
		switch {
		case errors.Is(err, manager.ErrDuplicateName), errors.Is(err, manager.ErrCardConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, manager.ErrUnknownCard), errors.Is(err, manager.ErrEmptyName), errors.Is(err, manager.ErrNoCards):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			h.logger.Errorf("Failed to add player: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add player")
		}
	}

	return c.JSON(http.StatusCreated, player)
}

// ConfirmPayment confirms a pending reservation; already-confirmed or
// unknown players are a no-op
func (h *GameHandler) ConfirmPayment(c echo.Context) error {
	playerID := c.Param("playerId")
	if playerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing player ID")
	}

	h.gameManager.ConfirmPayment(playerID)
	return c.NoContent(http.StatusNoContent)
}

// CancelOrder removes a player and releases their cards
func (h *GameHandler) CancelOrder(c echo.Context) error {
	playerID := c.Param("playerId")
	if playerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing player ID")
	}

	h.gameManager.CancelOrder(playerID)
	return c.NoContent(http.StatusNoContent)
}

// ChangeDauber updates a player's marker choice
func (h *GameHandler) ChangeDauber(c echo.Context) error {
	playerID := c.Param("playerId")
	if playerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing player ID")
	}

	var req DauberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.gameManager.ChangeDauber(playerID, models.Dauber(req.Dauber))
	return c.NoContent(http.StatusNoContent)
}

// GeneratePool regenerates the card pool, clearing all players
func (h *GameHandler) GeneratePool(c echo.Context) error {
	h.gameManager.GeneratePool()
	return c.NoContent(http.StatusNoContent)
}

// SetPoolSize updates the configured pool size
func (h *GameHandler) SetPoolSize(c echo.Context) error {
	var req PoolSizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.gameManager.SetCardPoolSize(req.Size)
	return c.NoContent(http.StatusNoContent)
}

// SetCardPrice updates the per-card price
func (h *GameHandler) SetCardPrice(c echo.Context) error {
	var req CardPriceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.gameManager.SetCardPrice(req.Price)
	return c.NoContent(http.StatusNoContent)
}

// UpdateDistribution sets one prize tier's revenue percentage
func (h *GameHandler) UpdateDistribution(c echo.Context) error {
	var req DistributionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.gameManager.UpdatePrizeDistribution(req.Tier, req.Percentage); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateSettings applies a partial settings update
func (h *GameHandler) UpdateSettings(c echo.Context) error {
	var patch models.SettingsPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	h.gameManager.UpdateSettings(patch)
	return c.NoContent(http.StatusNoContent)
}

// StartGame moves the game into the PLAYING phase
func (h *GameHandler) StartGame(c echo.Context) error {
	h.gameManager.StartGame()
	return c.NoContent(http.StatusNoContent)
}

// DrawNumber draws the next number(s) and reports the first winner, if any
func (h *GameHandler) DrawNumber(c echo.Context) error {
	winner, err := h.gameManager.Draw(c.Request().Context())
	if err != nil {
		h.logger.Errorf("Draw failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to draw number")
	}

	state := h.gameManager.PublicState()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"winner":           winner,
		"lastDrawnNumbers": state.LastDrawnNumbers,
		"callerMessage":    state.CallerMessage,
		"gamePhase":        state.GamePhase,
	})
}

// ResetGame returns the game to the SETUP phase
func (h *GameHandler) ResetGame(c echo.Context) error {
	h.gameManager.ResetGame()
	return c.NoContent(http.StatusNoContent)
}
