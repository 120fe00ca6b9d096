package handlers

import (
	"net/http"

	gorilla "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bingoloco/backend/internal/game/websocket"
)

// WebSocketHandler upgrades viewer connections and hands them to the hub
type WebSocketHandler struct {
	hub      *websocket.Hub
	logger   *zap.SugaredLogger
	upgrader gorilla.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, logger *zap.SugaredLogger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Viewer feed is read-only public state, same surface as the
			// public polling endpoint, so any origin may connect
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleViewerConnection upgrades the request and registers the viewer
func (h *WebSocketHandler) HandleViewerConnection(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warnf("WebSocket upgrade failed: %v", err)
		return err
	}

	h.hub.HandleConnection(conn)
	return nil
}
