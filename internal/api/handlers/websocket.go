package handlers

import (
	"net/http"

	"github.com/dom/civ-draft/internal/logger"
	"github.com/dom/civ-draft/internal/websocket"
	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub *websocket.Hub
}

func NewWebSocketHandler(hub *websocket.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// Handle upgrades the connection. Lobbies are chosen afterwards with
// SUBSCRIBE messages.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Named("http").Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	h.hub.Serve(conn)
}
