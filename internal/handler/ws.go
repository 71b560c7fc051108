package handler

import (
	"net/http"

	"messenger-backend/internal/config"
	"messenger-backend/internal/utils"
	"messenger-backend/internal/websocket"
)

type WSHandler struct {
	Hub    *websocket.Hub
	Config *config.Config
}

func NewWSHandler(hub *websocket.Hub, cfg *config.Config) *WSHandler {
	return &WSHandler{Hub: hub, Config: cfg}
}

// Serve upgrades the connection. Browsers cannot set headers on websocket
// requests, so the token rides in the query string.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Missing token")
		return
	}

	userID, err := utils.ParseUserIDFromToken(token, h.Config.JWTSecret)
	if err != nil {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	websocket.ServeWs(h.Hub, w, r, userID, h.Config.AllowedOrigins)
}
