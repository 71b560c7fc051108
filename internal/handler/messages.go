package handler

import (
	"encoding/json"
	"net/http"

	"messenger-backend/internal/service"
	"messenger-backend/internal/utils"
)

type MessageHandler struct {
	MessagingService *service.MessagingService
}

func NewMessageHandler(messagingService *service.MessagingService) *MessageHandler {
	return &MessageHandler{MessagingService: messagingService}
}

// SendMessage runs the outbound lifecycle and returns the settled message.
// A carrier failure is reported in the message status, not as an HTTP error.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		To          string `json:"to"`
		Content     string `json:"content"`
		MediaFileID *int64 `json:"media_file_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := h.MessagingService.SendOutbound(r.Context(), userID, req.To, req.Content, req.MediaFileID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, msg, "")
}

// ListMessages returns a conversation's history oldest-first. A conversation
// the user does not own yields an empty list.
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	conversationID, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid conversation id")
		return
	}

	messages, err := h.MessagingService.ListMessages(userID, conversationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, messages, "")
}
