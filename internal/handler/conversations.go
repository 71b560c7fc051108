package handler

import (
	"encoding/json"
	"net/http"

	"messenger-backend/internal/service"
	"messenger-backend/internal/utils"
)

type ConversationHandler struct {
	MessagingService *service.MessagingService
}

func NewConversationHandler(messagingService *service.MessagingService) *ConversationHandler {
	return &ConversationHandler{MessagingService: messagingService}
}

// ListConversations returns the user's threads newest-activity-first, each
// with its last message and unread count.
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	summaries, err := h.MessagingService.ListConversations(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, summaries, "")
}

// CreateConversation resolves or creates the thread for a phone number.
// Calling it twice with the same number returns the same conversation.
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		PhoneNumber string `json:"phone_number"`
		ContactName string `json:"contact_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	conv, err := h.MessagingService.StartConversation(userID, req.PhoneNumber, req.ContactName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, conv, "")
}

func (h *ConversationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
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

	if err := h.MessagingService.MarkConversationRead(userID, conversationID); err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, nil, "Conversation marked as read")
}
