package handler

import (
	"encoding/json"
	"net/http"

	"messenger-backend/internal/service"
	"messenger-backend/internal/utils"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{AuthService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		PhoneNumber string `json:"phone_number"`
		Password    string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.AuthService.Register(req.Username, req.PhoneNumber, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusCreated, user, "Registration successful")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, user, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	}, "Login successful")
}
