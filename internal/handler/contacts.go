package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"messenger-backend/internal/service"
	"messenger-backend/internal/utils"
)

type ContactHandler struct {
	ContactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{ContactService: contactService}
}

type contactRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	contact, err := h.ContactService.CreateContact(userID, req.Name, req.PhoneNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusCreated, contact, "Contact created")
}

func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contacts, err := h.ContactService.ListContacts(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, contacts, "")
}

func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contactID, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid contact id")
		return
	}

	contact, err := h.ContactService.GetContact(userID, contactID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, contact, "")
}

func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contactID, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid contact id")
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	contact, err := h.ContactService.UpdateContact(userID, contactID, req.Name, req.PhoneNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, contact, "Contact updated")
}

func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	contactID, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid contact id")
		return
	}

	if err := h.ContactService.DeleteContact(userID, contactID); err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, nil, "Contact deleted")
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
