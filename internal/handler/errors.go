package handler

import (
	"errors"
	"net/http"

	"messenger-backend/internal/service"
	"messenger-backend/internal/utils"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Internal detail never reaches the client; it is already in the logs.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		utils.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrNotFound):
		utils.ErrorResponse(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrTransport):
		utils.ErrorResponse(w, http.StatusBadGateway, "Upstream service unavailable")
	default:
		utils.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}
