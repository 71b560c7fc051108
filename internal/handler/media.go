package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"messenger-backend/internal/service"
	"messenger-backend/internal/utils"
)

const uploadMemoryLimit = 10 << 20

type MediaHandler struct {
	MediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{MediaService: mediaService}
}

// Upload accepts a multipart form with a "file" field.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	media, err := h.MediaService.Upload(r.Context(), userID, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusCreated, media, "File uploaded")
}

func (h *MediaHandler) GetMediaFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid media id")
		return
	}

	media, err := h.MediaService.GetMediaFile(userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, media, "")
}

func (h *MediaHandler) ListMediaFiles(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := h.MediaService.ListMediaFiles(userID, page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, result, "")
}

// Download streams the stored object bytes.
func (h *MediaHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid media id")
		return
	}

	data, media, err := h.MediaService.Download(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", media.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", media.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *MediaHandler) DeleteMediaFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromRequest(r)
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid media id")
		return
	}

	if err := h.MediaService.DeleteMediaFile(r.Context(), userID, id); err != nil {
		writeServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, nil, "File deleted")
}
