// Package files exposes the file-share over HTTP: base64 uploads, whole-file
// downloads, listing and deletion.
package files

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/internal/filestore"
	"github.com/abcretail/storefront/pkg/models"
)

// UploadsDirectory is the single share directory the storefront writes to.
const UploadsDirectory = "uploads"

type Handler struct {
	store  filestore.Store
	logger *logrus.Logger
}

func NewHandler(store filestore.Store, logger *logrus.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.store.List(r.Context(), UploadsDirectory)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list files")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}
	if files == nil {
		files = []models.FileInfo{}
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"Files":   files,
	})
}

func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	var req models.FileUpload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FileName == "" || req.FileContent == "" {
		h.respondWithError(w, http.StatusBadRequest, "FileName and FileContent are required.")
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.FileContent)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "FileContent must be base64 encoded.")
		return
	}

	if err := h.store.Upload(r.Context(), UploadsDirectory, req.FileName, content); err != nil {
		h.logger.WithError(err).Error("Failed to upload file")
		h.respondWithError(w, http.StatusInternalServerError, "Error uploading file")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"file_name": req.FileName,
		"size":      len(content),
	}).Info("File uploaded")

	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("File '%s' uploaded successfully.", req.FileName),
	})
}

func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	content, err := h.store.Download(r.Context(), UploadsDirectory, name)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "File not found")
			return
		}
		h.logger.WithError(err).Error("Failed to download file")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to download file")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(content)
}

func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	deleted, err := h.store.Delete(r.Context(), UploadsDirectory, name)
	if err != nil {
		h.logger.WithError(err).Error("Failed to delete file")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}
	if !deleted {
		h.respondWithError(w, http.StatusNotFound, "File not found")
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("File '%s' deleted.", name),
	})
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
