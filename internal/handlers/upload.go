package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/trinity-catholic-media/versepin/internal/verse"
)

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Check if this is a JSON request with image URL
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLUpload(w, r)
		return
	}

	// Handle file upload
	h.handleFileUpload(w, r)
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageURL string `json:"image_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	if err := h.ensureUploadsDir(); err != nil {
		h.writeError(w, "Failed to create uploads directory: "+err.Error(), http.StatusInternalServerError)
		return
	}

	data, declaredMIME, err := h.fetcher.Fetch(r.Context(), request.ImageURL, h.cfg.MaxImageBytes)
	if err != nil {
		h.writeError(w, "Failed to download image: "+err.Error(), http.StatusBadRequest)
		return
	}
	if declaredMIME == "" {
		declaredMIME = http.DetectContentType(data)
	}

	parts := strings.Split(request.ImageURL, "/")
	baseName := parts[len(parts)-1]
	if baseName == "" {
		baseName = "image"
	}

	h.finishUpload(w, r, data, declaredMIME, baseName, "url")
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("files")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	if err := h.ensureUploadsDir(); err != nil {
		h.writeError(w, "Failed to create uploads directory: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Read one byte past the limit so the intake size gate can reject
	// oversized uploads without buffering the whole thing.
	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxImageBytes+1))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	declaredMIME := header.Header.Get("Content-Type")
	if declaredMIME == "" {
		declaredMIME = http.DetectContentType(data)
	}

	baseName := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	h.finishUpload(w, r, data, declaredMIME, baseName, "file")
}

func (h *Handler) finishUpload(w http.ResponseWriter, r *http.Request, data []byte, declaredMIME, baseName, source string) {
	asset, item, err := h.processImageBytes(data, declaredMIME)
	if err != nil {
		status := http.StatusBadRequest
		if !isIntakeError(err) {
			status = http.StatusInternalServerError
		}
		h.writeError(w, err.Error(), status)
		return
	}

	sessionID := fmt.Sprintf("%s_%d", baseName, time.Now().Unix())
	session := h.createVerseSession(r.Context(), sessionID, asset, item)
	h.sessionStore.Set(sessionID, session)

	response := map[string]any{
		"session_id": sessionID,
		"message":    "Successfully uploaded 1 image",
		"source":     source,
	}
	if session.ExtractionError != "" {
		response["extraction_error"] = session.ExtractionError
	}

	h.writeJSON(w, response)
}

func isIntakeError(err error) bool {
	return errors.Is(err, verse.ErrUnsupportedFormat) ||
		errors.Is(err, verse.ErrTooLarge) ||
		errors.Is(err, verse.ErrCorrupt)
}
