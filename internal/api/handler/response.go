package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hszk-dev/notecanvas/internal/domain/repository"
)

const timeFormat = time.RFC3339

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(data); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
		}
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func Error(w http.ResponseWriter, status int, err string, message string) {
	JSON(w, status, ErrorResponse{
		Error:   err,
		Message: message,
	})
}

// DetailResponse acknowledges operations that return no resource.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// canvasIDParam parses the {canvasID} URL parameter and writes a 400 on failure.
func canvasIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "canvasID"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_canvas_id", "Canvas ID must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// handleCommonError maps errors shared by every handler. Anything unknown is
// logged and reported as 500.
func handleCommonError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrCanvasNotFound):
		Error(w, http.StatusNotFound, "canvas_not_found", "Canvas not found")
	case errors.Is(err, repository.ErrNoteNotFound):
		Error(w, http.StatusNotFound, "note_not_found", "Note not found")
	case errors.Is(err, repository.ErrMediaNotFound):
		Error(w, http.StatusNotFound, "media_not_found", "Media file not found")
	case errors.Is(err, repository.ErrInvalidMediaPath):
		Error(w, http.StatusBadRequest, "invalid_file_path", "File path must point into a media folder of the canvas")
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
