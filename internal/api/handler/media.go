package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hszk-dev/notecanvas/internal/domain/model"
	"github.com/hszk-dev/notecanvas/internal/usecase"
)

// Request/Response types

type UploadResponse struct {
	FilePath string `json:"file_path"`
}

type MediaURLResponse struct {
	URL string `json:"url"`
}

// MediaHandler handles media upload, listing and download requests.
type MediaHandler struct {
	svc            usecase.MediaService
	maxUploadBytes int64
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(svc usecase.MediaService, maxUploadBytes int64) *MediaHandler {
	return &MediaHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// Upload returns the handler for POST /v1/canvases/{canvasID}/upload/{kind}.
func (h *MediaHandler) Upload(kind model.MediaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		canvasID, ok := canvasIDParam(w, r)
		if !ok {
			return
		}

		file, header, ok := readUpload(w, r, h.maxUploadBytes)
		if !ok {
			return
		}
		defer file.Close()

		relPath, err := h.svc.Upload(r.Context(), usecase.UploadInput{
			CanvasID:    canvasID,
			Kind:        kind,
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		})
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}

		JSON(w, http.StatusCreated, UploadResponse{FilePath: relPath})
	}
}

// List handles GET /v1/canvases/{canvasID}/media
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	canvasID, ok := canvasIDParam(w, r)
	if !ok {
		return
	}

	media, err := h.svc.ListMedia(r.Context(), canvasID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := make(map[string][]string, len(model.MediaKinds))
	for _, kind := range model.MediaKinds {
		files := media[kind]
		if files == nil {
			files = []string{}
		}
		resp[kind.String()] = files
	}
	JSON(w, http.StatusOK, resp)
}

// URL handles GET /v1/canvases/{canvasID}/media/url?path=
func (h *MediaHandler) URL(w http.ResponseWriter, r *http.Request) {
	canvasID, ok := canvasIDParam(w, r)
	if !ok {
		return
	}

	relPath := r.URL.Query().Get("path")
	if relPath == "" {
		Error(w, http.StatusBadRequest, "invalid_file_path", "Query parameter path is required")
		return
	}

	url, err := h.svc.MediaURL(r.Context(), canvasID, relPath)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, MediaURLResponse{URL: url})
}

// Serve handles GET /media/{canvasID}/*
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	canvasID, ok := canvasIDParam(w, r)
	if !ok {
		return
	}

	abs, err := h.svc.ResolveMedia(r.Context(), canvasID, chi.URLParam(r, "*"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	http.ServeFile(w, r, abs)
}

func (h *MediaHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, usecase.ErrUnsupportedMediaType):
		Error(w, http.StatusBadRequest, "unsupported_media_type", err.Error())
	case errors.Is(err, usecase.ErrEmptyUpload):
		Error(w, http.StatusBadRequest, "missing_file", "No file provided")
	default:
		handleCommonError(w, r, err)
	}
}
