package handler

import (
	"errors"
	"net/http"

	"github.com/hszk-dev/notecanvas/internal/domain/model"
	"github.com/hszk-dev/notecanvas/internal/domain/repository"
	"github.com/hszk-dev/notecanvas/internal/usecase"
)

// Request/Response types

type CreateCanvasRequest struct {
	Name string `json:"name"`
}

type CanvasResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CanvasHandler handles canvas-related HTTP requests.
type CanvasHandler struct {
	svc usecase.CanvasService
}

// NewCanvasHandler creates a new CanvasHandler.
func NewCanvasHandler(svc usecase.CanvasService) *CanvasHandler {
	return &CanvasHandler{svc: svc}
}

// List handles GET /v1/canvases
func (h *CanvasHandler) List(w http.ResponseWriter, r *http.Request) {
	canvases, err := h.svc.ListCanvases(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := make([]CanvasResponse, 0, len(canvases))
	for _, c := range canvases {
		resp = append(resp, toCanvasResponse(c))
	}
	JSON(w, http.StatusOK, resp)
}

// Create handles POST /v1/canvases
func (h *CanvasHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCanvasRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	canvas, err := h.svc.CreateCanvas(r.Context(), req.Name)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusCreated, toCanvasResponse(canvas))
}

// Get handles GET /v1/canvases/{canvasID}
func (h *CanvasHandler) Get(w http.ResponseWriter, r *http.Request) {
	canvasID, ok := canvasIDParam(w, r)
	if !ok {
		return
	}

	canvas, err := h.svc.GetCanvas(r.Context(), canvasID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toCanvasResponse(canvas))
}

// Delete handles DELETE /v1/canvases/{canvasID}
func (h *CanvasHandler) Delete(w http.ResponseWriter, r *http.Request) {
	canvasID, ok := canvasIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteCanvas(r.Context(), canvasID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, DetailResponse{Detail: "canvas deleted"})
}

func (h *CanvasHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrEmptyCanvasName):
		Error(w, http.StatusBadRequest, "invalid_name", "Canvas name cannot be empty")
	case errors.Is(err, model.ErrCanvasNameTooLong):
		Error(w, http.StatusBadRequest, "invalid_name", "Canvas name exceeds maximum length")
	case errors.Is(err, repository.ErrDuplicateCanvas):
		Error(w, http.StatusConflict, "canvas_exists", "Canvas already exists")
	default:
		handleCommonError(w, r, err)
	}
}

func toCanvasResponse(c *model.Canvas) CanvasResponse {
	return CanvasResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		CreatedAt: c.CreatedAt.Format(timeFormat),
		UpdatedAt: c.UpdatedAt.Format(timeFormat),
	}
}
