package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hszk-dev/notecanvas/internal/domain/model"
	"github.com/hszk-dev/notecanvas/internal/usecase"
)

// Request/Response types

// NoteRequest is the body of note create and update requests.
type NoteRequest = model.NoteInput

type NoteResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	Width       float64         `json:"width,omitempty"`
	Height      float64         `json:"height,omitempty"`
	Tags        []string        `json:"tags"`
	Title       string          `json:"title,omitempty"`
	Content     string          `json:"content,omitempty"`
	FilePath    string          `json:"file_path,omitempty"`
	Caption     string          `json:"caption,omitempty"`
	Transcript  string          `json:"transcript,omitempty"`
	DrawingData json.RawMessage `json:"drawing_data,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

type LayoutUpdateRequest struct {
	ID     string   `json:"id"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

type LayoutRequest struct {
	Updates []LayoutUpdateRequest `json:"updates"`
}

type LayoutResponse struct {
	Updated int `json:"updated"`
}

// NoteHandler handles note-related HTTP requests.
type NoteHandler struct {
	svc usecase.NoteService
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(svc usecase.NoteService) *NoteHandler {
	return &NoteHandler{svc: svc}
}

// List handles GET /v1/canvases/{canvasID}/notes
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	canvasID, ok := canvasIDParam(w, r)
	if !ok {
		return
	}

	notes, err := h.svc.ListNotes(r.Context(), canvasID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, toNoteResponse(n))
	}
	JSON(w, http.StatusOK, resp)
}

// Create handles POST /v1/canvases/{canvasID}/notes
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	canvasID, ok := canvasIDParam(w, r)
	if !ok {
		return
	}

	var req NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	note, err := h.svc.CreateNote(r.Context(), canvasID, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusCreated, toNoteResponse(note))
}

// Update handles PUT /v1/canvases/{canvasID}/notes/{noteID}
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	canvasID, ok := canvasIDParam(w, r)
	if !ok {
		return
	}
	noteID, ok := noteIDParam(w, r)
	if !ok {
		return
	}

	var req NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	note, err := h.svc.UpdateNote(r.Context(), canvasID, noteID, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toNoteResponse(note))
}

// Delete handles DELETE /v1/canvases/{canvasID}/notes/{noteID}
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	canvasID, ok := canvasIDParam(w, r)
	if !ok {
		return
	}
	noteID, ok := noteIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteNote(r.Context(), canvasID, noteID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, DetailResponse{Detail: "note deleted"})
}

// UpdatePositions handles PATCH /v1/canvases/{canvasID}/notes/positions
func (h *NoteHandler) UpdatePositions(w http.ResponseWriter, r *http.Request) {
	h.updateLayout(w, r, h.svc.UpdatePositions)
}

// UpdateSizes handles PATCH /v1/canvases/{canvasID}/notes/sizes
func (h *NoteHandler) UpdateSizes(w http.ResponseWriter, r *http.Request) {
	h.updateLayout(w, r, h.svc.UpdateSizes)
}

type layoutFunc func(ctx context.Context, canvasID uuid.UUID, updates []model.LayoutUpdate) (int, error)

func (h *NoteHandler) updateLayout(w http.ResponseWriter, r *http.Request, apply layoutFunc) {
	canvasID, ok := canvasIDParam(w, r)
	if !ok {
		return
	}

	var req LayoutRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	updates := make([]model.LayoutUpdate, len(req.Updates))
	for i, u := range req.Updates {
		id, err := uuid.Parse(u.ID)
		if err != nil {
			Error(w, http.StatusBadRequest, "invalid_note_id", fmt.Sprintf("Update %d: note ID must be a valid UUID", i))
			return
		}
		updates[i] = model.LayoutUpdate{ID: id, X: u.X, Y: u.Y, Width: u.Width, Height: u.Height}
	}

	n, err := apply(r.Context(), canvasID, updates)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, LayoutResponse{Updated: n})
}

func (h *NoteHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidNoteType):
		Error(w, http.StatusBadRequest, "invalid_note_type", "Note type must be one of text, image, audio, drawing")
	case errors.Is(err, model.ErrNoteTitleRequired):
		Error(w, http.StatusBadRequest, "invalid_note", "Text note requires a title")
	case errors.Is(err, model.ErrNoteFilePathRequired):
		Error(w, http.StatusBadRequest, "invalid_note", "Media note requires a file path")
	case errors.Is(err, model.ErrNoteDrawingRequired):
		Error(w, http.StatusBadRequest, "invalid_note", "Drawing note requires a drawing data object")
	case errors.Is(err, model.ErrInvalidNoteSize):
		Error(w, http.StatusBadRequest, "invalid_size", "Width and height must not be negative")
	case errors.Is(err, model.ErrInvalidLayoutUpdate):
		Error(w, http.StatusBadRequest, "invalid_layout_update", err.Error())
	case errors.Is(err, usecase.ErrNotAudioNote):
		Error(w, http.StatusBadRequest, "not_audio_note", "Note is not an audio note")
	default:
		handleCommonError(w, r, err)
	}
}

func noteIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "noteID"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_note_id", "Note ID must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func toNoteResponse(n *model.Note) NoteResponse {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return NoteResponse{
		ID:          n.ID.String(),
		Type:        n.Type.String(),
		X:           n.X,
		Y:           n.Y,
		Width:       n.Width,
		Height:      n.Height,
		Tags:        tags,
		Title:       n.Title,
		Content:     n.Content,
		FilePath:    n.FilePath,
		Caption:     n.Caption,
		Transcript:  n.Transcript,
		DrawingData: n.DrawingData,
		CreatedAt:   n.CreatedAt.Format(timeFormat),
		UpdatedAt:   n.UpdatedAt.Format(timeFormat),
	}
}
