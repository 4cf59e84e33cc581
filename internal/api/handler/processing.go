package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/hszk-dev/notecanvas/internal/domain/repository"
	"github.com/hszk-dev/notecanvas/internal/engine"
	"github.com/hszk-dev/notecanvas/internal/usecase"
)

// Request/Response types

type ProcessExistingRequest struct {
	FilePath string `json:"file_path"`
	Lang     string `json:"lang"`
	NoteID   string `json:"note_id,omitempty"`
	Async    bool   `json:"async,omitempty"`
}

type OCRResponse struct {
	Text        string `json:"text"`
	FilePath    string `json:"file_path"`
	SidecarPath string `json:"sidecar_path,omitempty"`
	Language    string `json:"language"`
	Cached      bool   `json:"cached"`
}

type TranscribeResponse struct {
	Transcript  string        `json:"transcript"`
	FilePath    string        `json:"file_path"`
	SidecarPath string        `json:"sidecar_path,omitempty"`
	Language    string        `json:"language"`
	Cached      bool          `json:"cached"`
	Note        *NoteResponse `json:"note,omitempty"`
}

type QueuedResponse struct {
	Status   string `json:"status"`
	FilePath string `json:"file_path"`
}

// ProcessingHandler handles OCR and transcription requests.
type ProcessingHandler struct {
	svc            usecase.ProcessingService
	maxUploadBytes int64
}

// NewProcessingHandler creates a new ProcessingHandler.
func NewProcessingHandler(svc usecase.ProcessingService, maxUploadBytes int64) *ProcessingHandler {
	return &ProcessingHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// OCR handles POST /v1/canvases/{canvasID}/ocr?lang=
func (h *ProcessingHandler) OCR(w http.ResponseWriter, r *http.Request) {
	input, cleanup, ok := h.uploadInput(w, r)
	if !ok {
		return
	}
	defer cleanup()

	result, err := h.svc.OCRUpload(r.Context(), input, r.URL.Query().Get("lang"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toOCRResponse(result))
}

// OCRExisting handles POST /v1/canvases/{canvasID}/ocr-existing
func (h *ProcessingHandler) OCRExisting(w http.ResponseWriter, r *http.Request) {
	input, async, ok := h.existingInput(w, r)
	if !ok {
		return
	}

	if async {
		h.enqueue(w, r, repository.TaskOCR, input)
		return
	}

	result, err := h.svc.OCRExisting(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toOCRResponse(result))
}

// Transcribe handles POST /v1/canvases/{canvasID}/transcribe?lang=
func (h *ProcessingHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	input, cleanup, ok := h.uploadInput(w, r)
	if !ok {
		return
	}
	defer cleanup()

	result, err := h.svc.TranscribeUpload(r.Context(), input, r.URL.Query().Get("lang"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toTranscribeResponse(result))
}

// TranscribeExisting handles POST /v1/canvases/{canvasID}/transcribe-existing
func (h *ProcessingHandler) TranscribeExisting(w http.ResponseWriter, r *http.Request) {
	input, async, ok := h.existingInput(w, r)
	if !ok {
		return
	}

	if async {
		h.enqueue(w, r, repository.TaskTranscribe, input)
		return
	}

	result, err := h.svc.TranscribeExisting(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, toTranscribeResponse(result))
}

func (h *ProcessingHandler) enqueue(w http.ResponseWriter, r *http.Request, kind repository.TaskKind, input usecase.RecognizeInput) {
	err := h.svc.Enqueue(r.Context(), repository.ProcessingTask{
		Kind:     kind,
		CanvasID: input.CanvasID,
		FilePath: input.FilePath,
		Language: input.Language,
		NoteID:   input.NoteID,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	JSON(w, http.StatusAccepted, QueuedResponse{Status: "queued", FilePath: input.FilePath})
}

func (h *ProcessingHandler) uploadInput(w http.ResponseWriter, r *http.Request) (usecase.UploadInput, func(), bool) {
	canvasID, ok := canvasIDParam(w, r)
	if !ok {
		return usecase.UploadInput{}, nil, false
	}

	file, header, ok := readUpload(w, r, h.maxUploadBytes)
	if !ok {
		return usecase.UploadInput{}, nil, false
	}

	return usecase.UploadInput{
		CanvasID:    canvasID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}, func() { _ = file.Close() }, true
}

func (h *ProcessingHandler) existingInput(w http.ResponseWriter, r *http.Request) (usecase.RecognizeInput, bool, bool) {
	canvasID, ok := canvasIDParam(w, r)
	if !ok {
		return usecase.RecognizeInput{}, false, false
	}

	var req ProcessExistingRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return usecase.RecognizeInput{}, false, false
	}
	if req.FilePath == "" {
		Error(w, http.StatusBadRequest, "invalid_file_path", "File path is required")
		return usecase.RecognizeInput{}, false, false
	}

	input := usecase.RecognizeInput{
		CanvasID: canvasID,
		FilePath: req.FilePath,
		Language: req.Lang,
	}
	if req.NoteID != "" {
		noteID, err := uuid.Parse(req.NoteID)
		if err != nil {
			Error(w, http.StatusBadRequest, "invalid_note_id", "Note ID must be a valid UUID")
			return usecase.RecognizeInput{}, false, false
		}
		input.NoteID = &noteID
	}
	return input, req.Async, true
}

func (h *ProcessingHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engine.ErrUnsupportedLanguage):
		Error(w, http.StatusBadRequest, "unsupported_language", err.Error())
	case errors.Is(err, usecase.ErrUnsupportedMediaType):
		Error(w, http.StatusBadRequest, "unsupported_media_type", err.Error())
	case errors.Is(err, usecase.ErrEmptyUpload):
		Error(w, http.StatusBadRequest, "missing_file", "No file provided")
	case errors.Is(err, usecase.ErrNotAudioNote):
		Error(w, http.StatusBadRequest, "not_audio_note", "Note is not an audio note")
	case errors.Is(err, usecase.ErrAsyncUnavailable):
		Error(w, http.StatusServiceUnavailable, "async_unavailable", "Background processing is not configured")
	case errors.Is(err, engine.ErrModelNotFound):
		Error(w, http.StatusServiceUnavailable, "model_unavailable", "Speech model is not installed")
	default:
		handleCommonError(w, r, err)
	}
}

func toOCRResponse(res *usecase.RecognitionResult) OCRResponse {
	return OCRResponse{
		Text:        res.Text,
		FilePath:    res.FilePath,
		SidecarPath: res.SidecarPath,
		Language:    res.Language,
		Cached:      res.Cached,
	}
}

func toTranscribeResponse(res *usecase.RecognitionResult) TranscribeResponse {
	resp := TranscribeResponse{
		Transcript:  res.Text,
		FilePath:    res.FilePath,
		SidecarPath: res.SidecarPath,
		Language:    res.Language,
		Cached:      res.Cached,
	}
	if res.Note != nil {
		note := toNoteResponse(res.Note)
		resp.Note = &note
	}
	return resp
}
