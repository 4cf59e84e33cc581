package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/hszk-dev/notecanvas/internal/domain/model"
	"github.com/hszk-dev/notecanvas/internal/domain/repository"
	"github.com/hszk-dev/notecanvas/internal/infrastructure/cache"
	"github.com/hszk-dev/notecanvas/internal/usecase"
)

type mockCanvasService struct {
	listCanvasesFn func(ctx context.Context) ([]*model.Canvas, error)
	createCanvasFn func(ctx context.Context, name string) (*model.Canvas, error)
	getCanvasFn    func(ctx context.Context, canvasID uuid.UUID) (*model.Canvas, error)
	deleteCanvasFn func(ctx context.Context, canvasID uuid.UUID) error
}

func (m *mockCanvasService) ListCanvases(ctx context.Context) ([]*model.Canvas, error) {
	if m.listCanvasesFn != nil {
		return m.listCanvasesFn(ctx)
	}
	return nil, nil
}

func (m *mockCanvasService) CreateCanvas(ctx context.Context, name string) (*model.Canvas, error) {
	if m.createCanvasFn != nil {
		return m.createCanvasFn(ctx, name)
	}
	return nil, nil
}

func (m *mockCanvasService) GetCanvas(ctx context.Context, canvasID uuid.UUID) (*model.Canvas, error) {
	if m.getCanvasFn != nil {
		return m.getCanvasFn(ctx, canvasID)
	}
	return nil, nil
}

func (m *mockCanvasService) DeleteCanvas(ctx context.Context, canvasID uuid.UUID) error {
	if m.deleteCanvasFn != nil {
		return m.deleteCanvasFn(ctx, canvasID)
	}
	return nil
}

type mockNoteService struct {
	listNotesFn        func(ctx context.Context, canvasID uuid.UUID) ([]*model.Note, error)
	createNoteFn       func(ctx context.Context, canvasID uuid.UUID, input model.NoteInput) (*model.Note, error)
	updateNoteFn       func(ctx context.Context, canvasID, noteID uuid.UUID, input model.NoteInput) (*model.Note, error)
	deleteNoteFn       func(ctx context.Context, canvasID, noteID uuid.UUID) error
	updatePositionsFn  func(ctx context.Context, canvasID uuid.UUID, updates []model.LayoutUpdate) (int, error)
	updateSizesFn      func(ctx context.Context, canvasID uuid.UUID, updates []model.LayoutUpdate) (int, error)
	attachTranscriptFn func(ctx context.Context, canvasID, noteID uuid.UUID, transcript string) (*model.Note, error)
}

func (m *mockNoteService) ListNotes(ctx context.Context, canvasID uuid.UUID) ([]*model.Note, error) {
	if m.listNotesFn != nil {
		return m.listNotesFn(ctx, canvasID)
	}
	return nil, nil
}

func (m *mockNoteService) CreateNote(ctx context.Context, canvasID uuid.UUID, input model.NoteInput) (*model.Note, error) {
	if m.createNoteFn != nil {
		return m.createNoteFn(ctx, canvasID, input)
	}
	return nil, nil
}

func (m *mockNoteService) UpdateNote(ctx context.Context, canvasID, noteID uuid.UUID, input model.NoteInput) (*model.Note, error) {
	if m.updateNoteFn != nil {
		return m.updateNoteFn(ctx, canvasID, noteID, input)
	}
	return nil, nil
}

func (m *mockNoteService) DeleteNote(ctx context.Context, canvasID, noteID uuid.UUID) error {
	if m.deleteNoteFn != nil {
		return m.deleteNoteFn(ctx, canvasID, noteID)
	}
	return nil
}

func (m *mockNoteService) UpdatePositions(ctx context.Context, canvasID uuid.UUID, updates []model.LayoutUpdate) (int, error) {
	if m.updatePositionsFn != nil {
		return m.updatePositionsFn(ctx, canvasID, updates)
	}
	return len(updates), nil
}

func (m *mockNoteService) UpdateSizes(ctx context.Context, canvasID uuid.UUID, updates []model.LayoutUpdate) (int, error) {
	if m.updateSizesFn != nil {
		return m.updateSizesFn(ctx, canvasID, updates)
	}
	return len(updates), nil
}

func (m *mockNoteService) AttachTranscript(ctx context.Context, canvasID, noteID uuid.UUID, transcript string) (*model.Note, error) {
	if m.attachTranscriptFn != nil {
		return m.attachTranscriptFn(ctx, canvasID, noteID, transcript)
	}
	return nil, nil
}

type mockMediaService struct {
	uploadFn       func(ctx context.Context, input usecase.UploadInput) (string, error)
	listMediaFn    func(ctx context.Context, canvasID uuid.UUID) (map[model.MediaKind][]string, error)
	resolveMediaFn func(ctx context.Context, canvasID uuid.UUID, relPath string) (string, error)
	mediaURLFn     func(ctx context.Context, canvasID uuid.UUID, relPath string) (string, error)
}

func (m *mockMediaService) Upload(ctx context.Context, input usecase.UploadInput) (string, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, input)
	}
	return "", nil
}

func (m *mockMediaService) ListMedia(ctx context.Context, canvasID uuid.UUID) (map[model.MediaKind][]string, error) {
	if m.listMediaFn != nil {
		return m.listMediaFn(ctx, canvasID)
	}
	return nil, nil
}

func (m *mockMediaService) ResolveMedia(ctx context.Context, canvasID uuid.UUID, relPath string) (string, error) {
	if m.resolveMediaFn != nil {
		return m.resolveMediaFn(ctx, canvasID, relPath)
	}
	return "", repository.ErrMediaNotFound
}

func (m *mockMediaService) MediaURL(ctx context.Context, canvasID uuid.UUID, relPath string) (string, error) {
	if m.mediaURLFn != nil {
		return m.mediaURLFn(ctx, canvasID, relPath)
	}
	return "", nil
}

func (m *mockMediaService) Replicate(ctx context.Context, canvasID uuid.UUID, relPath, contentType string) {}

type mockProcessingService struct {
	ocrExistingFn        func(ctx context.Context, input usecase.RecognizeInput) (*usecase.RecognitionResult, error)
	ocrUploadFn          func(ctx context.Context, upload usecase.UploadInput, lang string) (*usecase.RecognitionResult, error)
	transcribeExistingFn func(ctx context.Context, input usecase.RecognizeInput) (*usecase.RecognitionResult, error)
	transcribeUploadFn   func(ctx context.Context, upload usecase.UploadInput, lang string) (*usecase.RecognitionResult, error)
	enqueueFn            func(ctx context.Context, task repository.ProcessingTask) error
}

func (m *mockProcessingService) OCRExisting(ctx context.Context, input usecase.RecognizeInput) (*usecase.RecognitionResult, error) {
	if m.ocrExistingFn != nil {
		return m.ocrExistingFn(ctx, input)
	}
	return &usecase.RecognitionResult{}, nil
}

func (m *mockProcessingService) OCRUpload(ctx context.Context, upload usecase.UploadInput, lang string) (*usecase.RecognitionResult, error) {
	if m.ocrUploadFn != nil {
		return m.ocrUploadFn(ctx, upload, lang)
	}
	return &usecase.RecognitionResult{}, nil
}

func (m *mockProcessingService) TranscribeExisting(ctx context.Context, input usecase.RecognizeInput) (*usecase.RecognitionResult, error) {
	if m.transcribeExistingFn != nil {
		return m.transcribeExistingFn(ctx, input)
	}
	return &usecase.RecognitionResult{}, nil
}

func (m *mockProcessingService) TranscribeUpload(ctx context.Context, upload usecase.UploadInput, lang string) (*usecase.RecognitionResult, error) {
	if m.transcribeUploadFn != nil {
		return m.transcribeUploadFn(ctx, upload, lang)
	}
	return &usecase.RecognitionResult{}, nil
}

func (m *mockProcessingService) Enqueue(ctx context.Context, task repository.ProcessingTask) error {
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, task)
	}
	return nil
}

func (m *mockProcessingService) ProcessTask(ctx context.Context, task repository.ProcessingTask) error {
	return nil
}

type mockCacheAdminService struct {
	stats  cache.Stats
	purged int
}

func (m *mockCacheAdminService) Stats() cache.Stats {
	return m.stats
}

func (m *mockCacheAdminService) PurgeExpired() usecase.PurgeResult {
	return usecase.PurgeResult{Removed: m.purged, Remaining: m.stats}
}
