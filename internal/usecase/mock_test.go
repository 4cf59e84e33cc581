package usecase

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hszk-dev/notecanvas/internal/domain/model"
	"github.com/hszk-dev/notecanvas/internal/domain/repository"
)

// mockCanvasRepository provides a configurable mock for CanvasRepository.
type mockCanvasRepository struct {
	createFn  func(ctx context.Context, canvas *model.Canvas) error
	getByIDFn func(ctx context.Context, id uuid.UUID) (*model.Canvas, error)
	listFn    func(ctx context.Context) ([]*model.Canvas, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCanvasRepository) Create(ctx context.Context, canvas *model.Canvas) error {
	if m.createFn != nil {
		return m.createFn(ctx, canvas)
	}
	return nil
}

func (m *mockCanvasRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Canvas, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &model.Canvas{ID: id, Name: "canvas"}, nil
}

func (m *mockCanvasRepository) List(ctx context.Context) ([]*model.Canvas, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []*model.Canvas{}, nil
}

func (m *mockCanvasRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockNoteRepository provides a configurable mock for NoteRepository.
type mockNoteRepository struct {
	listFn        func(ctx context.Context, canvasID uuid.UUID) ([]*model.Note, error)
	createFn      func(ctx context.Context, canvasID uuid.UUID, note *model.Note) error
	getByIDFn     func(ctx context.Context, canvasID, noteID uuid.UUID) (*model.Note, error)
	updateFn      func(ctx context.Context, canvasID uuid.UUID, note *model.Note) error
	deleteFn      func(ctx context.Context, canvasID, noteID uuid.UUID) error
	applyLayoutFn func(ctx context.Context, canvasID uuid.UUID, updates []model.LayoutUpdate) (int, error)
}

func (m *mockNoteRepository) List(ctx context.Context, canvasID uuid.UUID) ([]*model.Note, error) {
	if m.listFn != nil {
		return m.listFn(ctx, canvasID)
	}
	return []*model.Note{}, nil
}

func (m *mockNoteRepository) Create(ctx context.Context, canvasID uuid.UUID, note *model.Note) error {
	if m.createFn != nil {
		return m.createFn(ctx, canvasID, note)
	}
	return nil
}

func (m *mockNoteRepository) GetByID(ctx context.Context, canvasID, noteID uuid.UUID) (*model.Note, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, canvasID, noteID)
	}
	return nil, repository.ErrNoteNotFound
}

func (m *mockNoteRepository) Update(ctx context.Context, canvasID uuid.UUID, note *model.Note) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, canvasID, note)
	}
	return nil
}

func (m *mockNoteRepository) Delete(ctx context.Context, canvasID, noteID uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, canvasID, noteID)
	}
	return nil
}

func (m *mockNoteRepository) ApplyLayout(ctx context.Context, canvasID uuid.UUID, updates []model.LayoutUpdate) (int, error) {
	if m.applyLayoutFn != nil {
		return m.applyLayoutFn(ctx, canvasID, updates)
	}
	return len(updates), nil
}

// mockMediaStore provides a configurable mock for MediaStore.
type mockMediaStore struct {
	initCanvasFn   func(ctx context.Context, canvasID uuid.UUID) error
	removeCanvasFn func(ctx context.Context, canvasID uuid.UUID) error
	saveFn         func(ctx context.Context, canvasID uuid.UUID, kind model.MediaKind, originalName string, r io.Reader) (string, error)
	resolveFn      func(ctx context.Context, canvasID uuid.UUID, relPath string) (string, error)
	listFn         func(ctx context.Context, canvasID uuid.UUID) (map[model.MediaKind][]string, error)
	writeSidecarFn func(ctx context.Context, canvasID uuid.UUID, sourceRelPath, text string) (string, error)
}

func (m *mockMediaStore) InitCanvas(ctx context.Context, canvasID uuid.UUID) error {
	if m.initCanvasFn != nil {
		return m.initCanvasFn(ctx, canvasID)
	}
	return nil
}

func (m *mockMediaStore) RemoveCanvas(ctx context.Context, canvasID uuid.UUID) error {
	if m.removeCanvasFn != nil {
		return m.removeCanvasFn(ctx, canvasID)
	}
	return nil
}

func (m *mockMediaStore) Save(ctx context.Context, canvasID uuid.UUID, kind model.MediaKind, originalName string, r io.Reader) (string, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, canvasID, kind, originalName, r)
	}
	return kind.String() + "/file", nil
}

func (m *mockMediaStore) Resolve(ctx context.Context, canvasID uuid.UUID, relPath string) (string, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, canvasID, relPath)
	}
	return "/data/" + canvasID.String() + "/" + relPath, nil
}

func (m *mockMediaStore) List(ctx context.Context, canvasID uuid.UUID) (map[model.MediaKind][]string, error) {
	if m.listFn != nil {
		return m.listFn(ctx, canvasID)
	}
	return map[model.MediaKind][]string{}, nil
}

func (m *mockMediaStore) WriteSidecar(ctx context.Context, canvasID uuid.UUID, sourceRelPath, text string) (string, error) {
	if m.writeSidecarFn != nil {
		return m.writeSidecarFn(ctx, canvasID, sourceRelPath, text)
	}
	return "transcripts/sidecar.txt", nil
}

// mockObjectStorage provides a configurable mock for ObjectStorage.
type mockObjectStorage struct {
	generatePresignedDownloadURLFn func(ctx context.Context, key string, expiry time.Duration) (string, error)
	uploadFn                       func(ctx context.Context, key string, reader io.Reader, contentType string) error
	existsFn                       func(ctx context.Context, key string) (bool, error)
	deletePrefixFn                 func(ctx context.Context, prefix string) error
}

func (m *mockObjectStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if m.generatePresignedDownloadURLFn != nil {
		return m.generatePresignedDownloadURLFn(ctx, key, expiry)
	}
	return "http://example.com/download", nil
}

func (m *mockObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, reader, contentType)
	}
	return nil
}

func (m *mockObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockObjectStorage) DeletePrefix(ctx context.Context, prefix string) error {
	if m.deletePrefixFn != nil {
		return m.deletePrefixFn(ctx, prefix)
	}
	return nil
}

// mockMessageQueue provides a configurable mock for MessageQueue.
type mockMessageQueue struct {
	publishProcessingTaskFn  func(ctx context.Context, task repository.ProcessingTask) error
	consumeProcessingTasksFn func(ctx context.Context, handler func(task repository.ProcessingTask) error) error
}

func (m *mockMessageQueue) PublishProcessingTask(ctx context.Context, task repository.ProcessingTask) error {
	if m.publishProcessingTaskFn != nil {
		return m.publishProcessingTaskFn(ctx, task)
	}
	return nil
}

func (m *mockMessageQueue) ConsumeProcessingTasks(ctx context.Context, handler func(task repository.ProcessingTask) error) error {
	if m.consumeProcessingTasksFn != nil {
		return m.consumeProcessingTasksFn(ctx, handler)
	}
	return nil
}

func (m *mockMessageQueue) Close() error {
	return nil
}

// mockOCREngine provides a configurable mock for OCREngine.
type mockOCREngine struct {
	resolveLanguageFn func(lang string) (string, error)
	recognizeFn       func(ctx context.Context, imagePath, lang string) (string, error)
	recognizeCount    atomic.Int32
}

func (m *mockOCREngine) ResolveLanguage(lang string) (string, error) {
	if m.resolveLanguageFn != nil {
		return m.resolveLanguageFn(lang)
	}
	if lang == "" {
		return "eng", nil
	}
	return lang, nil
}

func (m *mockOCREngine) Recognize(ctx context.Context, imagePath, lang string) (string, error) {
	m.recognizeCount.Add(1)
	if m.recognizeFn != nil {
		return m.recognizeFn(ctx, imagePath, lang)
	}
	return "recognized text", nil
}

// mockSpeechEngine provides a configurable mock for SpeechEngine.
type mockSpeechEngine struct {
	resolveLanguageFn func(lang string) (string, error)
	transcribeFn      func(ctx context.Context, wavPath, lang string) (string, error)
	transcribeCount   atomic.Int32
}

func (m *mockSpeechEngine) ResolveLanguage(lang string) (string, error) {
	if m.resolveLanguageFn != nil {
		return m.resolveLanguageFn(lang)
	}
	if lang == "" {
		return "en-us", nil
	}
	return lang, nil
}

func (m *mockSpeechEngine) Transcribe(ctx context.Context, wavPath, lang string) (string, error) {
	m.transcribeCount.Add(1)
	if m.transcribeFn != nil {
		return m.transcribeFn(ctx, wavPath, lang)
	}
	return "hello world", nil
}

// mockAudioConverter provides a configurable mock for AudioConverter.
type mockAudioConverter struct {
	convertToWAVFn func(ctx context.Context, inputPath, outputPath string) error
	convertCount   atomic.Int32
}

func (m *mockAudioConverter) ConvertToWAV(ctx context.Context, inputPath, outputPath string) error {
	m.convertCount.Add(1)
	if m.convertToWAVFn != nil {
		return m.convertToWAVFn(ctx, inputPath, outputPath)
	}
	return nil
}
