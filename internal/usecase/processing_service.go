package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hszk-dev/notecanvas/internal/domain/model"
	"github.com/hszk-dev/notecanvas/internal/domain/repository"
	"github.com/hszk-dev/notecanvas/internal/engine"
	"github.com/hszk-dev/notecanvas/internal/infrastructure/cache"
	"github.com/hszk-dev/notecanvas/internal/infrastructure/metrics"
	"github.com/hszk-dev/notecanvas/internal/transcoder"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultMaxRetries is the default maximum number of retry attempts before a task is dropped.
	DefaultMaxRetries = 3

	// DefaultEngineTimeout bounds a single OCR or transcription run.
	DefaultEngineTimeout = 10 * time.Minute

	sidecarContentType = "text/plain; charset=utf-8"
)

// RecognizeInput identifies an already stored media file to process.
type RecognizeInput struct {
	CanvasID uuid.UUID
	FilePath string
	Language string
	// NoteID optionally names an audio note that receives the transcript.
	NoteID *uuid.UUID
}

// RecognitionResult contains the outcome of an OCR or transcription run.
type RecognitionResult struct {
	Text     string
	FilePath string
	// SidecarPath is empty for cached results and when the sidecar could not be written.
	SidecarPath string
	Language    string
	Cached      bool
	// Note is the audio note updated with the transcript, if one was requested.
	Note *model.Note
}

// ProcessingService defines the interface for OCR and speech transcription.
// Results are cached per file content and language.
type ProcessingService interface {
	// OCRExisting extracts text from an image already stored on the canvas.
	OCRExisting(ctx context.Context, input RecognizeInput) (*RecognitionResult, error)

	// OCRUpload stores an image in the ocr folder and extracts its text.
	OCRUpload(ctx context.Context, upload UploadInput, lang string) (*RecognitionResult, error)

	// TranscribeExisting transcribes audio already stored on the canvas.
	TranscribeExisting(ctx context.Context, input RecognizeInput) (*RecognitionResult, error)

	// TranscribeUpload stores audio in the audio folder and transcribes it.
	TranscribeUpload(ctx context.Context, upload UploadInput, lang string) (*RecognitionResult, error)

	// Enqueue validates a task and publishes it for the worker.
	// Returns ErrAsyncUnavailable when no queue is configured.
	Enqueue(ctx context.Context, task repository.ProcessingTask) error

	// ProcessTask handles a processing task from the message queue.
	// Returns nil on success or permanent failure (bad input, max retries exceeded).
	// Returns error for transient failures that should trigger a retry.
	ProcessTask(ctx context.Context, task repository.ProcessingTask) error
}

// ProcessingServiceConfig holds configuration for ProcessingService.
type ProcessingServiceConfig struct {
	// TempDir is the base directory for converted audio files.
	TempDir string
	// MaxRetries is the maximum number of retry attempts before a task is dropped.
	MaxRetries int
	// EngineTimeout bounds one engine run shared by concurrent callers.
	// Zero means no bound beyond the engine itself.
	EngineTimeout time.Duration
}

// DefaultProcessingServiceConfig returns the default configuration.
func DefaultProcessingServiceConfig() ProcessingServiceConfig {
	return ProcessingServiceConfig{
		TempDir:       os.TempDir(),
		MaxRetries:    DefaultMaxRetries,
		EngineTimeout: DefaultEngineTimeout,
	}
}

type processingService struct {
	canvases  repository.CanvasRepository
	store     repository.MediaStore
	media     MediaService
	notes     NoteService
	ocr       engine.OCREngine
	speech    engine.SpeechEngine
	converter transcoder.AudioConverter
	cache     cache.ResultCache
	// queue is nil when asynchronous processing is disabled.
	queue   repository.MessageQueue
	sfGroup singleflight.Group

	tempDir       string
	maxRetries    int
	engineTimeout time.Duration
}

// ProcessingDeps groups the collaborators of ProcessingService.
type ProcessingDeps struct {
	Canvases  repository.CanvasRepository
	Store     repository.MediaStore
	Media     MediaService
	Notes     NoteService
	OCR       engine.OCREngine
	Speech    engine.SpeechEngine
	Converter transcoder.AudioConverter
	Cache     cache.ResultCache
	Queue     repository.MessageQueue
}

// NewProcessingService creates a new ProcessingService instance.
func NewProcessingService(deps ProcessingDeps, cfg ProcessingServiceConfig) ProcessingService {
	return &processingService{
		canvases:      deps.Canvases,
		store:         deps.Store,
		media:         deps.Media,
		notes:         deps.Notes,
		ocr:           deps.OCR,
		speech:        deps.Speech,
		converter:     deps.Converter,
		cache:         deps.Cache,
		queue:         deps.Queue,
		tempDir:       cfg.TempDir,
		maxRetries:    cfg.MaxRetries,
		engineTimeout: cfg.EngineTimeout,
	}
}

func (s *processingService) OCRExisting(ctx context.Context, input RecognizeInput) (*RecognitionResult, error) {
	return s.recognize(ctx, repository.TaskOCR, input.CanvasID, input.FilePath, input.Language)
}

func (s *processingService) OCRUpload(ctx context.Context, upload UploadInput, lang string) (*RecognitionResult, error) {
	// Reject the language before the upload is written to disk.
	if _, err := s.ocr.ResolveLanguage(lang); err != nil {
		return nil, err
	}

	upload.Kind = model.MediaOCR
	relPath, err := s.media.Upload(ctx, upload)
	if err != nil {
		return nil, err
	}
	return s.recognize(ctx, repository.TaskOCR, upload.CanvasID, relPath, lang)
}

func (s *processingService) TranscribeExisting(ctx context.Context, input RecognizeInput) (*RecognitionResult, error) {
	result, err := s.recognize(ctx, repository.TaskTranscribe, input.CanvasID, input.FilePath, input.Language)
	if err != nil {
		return nil, err
	}

	if input.NoteID != nil {
		note, err := s.notes.AttachTranscript(ctx, input.CanvasID, *input.NoteID, result.Text)
		if err != nil {
			return nil, fmt.Errorf("attach transcript: %w", err)
		}
		result.Note = note
	}
	return result, nil
}

func (s *processingService) TranscribeUpload(ctx context.Context, upload UploadInput, lang string) (*RecognitionResult, error) {
	if _, err := s.speech.ResolveLanguage(lang); err != nil {
		return nil, err
	}

	upload.Kind = model.MediaAudio
	relPath, err := s.media.Upload(ctx, upload)
	if err != nil {
		return nil, err
	}
	return s.recognize(ctx, repository.TaskTranscribe, upload.CanvasID, relPath, lang)
}

func (s *processingService) Enqueue(ctx context.Context, task repository.ProcessingTask) error {
	if s.queue == nil {
		return ErrAsyncUnavailable
	}

	lang, err := s.resolveLanguage(task.Kind, task.Language)
	if err != nil {
		return err
	}
	if _, err := s.canvases.GetByID(ctx, task.CanvasID); err != nil {
		return err
	}
	if _, err := s.store.Resolve(ctx, task.CanvasID, task.FilePath); err != nil {
		return err
	}

	task.Language = lang
	task.FilePath = normalizeRelPath(task.FilePath)
	task.RetryCount = 0

	if err := s.queue.PublishProcessingTask(ctx, task); err != nil {
		return fmt.Errorf("publish processing task: %w", err)
	}
	return nil
}

func (s *processingService) ProcessTask(ctx context.Context, task repository.ProcessingTask) error {
	if task.RetryCount >= s.maxRetries {
		slog.Error("dropping processing task after max retries",
			"kind", task.Kind,
			"canvas_id", task.CanvasID,
			"file_path", task.FilePath,
			"retry_count", task.RetryCount,
		)
		return nil
	}

	input := RecognizeInput{
		CanvasID: task.CanvasID,
		FilePath: task.FilePath,
		Language: task.Language,
		NoteID:   task.NoteID,
	}

	var err error
	switch task.Kind {
	case repository.TaskOCR:
		_, err = s.OCRExisting(ctx, input)
	case repository.TaskTranscribe:
		_, err = s.TranscribeExisting(ctx, input)
	default:
		err = ErrUnknownTaskKind
	}

	if err == nil {
		return nil
	}
	if isPermanent(err) {
		slog.Error("dropping processing task with permanent failure",
			"kind", task.Kind,
			"canvas_id", task.CanvasID,
			"file_path", task.FilePath,
			"error", err,
		)
		return nil
	}
	return err
}

// recognize runs the cache-aside flow shared by OCR and transcription.
// Concurrent misses for the same file and language run the engine once.
func (s *processingService) recognize(ctx context.Context, kind repository.TaskKind, canvasID uuid.UUID, relPath, lang string) (*RecognitionResult, error) {
	if _, err := s.canvases.GetByID(ctx, canvasID); err != nil {
		return nil, err
	}

	absPath, err := s.store.Resolve(ctx, canvasID, relPath)
	if err != nil {
		return nil, err
	}

	lang, err = s.resolveLanguage(kind, lang)
	if err != nil {
		return nil, err
	}

	relPath = normalizeRelPath(relPath)
	ns := cacheNamespace(kind)

	if text, ok := s.cache.Lookup(ns, absPath, lang); ok {
		return &RecognitionResult{
			Text:     text,
			FilePath: relPath,
			Language: lang,
			Cached:   true,
		}, nil
	}

	key := string(kind) + "|" + absPath + "|" + lang
	ch := s.sfGroup.DoChan(key, func() (any, error) {
		// The flight is not tied to the caller that started it. It runs until
		// the engine finishes or engineTimeout elapses.
		runCtx := context.WithoutCancel(ctx)
		if s.engineTimeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(runCtx, s.engineTimeout)
			defer cancel()
		}
		return s.runAndStore(runCtx, kind, canvasID, relPath, absPath, lang)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if res.Shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if res.Err != nil {
		return nil, res.Err
	}

	// Copy so callers sharing a flight can set Note independently.
	result := *res.Val.(*RecognitionResult)
	return &result, nil
}

func (s *processingService) runAndStore(ctx context.Context, kind repository.TaskKind, canvasID uuid.UUID, relPath, absPath, lang string) (*RecognitionResult, error) {
	text, err := s.runEngine(ctx, kind, absPath, lang)
	if err != nil {
		return nil, err
	}

	s.cache.Store(cacheNamespace(kind), absPath, lang, text)

	result := &RecognitionResult{
		Text:     text,
		FilePath: relPath,
		Language: lang,
	}

	sidecar, err := s.store.WriteSidecar(ctx, canvasID, relPath, text)
	if err != nil {
		slog.Warn("failed to write sidecar",
			"canvas_id", canvasID,
			"file_path", relPath,
			"error", err,
		)
		return result, nil
	}
	result.SidecarPath = sidecar
	s.media.Replicate(ctx, canvasID, sidecar, sidecarContentType)

	return result, nil
}

func (s *processingService) runEngine(ctx context.Context, kind repository.TaskKind, absPath, lang string) (string, error) {
	label := metrics.EngineOCR
	if kind == repository.TaskTranscribe {
		label = metrics.EngineSpeech
	}

	start := time.Now()
	var (
		text string
		err  error
	)
	switch kind {
	case repository.TaskOCR:
		text, err = s.ocr.Recognize(ctx, absPath, lang)
	case repository.TaskTranscribe:
		text, err = s.transcribe(ctx, absPath, lang)
	default:
		return "", ErrUnknownTaskKind
	}
	metrics.EngineDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.EngineRunsTotal.WithLabelValues(label, metrics.EngineStatusError).Inc()
		return "", err
	}
	metrics.EngineRunsTotal.WithLabelValues(label, metrics.EngineStatusSuccess).Inc()
	return text, nil
}

// transcribe converts the source to engine-format WAV in a temporary
// directory unless it already is one. The stored file is never modified.
func (s *processingService) transcribe(ctx context.Context, absPath, lang string) (string, error) {
	wavPath := absPath
	if !transcoder.IsPCM16kMono(absPath) {
		workDir, err := os.MkdirTemp(s.tempDir, "notecanvas-*")
		if err != nil {
			return "", fmt.Errorf("create work directory: %w", err)
		}
		defer os.RemoveAll(workDir)

		wavPath = filepath.Join(workDir, "audio.wav")
		if err := s.converter.ConvertToWAV(ctx, absPath, wavPath); err != nil {
			return "", fmt.Errorf("convert audio: %w", err)
		}
	}

	return s.speech.Transcribe(ctx, wavPath, lang)
}

func (s *processingService) resolveLanguage(kind repository.TaskKind, lang string) (string, error) {
	switch kind {
	case repository.TaskOCR:
		return s.ocr.ResolveLanguage(lang)
	case repository.TaskTranscribe:
		return s.speech.ResolveLanguage(lang)
	default:
		return "", ErrUnknownTaskKind
	}
}

func cacheNamespace(kind repository.TaskKind) cache.Namespace {
	if kind == repository.TaskTranscribe {
		return cache.NamespaceTranscript
	}
	return cache.NamespaceOCR
}

// isPermanent reports whether retrying a task can never succeed.
func isPermanent(err error) bool {
	for _, target := range []error{
		ErrUnknownTaskKind,
		ErrNotAudioNote,
		engine.ErrUnsupportedLanguage,
		repository.ErrCanvasNotFound,
		repository.ErrNoteNotFound,
		repository.ErrMediaNotFound,
		repository.ErrInvalidMediaPath,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
