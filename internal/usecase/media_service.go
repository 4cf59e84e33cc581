package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hszk-dev/notecanvas/internal/domain/model"
	"github.com/hszk-dev/notecanvas/internal/domain/repository"
	"github.com/hszk-dev/notecanvas/internal/infrastructure/storage"
)

// UploadInput contains the input parameters for storing an uploaded file.
type UploadInput struct {
	CanvasID    uuid.UUID
	Kind        model.MediaKind
	FileName    string
	ContentType string
	Body        io.Reader
}

// MediaService defines the interface for canvas media operations.
type MediaService interface {
	// Upload stores a file in the media folder of input.Kind and returns its
	// relative path. The content type must match the folder.
	Upload(ctx context.Context, input UploadInput) (string, error)

	// ListMedia returns the relative paths of every media file of a canvas.
	ListMedia(ctx context.Context, canvasID uuid.UUID) (map[model.MediaKind][]string, error)

	// ResolveMedia maps a relative media path to the file on disk.
	ResolveMedia(ctx context.Context, canvasID uuid.UUID, relPath string) (string, error)

	// MediaURL returns a download URL: presigned when the object storage
	// replica holds the file, otherwise the local /media route.
	MediaURL(ctx context.Context, canvasID uuid.UUID, relPath string) (string, error)

	// Replicate copies a stored media file to object storage.
	// It is a no-op without a replica and only logs failures.
	Replicate(ctx context.Context, canvasID uuid.UUID, relPath, contentType string)
}

// MediaServiceConfig holds configuration for MediaService.
type MediaServiceConfig struct {
	// DownloadURLExpiry is the validity of presigned download URLs.
	DownloadURLExpiry time.Duration
	// LocalURLPrefix is the route serving media files from disk.
	LocalURLPrefix string
}

// DefaultMediaServiceConfig returns the default configuration.
func DefaultMediaServiceConfig() MediaServiceConfig {
	return MediaServiceConfig{
		DownloadURLExpiry: time.Hour,
		LocalURLPrefix:    "/media",
	}
}

// ocrContentTypes are the image formats the OCR engine is known to read.
var ocrContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

type mediaService struct {
	canvases repository.CanvasRepository
	media    repository.MediaStore
	replica  repository.ObjectStorage

	downloadURLExpiry time.Duration
	localURLPrefix    string
}

// NewMediaService creates a new MediaService instance.
// replica may be nil.
func NewMediaService(
	canvases repository.CanvasRepository,
	media repository.MediaStore,
	replica repository.ObjectStorage,
	cfg MediaServiceConfig,
) MediaService {
	return &mediaService{
		canvases:          canvases,
		media:             media,
		replica:           replica,
		downloadURLExpiry: cfg.DownloadURLExpiry,
		localURLPrefix:    strings.TrimRight(cfg.LocalURLPrefix, "/"),
	}
}

func (s *mediaService) Upload(ctx context.Context, input UploadInput) (string, error) {
	if strings.TrimSpace(input.FileName) == "" || input.Body == nil {
		return "", ErrEmptyUpload
	}
	if err := checkContentType(input.Kind, input.ContentType); err != nil {
		return "", err
	}
	if _, err := s.canvases.GetByID(ctx, input.CanvasID); err != nil {
		return "", err
	}

	relPath, err := s.media.Save(ctx, input.CanvasID, input.Kind, input.FileName, input.Body)
	if err != nil {
		return "", fmt.Errorf("save media: %w", err)
	}

	s.Replicate(ctx, input.CanvasID, relPath, input.ContentType)
	return relPath, nil
}

func (s *mediaService) ListMedia(ctx context.Context, canvasID uuid.UUID) (map[model.MediaKind][]string, error) {
	if _, err := s.canvases.GetByID(ctx, canvasID); err != nil {
		return nil, err
	}
	return s.media.List(ctx, canvasID)
}

func (s *mediaService) ResolveMedia(ctx context.Context, canvasID uuid.UUID, relPath string) (string, error) {
	return s.media.Resolve(ctx, canvasID, relPath)
}

func (s *mediaService) MediaURL(ctx context.Context, canvasID uuid.UUID, relPath string) (string, error) {
	if _, err := s.media.Resolve(ctx, canvasID, relPath); err != nil {
		return "", err
	}
	rel := normalizeRelPath(relPath)

	if s.replica != nil {
		key := storage.MediaKey(canvasID, rel)
		exists, err := s.replica.Exists(ctx, key)
		if err != nil {
			slog.Warn("failed to check media replica, using local URL",
				"canvas_id", canvasID,
				"file_path", rel,
				"error", err,
			)
		}
		if exists {
			url, err := s.replica.GeneratePresignedDownloadURL(ctx, key, s.downloadURLExpiry)
			if err != nil {
				return "", fmt.Errorf("generate presigned download URL: %w", err)
			}
			return url, nil
		}
	}

	return s.localURLPrefix + "/" + canvasID.String() + "/" + rel, nil
}

func (s *mediaService) Replicate(ctx context.Context, canvasID uuid.UUID, relPath, contentType string) {
	if s.replica == nil {
		return
	}

	if err := s.replicate(ctx, canvasID, relPath, contentType); err != nil {
		slog.Warn("failed to replicate media file",
			"canvas_id", canvasID,
			"file_path", relPath,
			"error", err,
		)
	}
}

func (s *mediaService) replicate(ctx context.Context, canvasID uuid.UUID, relPath, contentType string) error {
	abs, err := s.media.Resolve(ctx, canvasID, relPath)
	if err != nil {
		return err
	}

	f, err := os.Open(abs)
	if err != nil {
		return fmt.Errorf("open media file: %w", err)
	}
	defer f.Close()

	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(relPath))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return s.replica.Upload(ctx, storage.MediaKey(canvasID, normalizeRelPath(relPath)), f, contentType)
}

// checkContentType gates uploads by media folder.
func checkContentType(kind model.MediaKind, contentType string) error {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}

	switch kind {
	case model.MediaImages:
		if strings.HasPrefix(mediaType, "image/") {
			return nil
		}
	case model.MediaOCR:
		if ocrContentTypes[mediaType] {
			return nil
		}
	case model.MediaAudio:
		if strings.HasPrefix(mediaType, "audio/") {
			return nil
		}
	}
	return fmt.Errorf("%w: %q for %s", ErrUnsupportedMediaType, contentType, kind)
}

func normalizeRelPath(relPath string) string {
	return path.Clean(strings.ReplaceAll(strings.TrimSpace(relPath), `\`, "/"))
}
