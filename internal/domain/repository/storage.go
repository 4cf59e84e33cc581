package repository

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/hszk-dev/notecanvas/internal/domain/model"
)

// MediaStore defines the interface for canvas media files on the local disk.
// Recognition engines need local paths, so media always lives on a filesystem.
type MediaStore interface {
	// InitCanvas creates the media folders of a canvas. It is idempotent.
	InitCanvas(ctx context.Context, canvasID uuid.UUID) error

	// RemoveCanvas deletes every media file of a canvas.
	RemoveCanvas(ctx context.Context, canvasID uuid.UUID) error

	// Save writes r into the kind folder under a generated name that keeps the
	// extension of originalName, and returns the relative path (e.g. "images/ab12.png").
	Save(ctx context.Context, canvasID uuid.UUID, kind model.MediaKind, originalName string, r io.Reader) (string, error)

	// Resolve maps a relative media path to an absolute path on disk.
	// Returns ErrInvalidMediaPath for paths outside the media folders and
	// ErrMediaNotFound if the file does not exist.
	Resolve(ctx context.Context, canvasID uuid.UUID, relPath string) (string, error)

	// List returns relative paths of all files per media folder.
	List(ctx context.Context, canvasID uuid.UUID) (map[model.MediaKind][]string, error)

	// WriteSidecar stores recognized text next to its source as
	// "transcripts/<source name>.txt" and returns that relative path.
	WriteSidecar(ctx context.Context, canvasID uuid.UUID, sourceRelPath, text string) (string, error)
}

// ObjectStorage defines the interface for object storage operations.
// Implementations should be provided by the infrastructure layer (e.g., MinIO, S3).
type ObjectStorage interface {
	// Upload stores an object in the storage.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error

	// GeneratePresignedDownloadURL creates a presigned URL for downloading an object.
	// The URL is valid for the specified duration.
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Exists checks if an object exists in the storage.
	Exists(ctx context.Context, key string) (bool, error)

	// DeletePrefix removes every object whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
