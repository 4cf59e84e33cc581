package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hszk-dev/notecanvas/internal/domain/model"
	"github.com/hszk-dev/notecanvas/internal/domain/repository"
	"github.com/hszk-dev/notecanvas/internal/infrastructure/storage"
)

// CanvasService defines the interface for canvas business logic operations.
type CanvasService interface {
	// ListCanvases returns every canvas, oldest first.
	ListCanvases(ctx context.Context) ([]*model.Canvas, error)

	// CreateCanvas persists a new canvas and prepares its media folders.
	CreateCanvas(ctx context.Context, name string) (*model.Canvas, error)

	// GetCanvas retrieves a canvas by ID.
	GetCanvas(ctx context.Context, canvasID uuid.UUID) (*model.Canvas, error)

	// DeleteCanvas removes a canvas, its notes and all of its media.
	DeleteCanvas(ctx context.Context, canvasID uuid.UUID) error
}

type canvasService struct {
	repo  repository.CanvasRepository
	media repository.MediaStore
	// replica is nil when object storage is disabled.
	replica repository.ObjectStorage
}

// NewCanvasService creates a new CanvasService instance.
// replica may be nil.
func NewCanvasService(
	repo repository.CanvasRepository,
	media repository.MediaStore,
	replica repository.ObjectStorage,
) CanvasService {
	return &canvasService{
		repo:    repo,
		media:   media,
		replica: replica,
	}
}

func (s *canvasService) ListCanvases(ctx context.Context) ([]*model.Canvas, error) {
	canvases, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list canvases: %w", err)
	}
	return canvases, nil
}

// CreateCanvas stores the canvas first so a media folder never exists without
// its canvas. If the folders cannot be created the canvas is removed again.
func (s *canvasService) CreateCanvas(ctx context.Context, name string) (*model.Canvas, error) {
	canvas, err := model.NewCanvas(name)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, canvas); err != nil {
		return nil, fmt.Errorf("create canvas: %w", err)
	}

	if err := s.media.InitCanvas(ctx, canvas.ID); err != nil {
		if delErr := s.repo.Delete(ctx, canvas.ID); delErr != nil {
			slog.Error("failed to roll back canvas after media init failure",
				"canvas_id", canvas.ID,
				"error", delErr,
			)
		}
		return nil, fmt.Errorf("init canvas media: %w", err)
	}

	return canvas, nil
}

func (s *canvasService) GetCanvas(ctx context.Context, canvasID uuid.UUID) (*model.Canvas, error) {
	return s.repo.GetByID(ctx, canvasID)
}

func (s *canvasService) DeleteCanvas(ctx context.Context, canvasID uuid.UUID) error {
	if err := s.repo.Delete(ctx, canvasID); err != nil {
		return err
	}

	if err := s.media.RemoveCanvas(ctx, canvasID); err != nil {
		return fmt.Errorf("remove canvas media: %w", err)
	}

	if s.replica != nil {
		if err := s.replica.DeletePrefix(ctx, storage.CanvasPrefix(canvasID)); err != nil {
			// Replica objects are orphaned but unreachable through the API.
			slog.Warn("failed to delete canvas replica objects",
				"canvas_id", canvasID,
				"error", err,
			)
		}
	}

	return nil
}
