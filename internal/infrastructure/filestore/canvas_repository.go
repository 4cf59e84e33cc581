package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/hszk-dev/notecanvas/internal/domain/model"
	"github.com/hszk-dev/notecanvas/internal/domain/repository"
)

// CanvasRepository implements repository.CanvasRepository with one
// directory per canvas holding meta.json.
type CanvasRepository struct {
	layout *Layout
}

// NewCanvasRepository creates a new CanvasRepository instance.
func NewCanvasRepository(layout *Layout) *CanvasRepository {
	return &CanvasRepository{layout: layout}
}

// Create makes the canvas directory, meta.json and an empty notes.json.
func (r *CanvasRepository) Create(ctx context.Context, canvas *model.Canvas) error {
	dir := r.layout.CanvasDir(canvas.ID)
	if err := os.Mkdir(dir, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return repository.ErrDuplicateCanvas
		}
		return fmt.Errorf("failed to create canvas directory: %w", err)
	}

	if err := writeJSON(r.layout.notesPath(canvas.ID), []*model.Note{}); err != nil {
		return fmt.Errorf("failed to write notes: %w", err)
	}
	if err := writeJSON(r.layout.metaPath(canvas.ID), canvas); err != nil {
		return fmt.Errorf("failed to write canvas meta: %w", err)
	}
	return nil
}

// GetByID reads meta.json of a canvas.
func (r *CanvasRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Canvas, error) {
	var canvas model.Canvas
	if err := readJSON(r.layout.metaPath(id), &canvas); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repository.ErrCanvasNotFound
		}
		return nil, fmt.Errorf("failed to read canvas meta: %w", err)
	}
	return &canvas, nil
}

// List returns every canvas with a readable meta.json, oldest first.
// Directories that are not canvases are skipped.
func (r *CanvasRepository) List(ctx context.Context) ([]*model.Canvas, error) {
	entries, err := os.ReadDir(r.layout.Root())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*model.Canvas{}, nil
		}
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	canvases := make([]*model.Canvas, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := uuid.Parse(entry.Name())
		if err != nil {
			continue
		}
		canvas, err := r.GetByID(ctx, id)
		if err != nil {
			continue
		}
		canvases = append(canvases, canvas)
	}

	sort.SliceStable(canvases, func(i, j int) bool {
		return canvases[i].CreatedAt.Before(canvases[j].CreatedAt)
	})
	return canvases, nil
}

// Delete removes the whole canvas directory, media included.
func (r *CanvasRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if !r.layout.canvasExists(id) {
		return repository.ErrCanvasNotFound
	}
	if err := os.RemoveAll(r.layout.CanvasDir(id)); err != nil {
		return fmt.Errorf("failed to delete canvas: %w", err)
	}
	return nil
}

// Compile-time verification that CanvasRepository implements repository.CanvasRepository.
var _ repository.CanvasRepository = (*CanvasRepository)(nil)
