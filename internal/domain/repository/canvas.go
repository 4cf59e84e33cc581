package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hszk-dev/notecanvas/internal/domain/model"
)

// CanvasRepository defines the interface for canvas persistence operations.
type CanvasRepository interface {
	// Create persists a new canvas.
	// Returns ErrDuplicateCanvas if a canvas with the same ID exists.
	Create(ctx context.Context, canvas *model.Canvas) error

	// GetByID retrieves a canvas by its unique identifier.
	// Returns nil and ErrCanvasNotFound if the canvas does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Canvas, error)

	// List returns all canvases ordered by creation time.
	List(ctx context.Context) ([]*model.Canvas, error)

	// Delete removes a canvas and its notes.
	// Returns ErrCanvasNotFound if the canvas does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// NoteRepository defines the interface for note persistence operations.
// Notes are always addressed through their canvas.
type NoteRepository interface {
	// List returns every note on the canvas in insertion order.
	List(ctx context.Context, canvasID uuid.UUID) ([]*model.Note, error)

	// Create appends a note to the canvas.
	Create(ctx context.Context, canvasID uuid.UUID, note *model.Note) error

	// GetByID retrieves one note.
	// Returns nil and ErrNoteNotFound if the note does not exist on the canvas.
	GetByID(ctx context.Context, canvasID, noteID uuid.UUID) (*model.Note, error)

	// Update replaces a stored note.
	// Returns ErrNoteNotFound if the note does not exist on the canvas.
	Update(ctx context.Context, canvasID uuid.UUID, note *model.Note) error

	// Delete removes a note.
	// Returns ErrNoteNotFound if the note does not exist on the canvas.
	Delete(ctx context.Context, canvasID, noteID uuid.UUID) error

	// ApplyLayout applies position/size updates in one write and returns how
	// many notes were changed. Updates for unknown note IDs are skipped.
	ApplyLayout(ctx context.Context, canvasID uuid.UUID, updates []model.LayoutUpdate) (int, error)
}
