package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hszk-dev/notecanvas/internal/domain/model"
	"github.com/hszk-dev/notecanvas/internal/domain/repository"
)

// NoteService defines the interface for note business logic operations.
// Every operation fails with repository.ErrCanvasNotFound for an unknown canvas.
type NoteService interface {
	// ListNotes returns the notes of a canvas in insertion order.
	ListNotes(ctx context.Context, canvasID uuid.UUID) ([]*model.Note, error)

	// CreateNote validates input and appends a new note.
	CreateNote(ctx context.Context, canvasID uuid.UUID, input model.NoteInput) (*model.Note, error)

	// UpdateNote replaces the content of an existing note.
	UpdateNote(ctx context.Context, canvasID, noteID uuid.UUID, input model.NoteInput) (*model.Note, error)

	// DeleteNote removes a note.
	DeleteNote(ctx context.Context, canvasID, noteID uuid.UUID) error

	// UpdatePositions moves notes in bulk. Every update must carry x and y.
	// Returns the number of notes changed; unknown IDs are skipped.
	UpdatePositions(ctx context.Context, canvasID uuid.UUID, updates []model.LayoutUpdate) (int, error)

	// UpdateSizes resizes notes in bulk. Every update must carry width and height.
	UpdateSizes(ctx context.Context, canvasID uuid.UUID, updates []model.LayoutUpdate) (int, error)

	// AttachTranscript stores recognized speech on an audio note.
	AttachTranscript(ctx context.Context, canvasID, noteID uuid.UUID, transcript string) (*model.Note, error)
}

type noteService struct {
	canvases repository.CanvasRepository
	notes    repository.NoteRepository
}

// NewNoteService creates a new NoteService instance.
func NewNoteService(canvases repository.CanvasRepository, notes repository.NoteRepository) NoteService {
	return &noteService{
		canvases: canvases,
		notes:    notes,
	}
}

func (s *noteService) ListNotes(ctx context.Context, canvasID uuid.UUID) ([]*model.Note, error) {
	if err := s.ensureCanvas(ctx, canvasID); err != nil {
		return nil, err
	}
	return s.notes.List(ctx, canvasID)
}

func (s *noteService) CreateNote(ctx context.Context, canvasID uuid.UUID, input model.NoteInput) (*model.Note, error) {
	if err := s.ensureCanvas(ctx, canvasID); err != nil {
		return nil, err
	}

	note, err := model.NewNote(input)
	if err != nil {
		return nil, err
	}

	if err := s.notes.Create(ctx, canvasID, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

func (s *noteService) UpdateNote(ctx context.Context, canvasID, noteID uuid.UUID, input model.NoteInput) (*model.Note, error) {
	if err := s.ensureCanvas(ctx, canvasID); err != nil {
		return nil, err
	}

	note, err := s.notes.GetByID(ctx, canvasID, noteID)
	if err != nil {
		return nil, err
	}

	if err := note.Apply(input); err != nil {
		return nil, err
	}

	if err := s.notes.Update(ctx, canvasID, note); err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return note, nil
}

func (s *noteService) DeleteNote(ctx context.Context, canvasID, noteID uuid.UUID) error {
	if err := s.ensureCanvas(ctx, canvasID); err != nil {
		return err
	}
	return s.notes.Delete(ctx, canvasID, noteID)
}

func (s *noteService) UpdatePositions(ctx context.Context, canvasID uuid.UUID, updates []model.LayoutUpdate) (int, error) {
	positions := make([]model.LayoutUpdate, len(updates))
	for i, u := range updates {
		if u.ID == uuid.Nil || !u.HasPosition() {
			return 0, fmt.Errorf("update %d: %w", i, model.ErrInvalidLayoutUpdate)
		}
		positions[i] = model.LayoutUpdate{ID: u.ID, X: u.X, Y: u.Y}
	}
	return s.applyLayout(ctx, canvasID, positions)
}

func (s *noteService) UpdateSizes(ctx context.Context, canvasID uuid.UUID, updates []model.LayoutUpdate) (int, error) {
	sizes := make([]model.LayoutUpdate, len(updates))
	for i, u := range updates {
		if u.ID == uuid.Nil || !u.HasSize() {
			return 0, fmt.Errorf("update %d: %w", i, model.ErrInvalidLayoutUpdate)
		}
		sizes[i] = model.LayoutUpdate{ID: u.ID, Width: u.Width, Height: u.Height}
		if err := sizes[i].Validate(); err != nil {
			return 0, fmt.Errorf("update %d: %w", i, err)
		}
	}
	return s.applyLayout(ctx, canvasID, sizes)
}

func (s *noteService) applyLayout(ctx context.Context, canvasID uuid.UUID, updates []model.LayoutUpdate) (int, error) {
	if err := s.ensureCanvas(ctx, canvasID); err != nil {
		return 0, err
	}
	if len(updates) == 0 {
		return 0, nil
	}

	n, err := s.notes.ApplyLayout(ctx, canvasID, updates)
	if err != nil {
		return 0, fmt.Errorf("apply layout: %w", err)
	}
	return n, nil
}

func (s *noteService) AttachTranscript(ctx context.Context, canvasID, noteID uuid.UUID, transcript string) (*model.Note, error) {
	if err := s.ensureCanvas(ctx, canvasID); err != nil {
		return nil, err
	}

	note, err := s.notes.GetByID(ctx, canvasID, noteID)
	if err != nil {
		return nil, err
	}
	if note.Type != model.NoteTypeAudio {
		return nil, ErrNotAudioNote
	}

	note.SetTranscript(transcript)
	if err := s.notes.Update(ctx, canvasID, note); err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return note, nil
}

func (s *noteService) ensureCanvas(ctx context.Context, canvasID uuid.UUID) error {
	_, err := s.canvases.GetByID(ctx, canvasID)
	return err
}
