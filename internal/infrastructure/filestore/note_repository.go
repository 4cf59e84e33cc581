package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/google/uuid"

	"github.com/hszk-dev/notecanvas/internal/domain/model"
	"github.com/hszk-dev/notecanvas/internal/domain/repository"
)

// NoteRepository implements repository.NoteRepository over one notes.json
// array per canvas. Every mutation rewrites the whole file; the mutex
// serializes read-modify-write cycles within this process.
type NoteRepository struct {
	layout *Layout
	mu     sync.Mutex
}

// NewNoteRepository creates a new NoteRepository instance.
func NewNoteRepository(layout *Layout) *NoteRepository {
	return &NoteRepository{layout: layout}
}

// List returns the notes of a canvas in file order.
func (r *NoteRepository) List(ctx context.Context, canvasID uuid.UUID) ([]*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(canvasID)
}

// Create appends note to the canvas.
func (r *NoteRepository) Create(ctx context.Context, canvasID uuid.UUID, note *model.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notes, err := r.load(canvasID)
	if err != nil {
		return err
	}
	notes = append(notes, note)
	return r.save(canvasID, notes)
}

// GetByID finds one note on the canvas.
func (r *NoteRepository) GetByID(ctx context.Context, canvasID, noteID uuid.UUID) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	notes, err := r.load(canvasID)
	if err != nil {
		return nil, err
	}
	for _, n := range notes {
		if n.ID == noteID {
			return n, nil
		}
	}
	return nil, repository.ErrNoteNotFound
}

// Update replaces the note with the same ID.
func (r *NoteRepository) Update(ctx context.Context, canvasID uuid.UUID, note *model.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notes, err := r.load(canvasID)
	if err != nil {
		return err
	}
	for i, n := range notes {
		if n.ID == note.ID {
			notes[i] = note
			return r.save(canvasID, notes)
		}
	}
	return repository.ErrNoteNotFound
}

// Delete removes the note with noteID.
func (r *NoteRepository) Delete(ctx context.Context, canvasID, noteID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notes, err := r.load(canvasID)
	if err != nil {
		return err
	}

	kept := notes[:0]
	for _, n := range notes {
		if n.ID != noteID {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(notes) {
		return repository.ErrNoteNotFound
	}
	return r.save(canvasID, kept)
}

// ApplyLayout updates positions and sizes with a single file write.
func (r *NoteRepository) ApplyLayout(ctx context.Context, canvasID uuid.UUID, updates []model.LayoutUpdate) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	notes, err := r.load(canvasID)
	if err != nil {
		return 0, err
	}

	byID := make(map[uuid.UUID]*model.Note, len(notes))
	for _, n := range notes {
		byID[n.ID] = n
	}

	updated := 0
	for _, u := range updates {
		if n, ok := byID[u.ID]; ok {
			n.ApplyLayout(u)
			updated++
		}
	}
	if updated == 0 {
		return 0, nil
	}

	if err := r.save(canvasID, notes); err != nil {
		return 0, err
	}
	return updated, nil
}

// load reads notes.json. A canvas without the file has no notes yet.
// Caller must hold r.mu.
func (r *NoteRepository) load(canvasID uuid.UUID) ([]*model.Note, error) {
	if !r.layout.canvasExists(canvasID) {
		return nil, repository.ErrCanvasNotFound
	}

	notes := []*model.Note{}
	if err := readJSON(r.layout.notesPath(canvasID), &notes); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*model.Note{}, nil
		}
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	return notes, nil
}

// save rewrites notes.json. Caller must hold r.mu.
func (r *NoteRepository) save(canvasID uuid.UUID, notes []*model.Note) error {
	if err := writeJSON(r.layout.notesPath(canvasID), notes); err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}
	return nil
}

// Compile-time verification that NoteRepository implements repository.NoteRepository.
var _ repository.NoteRepository = (*NoteRepository)(nil)
