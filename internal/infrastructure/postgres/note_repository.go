package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/notecanvas/internal/domain/model"
	"github.com/hszk-dev/notecanvas/internal/domain/repository"
)

const noteColumns = `id, type, x, y, width, height, tags, title, content, file_path, caption, transcript, drawing_data, created_at, updated_at`

// NoteRepository implements repository.NoteRepository using PostgreSQL.
type NoteRepository struct {
	db TxDB
}

// NewNoteRepository creates a new NoteRepository instance.
func NewNoteRepository(db TxDB) *NoteRepository {
	return &NoteRepository{db: db}
}

// List returns the notes of a canvas in insertion order.
func (r *NoteRepository) List(ctx context.Context, canvasID uuid.UUID) ([]*model.Note, error) {
	if err := r.ensureCanvas(ctx, canvasID); err != nil {
		return nil, err
	}

	query := `SELECT ` + noteColumns + ` FROM notes WHERE canvas_id = $1 ORDER BY seq ASC`

	rows, err := r.db.Query(ctx, query, canvasID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	notes := []*model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return notes, nil
}

// Create inserts a note on the canvas.
func (r *NoteRepository) Create(ctx context.Context, canvasID uuid.UUID, note *model.Note) error {
	const query = `
		INSERT INTO notes (id, canvas_id, type, x, y, width, height, tags, title, content,
			file_path, caption, transcript, drawing_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.Exec(ctx, query,
		note.ID,
		canvasID,
		note.Type.String(),
		note.X,
		note.Y,
		note.Width,
		note.Height,
		tagsOrEmpty(note.Tags),
		nullString(note.Title),
		nullString(note.Content),
		nullString(note.FilePath),
		nullString(note.Caption),
		nullString(note.Transcript),
		nullJSON(note.DrawingData),
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return repository.ErrCanvasNotFound
		}
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// GetByID retrieves one note of a canvas.
func (r *NoteRepository) GetByID(ctx context.Context, canvasID, noteID uuid.UUID) (*model.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE canvas_id = $1 AND id = $2`

	n, err := scanNote(r.db.QueryRow(ctx, query, canvasID, noteID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note by ID: %w", err)
	}

	return n, nil
}

// Update replaces every editable column of a note.
func (r *NoteRepository) Update(ctx context.Context, canvasID uuid.UUID, note *model.Note) error {
	const query = `
		UPDATE notes
		SET type = $3, x = $4, y = $5, width = $6, height = $7, tags = $8, title = $9,
			content = $10, file_path = $11, caption = $12, transcript = $13,
			drawing_data = $14, updated_at = $15
		WHERE canvas_id = $1 AND id = $2
	`

	tag, err := r.db.Exec(ctx, query,
		canvasID,
		note.ID,
		note.Type.String(),
		note.X,
		note.Y,
		note.Width,
		note.Height,
		tagsOrEmpty(note.Tags),
		nullString(note.Title),
		nullString(note.Content),
		nullString(note.FilePath),
		nullString(note.Caption),
		nullString(note.Transcript),
		nullJSON(note.DrawingData),
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNoteNotFound
	}

	return nil
}

// Delete removes one note.
func (r *NoteRepository) Delete(ctx context.Context, canvasID, noteID uuid.UUID) error {
	const query = `DELETE FROM notes WHERE canvas_id = $1 AND id = $2`

	tag, err := r.db.Exec(ctx, query, canvasID, noteID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNoteNotFound
	}

	return nil
}

// ApplyLayout moves and resizes notes in one transaction. Unknown IDs are skipped.
func (r *NoteRepository) ApplyLayout(ctx context.Context, canvasID uuid.UUID, updates []model.LayoutUpdate) (int, error) {
	const query = `
		UPDATE notes
		SET x = COALESCE($3, x), y = COALESCE($4, y),
			width = COALESCE($5, width), height = COALESCE($6, height),
			updated_at = $7
		WHERE canvas_id = $1 AND id = $2
	`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	now := time.Now().UTC()
	updated := 0
	for _, u := range updates {
		tag, err := tx.Exec(ctx, query, canvasID, u.ID, u.X, u.Y, u.Width, u.Height, now)
		if err != nil {
			_ = tx.Rollback(ctx)
			return 0, fmt.Errorf("failed to apply layout to note %s: %w", u.ID, err)
		}
		updated += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit layout: %w", err)
	}

	return updated, nil
}

func (r *NoteRepository) ensureCanvas(ctx context.Context, canvasID uuid.UUID) error {
	const query = `SELECT EXISTS (SELECT 1 FROM canvases WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, canvasID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check canvas: %w", err)
	}
	if !exists {
		return repository.ErrCanvasNotFound
	}
	return nil
}

// scanNote reads one row selected with noteColumns.
func scanNote(row pgx.Row) (*model.Note, error) {
	var (
		n           model.Note
		noteType    string
		title       *string
		content     *string
		filePath    *string
		caption     *string
		transcript  *string
		drawingData []byte
	)

	err := row.Scan(
		&n.ID,
		&noteType,
		&n.X,
		&n.Y,
		&n.Width,
		&n.Height,
		&n.Tags,
		&title,
		&content,
		&filePath,
		&caption,
		&transcript,
		&drawingData,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Type = model.NoteType(noteType)
	n.Title = derefString(title)
	n.Content = derefString(content)
	n.FilePath = derefString(filePath)
	n.Caption = derefString(caption)
	n.Transcript = derefString(transcript)
	if len(drawingData) > 0 {
		n.DrawingData = json.RawMessage(drawingData)
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}

	return &n, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// nullJSON stores absent drawing data as SQL NULL.
func nullJSON(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

// Compile-time verification that NoteRepository implements repository.NoteRepository.
var _ repository.NoteRepository = (*NoteRepository)(nil)
