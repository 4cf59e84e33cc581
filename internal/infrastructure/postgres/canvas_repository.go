package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/notecanvas/internal/domain/model"
	"github.com/hszk-dev/notecanvas/internal/domain/repository"
)

// CanvasRepository implements repository.CanvasRepository using PostgreSQL.
type CanvasRepository struct {
	db DBTX
}

// NewCanvasRepository creates a new CanvasRepository instance.
func NewCanvasRepository(db DBTX) *CanvasRepository {
	return &CanvasRepository{db: db}
}

// Create persists a new canvas.
func (r *CanvasRepository) Create(ctx context.Context, canvas *model.Canvas) error {
	const query = `
		INSERT INTO canvases (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query, canvas.ID, canvas.Name, canvas.CreatedAt, canvas.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateCanvas
		}
		return fmt.Errorf("failed to create canvas: %w", err)
	}

	return nil
}

// GetByID retrieves a canvas by its unique identifier.
func (r *CanvasRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Canvas, error) {
	const query = `
		SELECT id, name, created_at, updated_at
		FROM canvases
		WHERE id = $1
	`

	var c model.Canvas
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrCanvasNotFound
		}
		return nil, fmt.Errorf("failed to get canvas by ID: %w", err)
	}

	return &c, nil
}

// List returns all canvases, oldest first.
func (r *CanvasRepository) List(ctx context.Context) ([]*model.Canvas, error) {
	const query = `
		SELECT id, name, created_at, updated_at
		FROM canvases
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query canvases: %w", err)
	}
	defer rows.Close()

	canvases := []*model.Canvas{}
	for rows.Next() {
		var c model.Canvas
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan canvas: %w", err)
		}
		canvases = append(canvases, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating canvases: %w", err)
	}

	return canvases, nil
}

// Delete removes a canvas. Its notes go with it through ON DELETE CASCADE.
func (r *CanvasRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM canvases WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete canvas: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrCanvasNotFound
	}

	return nil
}

// Compile-time verification that CanvasRepository implements repository.CanvasRepository.
var _ repository.CanvasRepository = (*CanvasRepository)(nil)
