package postgres

import (
	"context"
	"fmt"
)

// Schema creates the canvas tables. Every statement is idempotent.
// Notes keep insertion order through seq, matching the file backend.
const Schema = `
CREATE TABLE IF NOT EXISTS canvases (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	seq          BIGSERIAL,
	id           UUID PRIMARY KEY,
	canvas_id    UUID NOT NULL REFERENCES canvases(id) ON DELETE CASCADE,
	type         TEXT NOT NULL,
	x            DOUBLE PRECISION NOT NULL DEFAULT 0,
	y            DOUBLE PRECISION NOT NULL DEFAULT 0,
	width        DOUBLE PRECISION NOT NULL DEFAULT 0,
	height       DOUBLE PRECISION NOT NULL DEFAULT 0,
	tags         TEXT[] NOT NULL DEFAULT '{}',
	title        TEXT,
	content      TEXT,
	file_path    TEXT,
	caption      TEXT,
	transcript   TEXT,
	drawing_data JSONB,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS notes_canvas_seq_idx ON notes (canvas_id, seq);
`

// Migrate applies Schema.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// nullString returns nil for empty strings, otherwise returns a pointer to the string.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
