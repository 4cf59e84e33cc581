package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyCanvasName   = errors.New("canvas name cannot be empty")
	ErrCanvasNameTooLong = errors.New("canvas name exceeds maximum length of 255 characters")
)

const maxCanvasNameLength = 255

// Canvas is a named container for notes and their media.
type Canvas struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCanvas creates a Canvas with a fresh ID.
func NewCanvas(name string) (*Canvas, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyCanvasName
	}
	if len(name) > maxCanvasNameLength {
		return nil, ErrCanvasNameTooLong
	}

	now := time.Now().UTC()
	return &Canvas{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
