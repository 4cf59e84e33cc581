package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// NoteType identifies what a note holds.
type NoteType string

const (
	NoteTypeText    NoteType = "text"
	NoteTypeImage   NoteType = "image"
	NoteTypeAudio   NoteType = "audio"
	NoteTypeDrawing NoteType = "drawing"
)

func (t NoteType) IsValid() bool {
	switch t {
	case NoteTypeText, NoteTypeImage, NoteTypeAudio, NoteTypeDrawing:
		return true
	default:
		return false
	}
}

func (t NoteType) String() string {
	return string(t)
}

var (
	ErrInvalidNoteType      = errors.New("invalid note type")
	ErrNoteTitleRequired    = errors.New("text note requires a title")
	ErrNoteFilePathRequired = errors.New("media note requires a file path")
	ErrNoteDrawingRequired  = errors.New("drawing note requires drawing data object")
	ErrInvalidNoteSize      = errors.New("note width and height must not be negative")
	ErrInvalidLayoutUpdate  = errors.New("invalid layout update")
)

// NoteInput holds the client-editable fields of a note.
// Fields that do not apply to the note's type are ignored.
type NoteInput struct {
	Type   NoteType `json:"type"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width,omitempty"`
	Height float64  `json:"height,omitempty"`
	Tags   []string `json:"tags"`

	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`

	FilePath   string `json:"file_path,omitempty"`
	Caption    string `json:"caption,omitempty"`
	Transcript string `json:"transcript,omitempty"`

	DrawingData json.RawMessage `json:"drawing_data,omitempty"`
}

// Validate checks the fields required by the note's type.
func (in NoteInput) Validate() error {
	if !in.Type.IsValid() {
		return ErrInvalidNoteType
	}
	if in.Width < 0 || in.Height < 0 {
		return ErrInvalidNoteSize
	}

	switch in.Type {
	case NoteTypeText:
		if in.Title == "" {
			return ErrNoteTitleRequired
		}
	case NoteTypeImage, NoteTypeAudio:
		if in.FilePath == "" {
			return ErrNoteFilePathRequired
		}
	case NoteTypeDrawing:
		trimmed := bytes.TrimSpace(in.DrawingData)
		if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
			return ErrNoteDrawingRequired
		}
	}
	return nil
}

// Note is a single item placed on a canvas.
type Note struct {
	ID     uuid.UUID `json:"id"`
	Type   NoteType  `json:"type"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Width  float64   `json:"width,omitempty"`
	Height float64   `json:"height,omitempty"`
	Tags   []string  `json:"tags"`

	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`

	FilePath   string `json:"file_path,omitempty"`
	Caption    string `json:"caption,omitempty"`
	Transcript string `json:"transcript,omitempty"`

	DrawingData json.RawMessage `json:"drawing_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewNote validates input and creates a Note with a fresh ID.
func NewNote(input NoteInput) (*Note, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	n := &Note{
		ID:        uuid.New(),
		CreatedAt: now,
	}
	n.setFields(input)
	n.UpdatedAt = now
	return n, nil
}

// Apply replaces every editable field with input. ID and CreatedAt are kept.
func (n *Note) Apply(input NoteInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	n.setFields(input)
	n.UpdatedAt = time.Now().UTC()
	return nil
}

func (n *Note) setFields(in NoteInput) {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	n.Type = in.Type
	n.X, n.Y = in.X, in.Y
	n.Width, n.Height = in.Width, in.Height
	n.Tags = tags
	n.Title, n.Content = "", ""
	n.FilePath, n.Caption, n.Transcript = "", "", ""
	n.DrawingData = nil

	switch in.Type {
	case NoteTypeText:
		n.Title, n.Content = in.Title, in.Content
	case NoteTypeImage:
		n.FilePath, n.Caption = in.FilePath, in.Caption
	case NoteTypeAudio:
		n.FilePath, n.Transcript = in.FilePath, in.Transcript
	case NoteTypeDrawing:
		n.DrawingData = append(json.RawMessage(nil), bytes.TrimSpace(in.DrawingData)...)
	}
}

// SetTranscript attaches recognized speech to an audio note.
func (n *Note) SetTranscript(transcript string) {
	n.Transcript = transcript
	n.UpdatedAt = time.Now().UTC()
}

// LayoutUpdate moves and/or resizes one note. Nil fields are left unchanged.
type LayoutUpdate struct {
	ID     uuid.UUID `json:"id"`
	X      *float64  `json:"x,omitempty"`
	Y      *float64  `json:"y,omitempty"`
	Width  *float64  `json:"width,omitempty"`
	Height *float64  `json:"height,omitempty"`
}

// HasPosition reports whether both coordinates are set.
func (u LayoutUpdate) HasPosition() bool {
	return u.X != nil && u.Y != nil
}

// HasSize reports whether both dimensions are set.
func (u LayoutUpdate) HasSize() bool {
	return u.Width != nil && u.Height != nil
}

// Validate rejects updates without an ID, without any field, or with negative size.
func (u LayoutUpdate) Validate() error {
	if u.ID == uuid.Nil {
		return ErrInvalidLayoutUpdate
	}
	if u.X == nil && u.Y == nil && u.Width == nil && u.Height == nil {
		return ErrInvalidLayoutUpdate
	}
	if (u.Width != nil && *u.Width < 0) || (u.Height != nil && *u.Height < 0) {
		return ErrInvalidNoteSize
	}
	return nil
}

// ApplyLayout sets the non-nil fields of u.
func (n *Note) ApplyLayout(u LayoutUpdate) {
	if u.X != nil {
		n.X = *u.X
	}
	if u.Y != nil {
		n.Y = *u.Y
	}
	if u.Width != nil {
		n.Width = *u.Width
	}
	if u.Height != nil {
		n.Height = *u.Height
	}
	n.UpdatedAt = time.Now().UTC()
}
