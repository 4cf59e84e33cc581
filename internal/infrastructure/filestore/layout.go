// Package filestore persists canvases, notes and media as plain files:
//
//	<root>/<canvasID>/meta.json
//	<root>/<canvasID>/notes.json
//	<root>/<canvasID>/{images,audio,ocr,drawings,transcripts}/
package filestore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	metaFileName  = "meta.json"
	notesFileName = "notes.json"
)

// Layout resolves paths inside the data directory.
type Layout struct {
	root string
}

// NewLayout creates the data directory if needed.
func NewLayout(root string) (*Layout, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Layout{root: root}, nil
}

// Root returns the data directory.
func (l *Layout) Root() string {
	return l.root
}

// CanvasDir returns the directory of one canvas.
func (l *Layout) CanvasDir(canvasID uuid.UUID) string {
	return filepath.Join(l.root, canvasID.String())
}

func (l *Layout) metaPath(canvasID uuid.UUID) string {
	return filepath.Join(l.CanvasDir(canvasID), metaFileName)
}

func (l *Layout) notesPath(canvasID uuid.UUID) string {
	return filepath.Join(l.CanvasDir(canvasID), notesFileName)
}

func (l *Layout) canvasExists(canvasID uuid.UUID) bool {
	info, err := os.Stat(l.CanvasDir(canvasID))
	return err == nil && info.IsDir()
}

// writeJSON encodes v with indentation and replaces path atomically.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return writeFileAtomic(path, buf.Bytes())
}

// writeFileAtomic writes data to a temp file in the same directory and renames
// it over path, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
