package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/hszk-dev/notecanvas/internal/domain/model"
	"github.com/hszk-dev/notecanvas/internal/domain/repository"
)

var extPattern = regexp.MustCompile(`^\.[A-Za-z0-9]{1,10}$`)

// MediaStore implements repository.MediaStore inside each canvas directory.
type MediaStore struct {
	layout *Layout
}

// NewMediaStore creates a new MediaStore instance.
func NewMediaStore(layout *Layout) *MediaStore {
	return &MediaStore{layout: layout}
}

// InitCanvas creates every media folder of the canvas.
func (s *MediaStore) InitCanvas(ctx context.Context, canvasID uuid.UUID) error {
	for _, kind := range model.MediaKinds {
		if err := os.MkdirAll(s.kindDir(canvasID, kind), 0755); err != nil {
			return fmt.Errorf("failed to create %s folder: %w", kind, err)
		}
	}
	return nil
}

// RemoveCanvas deletes the media folders, and the canvas directory once it is
// empty. Missing folders are not an error.
func (s *MediaStore) RemoveCanvas(ctx context.Context, canvasID uuid.UUID) error {
	for _, kind := range model.MediaKinds {
		if err := os.RemoveAll(s.kindDir(canvasID, kind)); err != nil {
			return fmt.Errorf("failed to remove %s folder: %w", kind, err)
		}
	}
	// Fails harmlessly when meta.json or notes.json are still there.
	_ = os.Remove(s.layout.CanvasDir(canvasID))
	return nil
}

// Save copies r to <kind>/<random hex><ext>. A partial file is removed on failure.
func (s *MediaStore) Save(ctx context.Context, canvasID uuid.UUID, kind model.MediaKind, originalName string, r io.Reader) (string, error) {
	if !kind.IsValid() {
		return "", repository.ErrInvalidMediaPath
	}
	if !s.layout.canvasExists(canvasID) {
		return "", repository.ErrCanvasNotFound
	}

	dir := s.kindDir(canvasID, kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s folder: %w", kind, err)
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + safeExt(originalName)
	dst := filepath.Join(dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("failed to close media file: %w", err)
	}

	return path.Join(kind.String(), name), nil
}

// Resolve returns the absolute path of relPath inside the canvas media folders.
func (s *MediaStore) Resolve(ctx context.Context, canvasID uuid.UUID, relPath string) (string, error) {
	clean, err := cleanRelPath(relPath)
	if err != nil {
		return "", err
	}

	abs := filepath.Join(s.layout.CanvasDir(canvasID), filepath.FromSlash(clean))
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", repository.ErrMediaNotFound
		}
		return "", fmt.Errorf("failed to stat media file: %w", err)
	}
	if info.IsDir() {
		return "", repository.ErrInvalidMediaPath
	}
	return abs, nil
}

// List returns sorted relative paths for every media folder.
func (s *MediaStore) List(ctx context.Context, canvasID uuid.UUID) (map[model.MediaKind][]string, error) {
	if !s.layout.canvasExists(canvasID) {
		return nil, repository.ErrCanvasNotFound
	}

	out := make(map[model.MediaKind][]string, len(model.MediaKinds))
	for _, kind := range model.MediaKinds {
		files := []string{}
		entries, err := os.ReadDir(s.kindDir(canvasID, kind))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to list %s: %w", kind, err)
		}
		for _, e := range entries {
			if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
				files = append(files, path.Join(kind.String(), e.Name()))
			}
		}
		sort.Strings(files)
		out[kind] = files
	}
	return out, nil
}

// WriteSidecar writes text to transcripts/<source name>.txt, replacing any
// previous sidecar of the same source.
func (s *MediaStore) WriteSidecar(ctx context.Context, canvasID uuid.UUID, sourceRelPath, text string) (string, error) {
	clean, err := cleanRelPath(sourceRelPath)
	if err != nil {
		return "", err
	}

	dir := s.kindDir(canvasID, model.MediaTranscripts)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create transcripts folder: %w", err)
	}

	name := path.Base(clean) + ".txt"
	if err := writeFileAtomic(filepath.Join(dir, name), []byte(text)); err != nil {
		return "", fmt.Errorf("failed to write sidecar: %w", err)
	}
	return path.Join(model.MediaTranscripts.String(), name), nil
}

func (s *MediaStore) kindDir(canvasID uuid.UUID, kind model.MediaKind) string {
	return filepath.Join(s.layout.CanvasDir(canvasID), kind.String())
}

// cleanRelPath normalizes a client-supplied path and checks that it names a
// file directly inside one of the media folders.
func cleanRelPath(relPath string) (string, error) {
	p := strings.ReplaceAll(strings.TrimSpace(relPath), `\`, "/")
	if p == "" || path.IsAbs(p) {
		return "", repository.ErrInvalidMediaPath
	}

	clean := path.Clean(p)
	parts := strings.Split(clean, "/")
	if len(parts) != 2 || parts[1] == "" || parts[1] == "." || parts[1] == ".." {
		return "", repository.ErrInvalidMediaPath
	}
	if !model.MediaKind(parts[0]).IsValid() {
		return "", repository.ErrInvalidMediaPath
	}
	return clean, nil
}

// safeExt keeps a short alphanumeric extension and drops anything else.
func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}

// Compile-time verification that MediaStore implements repository.MediaStore.
var _ repository.MediaStore = (*MediaStore)(nil)
