// Package engine runs the external OCR and speech recognition programs.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrUnsupportedLanguage is returned for a language the engine cannot handle.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrModelNotFound is returned when a configured speech model is missing on disk.
	ErrModelNotFound = errors.New("speech model not found")
)

// OCREngine extracts text from an image file.
type OCREngine interface {
	// ResolveLanguage applies the default to an empty lang and validates it.
	ResolveLanguage(lang string) (string, error)
	Recognize(ctx context.Context, imagePath, lang string) (string, error)
}

// SpeechEngine transcribes a 16 kHz mono PCM WAV file.
type SpeechEngine interface {
	ResolveLanguage(lang string) (string, error)
	Transcribe(ctx context.Context, wavPath, lang string) (string, error)
}

const maxStderrInError = 512

// runCommand executes bin and returns its stdout. Stderr is attached to the error.
func runCommand(ctx context.Context, bin string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s cancelled: %w", bin, ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderrInError {
			msg = "..." + msg[len(msg)-maxStderrInError:]
		}
		return "", fmt.Errorf("%s failed: %w: %s", bin, err, msg)
	}

	return stdout.String(), nil
}
