package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Tesseract language codes, optionally combined: "eng", "rus", "eng+rus".
var tesseractLangPattern = regexp.MustCompile(`^[a-z_]+(\+[a-z_]+)*$`)

// TesseractConfig holds configuration for the tesseract CLI.
type TesseractConfig struct {
	// TesseractPath is the path to the tesseract binary. Default: "tesseract".
	TesseractPath string
	// DefaultLanguage is used when a request names none. Default: "eng".
	DefaultLanguage string
}

// DefaultTesseractConfig returns a TesseractConfig with defaults.
func DefaultTesseractConfig() TesseractConfig {
	return TesseractConfig{
		TesseractPath:   "tesseract",
		DefaultLanguage: "eng",
	}
}

// TesseractEngine implements OCREngine by running `tesseract <image> stdout -l <lang>`.
type TesseractEngine struct {
	config TesseractConfig
}

// Compile-time verification that TesseractEngine implements OCREngine.
var _ OCREngine = (*TesseractEngine)(nil)

// NewTesseractEngine creates a new TesseractEngine.
func NewTesseractEngine(cfg TesseractConfig) *TesseractEngine {
	def := DefaultTesseractConfig()
	if cfg.TesseractPath == "" {
		cfg.TesseractPath = def.TesseractPath
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = def.DefaultLanguage
	}
	return &TesseractEngine{config: cfg}
}

// ResolveLanguage returns the language Recognize would use for lang.
func (e *TesseractEngine) ResolveLanguage(lang string) (string, error) {
	if lang == "" {
		lang = e.config.DefaultLanguage
	}
	if !tesseractLangPattern.MatchString(lang) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return lang, nil
}

// Recognize runs tesseract on imagePath.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath, lang string) (string, error) {
	lang, err := e.ResolveLanguage(lang)
	if err != nil {
		return "", err
	}

	out, err := runCommand(ctx, e.config.TesseractPath, e.buildArgs(imagePath, lang)...)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (e *TesseractEngine) buildArgs(imagePath, lang string) []string {
	return []string{imagePath, "stdout", "-l", lang}
}
