package engine

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
)

// VoskConfig holds configuration for the vosk-transcriber CLI.
type VoskConfig struct {
	// TranscriberPath is the path to the vosk-transcriber binary.
	TranscriberPath string
	// Models maps a language code to its model directory.
	Models map[string]string
	// DefaultLanguage is used when a request names none.
	DefaultLanguage string
}

// DefaultVoskConfig returns a VoskConfig with the small English and Russian models.
func DefaultVoskConfig() VoskConfig {
	return VoskConfig{
		TranscriberPath: "vosk-transcriber",
		Models: map[string]string{
			"en-us": "models_vosk/vosk-model-small-en-us-0.15",
			"ru-ru": "models_vosk/vosk-model-ru-0.10",
		},
		DefaultLanguage: "en-us",
	}
}

// VoskEngine implements SpeechEngine with vosk-transcriber.
type VoskEngine struct {
	config VoskConfig
}

// Compile-time verification that VoskEngine implements SpeechEngine.
var _ SpeechEngine = (*VoskEngine)(nil)

// NewVoskEngine creates a new VoskEngine.
func NewVoskEngine(cfg VoskConfig) *VoskEngine {
	def := DefaultVoskConfig()
	if cfg.TranscriberPath == "" {
		cfg.TranscriberPath = def.TranscriberPath
	}
	if len(cfg.Models) == 0 {
		cfg.Models = def.Models
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = def.DefaultLanguage
	}
	return &VoskEngine{config: cfg}
}

// Languages returns the configured language codes, sorted.
func (e *VoskEngine) Languages() []string {
	langs := make([]string, 0, len(e.config.Models))
	for lang := range e.config.Models {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// ResolveLanguage returns the language Transcribe would use for lang.
func (e *VoskEngine) ResolveLanguage(lang string) (string, error) {
	if lang == "" {
		lang = e.config.DefaultLanguage
	}
	if _, ok := e.config.Models[lang]; !ok {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedLanguage, lang, strings.Join(e.Languages(), ", "))
	}
	return lang, nil
}

// Transcribe runs vosk-transcriber on wavPath and returns the trimmed text.
func (e *VoskEngine) Transcribe(ctx context.Context, wavPath, lang string) (string, error) {
	lang, err := e.ResolveLanguage(lang)
	if err != nil {
		return "", err
	}

	modelDir := e.config.Models[lang]
	if info, err := os.Stat(modelDir); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrModelNotFound, modelDir)
	}

	out, err := runCommand(ctx, e.config.TranscriberPath, e.buildArgs(modelDir, wavPath)...)
	if err != nil {
		return "", fmt.Errorf("speech recognition: %w", err)
	}
	return strings.Join(strings.Fields(out), " "), nil
}

func (e *VoskEngine) buildArgs(modelDir, wavPath string) []string {
	return []string{
		"--model", modelDir,
		"--input", wavPath,
		"--output-type", "txt",
	}
}
