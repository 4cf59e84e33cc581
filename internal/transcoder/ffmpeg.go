package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// maxStderrInError bounds how much ffmpeg output ends up in an error message.
const maxStderrInError = 512

// FFmpegConfig holds configuration for the FFmpeg audio converter.
type FFmpegConfig struct {
	// FFmpegPath is the path to the ffmpeg binary.
	// If empty, "ffmpeg" will be used (assumes it's in PATH).
	FFmpegPath string

	// SampleRate is the output sample rate in Hz.
	// Default: 16000
	SampleRate int

	// Channels is the output channel count.
	// Default: 1 (mono)
	Channels int

	// SampleFormat is the ffmpeg sample format name.
	// Default: s16 (signed 16-bit PCM)
	SampleFormat string
}

// DefaultFFmpegConfig returns an FFmpegConfig that produces speech engine input.
func DefaultFFmpegConfig() FFmpegConfig {
	return FFmpegConfig{
		FFmpegPath:   "ffmpeg",
		SampleRate:   16000,
		Channels:     1,
		SampleFormat: "s16",
	}
}

// FFmpegConverter implements AudioConverter using FFmpeg CLI.
type FFmpegConverter struct {
	config FFmpegConfig
}

// Compile-time verification that FFmpegConverter implements AudioConverter.
var _ AudioConverter = (*FFmpegConverter)(nil)

// NewFFmpegConverter creates a new FFmpeg-based audio converter.
func NewFFmpegConverter(cfg FFmpegConfig) *FFmpegConverter {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	return &FFmpegConverter{
		config: cfg,
	}
}

// ConvertToWAV runs FFmpeg as a subprocess and waits for completion.
// FFmpeg's stderr is included in the returned error.
func (c *FFmpegConverter) ConvertToWAV(ctx context.Context, inputPath, outputPath string) error {
	if err := validateInput(inputPath); err != nil {
		return err
	}

	if err := validateOutputDir(filepath.Dir(outputPath)); err != nil {
		return err
	}

	args := c.buildFFmpegArgs(inputPath, outputPath)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.config.FFmpegPath, args...)
	cmd.Stdout = nil // Discard stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("conversion cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg execution failed: %w: %s", err, tail(stderr.String(), maxStderrInError))
	}

	return nil
}

// validateInput checks if the input file exists and is readable.
func validateInput(inputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %s", inputPath)
		}
		return fmt.Errorf("failed to access input file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("input path is a directory, expected a file: %s", inputPath)
	}

	return nil
}

// validateOutputDir checks if the output directory exists.
func validateOutputDir(outputDir string) error {
	info, err := os.Stat(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", outputDir)
		}
		return fmt.Errorf("failed to access output directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("output path is not a directory: %s", outputDir)
	}

	return nil
}

// buildFFmpegArgs constructs the FFmpeg command arguments.
func (c *FFmpegConverter) buildFFmpegArgs(inputPath, outputPath string) []string {
	return []string{
		"-y", // Overwrite output files without asking
		"-i", inputPath,
		"-ac", strconv.Itoa(c.config.Channels),
		"-ar", strconv.Itoa(c.config.SampleRate),
		"-sample_fmt", c.config.SampleFormat,
		outputPath,
	}
}

// tail returns the last n bytes of s without surrounding whitespace.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		s = "..." + s[len(s)-n:]
	}
	return s
}
