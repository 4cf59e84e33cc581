package transcoder

import (
	"context"
)

// AudioConverter defines the interface for audio format conversion.
// Speech recognition expects 16 kHz mono 16-bit PCM WAV input.
type AudioConverter interface {
	// ConvertToWAV converts an input audio file to engine-format WAV.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - inputPath: Absolute path to the source audio file
	//   - outputPath: Path of the WAV file to write; overwritten if present
	//
	// The directory of outputPath must exist before calling this method.
	ConvertToWAV(ctx context.Context, inputPath, outputPath string) error
}
