package transcoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const wavFormatPCM = 1

// ErrNotWAV is returned when a file has no RIFF/WAVE header or fmt chunk.
var ErrNotWAV = errors.New("not a RIFF/WAVE file")

// WAVFormat is the content of a WAV fmt chunk.
type WAVFormat struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
}

// IsPCM16kMono reports whether f matches the speech engine input format.
func (f WAVFormat) IsPCM16kMono() bool {
	return f.AudioFormat == wavFormatPCM &&
		f.Channels == 1 &&
		f.SampleRate == 16000 &&
		f.BitsPerSample == 16
}

// ReadWAVFormat parses the RIFF header of path up to the fmt chunk.
func ReadWAVFormat(path string) (WAVFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return WAVFormat{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	var riff [12]byte
	if _, err := io.ReadFull(f, riff[:]); err != nil {
		return WAVFormat{}, ErrNotWAV
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return WAVFormat{}, ErrNotWAV
	}

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(f, hdr[:]); err != nil {
			return WAVFormat{}, ErrNotWAV
		}
		size := binary.LittleEndian.Uint32(hdr[4:8])

		if string(hdr[0:4]) != "fmt " {
			// Chunks are padded to an even size.
			skip := int64(size) + int64(size&1)
			if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
				return WAVFormat{}, ErrNotWAV
			}
			continue
		}

		if size < 16 {
			return WAVFormat{}, ErrNotWAV
		}
		var body [16]byte
		if _, err := io.ReadFull(f, body[:]); err != nil {
			return WAVFormat{}, ErrNotWAV
		}
		return WAVFormat{
			AudioFormat:   binary.LittleEndian.Uint16(body[0:2]),
			Channels:      binary.LittleEndian.Uint16(body[2:4]),
			SampleRate:    binary.LittleEndian.Uint32(body[4:8]),
			BitsPerSample: binary.LittleEndian.Uint16(body[14:16]),
		}, nil
	}
}

// IsPCM16kMono reports whether path is already a 16 kHz mono 16-bit PCM WAV.
// Unreadable or non-WAV files report false.
func IsPCM16kMono(path string) bool {
	format, err := ReadWAVFormat(path)
	if err != nil {
		return false
	}
	return format.IsPCM16kMono()
}
