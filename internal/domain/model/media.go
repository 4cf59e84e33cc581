package model

// MediaKind is one of the per-canvas media folders.
type MediaKind string

const (
	MediaImages      MediaKind = "images"
	MediaAudio       MediaKind = "audio"
	MediaOCR         MediaKind = "ocr"
	MediaDrawings    MediaKind = "drawings"
	MediaTranscripts MediaKind = "transcripts"
)

// MediaKinds lists every media folder in listing order.
var MediaKinds = []MediaKind{MediaImages, MediaAudio, MediaOCR, MediaDrawings, MediaTranscripts}

func (k MediaKind) IsValid() bool {
	for _, kind := range MediaKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (k MediaKind) String() string {
	return string(k)
}
