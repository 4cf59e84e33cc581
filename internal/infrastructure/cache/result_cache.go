package cache

import (
	"time"
)

// TTL is how long a cached result stays valid after it was stored.
const TTL = 24 * time.Hour

// Namespace partitions the cache by operation so OCR text and transcripts
// never collide, even for the same file and language.
type Namespace string

const (
	NamespaceOCR        Namespace = "ocr"
	NamespaceTranscript Namespace = "transcript"
)

func (n Namespace) String() string {
	return string(n)
}

// Entry is a single cached recognition result.
type Entry struct {
	Result    string
	CreatedAt time.Time
	Language  string
	// SourcePath is informational only; lookups go through the fingerprint.
	SourcePath string
}

// Stats is a snapshot of entry counts. Expired entries that have not been
// purged yet are included.
type Stats struct {
	OCRCount        int `json:"ocr_count"`
	TranscriptCount int `json:"transcript_count"`
	TotalCount      int `json:"total_count"`
}

// ResultCache defines the interface for caching expensive recognition results
// keyed by file content and language.
type ResultCache interface {
	// Lookup returns the cached result for the file at path in namespace ns.
	// The second return value is false on a miss or when the entry expired;
	// an expired entry is removed as a side effect.
	Lookup(ns Namespace, path, language string) (string, bool)

	// Store writes or replaces the entry for the file at path. It never fails.
	Store(ns Namespace, path, language, result string)

	// PurgeExpired removes every expired entry and returns how many were removed.
	PurgeExpired() int

	// Stats returns the current entry counts.
	Stats() Stats
}
