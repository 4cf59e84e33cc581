package cache

import (
	"sync"
	"time"

	"github.com/hszk-dev/notecanvas/internal/infrastructure/metrics"
)

type entryKey struct {
	fingerprint string
	language    string
}

// MemoryResultCache implements ResultCache with process-local maps.
// Nothing is persisted; all entries are lost when the process exits.
type MemoryResultCache struct {
	mu         sync.Mutex
	namespaces map[Namespace]map[entryKey]Entry

	maxEntries  int
	now         func() time.Time
	fingerprint func(path string) string
}

// Option configures a MemoryResultCache.
type Option func(*MemoryResultCache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *MemoryResultCache) {
		c.now = now
	}
}

// WithMaxEntries bounds the number of entries per namespace.
// Zero or a negative value means unbounded.
func WithMaxEntries(n int) Option {
	return func(c *MemoryResultCache) {
		c.maxEntries = n
	}
}

// WithFingerprint replaces the file fingerprint function.
func WithFingerprint(fn func(path string) string) Option {
	return func(c *MemoryResultCache) {
		c.fingerprint = fn
	}
}

// Compile-time verification that MemoryResultCache implements ResultCache.
var _ ResultCache = (*MemoryResultCache)(nil)

// NewMemoryResultCache creates an empty in-memory result cache.
func NewMemoryResultCache(opts ...Option) *MemoryResultCache {
	c := &MemoryResultCache{
		namespaces: map[Namespace]map[entryKey]Entry{
			NamespaceOCR:        {},
			NamespaceTranscript: {},
		},
		now:         time.Now,
		fingerprint: Fingerprint,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LookupOCR returns cached OCR text for the image at path.
func (c *MemoryResultCache) LookupOCR(path, language string) (string, bool) {
	return c.Lookup(NamespaceOCR, path, language)
}

// StoreOCR caches OCR text for the image at path.
func (c *MemoryResultCache) StoreOCR(path, language, text string) {
	c.Store(NamespaceOCR, path, language, text)
}

// LookupTranscript returns a cached transcript for the audio file at path.
func (c *MemoryResultCache) LookupTranscript(path, language string) (string, bool) {
	return c.Lookup(NamespaceTranscript, path, language)
}

// StoreTranscript caches a transcript for the audio file at path.
func (c *MemoryResultCache) StoreTranscript(path, language, transcript string) {
	c.Store(NamespaceTranscript, path, language, transcript)
}

// Lookup returns the valid entry for (fingerprint(path), language) in ns.
// A file without a fingerprint always misses.
func (c *MemoryResultCache) Lookup(ns Namespace, path, language string) (string, bool) {
	// Hash outside the lock; it is file IO bounded by file size.
	fp := c.fingerprint(path)
	if fp == "" {
		metrics.CacheLookupsTotal.WithLabelValues(ns.String(), metrics.CacheResultMiss).Inc()
		return "", false
	}
	key := entryKey{fingerprint: fp, language: language}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.entries(ns)
	entry, ok := entries[key]
	if !ok {
		metrics.CacheLookupsTotal.WithLabelValues(ns.String(), metrics.CacheResultMiss).Inc()
		return "", false
	}

	if !c.valid(entry) {
		delete(entries, key)
		metrics.CacheLookupsTotal.WithLabelValues(ns.String(), metrics.CacheResultExpired).Inc()
		metrics.CacheRemovalsTotal.WithLabelValues(ns.String(), metrics.CacheRemovalExpired).Inc()
		metrics.CacheEntries.WithLabelValues(ns.String()).Set(float64(len(entries)))
		return "", false
	}

	metrics.CacheLookupsTotal.WithLabelValues(ns.String(), metrics.CacheResultHit).Inc()
	return entry.Result, true
}

// Store writes or replaces the entry for (fingerprint(path), language) in ns
// with a fresh creation time. Nothing is stored for a file without a fingerprint.
func (c *MemoryResultCache) Store(ns Namespace, path, language, result string) {
	fp := c.fingerprint(path)
	if fp == "" {
		return
	}
	key := entryKey{fingerprint: fp, language: language}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.entries(ns)
	if _, exists := entries[key]; !exists && c.maxEntries > 0 && len(entries) >= c.maxEntries {
		c.makeRoom(ns, entries)
	}

	entries[key] = Entry{
		Result:     result,
		CreatedAt:  c.now(),
		Language:   language,
		SourcePath: path,
	}
	metrics.CacheEntries.WithLabelValues(ns.String()).Set(float64(len(entries)))
}

// PurgeExpired drops every entry whose age reached TTL in both namespaces.
func (c *MemoryResultCache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for ns, entries := range c.namespaces {
		n := c.dropExpired(entries)
		if n > 0 {
			metrics.CacheRemovalsTotal.WithLabelValues(ns.String(), metrics.CacheRemovalPurged).Add(float64(n))
		}
		metrics.CacheEntries.WithLabelValues(ns.String()).Set(float64(len(entries)))
		removed += n
	}
	return removed
}

// Stats returns entry counts for both namespaces.
func (c *MemoryResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	ocr := len(c.namespaces[NamespaceOCR])
	transcript := len(c.namespaces[NamespaceTranscript])
	return Stats{
		OCRCount:        ocr,
		TranscriptCount: transcript,
		TotalCount:      ocr + transcript,
	}
}

// entries returns the map for ns, creating it for unknown namespaces.
// Caller must hold c.mu.
func (c *MemoryResultCache) entries(ns Namespace) map[entryKey]Entry {
	entries, ok := c.namespaces[ns]
	if !ok {
		entries = make(map[entryKey]Entry)
		c.namespaces[ns] = entries
	}
	return entries
}

// valid reports whether entry is younger than TTL. An entry exactly TTL old
// is expired. Caller must hold c.mu.
func (c *MemoryResultCache) valid(entry Entry) bool {
	return c.now().Sub(entry.CreatedAt) < TTL
}

// dropExpired removes expired entries and returns the count. Caller must hold c.mu.
func (c *MemoryResultCache) dropExpired(entries map[entryKey]Entry) int {
	removed := 0
	for key, entry := range entries {
		if !c.valid(entry) {
			delete(entries, key)
			removed++
		}
	}
	return removed
}

// makeRoom frees one slot in a full namespace: expired entries go first,
// otherwise the oldest entry is evicted. Caller must hold c.mu.
func (c *MemoryResultCache) makeRoom(ns Namespace, entries map[entryKey]Entry) {
	if n := c.dropExpired(entries); n > 0 {
		metrics.CacheRemovalsTotal.WithLabelValues(ns.String(), metrics.CacheRemovalExpired).Add(float64(n))
		return
	}

	var (
		oldestKey entryKey
		oldest    time.Time
		found     bool
	)
	for key, entry := range entries {
		if !found || entry.CreatedAt.Before(oldest) {
			oldestKey, oldest, found = key, entry.CreatedAt, true
		}
	}
	if found {
		delete(entries, oldestKey)
		metrics.CacheRemovalsTotal.WithLabelValues(ns.String(), metrics.CacheRemovalEvicted).Inc()
	}
}
