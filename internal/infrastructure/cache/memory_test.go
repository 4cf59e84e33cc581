package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// mustWriteFile is a test helper that writes a file and fails the test on error.
func mustWriteFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write test file %s: %v", path, err)
	}
	return path
}

func newTestCache(t *testing.T, opts ...Option) (*MemoryResultCache, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewMemoryResultCache(opts...), clock
}

func TestMemoryResultCache_StoreThenLookup(t *testing.T) {
	c, _ := newTestCache(t)
	p := mustWriteFile(t, filepath.Join(t.TempDir(), "scan.png"), []byte("image bytes"))

	c.StoreOCR(p, "eng", "hello")

	got, ok := c.LookupOCR(p, "eng")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "hello" {
		t.Errorf("LookupOCR() = %q, want %q", got, "hello")
	}
}

func TestMemoryResultCache_Isolation(t *testing.T) {
	c, _ := newTestCache(t)
	p := mustWriteFile(t, filepath.Join(t.TempDir(), "scan.png"), []byte("image bytes"))
	c.StoreOCR(p, "eng", "hello")

	tests := []struct {
		name   string
		lookup func() (string, bool)
	}{
		{"different language", func() (string, bool) { return c.LookupOCR(p, "rus") }},
		{"transcript namespace", func() (string, bool) { return c.LookupTranscript(p, "eng") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := tt.lookup(); ok {
				t.Errorf("expected miss, got %q", got)
			}
		})
	}
}

func TestMemoryResultCache_ContentSensitivity(t *testing.T) {
	c, _ := newTestCache(t)
	a := mustWriteFile(t, filepath.Join(t.TempDir(), "note.png"), []byte("first content"))
	b := mustWriteFile(t, filepath.Join(t.TempDir(), "note.png"), []byte("second content"))

	c.StoreOCR(a, "eng", "from a")

	if got, ok := c.LookupOCR(b, "eng"); ok {
		t.Fatalf("same name with different content should miss, got %q", got)
	}

	c.StoreOCR(b, "eng", "from b")

	if got, _ := c.LookupOCR(a, "eng"); got != "from a" {
		t.Errorf("LookupOCR(a) = %q, want %q", got, "from a")
	}
	if got, _ := c.LookupOCR(b, "eng"); got != "from b" {
		t.Errorf("LookupOCR(b) = %q, want %q", got, "from b")
	}
	if stats := c.Stats(); stats.OCRCount != 2 {
		t.Errorf("OCRCount = %d, want 2", stats.OCRCount)
	}
}

func TestMemoryResultCache_SameContentSameNameCollides(t *testing.T) {
	c, _ := newTestCache(t)
	a := mustWriteFile(t, filepath.Join(t.TempDir(), "clip.wav"), []byte("pcm"))
	b := mustWriteFile(t, filepath.Join(t.TempDir(), "clip.wav"), []byte("pcm"))

	c.StoreTranscript(a, "en-us", "spoken words")

	got, ok := c.LookupTranscript(b, "en-us")
	if !ok || got != "spoken words" {
		t.Errorf("LookupTranscript() = (%q, %v), want (%q, true)", got, ok, "spoken words")
	}
}

func TestMemoryResultCache_Expiry(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		wantHit bool
	}{
		{"fresh", 0, true},
		{"just before TTL", TTL - time.Nanosecond, true},
		{"exactly TTL", TTL, false},
		{"after TTL", TTL + time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, clock := newTestCache(t)
			p := mustWriteFile(t, filepath.Join(t.TempDir(), "scan.png"), []byte("bytes"))
			c.StoreOCR(p, "eng", "hello")

			clock.Advance(tt.elapsed)

			_, ok := c.LookupOCR(p, "eng")
			if ok != tt.wantHit {
				t.Errorf("hit = %v, want %v", ok, tt.wantHit)
			}

			wantCount := 1
			if !tt.wantHit {
				wantCount = 0
			}
			if got := c.Stats().TotalCount; got != wantCount {
				t.Errorf("TotalCount after lookup = %d, want %d", got, wantCount)
			}
		})
	}
}

func TestMemoryResultCache_OverwriteResetsClock(t *testing.T) {
	c, clock := newTestCache(t)
	p := mustWriteFile(t, filepath.Join(t.TempDir(), "scan.png"), []byte("bytes"))

	c.StoreOCR(p, "eng", "a")
	clock.Advance(20 * time.Hour)
	c.StoreOCR(p, "eng", "b")

	if got, _ := c.LookupOCR(p, "eng"); got != "b" {
		t.Fatalf("LookupOCR() = %q, want %q", got, "b")
	}

	// 25h after the first store, 5h after the second.
	clock.Advance(5 * time.Hour)
	if got, ok := c.LookupOCR(p, "eng"); !ok || got != "b" {
		t.Errorf("LookupOCR() = (%q, %v), want (%q, true)", got, ok, "b")
	}

	if got := c.Stats().OCRCount; got != 1 {
		t.Errorf("OCRCount = %d, want 1", got)
	}
}

func TestMemoryResultCache_PurgeExpired(t *testing.T) {
	c, clock := newTestCache(t)
	dir := t.TempDir()
	img := mustWriteFile(t, filepath.Join(dir, "scan.png"), []byte("img"))
	wav := mustWriteFile(t, filepath.Join(dir, "clip.wav"), []byte("wav"))

	c.StoreOCR(img, "eng", "text")
	c.StoreTranscript(wav, "en-us", "words")

	if removed := c.PurgeExpired(); removed != 0 {
		t.Errorf("PurgeExpired() on fresh entries = %d, want 0", removed)
	}

	clock.Advance(TTL)

	if removed := c.PurgeExpired(); removed != 2 {
		t.Errorf("PurgeExpired() = %d, want 2", removed)
	}
	if got := c.Stats().TotalCount; got != 0 {
		t.Errorf("TotalCount = %d, want 0", got)
	}
	if removed := c.PurgeExpired(); removed != 0 {
		t.Errorf("second PurgeExpired() = %d, want 0", removed)
	}
}

func TestMemoryResultCache_Stats(t *testing.T) {
	c, _ := newTestCache(t)
	dir := t.TempDir()

	for i := 0; i < 3; i++ {
		p := mustWriteFile(t, filepath.Join(dir, fmt.Sprintf("image_%d.png", i)), []byte{byte(i)})
		c.StoreOCR(p, "eng", "text")
	}
	for i := 0; i < 2; i++ {
		p := mustWriteFile(t, filepath.Join(dir, fmt.Sprintf("audio_%d.wav", i)), []byte{byte(i)})
		c.StoreTranscript(p, "en-us", "words")
	}

	got := c.Stats()
	want := Stats{OCRCount: 3, TranscriptCount: 2, TotalCount: 5}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestMemoryResultCache_StatsIncludeUnpurgedExpired(t *testing.T) {
	c, clock := newTestCache(t)
	p := mustWriteFile(t, filepath.Join(t.TempDir(), "scan.png"), []byte("bytes"))
	c.StoreOCR(p, "eng", "hello")

	clock.Advance(2 * TTL)

	if got := c.Stats().OCRCount; got != 1 {
		t.Errorf("OCRCount = %d, want 1 until purged or looked up", got)
	}
}

func TestMemoryResultCache_MaxEntries(t *testing.T) {
	c, clock := newTestCache(t, WithMaxEntries(2))
	dir := t.TempDir()
	first := mustWriteFile(t, filepath.Join(dir, "1.png"), []byte("1"))
	second := mustWriteFile(t, filepath.Join(dir, "2.png"), []byte("2"))
	third := mustWriteFile(t, filepath.Join(dir, "3.png"), []byte("3"))

	c.StoreOCR(first, "eng", "one")
	clock.Advance(time.Minute)
	c.StoreOCR(second, "eng", "two")
	clock.Advance(time.Minute)

	t.Run("overwrite does not evict", func(t *testing.T) {
		c.StoreOCR(second, "eng", "two again")
		if _, ok := c.LookupOCR(first, "eng"); !ok {
			t.Error("first entry should still be cached")
		}
	})

	t.Run("new key evicts oldest", func(t *testing.T) {
		c.StoreOCR(third, "eng", "three")

		if _, ok := c.LookupOCR(first, "eng"); ok {
			t.Error("oldest entry should have been evicted")
		}
		if _, ok := c.LookupOCR(second, "eng"); !ok {
			t.Error("second entry should still be cached")
		}
		if _, ok := c.LookupOCR(third, "eng"); !ok {
			t.Error("third entry should be cached")
		}
	})

	t.Run("bound is per namespace", func(t *testing.T) {
		c.StoreTranscript(first, "en-us", "words")
		if got := c.Stats(); got.OCRCount != 2 || got.TranscriptCount != 1 {
			t.Errorf("Stats() = %+v, want 2 OCR and 1 transcript", got)
		}
	})
}

func TestMemoryResultCache_MaxEntriesPrefersExpired(t *testing.T) {
	c, clock := newTestCache(t, WithMaxEntries(2))
	dir := t.TempDir()
	old := mustWriteFile(t, filepath.Join(dir, "old.png"), []byte("old"))
	recent := mustWriteFile(t, filepath.Join(dir, "recent.png"), []byte("recent"))
	fresh := mustWriteFile(t, filepath.Join(dir, "fresh.png"), []byte("fresh"))

	c.StoreOCR(old, "eng", "old")
	clock.Advance(TTL)
	c.StoreOCR(recent, "eng", "recent")
	c.StoreOCR(fresh, "eng", "fresh")

	if got := c.Stats().OCRCount; got != 2 {
		t.Errorf("OCRCount = %d, want 2", got)
	}
	if _, ok := c.LookupOCR(recent, "eng"); !ok {
		t.Error("recent entry should survive when an expired one can be dropped")
	}
}

func TestMemoryResultCache_WithFingerprint(t *testing.T) {
	c, _ := newTestCache(t, WithFingerprint(func(path string) string { return "same" }))

	c.StoreOCR("/any/path.png", "eng", "text")

	if got, ok := c.LookupOCR("/other/path.png", "eng"); !ok || got != "text" {
		t.Errorf("LookupOCR() = (%q, %v), want (%q, true)", got, ok, "text")
	}
}

func TestMemoryResultCache_MissingFiles(t *testing.T) {
	c, _ := newTestCache(t)
	missingA := filepath.Join(t.TempDir(), "missing.png")
	missingB := filepath.Join(t.TempDir(), "missing.png")

	c.StoreOCR(missingA, "eng", "from-a")

	tests := []struct {
		name string
		path string
	}{
		{name: "same base name in another directory", path: missingB},
		{name: "the stored path itself", path: missingA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := c.LookupOCR(tt.path, "eng"); ok {
				t.Errorf("LookupOCR() = (%q, true), want miss", got)
			}
		})
	}

	if stats := c.Stats(); stats.TotalCount != 0 {
		t.Errorf("TotalCount = %d, want 0 (missing files are not cached)", stats.TotalCount)
	}
}

func TestMemoryResultCache_Concurrent(t *testing.T) {
	c := NewMemoryResultCache()
	dir := t.TempDir()

	paths := make([]string, 8)
	for i := range paths {
		paths[i] = mustWriteFile(t, filepath.Join(dir, fmt.Sprintf("f%d.png", i)), []byte{byte(i)})
	}

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				p := paths[(w+i)%len(paths)]
				c.StoreOCR(p, "eng", "text")
				c.LookupOCR(p, "eng")
				if i%10 == 0 {
					c.PurgeExpired()
					c.Stats()
				}
			}
		}(w)
	}
	wg.Wait()

	if got := c.Stats().OCRCount; got != len(paths) {
		t.Errorf("OCRCount = %d, want %d", got, len(paths))
	}
}
