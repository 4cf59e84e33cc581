package usecase

import (
	"log/slog"

	"github.com/hszk-dev/notecanvas/internal/infrastructure/cache"
)

// PurgeResult reports what a manual purge removed.
type PurgeResult struct {
	Removed   int
	Remaining cache.Stats
}

// CacheAdminService exposes result cache maintenance to operators.
type CacheAdminService interface {
	// Stats returns the current entry counts, expired entries included.
	Stats() cache.Stats

	// PurgeExpired removes expired entries immediately.
	PurgeExpired() PurgeResult
}

type cacheAdminService struct {
	cache cache.ResultCache
}

// NewCacheAdminService creates a new CacheAdminService instance.
func NewCacheAdminService(c cache.ResultCache) CacheAdminService {
	return &cacheAdminService{cache: c}
}

func (s *cacheAdminService) Stats() cache.Stats {
	return s.cache.Stats()
}

func (s *cacheAdminService) PurgeExpired() PurgeResult {
	removed := s.cache.PurgeExpired()
	remaining := s.cache.Stats()

	slog.Info("result cache purged on request",
		"removed", removed,
		"remaining", remaining.TotalCount,
	)

	return PurgeResult{
		Removed:   removed,
		Remaining: remaining,
	}
}
