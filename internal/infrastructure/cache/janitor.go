package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor periodically purges expired entries so memory stays bounded
// between lookups. Lookups never serve expired entries on their own.
type Janitor struct {
	cron   *cron.Cron
	cache  ResultCache
	logger *slog.Logger
}

// NewJanitor schedules PurgeExpired on c every interval. A zero interval
// returns a disabled janitor whose Start and Stop do nothing.
func NewJanitor(c ResultCache, interval time.Duration, logger *slog.Logger) (*Janitor, error) {
	if interval < 0 {
		return nil, fmt.Errorf("janitor interval must not be negative, got %s", interval)
	}

	j := &Janitor{
		cache:  c,
		logger: logger,
	}
	if interval == 0 {
		return j, nil
	}

	j.cron = cron.New()

	if _, err := j.cron.AddFunc("@every "+interval.String(), j.run); err != nil {
		return nil, fmt.Errorf("schedule cache purge: %w", err)
	}
	return j, nil
}

// Start begins running the schedule in its own goroutine.
func (j *Janitor) Start() {
	if j.cron == nil {
		j.logger.Info("cache janitor disabled")
		return
	}
	j.cron.Start()
}

// Enabled reports whether a purge schedule is configured.
func (j *Janitor) Enabled() bool {
	return j.cron != nil
}

// Stop halts the schedule and waits for a running purge to finish or ctx to end.
func (j *Janitor) Stop(ctx context.Context) {
	if j.cron == nil {
		return
	}
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (j *Janitor) run() {
	removed := j.cache.PurgeExpired()
	stats := j.cache.Stats()
	j.logger.Info("purged expired cache entries",
		slog.Int("removed", removed),
		slog.Int("remaining", stats.TotalCount),
	)
}
