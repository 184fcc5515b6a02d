package store

// scheduler.go provides the background cleanup job that removes stale
// uploads on a fixed interval. It is long-running and context-aware for
// graceful shutdown; individual cleanup failures are logged, never fatal.

import (
	"context"
	"log/slog"
	"time"
)

// CleanupConfig holds the cleanup scheduler's knobs. Zero values fall back
// to the defaults.
type CleanupConfig struct {
	Interval  time.Duration // how often to run (default: 1h)
	Retention time.Duration // upload age before removal (default: 24h)
}

// StartCleanupScheduler periodically deletes uploads older than the
// retention window. It runs immediately on start, then every Interval, and
// stops when the context is cancelled.
func (s *Store) StartCleanupScheduler(ctx context.Context, cfg CleanupConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}

	slog.Info("cleanup scheduler started",
		"interval", cfg.Interval,
		"retention", cfg.Retention,
	)

	s.runCleanup(cfg.Retention)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup scheduler stopped")
			return
		case <-ticker.C:
			s.runCleanup(cfg.Retention)
		}
	}
}

func (s *Store) runCleanup(retention time.Duration) {
	removed, err := s.Cleanup(retention)
	if err != nil {
		slog.Error("upload cleanup failed", "error", err)
		return
	}
	if len(removed) > 0 {
		slog.Info("upload cleanup removed stale files", "count", len(removed))
	}
}
