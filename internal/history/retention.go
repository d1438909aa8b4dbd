package history

// retention.go runs periodic pruning of old run records. It is long-running
// and context-aware; a failed prune is logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// Pruner is implemented by stores that can delete old records.
type Pruner interface {
	PruneRuns(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionConfig holds configuration for the retention scheduler.
type RetentionConfig struct {
	MaxAge        time.Duration // Records older than this are deleted (default: 30 days)
	CheckInterval time.Duration // How often to prune (default: 1h)
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.MaxAge <= 0 {
		c.MaxAge = 30 * 24 * time.Hour
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = time.Hour
	}
	return c
}

// StartRetention prunes immediately, then every CheckInterval, until ctx is
// cancelled. Run it in its own goroutine.
func StartRetention(ctx context.Context, p Pruner, cfg RetentionConfig, logger *slog.Logger) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("retention scheduler started",
		"max_age", cfg.MaxAge.String(),
		"check_interval", cfg.CheckInterval.String(),
	)

	pruneOnce(ctx, p, cfg, logger)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("retention scheduler stopped")
			return
		case <-ticker.C:
			pruneOnce(ctx, p, cfg, logger)
		}
	}
}

func pruneOnce(ctx context.Context, p Pruner, cfg RetentionConfig, logger *slog.Logger) {
	start := time.Now()
	removed, err := p.PruneRuns(ctx, start.Add(-cfg.MaxAge))
	if err != nil {
		logger.Error("prune failed", "error", err)
		return
	}
	logger.Info("pruned run records",
		"records_removed", removed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
