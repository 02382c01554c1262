package core

// scheduler.go provides background dataset warm-up.
//
// When a warm schedule is configured, the active dataset is rebuilt (if its
// identity changed or its cache entry expired) on that schedule, so the first
// request after a source change does not pay the load cost. The scheduler is
// context-aware for graceful shutdown and logs, but never propagates, warm
// failures.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// StartWarmScheduler warms the active dataset on a cron schedule (standard
// 5-field syntax or descriptors such as "@every 10m"). It returns once the
// schedule is running; the scheduler stops when ctx is cancelled.
func (s *Service) StartWarmScheduler(ctx context.Context, schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		s.runWarmJob(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid warm schedule %q: %w", schedule, err)
	}

	c.Start()
	slog.Info("warm scheduler started", "schedule", schedule)

	go func() {
		<-ctx.Done()
		stopCtx := c.Stop()
		<-stopCtx.Done()
		slog.Info("warm scheduler stopped")
	}()

	return nil
}

// runWarmJob performs one warm-up cycle.
func (s *Service) runWarmJob(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	ds, err := s.Dataset(ctx)
	if err != nil {
		slog.Error("warm job failed", "error", err)
		return
	}

	slog.Debug("warm job completed",
		"rows", ds.NumRows(),
		"identity", ds.Identity().Key(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
