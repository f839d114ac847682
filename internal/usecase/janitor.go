package usecase

import (
	"context"
	"log/slog"
	"time"

	"FormatConverter/internal/ports"
)

// Janitor wires the recurring driver with the expired-entry purge.
type Janitor struct {
	driver ports.Scheduler
	store  ports.ExpiringStore
	logger *slog.Logger
}

// NewJanitor returns a helper to start/stop the recurring purge.
func NewJanitor(driver ports.Scheduler, store ports.ExpiringStore, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Janitor{driver: driver, store: store, logger: logger}
}

// Start registers the purge job with the provided scheduler.
func (j *Janitor) Start(ctx context.Context) error {
	if j.driver == nil || j.store == nil {
		return nil
	}

	job := func(trigger time.Time) {
		removed, err := j.store.PurgeExpired(ctx)
		if err != nil {
			j.logger.Warn("purge expired conversions", "error", err)
			return
		}
		j.logger.Debug("purged expired conversions", "removed", removed, "at", trigger.Format(time.RFC3339))
	}

	return j.driver.Start(ctx, job)
}

// Stop tears down the underlying scheduler.
func (j *Janitor) Stop(ctx context.Context) error {
	if j.driver == nil {
		return nil
	}

	return j.driver.Stop(ctx)
}
