package worker

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/usecase"
	"go.uber.org/zap"
)

type cleanupRunner interface {
	RetryPending(ctx context.Context) (usecase.CleanupResult, error)
}

// MediaCleanup periodically retries failed remote image deletions.
type MediaCleanup struct {
	runner   cleanupRunner
	interval time.Duration
	logger   *logger.Logger
}

func NewMediaCleanup(runner cleanupRunner, interval time.Duration, log *logger.Logger) *MediaCleanup {
	return &MediaCleanup{
		runner:   runner,
		interval: interval,
		logger:   log.Named("MediaCleanupWorker"),
	}
}

// Run blocks until ctx is cancelled.
func (w *MediaCleanup) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("Media cleanup worker disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("Media cleanup worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Media cleanup worker stopped")
			return
		case <-ticker.C:
			if _, err := w.runner.RetryPending(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("Media cleanup pass failed", zap.Error(err))
			}
		}
	}
}
