package usecase

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/metrics"
	"go.uber.org/zap"
)

const cleanupBatchSize = 50

// CleanupUsecase retries remote image deletions that failed earlier.
type CleanupUsecase struct {
	records     domain.CleanupRepository
	storage     domain.MediaStorage
	maxAttempts int
	metrics     *metrics.MetricsManager
	logger      *logger.Logger
}

func NewCleanupUsecase(records domain.CleanupRepository, storage domain.MediaStorage, maxAttempts int, m *metrics.MetricsManager, log *logger.Logger) *CleanupUsecase {
	return &CleanupUsecase{
		records:     records,
		storage:     storage,
		maxAttempts: maxAttempts,
		metrics:     m,
		logger:      log.Named("CleanupUsecase"),
	}
}

// CleanupResult summarises one retry pass.
type CleanupResult struct {
	Deleted   int
	Failed    int
	Abandoned int
}

// RetryPending makes one attempt at every pending record. Records that hit
// maxAttempts stay in the collection for manual inspection.
func (uc *CleanupUsecase) RetryPending(ctx context.Context) (CleanupResult, error) {
	var res CleanupResult

	records, err := uc.records.ListPending(ctx, uc.maxAttempts, cleanupBatchSize)
	if err != nil {
		return res, err
	}

	for _, rec := range records {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		if uc.storage.Delete(ctx, rec.URL) {
			if err := uc.records.Delete(ctx, rec.ID); err != nil {
				uc.logger.Error("Failed to drop finished cleanup record", zap.String("id", rec.ID), zap.Error(err))
			}
			res.Deleted++
			continue
		}

		if err := uc.records.RecordFailure(ctx, rec.ID, "remote delete failed"); err != nil {
			uc.logger.Error("Failed to record cleanup failure", zap.String("id", rec.ID), zap.Error(err))
		}
		if rec.Attempts+1 >= uc.maxAttempts {
			uc.logger.Warn("Giving up on remote image", zap.String("url", rec.URL), zap.Int("attempts", rec.Attempts+1))
			res.Abandoned++
		} else {
			res.Failed++
		}
	}

	uc.metrics.MediaCleanup("retried_ok", res.Deleted)
	uc.metrics.MediaCleanup("retried_failed", res.Failed)
	uc.metrics.MediaCleanup("abandoned", res.Abandoned)
	if len(records) > 0 {
		uc.logger.Info("Media cleanup pass finished",
			zap.Int("records", len(records)),
			zap.Int("deleted", res.Deleted),
			zap.Int("failed", res.Failed),
			zap.Int("abandoned", res.Abandoned))
	}
	return res, nil
}
