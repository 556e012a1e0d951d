package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
)

// BackgroundAnalytics increments access counters in the background.
//
// Increments are detached from the request context, so a client disconnect after a
// successful decrypt still counts. Failures are logged and dropped; they never reach
// the caller.
type BackgroundAnalytics struct {
	assetRepo AssetRepository
	timeout   time.Duration
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// NewBackgroundAnalytics creates a BackgroundAnalytics. Each increment is bounded by
// timeout when positive.
func NewBackgroundAnalytics(assetRepo AssetRepository, timeout time.Duration, logger *slog.Logger) *BackgroundAnalytics {
	return &BackgroundAnalytics{
		assetRepo: assetRepo,
		timeout:   timeout,
		logger:    logger,
	}
}

// Record schedules an increment of counter for assetID and returns immediately.
func (b *BackgroundAnalytics) Record(ctx context.Context, assetID uuid.UUID, counter assetsDomain.Counter) {
	ctx = context.WithoutCancel(ctx)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		if b.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.timeout)
			defer cancel()
		}

		if err := b.assetRepo.IncrementCounter(ctx, assetID, counter); err != nil {
			b.logger.Warn("failed to record asset analytics",
				slog.String("asset_id", assetID.String()),
				slog.String("counter", string(counter)),
				slog.Any("error", err),
			)
		}
	}()
}

// Wait blocks until every scheduled increment has finished.
func (b *BackgroundAnalytics) Wait() {
	b.wg.Wait()
}
