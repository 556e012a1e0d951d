// Package usecase implements the outbox worker and the asset upload retry events it
// carries.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/allisson/assetvault/internal/database"
	"github.com/allisson/assetvault/internal/metrics"
	"github.com/allisson/assetvault/internal/outbox/domain"
)

// Config holds outbox worker settings.
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// EventProcessor handles one claimed event.
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

// BatchResult counts how one pass settled the events it claimed.
type BatchResult struct {
	Claimed   int
	Processed int
	Retried   int
	Failed    int
}

// UseCase is the outbox worker.
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) (BatchResult, error)
}

// OutboxUseCase drains pending upload retries in batches.
type OutboxUseCase struct {
	config         Config
	txManager      database.TxManager
	outboxRepo     OutboxEventRepository
	eventProcessor EventProcessor
	metrics        metrics.BusinessMetrics
	logger         *slog.Logger
}

// NewOutboxUseCase creates an OutboxUseCase. A nil recorder disables metrics.
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	eventProcessor EventProcessor,
	recorder metrics.BusinessMetrics,
	logger *slog.Logger,
) *OutboxUseCase {
	if recorder == nil {
		recorder = metrics.NewNoOpBusinessMetrics()
	}
	return &OutboxUseCase{
		config:         config,
		txManager:      txManager,
		outboxRepo:     outboxRepo,
		eventProcessor: eventProcessor,
		metrics:        recorder,
		logger:         logger,
	}
}

// Start runs a pass immediately and then once per interval until ctx is done.
// Pass failures are logged; the worker keeps going.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.log(slog.LevelInfo, "starting upload retry worker",
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
		slog.Int("max_retries", uc.config.MaxRetries),
	)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		if ctx.Err() == nil {
			if _, err := uc.ProcessEvents(ctx); err != nil && ctx.Err() == nil {
				uc.log(slog.LevelError, "upload retry pass failed", slog.Any("error", err))
			}
		}

		select {
		case <-ctx.Done():
			uc.log(slog.LevelInfo, "stopping upload retry worker")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessEvents claims up to BatchSize pending events and settles each one inside
// a single transaction. A failing event is retried on later passes until it has
// been attempted MaxRetries times; a malformed one fails at once.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) (BatchResult, error) {
	start := time.Now()
	var result BatchResult

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		result = BatchResult{}

		events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}
		result.Claimed = len(events)

		for _, event := range events {
			if err := uc.settle(ctx, event, uc.eventProcessor.Process(ctx, event), &result); err != nil {
				return err
			}
		}
		return nil
	})

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		result = BatchResult{}
	}
	if result.Claimed > 0 || err != nil {
		uc.metrics.RecordDuration(ctx, "outbox", "upload_retry", time.Since(start), status)
		uc.metrics.RecordOutboxBatch(ctx, result.Processed, result.Retried, result.Failed)
		uc.log(slog.LevelInfo, "upload retry pass finished",
			slog.Int("claimed", result.Claimed),
			slog.Int("processed", result.Processed),
			slog.Int("retried", result.Retried),
			slog.Int("failed", result.Failed),
		)
	}
	return result, err
}

// settle records the outcome of processing event.
func (uc *OutboxUseCase) settle(
	ctx context.Context,
	event *domain.OutboxEvent,
	procErr error,
	result *BatchResult,
) error {
	if procErr == nil {
		now := time.Now().UTC()
		event.Status = domain.OutboxEventStatusProcessed
		event.ProcessedAt = &now
		// The ciphertext now lives in the blob store.
		event.Payload = ""
		result.Processed++
		return uc.outboxRepo.Update(ctx, event)
	}

	event.Retries++
	msg := procErr.Error()
	event.LastError = &msg

	if event.Retries >= uc.config.MaxRetries || errors.Is(procErr, domain.ErrMalformedEvent) {
		event.Status = domain.OutboxEventStatusFailed
		result.Failed++
		uc.log(slog.LevelError, "upload retry abandoned",
			slog.String("event_id", event.ID.String()),
			slog.Int("attempts", event.Retries),
			slog.Any("error", procErr),
		)
	} else {
		result.Retried++
		uc.log(slog.LevelWarn, "upload retry failed, will retry",
			slog.String("event_id", event.ID.String()),
			slog.Int("attempts", event.Retries),
			slog.Any("error", procErr),
		)
	}

	return uc.outboxRepo.Update(ctx, event)
}

func (uc *OutboxUseCase) log(level slog.Level, msg string, attrs ...slog.Attr) {
	if uc.logger == nil {
		return
	}
	uc.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
