package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	apperrors "github.com/allisson/assetvault/internal/errors"
	"github.com/allisson/assetvault/internal/outbox/domain"
)

// Uploader completes the upload of an already encrypted asset.
type Uploader interface {
	CompleteUpload(ctx context.Context, assetID uuid.UUID, blobName string, ciphertext []byte) error
}

// UploadRetryQueue stores failed asset uploads as outbox events.
type UploadRetryQueue struct {
	outboxRepo OutboxEventRepository
}

// NewUploadRetryQueue creates an UploadRetryQueue.
func NewUploadRetryQueue(outboxRepo OutboxEventRepository) *UploadRetryQueue {
	return &UploadRetryQueue{outboxRepo: outboxRepo}
}

// EnqueueUpload records a pending upload of ciphertext under blobName.
func (q *UploadRetryQueue) EnqueueUpload(
	ctx context.Context,
	assetID uuid.UUID,
	blobName string,
	ciphertext []byte,
) error {
	payload, err := json.Marshal(domain.BlobUploadPayload{
		AssetID:    assetID,
		BlobName:   blobName,
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to encode upload retry payload")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return apperrors.Wrap(err, "failed to generate outbox event id")
	}

	return q.outboxRepo.Create(ctx, &domain.OutboxEvent{
		ID:        id,
		EventType: domain.EventTypeBlobUpload,
		Payload:   string(payload),
		Status:    domain.OutboxEventStatusPending,
	})
}

// UploadRetryProcessor processes outbox events by completing the uploads they
// describe.
type UploadRetryProcessor struct {
	uploader Uploader
	logger   *slog.Logger
}

// NewUploadRetryProcessor creates an UploadRetryProcessor.
func NewUploadRetryProcessor(uploader Uploader, logger *slog.Logger) *UploadRetryProcessor {
	return &UploadRetryProcessor{
		uploader: uploader,
		logger:   logger,
	}
}

// Process handles one event. Unknown event types are logged and acknowledged.
func (p *UploadRetryProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	switch event.EventType {
	case domain.EventTypeBlobUpload:
		var payload domain.BlobUploadPayload
		if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
			return fmt.Errorf("%w: invalid upload retry payload: %v", domain.ErrMalformedEvent, err)
		}

		ciphertext, err := base64.StdEncoding.DecodeString(payload.Ciphertext)
		if err != nil {
			return fmt.Errorf("%w: invalid upload retry ciphertext: %v", domain.ErrMalformedEvent, err)
		}

		if err := p.uploader.CompleteUpload(ctx, payload.AssetID, payload.BlobName, ciphertext); err != nil {
			return err
		}

		if p.logger != nil {
			p.logger.Info("asset upload retried",
				slog.String("asset_id", payload.AssetID.String()),
				slog.String("blob_name", payload.BlobName),
			)
		}
	default:
		if p.logger != nil {
			p.logger.Warn("unknown event type", slog.String("event_type", event.EventType))
		}
	}

	return nil
}
