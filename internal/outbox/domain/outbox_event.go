// Package domain defines the outbox event entity and the event payloads carried by it.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// EventTypeBlobUpload is a pending upload of an asset's ciphertext whose first
// attempt failed during ingestion.
const EventTypeBlobUpload = "asset.blob_upload"

// ErrMalformedEvent marks an event whose payload can never be processed. Such
// events are failed at once instead of being retried.
var ErrMalformedEvent = errors.New("malformed outbox event")

// OutboxEvent represents an event in the transactional outbox pattern
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BlobUploadPayload is the JSON payload of an EventTypeBlobUpload event. Ciphertext is
// base64 encoded; it is already encrypted, so the outbox never holds plaintext.
type BlobUploadPayload struct {
	AssetID    uuid.UUID `json:"asset_id"`
	BlobName   string    `json:"blob_name"`
	Ciphertext string    `json:"ciphertext"`
}
