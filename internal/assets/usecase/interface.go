// Package usecase implements the asset pipeline: ingestion, gated download, chat
// over decrypted content, metadata lookup and administrative deletion.
package usecase

import (
	"context"

	"github.com/google/uuid"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
)

// AssetRepository persists asset records.
type AssetRepository interface {
	Create(ctx context.Context, asset *assetsDomain.Asset) error
	GetByID(ctx context.Context, id uuid.UUID) (*assetsDomain.Asset, error)
	// UpdateBlobURL sets the blob URL and updated_at, nothing else.
	UpdateBlobURL(ctx context.Context, id uuid.UUID, blobURL string) error
	// IncrementCounter adds one to the named counter and refreshes last_accessed_at,
	// without touching any other field.
	IncrementCounter(ctx context.Context, id uuid.UUID, counter assetsDomain.Counter) error
	ListByOwner(ctx context.Context, owner string, offset, limit int) ([]*assetsDomain.Asset, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BlobStore moves encrypted bytes to and from object storage.
type BlobStore interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
	Fetch(ctx context.Context, url string) ([]byte, error)
	Delete(ctx context.Context, url string) error
}

// PurchaseGate decides whether a requester may decrypt an asset.
type PurchaseGate interface {
	IsAuthorized(ctx context.Context, requester string, asset *assetsDomain.Asset, productOverride string) (bool, error)
}

// Analyzer answers a question about decrypted content.
type Analyzer interface {
	Analyze(ctx context.Context, content []byte, mimeType, question string) (string, error)
}

// UploadRetryQueue schedules a background retry of a failed blob upload.
type UploadRetryQueue interface {
	EnqueueUpload(ctx context.Context, assetID uuid.UUID, blobName string, ciphertext []byte) error
}

// AnalyticsRecorder records counter increments off the request path.
type AnalyticsRecorder interface {
	Record(ctx context.Context, assetID uuid.UUID, counter assetsDomain.Counter)
}

// AssetUseCase is the asset pipeline.
type AssetUseCase interface {
	Ingest(ctx context.Context, input assetsDomain.IngestInput) (*assetsDomain.IngestResult, error)
	// Download returns decrypted content.
	//
	// Security Note: callers MUST zero DownloadResult.Plaintext after writing it out.
	Download(ctx context.Context, input assetsDomain.DownloadInput) (*assetsDomain.DownloadResult, error)
	Chat(ctx context.Context, input assetsDomain.ChatInput) (*assetsDomain.ChatResult, error)
	GetMetadata(ctx context.Context, contentID string) (*assetsDomain.Asset, error)
	ListByOwner(ctx context.Context, owner string, offset, limit int) ([]*assetsDomain.Asset, error)
	Delete(ctx context.Context, contentID string) error
	// CompleteUpload uploads ciphertext for an existing record and links its blob URL.
	CompleteUpload(ctx context.Context, assetID uuid.UUID, blobName string, ciphertext []byte) error
	ContentID(asset *assetsDomain.Asset) string
}
