package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
	"github.com/allisson/assetvault/internal/metrics"
)

const metricsDomain = "assets"

// assetUseCaseWithMetrics decorates AssetUseCase with metrics instrumentation.
type assetUseCaseWithMetrics struct {
	next    AssetUseCase
	metrics metrics.BusinessMetrics
}

// NewAssetUseCaseWithMetrics wraps an AssetUseCase with metrics recording.
func NewAssetUseCaseWithMetrics(useCase AssetUseCase, m metrics.BusinessMetrics) AssetUseCase {
	return &assetUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// statusOf maps an outcome to a status label. A purchase gate refusal is a
// "denied" request rather than a failure of the vault.
func statusOf(err error) string {
	switch {
	case err == nil:
		return metrics.StatusSuccess
	case errors.Is(err, assetsDomain.ErrUnauthorized):
		return metrics.StatusDenied
	default:
		return metrics.StatusError
	}
}

func (a *assetUseCaseWithMetrics) recordStatus(ctx context.Context, operation string, start time.Time, status string) {
	a.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	a.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (a *assetUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	a.recordStatus(ctx, operation, start, statusOf(err))
}

// Ingest records metrics for ingestion. A degraded ingestion counts as "degraded".
func (a *assetUseCaseWithMetrics) Ingest(
	ctx context.Context,
	input assetsDomain.IngestInput,
) (*assetsDomain.IngestResult, error) {
	start := time.Now()
	result, err := a.next.Ingest(ctx, input)
	if err != nil {
		a.record(ctx, "asset_ingest", start, err)
		return result, err
	}

	status := metrics.StatusSuccess
	if !result.Success {
		status = metrics.StatusDegraded
	}
	a.recordStatus(ctx, "asset_ingest", start, status)
	a.metrics.RecordAssetBytes(ctx, "asset_ingest", int64(len(input.Data)))
	return result, nil
}

// Download records metrics for gated downloads.
func (a *assetUseCaseWithMetrics) Download(
	ctx context.Context,
	input assetsDomain.DownloadInput,
) (*assetsDomain.DownloadResult, error) {
	start := time.Now()
	result, err := a.next.Download(ctx, input)
	a.record(ctx, "asset_download", start, err)
	if err == nil {
		a.metrics.RecordAssetBytes(ctx, "asset_download", int64(len(result.Plaintext)))
	}
	return result, err
}

// Chat records metrics for chat requests.
func (a *assetUseCaseWithMetrics) Chat(
	ctx context.Context,
	input assetsDomain.ChatInput,
) (*assetsDomain.ChatResult, error) {
	start := time.Now()
	result, err := a.next.Chat(ctx, input)
	a.record(ctx, "asset_chat", start, err)
	return result, err
}

// GetMetadata records metrics for metadata lookups.
func (a *assetUseCaseWithMetrics) GetMetadata(ctx context.Context, contentID string) (*assetsDomain.Asset, error) {
	start := time.Now()
	asset, err := a.next.GetMetadata(ctx, contentID)
	a.record(ctx, "asset_metadata", start, err)
	return asset, err
}

// ListByOwner records metrics for owner listings.
func (a *assetUseCaseWithMetrics) ListByOwner(
	ctx context.Context,
	owner string,
	offset, limit int,
) ([]*assetsDomain.Asset, error) {
	start := time.Now()
	assets, err := a.next.ListByOwner(ctx, owner, offset, limit)
	a.record(ctx, "asset_list", start, err)
	return assets, err
}

// Delete records metrics for administrative deletion.
func (a *assetUseCaseWithMetrics) Delete(ctx context.Context, contentID string) error {
	start := time.Now()
	err := a.next.Delete(ctx, contentID)
	a.record(ctx, "asset_delete", start, err)
	return err
}

// CompleteUpload records metrics for upload retries.
func (a *assetUseCaseWithMetrics) CompleteUpload(
	ctx context.Context,
	assetID uuid.UUID,
	blobName string,
	ciphertext []byte,
) error {
	start := time.Now()
	err := a.next.CompleteUpload(ctx, assetID, blobName, ciphertext)
	a.record(ctx, "asset_complete_upload", start, err)
	return err
}

func (a *assetUseCaseWithMetrics) ContentID(asset *assetsDomain.Asset) string {
	return a.next.ContentID(asset)
}
