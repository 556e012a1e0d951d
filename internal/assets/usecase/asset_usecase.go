package usecase

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
	"github.com/allisson/assetvault/internal/blob"
	"github.com/allisson/assetvault/internal/contentid"
	cryptoDomain "github.com/allisson/assetvault/internal/crypto/domain"
	cryptoService "github.com/allisson/assetvault/internal/crypto/service"
	"github.com/allisson/assetvault/internal/errors"
)

const genericMimeType = "application/octet-stream"

// assetUseCase implements AssetUseCase.
type assetUseCase struct {
	assetRepo  AssetRepository
	blobStore  BlobStore
	cipher     cryptoService.EnvelopeCipher
	gate       PurchaseGate
	analyzer   Analyzer
	analytics  AnalyticsRecorder
	retryQueue UploadRetryQueue
	codec      *contentid.Codec
	namespace  string
	logger     *slog.Logger
}

// NewAssetUseCase creates the asset pipeline. retryQueue may be nil, in which case
// failed uploads are only reported.
func NewAssetUseCase(
	assetRepo AssetRepository,
	blobStore BlobStore,
	cipher cryptoService.EnvelopeCipher,
	gate PurchaseGate,
	analyzer Analyzer,
	analytics AnalyticsRecorder,
	retryQueue UploadRetryQueue,
	codec *contentid.Codec,
	namespace string,
	logger *slog.Logger,
) AssetUseCase {
	return &assetUseCase{
		assetRepo:  assetRepo,
		blobStore:  blobStore,
		cipher:     cipher,
		gate:       gate,
		analyzer:   analyzer,
		analytics:  analytics,
		retryQueue: retryQueue,
		codec:      codec,
		namespace:  namespace,
		logger:     logger,
	}
}

// ContentID returns the content identifier of asset.
func (a *assetUseCase) ContentID(asset *assetsDomain.Asset) string {
	return a.codec.Format(a.namespace, asset.ID.String())
}

// Ingest encrypts the upload, stores its record, then uploads and links the ciphertext.
// Failures after the record exists are reported in the result, not as an error.
func (a *assetUseCase) Ingest(
	ctx context.Context,
	input assetsDomain.IngestInput,
) (*assetsDomain.IngestResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate asset id")
	}

	payload, err := a.cipher.Encrypt(input.Data, []byte(id.String()))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	asset := &assetsDomain.Asset{
		ID:               id,
		ProductID:        input.ProductID,
		Owner:            strings.ToLower(input.Owner),
		Title:            input.Title,
		Description:      input.Description,
		OriginalFilename: input.Filename,
		MimeType:         detectMimeType(input.MimeType, input.Data),
		FileSize:         int64(len(input.Data)),
		Encryption:       payload.Envelope,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := a.assetRepo.Create(ctx, asset); err != nil {
		return nil, err
	}

	result := &assetsDomain.IngestResult{
		AssetID:   id,
		ContentID: a.ContentID(asset),
	}

	blobName := blob.ObjectName(id.String(), input.Filename)
	blobURL, err := a.upload(ctx, id, blobName, payload.Ciphertext)
	if err != nil {
		a.logger.Error("encrypted content upload failed",
			slog.String("asset_id", id.String()),
			slog.Any("error", err),
		)

		result.Error = err.Error()
		result.Message = "asset stored but encrypted content upload failed"

		if a.retryQueue != nil {
			queueCtx := context.WithoutCancel(ctx)
			if qErr := a.retryQueue.EnqueueUpload(queueCtx, id, blobName, payload.Ciphertext); qErr != nil {
				a.logger.Error("failed to schedule upload retry",
					slog.String("asset_id", id.String()),
					slog.Any("error", qErr),
				)
			} else {
				result.RetryScheduled = true
				result.Message = "asset stored, encrypted content upload scheduled for retry"
			}
		}
		return result, nil
	}

	result.BlobURL = blobURL
	result.Success = true
	result.Message = "asset encrypted and stored"
	return result, nil
}

// CompleteUpload uploads ciphertext and links it to the existing record.
func (a *assetUseCase) CompleteUpload(
	ctx context.Context,
	assetID uuid.UUID,
	blobName string,
	ciphertext []byte,
) error {
	_, err := a.upload(ctx, assetID, blobName, ciphertext)
	return err
}

func (a *assetUseCase) upload(
	ctx context.Context,
	assetID uuid.UUID,
	blobName string,
	ciphertext []byte,
) (string, error) {
	blobURL, err := a.blobStore.Upload(ctx, blobName, ciphertext)
	if err != nil {
		return "", err
	}
	if err := a.assetRepo.UpdateBlobURL(ctx, assetID, blobURL); err != nil {
		return "", err
	}
	return blobURL, nil
}

// Download checks the purchase, then fetches and decrypts the asset. The owner
// is let through without a product check; anyone else needs a verifiable product.
func (a *assetUseCase) Download(
	ctx context.Context,
	input assetsDomain.DownloadInput,
) (*assetsDomain.DownloadResult, error) {
	asset, err := a.resolve(ctx, input.ContentID)
	if err != nil {
		return nil, err
	}

	authorized, err := a.gate.IsAuthorized(ctx, input.Requester, asset, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, assetsDomain.ErrUnauthorized
	}

	plaintext, err := a.decrypt(ctx, asset)
	if err != nil {
		return nil, err
	}

	a.analytics.Record(ctx, asset.ID, assetsDomain.CounterDownloads)

	return &assetsDomain.DownloadResult{
		Plaintext: plaintext,
		MimeType:  asset.MimeType,
		Filename:  downloadFilename(asset),
		Asset:     asset,
	}, nil
}

// Chat answers a question about the asset's content. It is not purchase-gated.
func (a *assetUseCase) Chat(ctx context.Context, input assetsDomain.ChatInput) (*assetsDomain.ChatResult, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "message is required")
	}

	asset, err := a.resolve(ctx, input.ContentID)
	if err != nil {
		return nil, err
	}

	plaintext, err := a.decrypt(ctx, asset)
	if err != nil {
		return nil, err
	}

	response, err := a.analyzer.Analyze(ctx, plaintext, asset.MimeType, input.Message)
	cryptoDomain.Zero(plaintext)
	if err != nil {
		return nil, err
	}

	a.analytics.Record(ctx, asset.ID, assetsDomain.CounterChats)

	return &assetsDomain.ChatResult{Response: response, AssetID: asset.ID}, nil
}

// GetMetadata returns the record behind contentID without touching its content.
func (a *assetUseCase) GetMetadata(ctx context.Context, contentID string) (*assetsDomain.Asset, error) {
	return a.resolve(ctx, contentID)
}

// ListByOwner lists the assets created by owner.
func (a *assetUseCase) ListByOwner(
	ctx context.Context,
	owner string,
	offset, limit int,
) ([]*assetsDomain.Asset, error) {
	return a.assetRepo.ListByOwner(ctx, owner, offset, limit)
}

// Delete removes the record, then makes a best-effort attempt to remove its blob.
func (a *assetUseCase) Delete(ctx context.Context, contentID string) error {
	asset, err := a.resolve(ctx, contentID)
	if err != nil {
		return err
	}

	if err := a.assetRepo.Delete(ctx, asset.ID); err != nil {
		return err
	}

	if asset.HasBlob() {
		if err := a.blobStore.Delete(ctx, asset.BlobURL); err != nil && !errors.Is(err, assetsDomain.ErrBlobNotFound) {
			a.logger.Warn("failed to delete encrypted content",
				slog.String("asset_id", asset.ID.String()),
				slog.String("blob_url", asset.BlobURL),
				slog.Any("error", err),
			)
		}
	}
	return nil
}

// resolve parses contentID and loads its record. Identifiers from another namespace,
// or whose record is not an asset id, resolve to ErrAssetNotFound.
func (a *assetUseCase) resolve(ctx context.Context, contentID string) (*assetsDomain.Asset, error) {
	cid, err := a.codec.Parse(contentID)
	if err != nil {
		return nil, err
	}
	if cid.Namespace != a.namespace {
		return nil, assetsDomain.ErrAssetNotFound
	}

	id, err := uuid.Parse(cid.Record)
	if err != nil {
		return nil, assetsDomain.ErrAssetNotFound
	}

	return a.assetRepo.GetByID(ctx, id)
}

// decrypt fetches the ciphertext and opens it. Integrity failures are logged as
// security events.
func (a *assetUseCase) decrypt(ctx context.Context, asset *assetsDomain.Asset) ([]byte, error) {
	if !asset.HasBlob() {
		return nil, assetsDomain.ErrContentNotLinked
	}

	ciphertext, err := a.blobStore.Fetch(ctx, asset.BlobURL)
	if err != nil {
		return nil, err
	}

	plaintext, err := a.cipher.Decrypt(ciphertext, asset.Encryption, []byte(asset.ID.String()))
	if err != nil {
		if errors.Is(err, cryptoDomain.ErrIntegrity) {
			a.logger.Error("asset failed integrity verification",
				slog.String("event", "security.integrity_failure"),
				slog.String("asset_id", asset.ID.String()),
				slog.String("key_version", asset.Encryption.KeyVersion),
			)
		}
		return nil, err
	}
	return plaintext, nil
}

func detectMimeType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != genericMimeType {
		return declared
	}
	return mimetype.Detect(data).String()
}

// downloadFilename derives the attachment name from the title, keeping the original
// file's extension.
func downloadFilename(asset *assetsDomain.Asset) string {
	ext := path.Ext(blob.SanitizeFilename(asset.OriginalFilename))
	name := blob.SanitizeFilename(asset.Title)
	if asset.Title == "" {
		name = blob.SanitizeFilename(asset.OriginalFilename)
	}
	if ext != "" && !strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		name += ext
	}
	return name
}
