package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
	assetsUsecase "github.com/allisson/assetvault/internal/assets/usecase"
	cryptoDomain "github.com/allisson/assetvault/internal/crypto/domain"
)

func newTestAsset(owner string) *assetsDomain.Asset {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &assetsDomain.Asset{
		ID:               uuid.Must(uuid.NewV7()),
		ProductID:        "42",
		Owner:            owner,
		Title:            "Quarterly report",
		Description:      "Q3 numbers",
		OriginalFilename: "report.pdf",
		MimeType:         "application/pdf",
		FileSize:         2048,
		Encryption: cryptoDomain.EncryptionEnvelope{
			Algorithm:  cryptoDomain.AESGCM,
			WrappedKey: "d3JhcHBlZA==",
			IV:         "aXYtaXYtaXYtaXYtaXYtaQ==",
			AuthTag:    "dGFnLXRhZy10YWctdGFnLQ==",
			KeyVersion: "v1:mk1",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// runAssetRepositoryContract exercises the behavior every AssetRepository must share.
func runAssetRepositoryContract(t *testing.T, repo assetsUsecase.AssetRepository) {
	ctx := context.Background()
	owner := "0xAbC0000000000000000000000000000000000001"

	t.Run("Create_And_GetByID", func(t *testing.T) {
		asset := newTestAsset(owner)
		require.NoError(t, repo.Create(ctx, asset))

		got, err := repo.GetByID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, asset.ID, got.ID)
		assert.Equal(t, asset.ProductID, got.ProductID)
		assert.Equal(t, asset.Owner, got.Owner)
		assert.Equal(t, asset.OriginalFilename, got.OriginalFilename)
		assert.Equal(t, asset.Encryption, got.Encryption)
		assert.Equal(t, "", got.BlobURL)
		assert.Equal(t, int64(0), got.Analytics.TotalChats)
		assert.Nil(t, got.Analytics.LastAccessedAt)
		assert.WithinDuration(t, asset.CreatedAt, got.CreatedAt, time.Second)
	})

	t.Run("Create_DuplicateID", func(t *testing.T) {
		asset := newTestAsset(owner)
		require.NoError(t, repo.Create(ctx, asset))
		err := repo.Create(ctx, asset)
		assert.ErrorIs(t, err, assetsDomain.ErrDuplicateID)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, assetsDomain.ErrAssetNotFound)
	})

	t.Run("UpdateBlobURL_TouchesOnlyURL", func(t *testing.T) {
		asset := newTestAsset(owner)
		require.NoError(t, repo.Create(ctx, asset))

		require.NoError(t, repo.UpdateBlobURL(ctx, asset.ID, "https://cdn.example/encrypted-assets/a/report.pdf.enc"))

		got, err := repo.GetByID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/encrypted-assets/a/report.pdf.enc", got.BlobURL)
		assert.Equal(t, asset.Title, got.Title)
		assert.Equal(t, asset.Encryption, got.Encryption)
		assert.False(t, got.UpdatedAt.Before(asset.UpdatedAt))

		err = repo.UpdateBlobURL(ctx, uuid.Must(uuid.NewV7()), "x")
		assert.ErrorIs(t, err, assetsDomain.ErrAssetNotFound)
	})

	t.Run("IncrementCounter", func(t *testing.T) {
		asset := newTestAsset(owner)
		require.NoError(t, repo.Create(ctx, asset))

		require.NoError(t, repo.IncrementCounter(ctx, asset.ID, assetsDomain.CounterDownloads))
		require.NoError(t, repo.IncrementCounter(ctx, asset.ID, assetsDomain.CounterDownloads))
		require.NoError(t, repo.IncrementCounter(ctx, asset.ID, assetsDomain.CounterChats))

		got, err := repo.GetByID(ctx, asset.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Analytics.TotalDownloads)
		assert.Equal(t, int64(1), got.Analytics.TotalChats)
		require.NotNil(t, got.Analytics.LastAccessedAt)
		assert.Equal(t, asset.Title, got.Title)

		err = repo.IncrementCounter(ctx, asset.ID, assetsDomain.Counter("views"))
		assert.ErrorIs(t, err, assetsDomain.ErrInvalidCounter)

		err = repo.IncrementCounter(ctx, uuid.Must(uuid.NewV7()), assetsDomain.CounterChats)
		assert.ErrorIs(t, err, assetsDomain.ErrAssetNotFound)
	})

	t.Run("ListByOwner", func(t *testing.T) {
		other := "0x0000000000000000000000000000000000000def"
		first := newTestAsset(other)
		second := newTestAsset(other)
		second.CreatedAt = first.CreatedAt.Add(time.Second)
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))
		require.NoError(t, repo.Create(ctx, newTestAsset(owner)))

		assets, err := repo.ListByOwner(ctx, "0x0000000000000000000000000000000000000DEF", 0, 10)
		require.NoError(t, err)
		require.Len(t, assets, 2)
		assert.Equal(t, second.ID, assets[0].ID)
		assert.Equal(t, first.ID, assets[1].ID)

		page, err := repo.ListByOwner(ctx, other, 1, 10)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, first.ID, page[0].ID)

		none, err := repo.ListByOwner(ctx, "0xnobody", 0, 10)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Delete", func(t *testing.T) {
		asset := newTestAsset(owner)
		require.NoError(t, repo.Create(ctx, asset))
		require.NoError(t, repo.Delete(ctx, asset.ID))

		_, err := repo.GetByID(ctx, asset.ID)
		assert.ErrorIs(t, err, assetsDomain.ErrAssetNotFound)

		assert.ErrorIs(t, repo.Delete(ctx, asset.ID), assetsDomain.ErrAssetNotFound)
	})
}
