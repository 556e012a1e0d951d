package usecase

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
	"github.com/allisson/assetvault/internal/contentid"
	cryptoDomain "github.com/allisson/assetvault/internal/crypto/domain"
	cryptoService "github.com/allisson/assetvault/internal/crypto/service"
)

const (
	testNamespace = "assets"
	ownerAddress  = "0xAAAA000000000000000000000000000000000001"
	buyerAddress  = "0xBBBB000000000000000000000000000000000002"
	otherAddress  = "0xCCCC000000000000000000000000000000000003"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCodec(t *testing.T) *contentid.Codec {
	t.Helper()
	codec, err := contentid.NewCodec(contentid.DefaultScheme)
	require.NoError(t, err)
	return codec
}

func newTestCipher(t *testing.T) *cryptoService.EnvelopeCipherService {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	for i := range key {
		key[i] = byte(i + 1)
	}
	chain, err := cryptoDomain.NewMasterKeyChain("mk1", &cryptoDomain.MasterKey{ID: "mk1", Key: key})
	require.NoError(t, err)
	t.Cleanup(chain.Close)

	cipher, err := cryptoService.NewEnvelopeCipher(chain, cryptoService.NewAEADManager(), cryptoDomain.AESGCM, 1<<20)
	require.NoError(t, err)
	return cipher
}

// memoryAssetRepository is an in-memory AssetRepository for pipeline scenarios.
type memoryAssetRepository struct {
	mu     sync.Mutex
	assets map[uuid.UUID]assetsDomain.Asset
}

func newMemoryAssetRepository() *memoryAssetRepository {
	return &memoryAssetRepository{assets: make(map[uuid.UUID]assetsDomain.Asset)}
}

func (r *memoryAssetRepository) Create(_ context.Context, asset *assetsDomain.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[asset.ID]; ok {
		return assetsDomain.ErrDuplicateID
	}
	r.assets[asset.ID] = *asset
	return nil
}

func (r *memoryAssetRepository) GetByID(_ context.Context, id uuid.UUID) (*assetsDomain.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.assets[id]
	if !ok {
		return nil, assetsDomain.ErrAssetNotFound
	}
	return &asset, nil
}

func (r *memoryAssetRepository) UpdateBlobURL(_ context.Context, id uuid.UUID, blobURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.assets[id]
	if !ok {
		return assetsDomain.ErrAssetNotFound
	}
	asset.BlobURL = blobURL
	asset.UpdatedAt = time.Now().UTC()
	r.assets[id] = asset
	return nil
}

func (r *memoryAssetRepository) IncrementCounter(_ context.Context, id uuid.UUID, counter assetsDomain.Counter) error {
	if _, err := counter.Column(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.assets[id]
	if !ok {
		return assetsDomain.ErrAssetNotFound
	}
	now := time.Now().UTC()
	switch counter {
	case assetsDomain.CounterChats:
		asset.Analytics.TotalChats++
	case assetsDomain.CounterDownloads:
		asset.Analytics.TotalDownloads++
	}
	asset.Analytics.LastAccessedAt = &now
	r.assets[id] = asset
	return nil
}

func (r *memoryAssetRepository) ListByOwner(
	_ context.Context,
	owner string,
	offset, limit int,
) ([]*assetsDomain.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assets := make([]*assetsDomain.Asset, 0)
	for _, asset := range r.assets {
		if strings.EqualFold(asset.Owner, owner) {
			a := asset
			assets = append(assets, &a)
		}
	}
	if offset >= len(assets) {
		return []*assetsDomain.Asset{}, nil
	}
	assets = assets[offset:]
	if limit < len(assets) {
		assets = assets[:limit]
	}
	return assets, nil
}

func (r *memoryAssetRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[id]; !ok {
		return assetsDomain.ErrAssetNotFound
	}
	delete(r.assets, id)
	return nil
}

// stubLedger answers HasPaid from a fixed set of paying addresses.
type stubLedger struct {
	mu    sync.Mutex
	paid  map[string]bool
	calls int
	err   error
}

func (l *stubLedger) HasPaid(_ context.Context, address, productID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return false, l.err
	}
	return l.paid[strings.ToLower(address)+"/"+productID], nil
}

func (l *stubLedger) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}
