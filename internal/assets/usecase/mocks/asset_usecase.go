package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
)

// MockAssetUseCase is a mock implementation of AssetUseCase for testing.
type MockAssetUseCase struct {
	mock.Mock
}

// Ingest mocks the Ingest method of AssetUseCase.
func (m *MockAssetUseCase) Ingest(
	ctx context.Context,
	input assetsDomain.IngestInput,
) (*assetsDomain.IngestResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assetsDomain.IngestResult), args.Error(1)
}

// Download mocks the Download method of AssetUseCase.
func (m *MockAssetUseCase) Download(
	ctx context.Context,
	input assetsDomain.DownloadInput,
) (*assetsDomain.DownloadResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assetsDomain.DownloadResult), args.Error(1)
}

// Chat mocks the Chat method of AssetUseCase.
func (m *MockAssetUseCase) Chat(ctx context.Context, input assetsDomain.ChatInput) (*assetsDomain.ChatResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assetsDomain.ChatResult), args.Error(1)
}

// GetMetadata mocks the GetMetadata method of AssetUseCase.
func (m *MockAssetUseCase) GetMetadata(ctx context.Context, contentID string) (*assetsDomain.Asset, error) {
	args := m.Called(ctx, contentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assetsDomain.Asset), args.Error(1)
}

// ListByOwner mocks the ListByOwner method of AssetUseCase.
func (m *MockAssetUseCase) ListByOwner(
	ctx context.Context,
	owner string,
	offset, limit int,
) ([]*assetsDomain.Asset, error) {
	args := m.Called(ctx, owner, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*assetsDomain.Asset), args.Error(1)
}

// Delete mocks the Delete method of AssetUseCase.
func (m *MockAssetUseCase) Delete(ctx context.Context, contentID string) error {
	args := m.Called(ctx, contentID)
	return args.Error(0)
}

// CompleteUpload mocks the CompleteUpload method of AssetUseCase.
func (m *MockAssetUseCase) CompleteUpload(
	ctx context.Context,
	assetID uuid.UUID,
	blobName string,
	ciphertext []byte,
) error {
	args := m.Called(ctx, assetID, blobName, ciphertext)
	return args.Error(0)
}

// ContentID mocks the ContentID method of AssetUseCase.
func (m *MockAssetUseCase) ContentID(asset *assetsDomain.Asset) string {
	args := m.Called(asset)
	return args.String(0)
}
