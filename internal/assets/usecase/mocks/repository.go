// Package mocks provides mock implementations of the asset pipeline collaborators
// and of AssetUseCase itself for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
)

// MockAssetRepository is a mock implementation of AssetRepository for testing.
type MockAssetRepository struct {
	mock.Mock
}

// Create mocks the Create method of AssetRepository.
func (m *MockAssetRepository) Create(ctx context.Context, asset *assetsDomain.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

// GetByID mocks the GetByID method of AssetRepository.
func (m *MockAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*assetsDomain.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assetsDomain.Asset), args.Error(1)
}

// UpdateBlobURL mocks the UpdateBlobURL method of AssetRepository.
func (m *MockAssetRepository) UpdateBlobURL(ctx context.Context, id uuid.UUID, blobURL string) error {
	args := m.Called(ctx, id, blobURL)
	return args.Error(0)
}

// IncrementCounter mocks the IncrementCounter method of AssetRepository.
func (m *MockAssetRepository) IncrementCounter(
	ctx context.Context,
	id uuid.UUID,
	counter assetsDomain.Counter,
) error {
	args := m.Called(ctx, id, counter)
	return args.Error(0)
}

// ListByOwner mocks the ListByOwner method of AssetRepository.
func (m *MockAssetRepository) ListByOwner(
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

// Delete mocks the Delete method of AssetRepository.
func (m *MockAssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
