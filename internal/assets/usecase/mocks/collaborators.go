package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
)

// MockBlobStore is a mock implementation of BlobStore for testing.
type MockBlobStore struct {
	mock.Mock
}

// Upload mocks the Upload method of BlobStore.
func (m *MockBlobStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	args := m.Called(ctx, name, data)
	return args.String(0), args.Error(1)
}

// Fetch mocks the Fetch method of BlobStore.
func (m *MockBlobStore) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Delete mocks the Delete method of BlobStore.
func (m *MockBlobStore) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// MockPurchaseGate is a mock implementation of PurchaseGate for testing.
type MockPurchaseGate struct {
	mock.Mock
}

// IsAuthorized mocks the IsAuthorized method of PurchaseGate.
func (m *MockPurchaseGate) IsAuthorized(
	ctx context.Context,
	requester string,
	asset *assetsDomain.Asset,
	productOverride string,
) (bool, error) {
	args := m.Called(ctx, requester, asset, productOverride)
	return args.Bool(0), args.Error(1)
}

// MockAnalyzer is a mock implementation of Analyzer for testing.
type MockAnalyzer struct {
	mock.Mock
}

// Analyze mocks the Analyze method of Analyzer.
func (m *MockAnalyzer) Analyze(ctx context.Context, content []byte, mimeType, question string) (string, error) {
	args := m.Called(ctx, content, mimeType, question)
	return args.String(0), args.Error(1)
}

// MockUploadRetryQueue is a mock implementation of UploadRetryQueue for testing.
type MockUploadRetryQueue struct {
	mock.Mock
}

// EnqueueUpload mocks the EnqueueUpload method of UploadRetryQueue.
func (m *MockUploadRetryQueue) EnqueueUpload(
	ctx context.Context,
	assetID uuid.UUID,
	blobName string,
	ciphertext []byte,
) error {
	args := m.Called(ctx, assetID, blobName, ciphertext)
	return args.Error(0)
}

// MockAnalyticsRecorder is a mock implementation of AnalyticsRecorder for testing.
type MockAnalyticsRecorder struct {
	mock.Mock
}

// Record mocks the Record method of AnalyticsRecorder.
func (m *MockAnalyticsRecorder) Record(ctx context.Context, assetID uuid.UUID, counter assetsDomain.Counter) {
	m.Called(ctx, assetID, counter)
}
