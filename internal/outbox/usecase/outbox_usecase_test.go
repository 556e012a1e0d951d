package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/assetvault/internal/metrics"
	"github.com/allisson/assetvault/internal/outbox/domain"
)

// MockTxManager runs fn directly unless an error is configured for WithTx.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockOutboxEventRepository struct {
	mock.Mock
}

func (m *MockOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OutboxEvent), args.Error(1)
}

func (m *MockOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockEventProcessor struct {
	mock.Mock
}

func (m *MockEventProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// batchRecorder keeps the outbox batches it is handed.
type batchRecorder struct {
	metrics.NoOpBusinessMetrics
	batches  [][3]int
	statuses []string
}

func (r *batchRecorder) RecordDuration(_ context.Context, _, _ string, _ time.Duration, status string) {
	r.statuses = append(r.statuses, status)
}

func (r *batchRecorder) RecordOutboxBatch(_ context.Context, processed, retried, failed int) {
	r.batches = append(r.batches, [3]int{processed, retried, failed})
}

var testConfig = Config{Interval: time.Hour, BatchSize: 10, MaxRetries: 3}

func uploadEvent(retries int) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: domain.EventTypeBlobUpload,
		Payload:   `{"asset_id":"` + uuid.NewString() + `","blob_name":"encrypted-assets/a/a.txt.enc","ciphertext":"Y3Q="}`,
		Status:    domain.OutboxEventStatusPending,
		Retries:   retries,
	}
}

func TestOutboxUseCase_ProcessEvents(t *testing.T) {
	transferErr := errors.New("blob transfer failed")

	tests := []struct {
		name       string
		retries    int
		processErr error
		wantStatus domain.OutboxEventStatus
		wantResult BatchResult
	}{
		{
			name:       "uploaded",
			wantStatus: domain.OutboxEventStatusProcessed,
			wantResult: BatchResult{Claimed: 1, Processed: 1},
		},
		{
			name:       "transient failure stays pending",
			processErr: transferErr,
			wantStatus: domain.OutboxEventStatusPending,
			wantResult: BatchResult{Claimed: 1, Retried: 1},
		},
		{
			name:       "last attempt fails the event",
			retries:    2,
			processErr: transferErr,
			wantStatus: domain.OutboxEventStatusFailed,
			wantResult: BatchResult{Claimed: 1, Failed: 1},
		},
		{
			name:       "malformed payload fails at once",
			processErr: fmt.Errorf("%w: invalid upload retry payload", domain.ErrMalformedEvent),
			wantStatus: domain.OutboxEventStatusFailed,
			wantResult: BatchResult{Claimed: 1, Failed: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			event := uploadEvent(tt.retries)

			txManager := &MockTxManager{}
			repo := &MockOutboxEventRepository{}
			processor := &MockEventProcessor{}
			recorder := &batchRecorder{}

			txManager.On("WithTx", ctx, mock.Anything).Return(nil)
			repo.On("GetPendingEvents", ctx, 10).Return([]*domain.OutboxEvent{event}, nil)
			processor.On("Process", ctx, event).Return(tt.processErr)
			repo.On("Update", ctx, event).Return(nil)

			uc := NewOutboxUseCase(testConfig, txManager, repo, processor, recorder, nil)
			result, err := uc.ProcessEvents(ctx)

			require.NoError(t, err)
			assert.Equal(t, tt.wantResult, result)
			assert.Equal(t, tt.wantStatus, event.Status)
			assert.Equal(t, [][3]int{{result.Processed, result.Retried, result.Failed}}, recorder.batches)

			if tt.processErr == nil {
				assert.NotNil(t, event.ProcessedAt)
				assert.Nil(t, event.LastError)
				assert.Equal(t, tt.retries, event.Retries)
				assert.Empty(t, event.Payload)
			} else {
				assert.NotEmpty(t, event.Payload)
				require.NotNil(t, event.LastError)
				assert.Equal(t, tt.processErr.Error(), *event.LastError)
				assert.Equal(t, tt.retries+1, event.Retries)
			}
			repo.AssertExpectations(t)
			processor.AssertExpectations(t)
		})
	}
}

func TestOutboxUseCase_ProcessEvents_MixedBatch(t *testing.T) {
	ctx := context.Background()
	ok, flaky := uploadEvent(0), uploadEvent(0)

	txManager := &MockTxManager{}
	repo := &MockOutboxEventRepository{}
	processor := &MockEventProcessor{}

	txManager.On("WithTx", ctx, mock.Anything).Return(nil)
	repo.On("GetPendingEvents", ctx, 10).Return([]*domain.OutboxEvent{ok, flaky}, nil)
	processor.On("Process", ctx, ok).Return(nil)
	processor.On("Process", ctx, flaky).Return(errors.New("timeout"))
	repo.On("Update", ctx, mock.Anything).Return(nil).Twice()

	result, err := NewOutboxUseCase(testConfig, txManager, repo, processor, nil, nil).ProcessEvents(ctx)

	require.NoError(t, err)
	assert.Equal(t, BatchResult{Claimed: 2, Processed: 1, Retried: 1}, result)
	repo.AssertExpectations(t)
}

func TestOutboxUseCase_ProcessEvents_NothingPending(t *testing.T) {
	ctx := context.Background()
	txManager := &MockTxManager{}
	repo := &MockOutboxEventRepository{}
	recorder := &batchRecorder{}

	txManager.On("WithTx", ctx, mock.Anything).Return(nil)
	repo.On("GetPendingEvents", ctx, 10).Return([]*domain.OutboxEvent{}, nil)

	result, err := NewOutboxUseCase(testConfig, txManager, repo, &MockEventProcessor{}, recorder, nil).
		ProcessEvents(ctx)

	require.NoError(t, err)
	assert.Equal(t, BatchResult{}, result)
	assert.Empty(t, recorder.batches)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestOutboxUseCase_ProcessEvents_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("begin fails", func(t *testing.T) {
		txManager := &MockTxManager{}
		repo := &MockOutboxEventRepository{}
		recorder := &batchRecorder{}
		txManager.On("WithTx", ctx, mock.Anything).Return(errors.New("connection refused"))

		_, err := NewOutboxUseCase(testConfig, txManager, repo, &MockEventProcessor{}, recorder, nil).
			ProcessEvents(ctx)

		assert.EqualError(t, err, "connection refused")
		assert.Equal(t, []string{metrics.StatusError}, recorder.statuses)
		repo.AssertNotCalled(t, "GetPendingEvents", mock.Anything, mock.Anything)
	})

	t.Run("claim fails", func(t *testing.T) {
		txManager := &MockTxManager{}
		repo := &MockOutboxEventRepository{}
		txManager.On("WithTx", ctx, mock.Anything).Return(nil)
		repo.On("GetPendingEvents", ctx, 10).Return(nil, errors.New("database error"))

		_, err := NewOutboxUseCase(testConfig, txManager, repo, &MockEventProcessor{}, nil, nil).ProcessEvents(ctx)

		assert.EqualError(t, err, "database error")
	})

	t.Run("update fails rolls the batch back", func(t *testing.T) {
		event := uploadEvent(0)
		txManager := &MockTxManager{}
		repo := &MockOutboxEventRepository{}
		processor := &MockEventProcessor{}
		txManager.On("WithTx", ctx, mock.Anything).Return(nil)
		repo.On("GetPendingEvents", ctx, 10).Return([]*domain.OutboxEvent{event}, nil)
		processor.On("Process", ctx, event).Return(nil)
		repo.On("Update", ctx, event).Return(errors.New("update failed"))

		result, err := NewOutboxUseCase(testConfig, txManager, repo, processor, nil, nil).ProcessEvents(ctx)

		assert.EqualError(t, err, "update failed")
		assert.Equal(t, BatchResult{}, result)
	})
}

func TestOutboxUseCase_Start(t *testing.T) {
	t.Run("runs a pass before the first tick", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		txManager := &MockTxManager{}
		repo := &MockOutboxEventRepository{}
		txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil)
		repo.On("GetPendingEvents", mock.Anything, 10).
			Run(func(mock.Arguments) { cancel() }).
			Return([]*domain.OutboxEvent{}, nil).
			Once()

		err := NewOutboxUseCase(testConfig, txManager, repo, &MockEventProcessor{}, nil, nil).Start(ctx)

		assert.ErrorIs(t, err, context.Canceled)
		repo.AssertExpectations(t)
	})

	t.Run("cancelled context skips the pass", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		txManager := &MockTxManager{}
		err := NewOutboxUseCase(testConfig, txManager, &MockOutboxEventRepository{}, &MockEventProcessor{}, nil, nil).
			Start(ctx)

		assert.ErrorIs(t, err, context.Canceled)
		txManager.AssertNotCalled(t, "WithTx", mock.Anything, mock.Anything)
	})
}
