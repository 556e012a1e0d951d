package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	outboxUsecase "github.com/allisson/assetvault/internal/outbox/usecase"
)

type mockUploadProcessor struct {
	mock.Mock
}

func (m *mockUploadProcessor) ProcessEvents(ctx context.Context) (outboxUsecase.BatchResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(outboxUsecase.BatchResult), args.Error(1)
}

func TestRunProcessUploads(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()

	t.Run("success", func(t *testing.T) {
		processor := &mockUploadProcessor{}
		processor.On("ProcessEvents", ctx).
			Return(outboxUsecase.BatchResult{Claimed: 4, Processed: 2, Retried: 1, Failed: 1}, nil)

		var out bytes.Buffer
		err := RunProcessUploads(ctx, processor, logger, &out)

		require.NoError(t, err)
		assert.Equal(t, "Processed 4 pending uploads: 2 uploaded, 1 retrying, 1 failed\n", out.String())
		processor.AssertExpectations(t)
	})

	t.Run("nothing pending", func(t *testing.T) {
		processor := &mockUploadProcessor{}
		processor.On("ProcessEvents", ctx).Return(outboxUsecase.BatchResult{}, nil)

		var out bytes.Buffer
		require.NoError(t, RunProcessUploads(ctx, processor, logger, &out))
		assert.Contains(t, out.String(), "Processed 0 pending uploads")
	})

	t.Run("error", func(t *testing.T) {
		processor := &mockUploadProcessor{}
		processor.On("ProcessEvents", ctx).Return(outboxUsecase.BatchResult{}, errors.New("database error"))

		err := RunProcessUploads(ctx, processor, logger, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "database error")
		processor.AssertExpectations(t)
	})
}
