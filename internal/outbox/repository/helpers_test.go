package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/assetvault/internal/database"
	"github.com/allisson/assetvault/internal/outbox/domain"
	outboxUsecase "github.com/allisson/assetvault/internal/outbox/usecase"
)

func newTestEvent() *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: domain.EventTypeBlobUpload,
		Payload:   `{"asset_id":"` + uuid.NewString() + `","blob_name":"encrypted-assets/x.enc","ciphertext":"Y3Q="}`,
		Status:    domain.OutboxEventStatusPending,
	}
}

// runOutboxRepositoryContract exercises the behavior every outbox repository must share.
func runOutboxRepositoryContract(
	t *testing.T,
	repo outboxUsecase.OutboxEventRepository,
	txManager database.TxManager,
) {
	t.Helper()
	ctx := context.Background()

	t.Run("create and get pending", func(t *testing.T) {
		first := newTestEvent()
		require.NoError(t, repo.Create(ctx, first))
		time.Sleep(5 * time.Millisecond)
		second := newTestEvent()
		require.NoError(t, repo.Create(ctx, second))

		var events []*domain.OutboxEvent
		err := txManager.WithTx(ctx, func(ctx context.Context) error {
			var err error
			events, err = repo.GetPendingEvents(ctx, 10)
			return err
		})
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, first.ID, events[0].ID)
		assert.Equal(t, second.ID, events[1].ID)
		assert.Equal(t, first.Payload, events[0].Payload)
		assert.Equal(t, domain.EventTypeBlobUpload, events[0].EventType)
		assert.Nil(t, events[0].ProcessedAt)
		assert.Nil(t, events[0].LastError)
	})

	t.Run("limit", func(t *testing.T) {
		events, err := repo.GetPendingEvents(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("update removes processed and failed events from pending", func(t *testing.T) {
		events, err := repo.GetPendingEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 2)

		now := time.Now().UTC()
		events[0].Status = domain.OutboxEventStatusProcessed
		events[0].ProcessedAt = &now
		require.NoError(t, repo.Update(ctx, events[0]))

		lastError := "blob transfer failed"
		events[1].Retries = 3
		events[1].LastError = &lastError
		events[1].Status = domain.OutboxEventStatusFailed
		require.NoError(t, repo.Update(ctx, events[1]))

		remaining, err := repo.GetPendingEvents(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})

	t.Run("update keeps retry bookkeeping", func(t *testing.T) {
		event := newTestEvent()
		require.NoError(t, repo.Create(ctx, event))

		lastError := "timeout"
		event.Retries = 1
		event.LastError = &lastError
		require.NoError(t, repo.Update(ctx, event))

		events, err := repo.GetPendingEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, 1, events[0].Retries)
		require.NotNil(t, events[0].LastError)
		assert.Equal(t, "timeout", *events[0].LastError)
	})
}
