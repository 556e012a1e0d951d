package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
	assetsUsecaseMocks "github.com/allisson/assetvault/internal/assets/usecase/mocks"
)

func TestBackgroundAnalytics_Record(t *testing.T) {
	t.Run("Success_SurvivesCanceledRequest", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		repo := &assetsUsecaseMocks.MockAssetRepository{}
		id := uuid.Must(uuid.NewV7())

		repo.On("IncrementCounter", mock.Anything, id, assetsDomain.CounterDownloads).
			Run(func(args mock.Arguments) {
				ctx := args.Get(0).(context.Context)
				assert.NoError(t, ctx.Err())
				_, hasDeadline := ctx.Deadline()
				assert.True(t, hasDeadline)
			}).
			Return(nil).
			Once()

		recorder := NewBackgroundAnalytics(repo, time.Second, discardLogger())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		recorder.Record(ctx, id, assetsDomain.CounterDownloads)
		recorder.Wait()

		repo.AssertExpectations(t)
	})

	t.Run("Success_FailureSwallowed", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		repo := &assetsUsecaseMocks.MockAssetRepository{}
		id := uuid.Must(uuid.NewV7())
		repo.On("IncrementCounter", mock.Anything, id, assetsDomain.CounterChats).
			Return(errors.New("database unavailable")).
			Once()

		recorder := NewBackgroundAnalytics(repo, 0, discardLogger())
		assert.NotPanics(t, func() {
			recorder.Record(context.Background(), id, assetsDomain.CounterChats)
			recorder.Wait()
		})
		repo.AssertExpectations(t)
	})

	t.Run("Success_WaitDrainsMany", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		repo := newMemoryAssetRepository()
		asset := linkedAsset()
		_ = repo.Create(context.Background(), asset)

		recorder := NewBackgroundAnalytics(repo, time.Second, discardLogger())
		for i := 0; i < 50; i++ {
			recorder.Record(context.Background(), asset.ID, assetsDomain.CounterChats)
		}
		recorder.Wait()

		got, err := repo.GetByID(context.Background(), asset.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(50), got.Analytics.TotalChats)
	})
}
