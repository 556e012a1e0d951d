package app

import (
	"fmt"

	"github.com/allisson/assetvault/internal/database"
	outboxRepository "github.com/allisson/assetvault/internal/outbox/repository"
	outboxUsecase "github.com/allisson/assetvault/internal/outbox/usecase"
)

// OutboxRepository returns the outbox event repository instance.
func (c *Container) OutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	return resolve(c, &c.outboxRepoInit, "outboxRepo", &c.outboxRepo, c.initOutboxRepository)
}

// UploadRetryQueue returns the queue that persists failed blob uploads for retry.
func (c *Container) UploadRetryQueue() (*outboxUsecase.UploadRetryQueue, error) {
	return resolve(c, &c.retryQueueInit, "retryQueue", &c.retryQueue, func() (*outboxUsecase.UploadRetryQueue, error) {
		repo, err := c.OutboxRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get outbox repository for upload retry queue: %w", err)
		}
		return outboxUsecase.NewUploadRetryQueue(repo), nil
	})
}

// OutboxUseCase returns the outbox use case instance.
func (c *Container) OutboxUseCase() (outboxUsecase.UseCase, error) {
	return resolve(c, &c.outboxUseCaseInit, "outboxUseCase", &c.outboxUseCase, c.initOutboxUseCase)
}

// initOutboxRepository creates the outbox event repository instance.
func (c *Container) initOutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return outboxRepository.NewMySQLOutboxEventRepository(db), nil
	case database.DriverPostgres:
		return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
	case database.DriverSQLite:
		return outboxRepository.NewSQLiteOutboxEventRepository(db), nil
	default:
		return nil, c.unsupportedDriver()
	}
}

// initOutboxUseCase creates the outbox use case. Its processor completes
// uploads through the asset pipeline, so the pipeline is built first.
func (c *Container) initOutboxUseCase() (outboxUsecase.UseCase, error) {
	logger := c.Logger()

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	assetUseCase, err := c.AssetUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get asset use case for outbox use case: %w", err)
	}

	bm, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for outbox use case: %w", err)
	}

	useCaseConfig := outboxUsecase.Config{
		Interval:   c.config.OutboxInterval,
		BatchSize:  c.config.OutboxBatchSize,
		MaxRetries: c.config.OutboxMaxRetries,
	}

	processor := outboxUsecase.NewUploadRetryProcessor(assetUseCase, logger)
	return outboxUsecase.NewOutboxUseCase(useCaseConfig, txManager, outboxRepo, processor, bm, logger), nil
}
