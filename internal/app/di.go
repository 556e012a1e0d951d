// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	assetsHTTP "github.com/allisson/assetvault/internal/assets/http"
	assetsUseCase "github.com/allisson/assetvault/internal/assets/usecase"
	"github.com/allisson/assetvault/internal/config"
	"github.com/allisson/assetvault/internal/contentid"
	cryptoDomain "github.com/allisson/assetvault/internal/crypto/domain"
	cryptoService "github.com/allisson/assetvault/internal/crypto/service"
	"github.com/allisson/assetvault/internal/database"
	"github.com/allisson/assetvault/internal/http"
	"github.com/allisson/assetvault/internal/ledger"
	"github.com/allisson/assetvault/internal/metrics"
	outboxUsecase "github.com/allisson/assetvault/internal/outbox/usecase"
)

// Container wires the vault. Components are built on first access and shared
// by every caller after that.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Managers
	txManager database.TxManager

	// Crypto
	kmsService     cryptoService.KMSService
	masterKeyChain *cryptoDomain.MasterKeyChain
	aeadManager    cryptoService.AEADManager
	envelopeCipher cryptoService.EnvelopeCipher

	// Collaborators
	contentIDCodec *contentid.Codec
	blobStore      closableBlobStore
	ledgerClient   *ledger.Client
	purchaseGate   assetsUseCase.PurchaseGate
	analyzer       assetsUseCase.Analyzer
	analytics      *assetsUseCase.BackgroundAnalytics

	// Repositories
	assetRepo  assetsUseCase.AssetRepository
	outboxRepo outboxUsecase.OutboxEventRepository

	// Use Cases
	retryQueue    *outboxUsecase.UploadRetryQueue
	assetUseCase  assetsUseCase.AssetUseCase
	outboxUseCase outboxUsecase.UseCase

	// Handlers, Servers and Workers
	assetHandler  *assetsHTTP.AssetHandler
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// mu serializes Shutdown, errMu guards initErrors.
	mu                  sync.Mutex
	errMu               sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	kmsServiceInit      sync.Once
	masterKeyChainInit  sync.Once
	aeadManagerInit     sync.Once
	envelopeCipherInit  sync.Once
	contentIDCodecInit  sync.Once
	blobStoreInit       sync.Once
	ledgerClientInit    sync.Once
	purchaseGateInit    sync.Once
	analyzerInit        sync.Once
	analyticsInit       sync.Once
	assetRepoInit       sync.Once
	outboxRepoInit      sync.Once
	retryQueueInit      sync.Once
	assetUseCaseInit    sync.Once
	outboxUseCaseInit   sync.Once
	assetHandlerInit    sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// resolve runs init at most once and memoizes its result under name. A failed
// init is remembered, so later calls return the same error without retrying.
func resolve[T any](c *Container, once *sync.Once, name string, slot *T, init func() (T, error)) (T, error) {
	once.Do(func() {
		v, err := init()
		if err != nil {
			c.errMu.Lock()
			c.initErrors[name] = err
			c.errMu.Unlock()
			return
		}
		*slot = v
	})

	c.errMu.Lock()
	err := c.initErrors[name]
	c.errMu.Unlock()
	if err != nil {
		var zero T
		return zero, err
	}
	return *slot, nil
}

// Logger returns the JSON logger for the configured level.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	return resolve(c, &c.dbInit, "db", &c.db, c.initDB)
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	return resolve(c, &c.txManagerInit, "txManager", &c.txManager, c.initTxManager)
}

// MetricsProvider returns the OpenTelemetry metrics provider, or nil when
// metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return resolve(c, &c.metricsProviderInit, "metricsProvider", &c.metricsProvider, c.initMetricsProvider)
}

// BusinessMetrics returns the business metrics recorder. A no-op recorder is
// returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return resolve(c, &c.businessMetricsInit, "businessMetrics", &c.businessMetrics, c.initBusinessMetrics)
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Detached analytics writes must finish before the database goes away.
	if c.analytics != nil {
		c.analytics.Wait()
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.blobStore != nil {
		if err := c.blobStore.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("blob store close: %w", err))
		}
	}

	if c.ledgerClient != nil {
		c.ledgerClient.Close()
	}

	if c.masterKeyChain != nil {
		c.masterKeyChain.Close()
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

// initLogger builds a JSON logger. Unknown levels fall back to info.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return bm, nil
}

// unsupportedDriver reports a DB_DRIVER value with no repository implementation.
func (c *Container) unsupportedDriver() error {
	return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
}
