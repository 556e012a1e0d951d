package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/option"

	"github.com/allisson/assetvault/internal/analysis"
	assetsHTTP "github.com/allisson/assetvault/internal/assets/http"
	assetsRepository "github.com/allisson/assetvault/internal/assets/repository"
	assetsService "github.com/allisson/assetvault/internal/assets/service"
	assetsUseCase "github.com/allisson/assetvault/internal/assets/usecase"
	"github.com/allisson/assetvault/internal/blob"
	"github.com/allisson/assetvault/internal/contentid"
	"github.com/allisson/assetvault/internal/database"
	apphttp "github.com/allisson/assetvault/internal/http"
	"github.com/allisson/assetvault/internal/ledger"
)

// closableBlobStore is a blob store that owns a connection to release on shutdown.
type closableBlobStore interface {
	assetsUseCase.BlobStore
	Close() error
}

// ContentIDCodec returns the content identifier codec.
func (c *Container) ContentIDCodec() (*contentid.Codec, error) {
	return resolve(c, &c.contentIDCodecInit, "contentIDCodec", &c.contentIDCodec, func() (*contentid.Codec, error) {
		return contentid.NewCodec(c.config.ContentIDScheme)
	})
}

// AssetRepository returns the asset record store for the configured driver.
func (c *Container) AssetRepository() (assetsUseCase.AssetRepository, error) {
	return resolve(c, &c.assetRepoInit, "assetRepo", &c.assetRepo, c.initAssetRepository)
}

// BlobStore returns the blob transfer adapter selected by BLOB_DRIVER.
func (c *Container) BlobStore() (assetsUseCase.BlobStore, error) {
	store, err := resolve(c, &c.blobStoreInit, "blobStore", &c.blobStore, c.initBlobStore)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// LedgerClient returns the JSON-RPC payment ledger client.
func (c *Container) LedgerClient() (*ledger.Client, error) {
	return resolve(c, &c.ledgerClientInit, "ledgerClient", &c.ledgerClient, func() (*ledger.Client, error) {
		client, err := ledger.NewClient(ledger.Config{
			RPCURL:          c.config.LedgerRPCURL,
			ContractAddress: c.config.LedgerContractAddress,
			RateLimit:       c.config.LedgerRateLimitRPS,
			Burst:           c.config.LedgerRateLimitBurst,
			HTTPClient:      &http.Client{Timeout: c.config.LedgerTimeout},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create ledger client: %w", err)
		}
		return client, nil
	})
}

// PurchaseGate returns the purchase gate backed by the ledger client.
func (c *Container) PurchaseGate() (assetsUseCase.PurchaseGate, error) {
	return resolve(c, &c.purchaseGateInit, "purchaseGate", &c.purchaseGate, func() (assetsUseCase.PurchaseGate, error) {
		client, err := c.LedgerClient()
		if err != nil {
			return nil, fmt.Errorf("failed to get ledger client for purchase gate: %w", err)
		}
		return assetsService.NewPurchaseGate(client, c.config.LedgerTimeout, c.Logger()), nil
	})
}

// Analyzer returns the content analyzer. Without OPENAI_API_KEY chat requests
// fail with an unavailable error instead of blocking startup.
func (c *Container) Analyzer() (assetsUseCase.Analyzer, error) {
	return resolve(c, &c.analyzerInit, "analyzer", &c.analyzer, c.initAnalyzer)
}

// Analytics returns the detached counter recorder.
func (c *Container) Analytics() (*assetsUseCase.BackgroundAnalytics, error) {
	return resolve(c, &c.analyticsInit, "analytics", &c.analytics, func() (*assetsUseCase.BackgroundAnalytics, error) {
		repo, err := c.AssetRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get asset repository for analytics: %w", err)
		}
		return assetsUseCase.NewBackgroundAnalytics(repo, c.config.AnalyticsTimeout, c.Logger()), nil
	})
}

// AssetUseCase returns the asset pipeline wrapped with metrics.
func (c *Container) AssetUseCase() (assetsUseCase.AssetUseCase, error) {
	return resolve(c, &c.assetUseCaseInit, "assetUseCase", &c.assetUseCase, c.initAssetUseCase)
}

// AssetHandler returns the HTTP handler for asset routes.
func (c *Container) AssetHandler() (*assetsHTTP.AssetHandler, error) {
	return resolve(c, &c.assetHandlerInit, "assetHandler", &c.assetHandler, func() (*assetsHTTP.AssetHandler, error) {
		uc, err := c.AssetUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get asset use case for asset handler: %w", err)
		}
		return assetsHTTP.NewAssetHandler(uc, c.Logger()), nil
	})
}

// HTTPServer returns the public API server.
func (c *Container) HTTPServer() (*apphttp.Server, error) {
	return resolve(c, &c.httpServerInit, "httpServer", &c.httpServer, c.initHTTPServer)
}

// MetricsServer returns the Prometheus metrics server.
func (c *Container) MetricsServer() (*apphttp.MetricsServer, error) {
	return resolve(c, &c.metricsServerInit, "metricsServer", &c.metricsServer, c.initMetricsServer)
}

func (c *Container) initAssetRepository() (assetsUseCase.AssetRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for asset repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return assetsRepository.NewMySQLAssetRepository(db), nil
	case database.DriverPostgres:
		return assetsRepository.NewPostgreSQLAssetRepository(db), nil
	case database.DriverSQLite:
		return assetsRepository.NewSQLiteAssetRepository(db), nil
	default:
		return nil, c.unsupportedDriver()
	}
}

func (c *Container) initBlobStore() (closableBlobStore, error) {
	ctx := context.Background()

	switch c.config.BlobDriver {
	case "", "bucket":
		store, err := blob.OpenBucketStore(ctx, c.config.BlobBucketURL, c.config.BlobPublicBaseURL, c.config.BlobTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to open blob bucket: %w", err)
		}
		return store, nil
	case "s3":
		store, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:         c.config.S3Bucket,
			Region:         c.config.S3Region,
			AccessKeyID:    c.config.S3AccessKeyID,
			SecretKey:      c.config.S3SecretAccessKey,
			Endpoint:       c.config.S3Endpoint,
			BaseURL:        c.config.BlobPublicBaseURL,
			ForcePathStyle: c.config.S3ForcePathStyle,
		}, blob.WithS3Timeout(c.config.BlobTimeout))
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 blob store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported blob driver: %s", c.config.BlobDriver)
	}
}

func (c *Container) initAnalyzer() (assetsUseCase.Analyzer, error) {
	if c.config.OpenAIAPIKey == "" {
		c.Logger().Info("chat analyzer disabled, OPENAI_API_KEY is not set")
		return analysis.Disabled{}, nil
	}

	opts := []analysis.OpenAIOption{
		analysis.WithModel(c.config.OpenAIModel),
		analysis.WithMaxContentBytes(c.config.AnalysisMaxContentBytes),
	}
	if c.config.OpenAIBaseURL != "" {
		opts = append(opts, analysis.WithRequestOptions(option.WithBaseURL(c.config.OpenAIBaseURL)))
	}

	analyzer, err := analysis.NewOpenAIAnalyzer(c.config.OpenAIAPIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	return analyzer, nil
}

func (c *Container) initAssetUseCase() (assetsUseCase.AssetUseCase, error) {
	repo, err := c.AssetRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get asset repository for asset use case: %w", err)
	}

	blobStore, err := c.BlobStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get blob store for asset use case: %w", err)
	}

	cipher, err := c.EnvelopeCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope cipher for asset use case: %w", err)
	}

	gate, err := c.PurchaseGate()
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase gate for asset use case: %w", err)
	}

	analyzer, err := c.Analyzer()
	if err != nil {
		return nil, fmt.Errorf("failed to get analyzer for asset use case: %w", err)
	}

	analytics, err := c.Analytics()
	if err != nil {
		return nil, fmt.Errorf("failed to get analytics for asset use case: %w", err)
	}

	retryQueue, err := c.UploadRetryQueue()
	if err != nil {
		return nil, fmt.Errorf("failed to get upload retry queue for asset use case: %w", err)
	}

	codec, err := c.ContentIDCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get content id codec for asset use case: %w", err)
	}

	bm, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for asset use case: %w", err)
	}

	useCase := assetsUseCase.NewAssetUseCase(
		repo,
		blobStore,
		cipher,
		gate,
		analyzer,
		analytics,
		retryQueue,
		codec,
		c.config.ContentIDNamespace,
		c.Logger(),
	)

	return assetsUseCase.NewAssetUseCaseWithMetrics(useCase, bm), nil
}

func (c *Container) initHTTPServer() (*apphttp.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	handler, err := c.AssetHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get asset handler for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := apphttp.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(c.config, handler, provider)

	return server, nil
}

func (c *Container) initMetricsServer() (*apphttp.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("metrics are disabled")
	}
	return apphttp.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
