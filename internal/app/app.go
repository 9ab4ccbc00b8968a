// Package app wires configuration into the services shared by the HTTP
// server and the job runner.
package app

import (
	"context"
	"fmt"
	"net/http"

	"meli-reconciler/config"
	"meli-reconciler/internal/adapter/inventory"
	"meli-reconciler/internal/adapter/kafka"
	"meli-reconciler/internal/adapter/marketplace"
	"meli-reconciler/internal/adapter/sheets"
	pgStorage "meli-reconciler/internal/adapter/storage/postgres"
	redisStorage "meli-reconciler/internal/adapter/storage/redis"
	"meli-reconciler/internal/core/ports"
	"meli-reconciler/internal/metrics"
	"meli-reconciler/internal/service"
	"meli-reconciler/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// App holds the connections and services built from one Config.
type App struct {
	Pool    *pgxpool.Pool
	Redis   *goredis.Client
	Metrics *metrics.Metrics

	Notifications *service.NotificationService
	Reconciler    *service.ReconcilerService
	Costs         ports.CostService
	Jobs          ports.JobService
	Audit         *service.AuditService

	RateLimitStore *redisStorage.RateLimitStore
	HealthCheckers []ports.HealthChecker

	producers []*kafka.Producer
	log       zerolog.Logger
}

// New connects to PostgreSQL and Redis, applies the schema and builds every
// service. Close releases what New opened.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Metrics: metrics.New(), log: log}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.Pool = pool
	log.Info().Msg("PostgreSQL connected")

	if err := pgStorage.Migrate(ctx, pool); err != nil {
		a.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.Redis = rdb
	log.Info().Msg("Redis connected")

	// Repositories
	notificationRepo := pgStorage.NewNotificationRepo(pool)
	orderRepo := pgStorage.NewOrderRepo(pool)
	costRepo := pgStorage.NewProductCostRepo(pool)
	credentialRepo := pgStorage.NewCredentialRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Redis stores
	credentialCache := redisStorage.NewCredentialCache(rdb)
	dedupe := redisStorage.NewDeliveryDedupe(rdb)
	a.RateLimitStore = redisStorage.NewRateLimitStore(rdb)

	encSvc, err := service.NewAESEncryptionService(cfg.Security.CredentialsKey)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("encryption service: %w", err)
	}

	// Marketplace
	httpClient := &http.Client{Timeout: cfg.Marketplace.RequestTimeout}
	tokens := marketplace.NewTokenProvider(marketplace.TokenProviderConfig{
		SellerID:     cfg.Marketplace.SellerID,
		ClientID:     cfg.Marketplace.ClientID,
		ClientSecret: cfg.Marketplace.ClientSecret,
		AuthURL:      cfg.Marketplace.AuthURL,
	}, credentialRepo, credentialCache, encSvc, httpClient, logger.Component(log, "tokens"))
	gateway := marketplace.NewGateway(marketplace.GatewayConfig{
		BaseURL:        cfg.Marketplace.BaseURL,
		RequestTimeout: cfg.Marketplace.RequestTimeout,
		MaxAttempts:    cfg.Marketplace.MaxAttempts,
		BackoffBase:    cfg.Marketplace.BackoffBase,
		RatePerSecond:  cfg.Marketplace.RatePerSecond,
		Burst:          cfg.Marketplace.Burst,
	}, tokens, httpClient, a.Metrics, logger.Component(log, "gateway"))
	source := marketplace.NewClient(gateway)

	// Message bus. A nil interface disables publishing.
	var orderEvents ports.EventPublisher
	if cfg.Kafka.Enabled() && cfg.Kafka.OrderTopic != "" {
		p := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic)
		a.producers = append(a.producers, p)
		orderEvents = p
		log.Info().Str("topic", p.Topic()).Msg("Kafka order events enabled")
	}
	dispatcher := a.inventoryDispatcher(cfg)

	// Cost source
	var sheetSource ports.SheetSource = sheets.Unavailable{}
	if cfg.Sheets.CredentialsFile != "" {
		client, err := sheets.NewClient(ctx, cfg.Sheets.CredentialsFile)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("sheets client: %w", err)
		}
		sheetSource = client
	} else {
		log.Warn().Msg("Sheets credentials not configured, cost refresh and rebuild will fail")
	}

	recomputeFrom, err := cfg.Jobs.RecomputeFromDate()
	if err != nil {
		a.Close()
		return nil, err
	}

	// Business services
	shippingSvc := service.NewShippingService(orderRepo, source, service.ShippingConfig{
		BatchSize:   cfg.Jobs.ShippingBatchSize,
		BatchPause:  cfg.Jobs.ShippingBatchPause,
		Concurrency: cfg.Marketplace.Concurrency,
	}, logger.Component(log, "shipping"))
	a.Notifications = service.NewNotificationService(notificationRepo, dedupe, dispatcher, a.Metrics, service.NotificationConfig{
		DedupeTTL:       cfg.Jobs.NotificationDedupeTTL,
		DispatchTimeout: cfg.Jobs.InventoryDispatchLimit,
	}, logger.Component(log, "notifications"))
	a.Reconciler = service.NewReconcilerService(
		notificationRepo, orderRepo, costRepo, source, shippingSvc, orderEvents, a.Metrics,
		service.ReconcilerConfig{Concurrency: cfg.Marketplace.Concurrency},
		logger.Component(log, "reconciler"),
	)
	a.Costs = service.NewCostService(costRepo, transactor, sheetSource, service.CostSourceConfig{
		MappingSpreadsheetID: cfg.Sheets.MappingSpreadsheetID,
		MappingRange:         cfg.Sheets.MappingRange,
		PriceSpreadsheetID:   cfg.Sheets.PriceSpreadsheetID,
		PriceRange:           cfg.Sheets.PriceRange,
		SnapshotFolderID:     cfg.Sheets.SnapshotFolderID,
		SnapshotPrefix:       cfg.Sheets.SnapshotPrefix,
		FilePause:            cfg.Sheets.FilePause,
	}, logger.Component(log, "costs"))
	a.Jobs = service.NewJobService(
		orderRepo, notificationRepo, costRepo, transactor, source, shippingSvc, a.Metrics,
		service.JobConfig{
			SellerID:              cfg.Marketplace.SellerID,
			OrderPause:            cfg.Jobs.OrderPause,
			CostBackfillWindow:    cfg.Jobs.CostBackfillWindow,
			ShippingRecheckWindow: cfg.Jobs.ShippingRecheckWindow,
			CoverageWindow:        cfg.Jobs.CoverageWindow,
			ImportWindow:          cfg.Jobs.ImportWindow,
			ImportPageSize:        cfg.Jobs.ImportPageSize,
			ImportPause:           cfg.Jobs.ImportPause,
			RecomputeFrom:         recomputeFrom,
			RecomputeBatchSize:    cfg.Jobs.RecomputeBatchSize,
		},
		logger.Component(log, "jobs"),
	)
	a.Audit = service.NewAuditService(auditRepo, logger.Component(log, "audit"))

	a.HealthCheckers = []ports.HealthChecker{
		pgStorage.NewHealthCheck(pool),
		redisStorage.NewHealthCheck(rdb),
	}
	return a, nil
}

func (a *App) inventoryDispatcher(cfg *config.Config) ports.InventoryDispatcher {
	switch cfg.Inventory.Mode {
	case "kafka":
		if !cfg.Kafka.Enabled() {
			a.log.Warn().Msg("Inventory mode is kafka but no brokers are configured, forwarding disabled")
			return nil
		}
		p := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.InventoryTopic)
		a.producers = append(a.producers, p)
		a.log.Info().Str("topic", p.Topic()).Msg("Inventory forwarding via Kafka")
		return inventory.NewKafkaForwarder(p)
	case "off", "":
		return nil
	default:
		if cfg.Inventory.URL == "" {
			a.log.Warn().Msg("Inventory URL not configured, forwarding disabled")
			return nil
		}
		return inventory.NewHTTPForwarder(cfg.Inventory.URL, cfg.Inventory.APIKey, &http.Client{Timeout: cfg.Inventory.Timeout})
	}
}

// Close waits for background dispatches and releases every connection.
func (a *App) Close() {
	if a.Notifications != nil {
		a.Notifications.Wait()
	}
	if a.Audit != nil {
		a.Audit.Wait()
	}
	for _, p := range a.producers {
		if err := p.Close(); err != nil {
			a.log.Error().Err(err).Str("topic", p.Topic()).Msg("Kafka producer close failed")
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.log.Error().Err(err).Msg("Redis close failed")
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
