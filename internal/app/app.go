package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/StorefrontFilterGo/internal/config"
	"github.com/utafrali/StorefrontFilterGo/internal/engine"
	esengine "github.com/utafrali/StorefrontFilterGo/internal/engine/elasticsearch"
	"github.com/utafrali/StorefrontFilterGo/internal/engine/memory"
	"github.com/utafrali/StorefrontFilterGo/internal/event"
	handler "github.com/utafrali/StorefrontFilterGo/internal/handler/http"
	"github.com/utafrali/StorefrontFilterGo/internal/repository/postgres"
	"github.com/utafrali/StorefrontFilterGo/internal/repository/postgres/migrations"
	"github.com/utafrali/StorefrontFilterGo/internal/service"
	"github.com/utafrali/StorefrontFilterGo/pkg/database"
	"github.com/utafrali/StorefrontFilterGo/pkg/health"
	"github.com/utafrali/StorefrontFilterGo/pkg/httpclient"
	pkgkafka "github.com/utafrali/StorefrontFilterGo/pkg/kafka"
	"github.com/utafrali/StorefrontFilterGo/pkg/middleware"
)

// App wires together all dependencies and runs the filter service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	cache      *redis.Client
	producer   *pkgkafka.Producer
	consumers  []*pkgkafka.Consumer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.PostgresConfig()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.Files, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize Redis for config and formatted-filter caching.
	cache, err := database.NewRedisClient(ctx, cfg.RedisConfig())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.RedisConfig().Addr()))

	// Initialize the search engine based on configuration.
	var eng engine.SearchEngine
	var esEng *esengine.Engine
	switch cfg.SearchEngine {
	case "elasticsearch":
		esEng, err = esengine.New(cfg.ElasticsearchURL, cfg.ElasticsearchIndex, cfg.OptionPairSeparator, logger)
		if err != nil {
			cache.Close()
			pool.Close()
			return nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		eng = esEng
		logger.Info("elasticsearch engine initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", cfg.ElasticsearchIndex),
		)
	default:
		eng = memory.New(cfg.OptionPairSeparator)
		logger.Info("in-memory search engine initialized")
	}

	// HTTP client with circuit breaker for product service calls.
	productClient := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("product-service"),
		logger,
	)

	// Initialize Kafka producer for filter-config lifecycle events.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	eventProducer := event.NewProducer(producer, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	repo := postgres.NewFilterConfigRepository(pool)
	configService := service.NewFilterConfigService(repo, cache, eventProducer, logger)
	searchService := service.NewSearchService(
		eng,
		configService,
		cache,
		productClient,
		cfg.ProductServiceURL,
		cfg.OptionPairSeparator,
		logger,
	)

	// Kafka consumers for product events.
	eventConsumer := event.NewConsumer(searchService, logger)
	topics := []string{
		event.TopicProductCreated,
		event.TopicProductUpdated,
		event.TopicProductDeleted,
	}

	var consumers []*pkgkafka.Consumer
	for _, topic := range topics {
		consumerCfg := pkgkafka.ConsumerConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  "filter-service",
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6, // 10 MB
		}
		consumers = append(consumers, pkgkafka.NewConsumer(consumerCfg, eventConsumer.Handle, logger))
	}
	logger.Info("kafka consumers initialized",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.Int("topic_count", len(topics)),
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", pool.Ping)
	healthHandler.Register("redis", func(ctx context.Context) error {
		return cache.Ping(ctx).Err()
	})
	if esEng != nil {
		healthHandler.Register("elasticsearch", esEng.Ping)
	}
	healthHandler.Register("kafka", producer.Ping)

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.Environment = cfg.Environment
	router := handler.NewRouter(handler.RouterConfig{
		SearchService:       searchService,
		FilterConfigService: configService,
		HealthHandler:       healthHandler,
		PairSeparator:       cfg.OptionPairSeparator,
		CORS:                corsCfg,
		Logger:              logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		cache:      cache,
		producer:   producer,
		consumers:  consumers,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and Kafka consumers, blocking until the context
// is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		c := c
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components: HTTP server first so in-flight
// requests drain, then consumers, then the storage connections.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.cache.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
