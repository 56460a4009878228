package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"kshyun328/storesnap/config"
	"kshyun328/storesnap/internal/scrape"
	"kshyun328/storesnap/logger"
	"kshyun328/storesnap/services/cache"
	"kshyun328/storesnap/services/publisher"
	"kshyun328/storesnap/services/store"
	"kshyun328/storesnap/services/worker"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("scrape_interval", cfg.ScrapeInterval).
		Ints("scrape_hours", cfg.ScrapeHours).
		Int("tracked_stores", len(cfg.TrackedStores)).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, &cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	// Build the site registry over the shared metrics and cache
	metrics := scrape.NewMetrics()
	registry := scrape.NewRegistry(cfg, services.Cache, metrics)
	log.Info().
		Strs("sites", registry.Sites()).
		Msg("Registered site extractors")

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, metrics)
	}

	// Create and start worker
	w := worker.NewWorker(
		ctx,
		registry,
		services.Store,
		services.Publisher,
		cfg.TrackedStores,
		cfg.ScrapeInterval,
		cfg.ScrapeHours,
	)

	workerDone := make(chan struct{})
	go func() {
		log.Info().Msg("Starting snapshot worker")
		w.Start()
		close(workerDone)
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case <-workerDone:
		log.Info().Msg("Worker exited")
	}

	log.Info().Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Store     store.SnapshotStore
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Store != nil {
		s.Store.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}
	log := logger.Default

	// Initialize cache service
	services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
	log.Info().Str("addr", cfg.MemcacheAddr).Msg("Connected to Memcache")

	// Initialize snapshot store
	pgStore, err := store.NewPGStore(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := pgStore.EnsureSchema(ctx); err != nil {
		pgStore.Close()
		return nil, err
	}
	services.Store = pgStore
	log.Info().Msg("Connected to Postgres")

	// Initialize publisher
	services.Publisher = publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	log.Info().
		Str("addr", cfg.RedisAddr).
		Int("db", cfg.RedisDB).
		Str("stream", cfg.RedisStream).
		Msg("Connected to Redis")

	return services, nil
}

// serveMetrics exposes the scrape metrics registry over HTTP
func serveMetrics(addr string, metrics *scrape.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Default.Error().Err(err).Msg("Metrics server stopped")
	}
}
