package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skyhub/internal/api"
	"skyhub/internal/backup"
	"skyhub/internal/config"
	"skyhub/internal/domain"
	"skyhub/internal/events"
	"skyhub/internal/export"
	"skyhub/internal/logging"
	"skyhub/internal/metrics"
	"skyhub/internal/predictor"
	"skyhub/internal/storage"
	"skyhub/internal/store"
	"skyhub/internal/tracker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshots, snapshotsCloser, sourceDir, err := initSnapshots(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	if snapshotsCloser != nil {
		defer (func() { _ = snapshotsCloser.Close() })()
	}

	bus := events.NewBus()

	flights := store.NewBookingStore(ctx, snapshots, bus, logger)
	users := store.NewUserStore(ctx, snapshots, logger)
	pred := predictor.New(snapshots, logger)

	sim := tracker.NewSimulator(tracker.GenerateDemoFlights(cfg.Tracker.DemoFlights), logger)
	if cfg.Tracker.Autostart {
		sim.StartSimulation(cfg.Tracker.IntervalMS)
	}
	defer sim.StopSimulation()

	exporter := export.NewService(cfg.Exports.Path, logger)

	startBackups(ctx, cfg, sourceDir, &logger)
	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewHTTPServer(cfg.API, flights, users, sim, pred, exporter, logger)
	return serve(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := logging.Component(baseLogger, "api-main")

	return cfg, logger, closer, nil
}

// initSnapshots builds the configured snapshot backend wrapped in a failover
// over an in-memory store, so a dead backend degrades to volatile state
// instead of taking the app down. Returns the source directory to back up
// when the backend keeps local files.
func initSnapshots(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.SnapshotStore, io.Closer, string, error) {
	fallback := storage.NewMemoryStore()

	switch cfg.Storage.Backend {
	case "memory", "":
		return fallback, nil, "", nil

	case "file":
		fs, err := storage.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, "", fmt.Errorf("init file storage: %w", err)
		}
		logger.Info().Str("dir", fs.Dir()).Msg("file storage ready")
		return storage.NewFailoverStore(fs, fallback, logger), nil, fs.Dir(), nil

	case "sqlite":
		db, err := storage.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, "", fmt.Errorf("init sqlite storage: %w", err)
		}
		logger.Info().Str("path", cfg.Storage.SQLitePath).Msg("sqlite storage ready")
		return storage.NewFailoverStore(db, fallback, logger), db, "", nil

	case "redis":
		client := storage.NewRedisClient(cfg.Redis)
		if err := storage.Ping(ctx, client); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable, snapshots stay in memory until it recovers")
		} else {
			logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
		}
		return storage.NewFailoverStore(storage.NewRedisStore(client), fallback, logger), client, "", nil

	default:
		return nil, nil, "", fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func startBackups(ctx context.Context, cfg *config.Config, sourceDir string, logger *zerolog.Logger) {
	if !cfg.Backup.Enabled {
		return
	}
	if sourceDir == "" {
		logger.Warn().Str("backend", cfg.Storage.Backend).Msg("backups enabled but backend keeps no local files, skipping")
		return
	}

	svc := backup.NewService(sourceDir, cfg.Backup, logger)
	go svc.Start(ctx)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
