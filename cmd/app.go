package cmd

import (
	"context"
	"fmt"
	"time"

	"cryptogram-sync/core/auth"
	"cryptogram-sync/core/config"
	"cryptogram-sync/core/database"
	"cryptogram-sync/core/event"
	"cryptogram-sync/core/logger"
	"cryptogram-sync/core/metrics"
	"cryptogram-sync/core/protocol"
	"cryptogram-sync/core/reconcile"
	"cryptogram-sync/core/storage"
	"cryptogram-sync/core/telemetry"
	"cryptogram-sync/feature/games"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds everything a reconciliation cycle needs.
type runtime struct {
	cfg         *config.Config
	logger      *zap.Logger
	db          *gorm.DB
	store       *games.Store
	registry    *prometheus.Registry
	objects     storage.Client
	archiver    *storage.Archiver
	publisher   event.Publisher
	tracer      *sdktrace.TracerProvider
	auth        *auth.Provider
	coordinator *reconcile.Coordinator
}

// loadBase loads the configuration and creates the logger.
func loadBase() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// openStore connects to the local database and migrates the schema.
func openStore(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := games.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// newArchiver returns nil values when diagnostics archiving is disabled.
func newArchiver(ctx context.Context, cfg *config.Config, l *zap.Logger) (storage.Client, *storage.Archiver, error) {
	if !cfg.Storage.Enabled {
		return nil, nil, nil
	}
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to storage: %w", err)
	}
	archiver := storage.NewArchiver(client, cfg.Storage, l)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := archiver.EnsureBucket(ctx, cfg.Storage.Region); err != nil {
		return nil, nil, err
	}
	return client, archiver, nil
}

// newRuntime wires the coordinator and its collaborators from configuration.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, l, err := loadBase()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireOwner(); err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: l}

	if rt.tracer, err = telemetry.InitTracer(cfg.Telemetry); err != nil {
		return nil, err
	}

	if rt.db, err = openStore(cfg); err != nil {
		return nil, err
	}
	rt.store = games.NewStore(rt.db)

	if rt.objects, rt.archiver, err = newArchiver(ctx, cfg, l); err != nil {
		l.Warn("Diagnostics archive unavailable", zap.Error(err))
		rt.objects, rt.archiver = nil, nil
	}

	// Interfaces stay nil (not typed nil) when archiving is disabled.
	var payloadArchiver protocol.PayloadArchiver
	var reportArchiver reconcile.ReportArchiver
	if rt.archiver != nil {
		payloadArchiver = rt.archiver
		reportArchiver = rt.archiver
	}

	remote, err := protocol.NewClient(cfg.Remote, payloadArchiver, l)
	if err != nil {
		return nil, err
	}

	rt.registry = prometheus.NewRegistry()
	rt.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rt.publisher = event.NewPublisher(cfg.Events, l)
	rt.auth = auth.NewProvider(cfg.Auth, l)

	rt.coordinator = reconcile.NewCoordinator(reconcile.CoordinatorConfig{
		OwnerID:     cfg.Sync.OwnerID,
		Adapter:     games.NewAdapter(rt.store, l),
		Remote:      remote,
		Tokens:      rt.auth,
		Bookkeeping: games.NewBookkeepingStore(rt.db),
		Policy:      cfg.Sync,
		Logger:      l,
		Metrics:     metrics.New(rt.registry),
		Publisher:   rt.publisher,
		Archiver:    reportArchiver,
	})

	return rt, nil
}

// Close releases connections and flushes telemetry.
func (rt *runtime) Close() {
	_ = rt.publisher.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := telemetry.Shutdown(ctx, rt.tracer); err != nil {
		rt.logger.Warn("Tracer shutdown failed", zap.Error(err))
	}
	if sqlDB, err := rt.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rt.logger.Sync()
}
