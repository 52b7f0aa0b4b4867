package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/atacado-catalog/api"
	"github.com/angelmondragon/atacado-catalog/api/controllers"
	"github.com/angelmondragon/atacado-catalog/api/routes"
	"github.com/angelmondragon/atacado-catalog/internal/auth"
	"github.com/angelmondragon/atacado-catalog/internal/catalog"
	"github.com/angelmondragon/atacado-catalog/internal/categories"
	product "github.com/angelmondragon/atacado-catalog/internal/products"
	"github.com/angelmondragon/atacado-catalog/internal/references"
	"github.com/angelmondragon/atacado-catalog/internal/uploads"
	"github.com/angelmondragon/atacado-catalog/internal/users"
	"github.com/angelmondragon/atacado-catalog/pkg/auth/session"
	"github.com/angelmondragon/atacado-catalog/pkg/config"
	"github.com/angelmondragon/atacado-catalog/pkg/db"
	"github.com/angelmondragon/atacado-catalog/pkg/instance"
	"github.com/angelmondragon/atacado-catalog/pkg/logger"
	"github.com/angelmondragon/atacado-catalog/pkg/metrics"
	"github.com/angelmondragon/atacado-catalog/pkg/migrate"
	"github.com/angelmondragon/atacado-catalog/pkg/pagination"
	"github.com/angelmondragon/atacado-catalog/pkg/redis"
	"github.com/angelmondragon/atacado-catalog/pkg/storage"
	"github.com/angelmondragon/atacado-catalog/pkg/storage/gcs"
	"github.com/angelmondragon/atacado-catalog/pkg/storage/local"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("run dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return fmt.Errorf("create session manager: %w", err)
	}

	store, uploadFiles, err := newStorage(ctx, cfg, logg)
	if err != nil {
		return fmt.Errorf("bootstrap storage: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	catalogMetrics := metrics.NewCatalogMetrics(registry)

	limits := pagination.Limits{Default: cfg.Catalog.DefaultPageSize, Max: cfg.Catalog.MaxPageSize}

	referenceRepo := references.NewRepository(dbClient.DB())
	productRepo := product.NewRepository(dbClient.DB())
	categoryRepo := categories.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())

	snapshots, err := catalog.NewSnapshotCache(catalog.CacheParams{
		References: referenceRepo,
		Products:   productRepo,
		Categories: categoryRepo,
		Versions:   redisClient,
		Logger:     logg,
		Metrics:    catalogMetrics,
	})
	if err != nil {
		return fmt.Errorf("create snapshot cache: %w", err)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{Snapshots: snapshots, Limits: limits, Metrics: catalogMetrics})
	if err != nil {
		return fmt.Errorf("create catalog service: %w", err)
	}
	referenceService, err := references.NewService(references.ServiceParams{
		Repo:        referenceRepo,
		Categories:  categoryRepo,
		Invalidator: snapshots,
		Logger:      logg,
		Metrics:     catalogMetrics,
	})
	if err != nil {
		return fmt.Errorf("create reference service: %w", err)
	}
	productService, err := product.NewService(product.ServiceParams{
		Repo:        productRepo,
		Invalidator: snapshots,
		Limits:      limits,
		Logger:      logg,
		Metrics:     catalogMetrics,
	})
	if err != nil {
		return fmt.Errorf("create product service: %w", err)
	}
	categoryService, err := categories.NewService(categories.ServiceParams{Repo: categoryRepo, DB: dbClient, Invalidator: snapshots})
	if err != nil {
		return fmt.Errorf("create category service: %w", err)
	}
	userService, err := users.NewService(users.ServiceParams{Repo: userRepo, PasswordConfig: cfg.Password})
	if err != nil {
		return fmt.Errorf("create user service: %w", err)
	}
	uploadService, err := uploads.NewService(uploads.ServiceParams{Store: store, MaxBytes: cfg.Storage.MaxUploadBytes(), Logger: logg})
	if err != nil {
		return fmt.Errorf("create upload service: %w", err)
	}
	authService, err := auth.NewService(auth.ServiceParams{UserRepo: userRepo, SessionManager: sessionManager, JWTConfig: cfg.JWT})
	if err != nil {
		return fmt.Errorf("create auth service: %w", err)
	}

	if _, err := users.EnsureAdmin(ctx, userService, userRepo, cfg.Bootstrap, logg); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		Sessions:    sessionManager,
		RateLimiter: redisClient,
		Idempotency: redisClient,
		Readiness: map[string]controllers.ReadinessCheck{
			"db":      dbClient.Ping,
			"redis":   redisClient.Ping,
			"storage": store.Ping,
		},
		HTTPMetrics:    metrics.NewHTTPMetrics(registry),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		UploadFiles:    uploadFiles,
		Catalog:        catalogService,
		Auth:           authService,
		References:     referenceService,
		Products:       productService,
		Categories:     categoryService,
		Users:          userService,
		Uploads:        uploadService,
	})

	server := api.NewServer(cfg, handler)
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     server.Addr,
		"instance": instance.GetID(),
		"storage":  cfg.Storage.Driver,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newStorage picks the upload backend. The local driver also returns the
// handler that serves stored files.
func newStorage(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.Store, http.Handler, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case config.StorageDriverGCS:
		client, err := gcs.NewClient(ctx, cfg.Storage, cfg.GCP, logg)
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	default:
		store, err := local.New(ctx, cfg.Storage, logg)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Handler(), nil
	}
}
