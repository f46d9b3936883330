package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DukeRupert/estoque/internal"
	"github.com/DukeRupert/estoque/internal/handler"
	"github.com/DukeRupert/estoque/internal/jobs"
	"github.com/DukeRupert/estoque/internal/metrics"
	"github.com/DukeRupert/estoque/internal/middleware"
	"github.com/DukeRupert/estoque/internal/repository"
	"github.com/DukeRupert/estoque/internal/service"
	"github.com/DukeRupert/estoque/internal/session"
	"github.com/DukeRupert/estoque/internal/storage"
	"github.com/DukeRupert/estoque/internal/token"
	"github.com/DukeRupert/estoque/internal/worker"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	if cfg.UsesDefaultSecret() && !cfg.IsDevelopment() {
		logger.Warn("JWT_SECRET is not set; tokens are signed with the public default secret")
	}

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Initialize storage
	store, err := newStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	// Initialize services
	identityService := service.NewIdentityService(repo, logger)
	profileService := service.NewProfileService(repo, logger)
	productService := service.NewProductService(repo, store, service.NewImagingProcessor(), worker.NewObjectCleanup(repo), logger)
	entradaService := service.NewEntradaService(repo, logger)

	// Background worker
	workerCfg := worker.DefaultConfig()
	workerCfg.Concurrency = cfg.WorkerConcurrency
	workerCfg.PollInterval = cfg.WorkerPollInterval
	bgWorker, err := worker.New(db, repo, workerCfg, logger)
	if err != nil {
		return fmt.Errorf("worker initialization failed: %w", err)
	}
	bgWorker.Register(jobs.NewDeleteObjectsHandler(store, logger))

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	bgWorker.Start(workerCtx)

	// Token codec and session cookies
	isSecure := !cfg.IsDevelopment()
	codec := token.NewCodec([]byte(cfg.JWTSecret), token.WithTTL(cfg.TokenTTL))
	cookies := session.NewWriter(isSecure)

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(codec, cookies, cfg.LoginPath, logger)
	gate := middleware.NewGate(cfg.ProtectedPaths, cfg.LoginPath, logger)
	authLimiter := middleware.NewAuthRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow, logger)
	defer authLimiter.Close()
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	if !metricsAuth.Enabled() {
		logger.Warn("METRICS_USERNAME and METRICS_PASSWORD are not set; /metrics is unprotected")
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(identityService, profileService, codec, cookies, logger, handler.AuthOptions{
		RegisterRollback: cfg.RegisterRollback,
		EnableTestAuth:   cfg.IsDevelopment(),
	})
	userHandler := handler.NewUserHandler(profileService, logger)
	productHandler := handler.NewProductHandler(productService, logger)
	entradaHandler := handler.NewEntradaHandler(entradaService, logger)
	dashboardHandler := handler.NewDashboardHandler(productService, entradaService, logger)
	healthHandler := handler.NewHealthHandler(db, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Locally stored product images
	if local, ok := store.(*storage.LocalStorage); ok {
		files := http.FileServer(http.Dir(local.BasePath()))
		mux.Handle("GET /files/", http.StripPrefix("/files/", files))
	}

	// Prometheus metrics
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	healthHandler.RegisterRoutes(mux)

	// Auth routes (public - no auth required)
	authHandler.RegisterRoutes(mux, authLimiter.Limit)

	// Create middleware stacks for protected routes
	requireUser := middleware.Stack(authMw.WithUser, authMw.RequireUser)

	userHandler.RegisterRoutes(mux, requireUser)
	productHandler.RegisterRoutes(mux, requireUser)
	entradaHandler.RegisterRoutes(mux, requireUser)
	dashboardHandler.RegisterRoutes(mux, requireUser)

	// Global middleware, outermost first
	app := middleware.Stack(
		metrics.Middleware,
		middleware.NewRequestLoggingMiddleware(logger).Handler,
		middleware.NewSecurityHeadersMiddleware(isSecure).Handler,
		gate.Handler,
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env, "storage", cfg.StorageProvider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	bgWorker.Stop()

	logger.Info("Graceful shutdown complete")
	return nil
}

// newStorage builds the storage backend selected by STORAGE_PROVIDER.
func newStorage(cfg *internal.Config, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageProvider {
	case storage.ProviderS3:
		return storage.NewS3Storage(storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
			PublicURL:       cfg.S3PublicURL,
		}, logger)
	case storage.ProviderLocal:
		return storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.StorageProvider)
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
