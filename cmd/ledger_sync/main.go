package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/SscSPs/ledger_sync/internal/adapters/database/pgsql"
	"github.com/SscSPs/ledger_sync/internal/adapters/ledgerapi"
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_sync/internal/core/services"
	"github.com/SscSPs/ledger_sync/internal/handlers"
	"github.com/SscSPs/ledger_sync/internal/middleware"
	"github.com/SscSPs/ledger_sync/internal/platform/config"
	"github.com/SscSPs/ledger_sync/internal/refcache"
	"github.com/SscSPs/ledger_sync/pkg/database"
)

// @title Ledger Sync API
// @version 1.0
// @description Accumulates journal entries, verifies their references against the remote ledger and submits them in throttled batches.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	caches, err := refcache.NewRegistry(cfg.CacheTenantLimit)
	if err != nil {
		logger.Error("Failed to create reference cache registry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ledgerClient := ledgerapi.NewClient(cfg.LedgerBaseURL, cfg.LedgerRealmID,
		ledgerapi.WithHTTPClient(ledgerapi.NewOAuth2HTTPClient(ctx, ledgerapi.OAuth2Credentials{
			ClientID:     cfg.LedgerClientID,
			ClientSecret: cfg.LedgerClientSecret,
			TokenURL:     cfg.LedgerTokenURL,
			RefreshToken: cfg.LedgerRefreshToken,
		})),
		ledgerapi.WithTimeout(cfg.LedgerRequestTimeout),
	)

	repos := portsrepo.RepositoryProvider{
		BatchRunRepo:  pgsql.NewPgxBatchRunRepository(dbPool),
		ReferenceRepo: ledgerapi.NewReferenceRepository(ledgerClient),
	}

	serviceContainer, err := services.NewServiceContainer(cfg, repos, ledgerClient, caches)
	if err != nil {
		logger.Error("Failed to create services", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Submissions fail with a conflict until the cache is loaded, so a failed warm-up
	// is not fatal: the refresh endpoint can retry it.
	if cfg.LedgerRealmID != "" {
		stats, err := serviceContainer.ReferenceCache.RefreshReferenceCache(ctx)
		if err != nil {
			logger.Warn("Initial reference cache load failed", slog.String("error", err.Error()))
		} else {
			logger.Info("Reference cache loaded",
				slog.Int("accounts", stats.Accounts),
				slog.Int("customers", stats.Customers),
				slog.Int("vendors", stats.Vendors),
				slog.Int("locations", stats.Locations))
		}
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, serviceContainer); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	// A submission in flight may be sleeping in the throttle; give it a full window.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Minute+cfg.LedgerRequestTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shut down", slog.String("error", err.Error()))
	}
}

// runMigrations applies every pending "up" migration using a temporary database/sql
// connection opened with the pgx stdlib driver.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
