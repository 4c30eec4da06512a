package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/config"
	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/ratelimit"
	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/server"
	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/storage"
	"github.com/ImTheCurse/GameLens-Dashboard-Service/internal/telemetry"
	"github.com/ImTheCurse/GameLens-Dashboard-Service/migrations"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("GAMELENS_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	// Load configuration. A missing PGSQL_CONN fails here, before anything
	// else starts.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("gamelens starting", "version", version, "port", cfg.Port)

	// Initialize OpenTelemetry.
	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	// Connect to database.
	db, err := storage.New(ctx, cfg.DatabaseURL, cfg.PoolMinConns, cfg.PoolMaxConns, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer db.Close()

	// Apply embedded schema migrations. RunMigrations tracks applied files
	// in schema_migrations and skips duplicates, so errors here indicate
	// real failures (not "already exists").
	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// Create rate limiter for ingest endpoints.
	var limiter ratelimit.Limiter
	if cfg.RateLimitEnabled {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitRate, cfg.RateLimitBurst)
		defer func() { _ = limiter.Close() }()
		logger.Info("rate limiting: memory (in-process token bucket)",
			"rate", cfg.RateLimitRate, "burst", cfg.RateLimitBurst)
	} else {
		limiter = ratelimit.NoopLimiter{}
		logger.Info("rate limiting: disabled")
	}

	srv := server.New(server.ServerConfig{
		DB:                  db,
		Logger:              logger,
		Limiter:             limiter,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	// Serve until the signal context fires, then drain in-flight requests.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("gamelens stopped")
	return nil
}
