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

	"golang.org/x/sync/errgroup"

	"github.com/aryan0dhankhar/leadtrack/internal/app"
	"github.com/aryan0dhankhar/leadtrack/internal/featureflags"
	"github.com/aryan0dhankhar/leadtrack/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/leadtrack/internal/observability/tracing"
	"github.com/aryan0dhankhar/leadtrack/pkg/config"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting LeadTrack server",
		slog.String("environment", cfg.Environment),
		slog.Any("flags", featureflags.Active()),
	)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Tracing is a no-op unless an OTLP endpoint is set
	shutdownTracing, err := tracing.Init(ctx, log, tracing.Options{
		ServiceName: "leadtrack",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// 4. Storage, sessions and services
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	// 5. Demo data
	if featureflags.Enabled(featureflags.SeedDemo) {
		res, err := a.Seed(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		log.Info("demo data ready",
			slog.Int("organizations", res.Organizations),
			slog.Int("users", res.Users),
			slog.Int("follow_ups", res.FollowUps),
		)
	}

	// 6. HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      a.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// 7. Backlog worker
	g.Go(func() error {
		a.Worker.Start(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info("server starting",
			slog.Int("port", cfg.ServerPort),
			slog.String("database", cfg.DatabaseDriver),
			slog.Bool("redis_sessions", cfg.RedisURL != ""),
			slog.Int("rate_limit", cfg.RateLimitPerMinute),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 8. Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
