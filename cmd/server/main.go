package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/abstractor/internal/aggregate"
	"github.com/Harshitk-cp/abstractor/internal/api"
	"github.com/Harshitk-cp/abstractor/internal/buildconfig"
	"github.com/Harshitk-cp/abstractor/internal/config"
	"github.com/Harshitk-cp/abstractor/internal/logging"
	"github.com/Harshitk-cp/abstractor/internal/pipeline"
	"github.com/Harshitk-cp/abstractor/internal/store"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logger, err := logging.New(config.LogLevel())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	dbURL := config.DatabaseURL()
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	precedence, err := config.LoadPrecedence(config.PrecedenceFile())
	if err != nil {
		logger.Fatal("failed to load precedence", zap.Error(err))
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("connected to database")

	if err := store.Migrate(ctx, pool, config.MigrationsPath(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	p := pipeline.New(aggregate.NewEngine(precedence), pipeline.WithSectionOptions(config.SectionOptions()))
	app := api.NewApp(pool, p, config.RateLimitRPS(), config.RateLimitBurst(), logger)

	app.Reaggregator.SetInterval(config.ReaggregateInterval())
	app.Reaggregator.Start()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("version", buildconfig.Version()),
			zap.Int("tracked_fields", len(precedence.TrackedFields)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	app.Reaggregator.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
