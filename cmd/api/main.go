package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/artello/backend/internal/assignment"
	"github.com/artello/backend/internal/config"
	"github.com/artello/backend/internal/metrics"
	"github.com/artello/backend/internal/repository"
	"github.com/artello/backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Cannot reach PostgreSQL. Ensure Postgres is running, e.g. make dev-up or docker-compose up -d", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to PostgreSQL database")

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed. If the error is 'connection refused', start PostgreSQL first", "error", err)
		os.Exit(1)
	}
	slog.Info("River migrations applied")

	reg := metrics.New()

	// Repositories
	artistRepo := repository.NewArtistRepo(pool)
	taskRepo := repository.NewTaskRepo(pool)
	offerRepo := repository.NewOfferRepo(pool)
	configRepo := repository.NewAlgorithmConfigRepo(pool)
	favoriteRepo := repository.NewFavoriteRepo(pool)

	// Services
	configProvider := services.NewConfigProvider(configRepo, logger)
	ranker := services.NewRanker(configProvider, artistRepo, taskRepo, favoriteRepo, offerRepo, reg, logger)
	offerSvc := services.NewOfferService(pool, offerRepo, taskRepo, configProvider, logger)
	metricsUpdater := services.NewMetricsUpdater(offerRepo, taskRepo, artistRepo, logger)

	configValidator, err := services.NewConfigValidator()
	if err != nil {
		slog.Error("Failed to compile algorithm config schema", "error", err)
		os.Exit(1)
	}

	// Assignment: the expiry-schedule func is set after the River client is
	// created (breaks the assigner <-> worker init cycle).
	var scheduleMu sync.Mutex
	var scheduleFn assignment.ScheduleExpiryFunc
	scheduleExpiry := func(ctx context.Context, args assignment.OfferExpiryJobArgs, runAt time.Time) error {
		scheduleMu.Lock()
		fn := scheduleFn
		scheduleMu.Unlock()
		if fn == nil {
			panic("river insert not wired")
		}
		return fn(ctx, args, runAt)
	}

	assigner := assignment.NewAssigner(ranker, offerSvc, offerRepo, taskRepo, scheduleExpiry, reg, logger)

	workers := river.NewWorkers()
	river.AddWorker(workers, assignment.NewOfferExpiryWorker(offerRepo, taskRepo, assigner, metricsUpdater, reg, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: cfg.ExpiryWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}

	scheduleMu.Lock()
	scheduleFn = func(ctx context.Context, args assignment.OfferExpiryJobArgs, runAt time.Time) error {
		_, err := riverClient.Insert(ctx, args, &river.InsertOpts{ScheduledAt: runAt})
		return err
	}
	scheduleMu.Unlock()

	mux := http.NewServeMux()
	RegisterV1Routes(mux, artistRepo, taskRepo, offerRepo, configRepo, configProvider, configValidator, ranker, assigner, metricsUpdater, reg, logger)
	mux.Handle("GET /metrics", reg.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(mux)

	// Start River client (processes offer-expiry jobs)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	slog.Info("Starting HTTP server", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
