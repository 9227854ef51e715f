package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/prompty/notifier/internal/api"
	"github.com/prompty/notifier/internal/config"
	"github.com/prompty/notifier/internal/db"
	"github.com/prompty/notifier/internal/dispatcher"
	"github.com/prompty/notifier/internal/fcm"
	"github.com/prompty/notifier/internal/mapper"
	"github.com/prompty/notifier/internal/metrics"
	"github.com/prompty/notifier/internal/repository"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	// All clients are constructed once here and passed by reference;
	// nothing below holds package-level state.
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	queueRepo := repository.NewPgQueueRepository(pool, cfg.ClaimLease)
	tokenRepo := repository.NewPgDeviceTokenRepository(pool)
	contentRepo := repository.NewPgContentRepository(pool)

	source, err := fcm.NewServiceAccountTokenSource(
		cfg.FCMClientEmail, cfg.FCMPrivateKey, cfg.OAuthTokenURL, cfg.FCMTimeout)
	if err != nil {
		logger.Fatal("failed to load service account credentials", zap.Error(err))
	}
	sender := fcm.NewClient(cfg.FCMBaseURL, cfg.FCMProjectID, cfg.FCMTimeout)

	mp := mapper.New(contentRepo, cfg.FanoutCap, logger)
	d := dispatcher.New(
		queueRepo, tokenRepo, mp, source, sender,
		cfg.SendRateLimit, cfg.QueueBatchSize,
		logger, m.DispatcherHooks(),
	)

	// ---- background poll worker ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	var wg sync.WaitGroup
	pollW := dispatcher.NewPollWorker(d, cfg.PollInterval, logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		pollW.Run(workerCtx)
	}()

	// ---- HTTP server ----
	router := api.NewRouter(d, queueRepo, tokenRepo, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal the poll worker to stop claiming new batches.
	cancelWorkers()

	// 3. Wait for an in-flight batch to finish. Rows not reached stay
	//    unprocessed and are picked up after restart once their claim
	//    lease expires.
	wg.Wait()

	logger.Info("server stopped cleanly")
}
