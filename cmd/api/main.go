package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/simonkvalheim/hm9-ledger/internal/bootstrap"
	"github.com/simonkvalheim/hm9-ledger/internal/config"
	"github.com/simonkvalheim/hm9-ledger/internal/handler"
	"github.com/simonkvalheim/hm9-ledger/internal/ledger"
	"github.com/simonkvalheim/hm9-ledger/internal/logging"
	appMiddleware "github.com/simonkvalheim/hm9-ledger/internal/middleware"
	"github.com/simonkvalheim/hm9-ledger/internal/processor"
	"github.com/simonkvalheim/hm9-ledger/internal/queue"
)

func main() {
	// Load configuration from .env and environment
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, cleanup, err := logging.New(logging.Config{
		Environment: cfg.LogEnv,
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the ledger and replay the transaction log
	app, err := bootstrap.Initialize(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize ledger", zap.Error(err))
	}
	defer app.Close()
	logger.Info("ledger loaded", zap.String("store", string(cfg.Store)))

	shared := ledger.NewSerialized(app.Service)

	// Queue postings in Redis if async mode is enabled
	var publisher handler.Publisher
	var worker *queue.Worker
	if cfg.AsyncMode {
		redisClient, err := bootstrap.ConnectRedis(ctx, cfg)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		logger.Info("connected to redis (async mode enabled)")

		publisher = queue.NewPublisher(redisClient, cfg.RedisPrefix)
		worker = queue.NewWorker(redisClient, processor.NewPostingProcessor(shared), cfg.RedisPrefix, logger)
		go worker.Start(ctx)
	} else {
		logger.Info("running in sync mode (set ASYNC_MODE=true for async processing)")
	}

	accountHandler := handler.NewAccountHandler(shared, logger)
	postingHandler := handler.NewPostingHandler(shared, publisher, logger)

	r := chi.NewRouter()

	r.Use(appMiddleware.CORS(appMiddleware.ParseOrigins(cfg.CORSOrigins)))
	r.Use(middleware.RequestID)
	r.Use(appMiddleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler(app))

	r.Route("/v1", func(r chi.Router) {
		accountHandler.RegisterRoutes(r)
		postingHandler.RegisterRoutes(r)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Let the worker finish its current posting before the store and Redis
	// client are closed
	if worker != nil {
		worker.Stop()
		select {
		case <-worker.Done():
			logger.Info("worker stopped")
		case <-shutdownCtx.Done():
			logger.Warn("worker did not stop in time")
		}
	}
	cancel()

	logger.Info("server stopped")
}

// healthHandler returns a handler that checks the store backend
func healthHandler(app *bootstrap.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := app.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status": "unhealthy", "store": "disconnected"}`)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "store": "connected"}`)
	}
}
