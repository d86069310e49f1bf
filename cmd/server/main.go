package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/careward/alert-relay/internal/api"
	"github.com/careward/alert-relay/internal/audit"
	"github.com/careward/alert-relay/internal/bridge"
	"github.com/careward/alert-relay/internal/config"
	"github.com/careward/alert-relay/internal/db"
	"github.com/careward/alert-relay/internal/delivery"
	"github.com/careward/alert-relay/internal/metrics"
	"github.com/careward/alert-relay/internal/orchestrator"
	"github.com/careward/alert-relay/internal/queue"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- audit sink ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, "migrations"); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	normalQ := queue.New(cfg.QueueCapacity)
	criticalQ := queue.New(cfg.CriticalCapacity)
	auditLog := audit.NewPgLog(pool)
	channel := delivery.NewWebhookChannel(cfg.GatewayBaseURL)

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	}

	orch := orchestrator.New(normalQ, criticalQ, channel, auditLog, limiter,
		orchestrator.Config{
			NormalTimeout:   cfg.NormalTimeout,
			CriticalTimeout: cfg.CriticalTimeout,
			CriticalBackoff: cfg.CriticalBackoff,
		},
		logger, m.OrchestratorHooks(),
	)
	b := bridge.New(normalQ, criticalQ, auditLog, logger)

	// ---- background goroutines ----
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		orch.Run(workerCtx)
	}()

	// Audit failures reach the operator through logs and a counter; the
	// orchestrator has already logged the detail.
	go func() {
		for range orch.AuditFailures() {
			m.AuditWriteFailures.Inc()
		}
	}()

	go func() {
		ticker := time.NewTicker(cfg.DepthInterval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				m.SetQueueDepths(orch.Depths())
			}
		}
	}()

	// ---- HTTP server ----
	router := api.NewRouter(b, orch, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

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

	// 1. Stop accepting new HTTP requests (and therefore new enqueues).
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal the orchestrator to stop after its current attempt.
	cancelWorkers()

	// 3. Wait for the in-flight attempt to finish.
	wg.Wait()

	logger.Info("server stopped cleanly")
}
