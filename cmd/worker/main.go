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

	"github.com/robfig/cron/v3"

	"draftdesk/internal/bootstrap"
	"draftdesk/internal/config"
	workerPkg "draftdesk/internal/infra/worker"
	"draftdesk/internal/resilience/circuitbreaker"
	"draftdesk/internal/usecase/autopublish"
)

func main() {
	logger := bootstrap.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancelStart := context.WithTimeout(ctx, 2*time.Minute)
	database, err := bootstrap.OpenDatabase(startCtx)
	cancelStart()
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Fail-open: invalid values fall back to defaults with a warning.
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("cycle_timeout", workerConfig.CycleTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	policies, err := config.LoadPoliciesFromEnv(logger)
	if err != nil {
		logger.Error("invalid policy configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if !policies.AutoPublish.Enabled {
		logger.Warn("auto-publish is disabled by policy, cycles will be no-ops")
	}
	integrations, err := config.LoadIntegrations(logger)
	if err != nil {
		logger.Error("invalid integration configuration", slog.Any("error", err))
		os.Exit(1)
	}

	locker, lockPing, closeLocker := bootstrap.NewLocker(integrations, logger)
	defer func() {
		if err := closeLocker(); err != nil {
			logger.Error("failed to close lock client", slog.Any("error", err))
		}
	}()

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	healthServer.AddCheck("database", circuitbreaker.NewDBCircuitBreaker(database).PingContext)
	if lockPing != nil {
		healthServer.AddCheck("redis", lockPing)
	}
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	job := &workerPkg.CycleJob{
		Gate:    bootstrap.NewGate(database, integrations, locker),
		Policy:  func() autopublish.Policy { return policies.AutoPublish },
		Timeout: workerConfig.CycleTimeout,
		Metrics: workerMetrics,
		Logger:  logger,
	}

	runCron(ctx, logger, job, workerConfig, healthServer)
}

// runCron schedules the cycle job and blocks until ctx is cancelled. A cycle
// in progress is allowed to finish before it returns.
func runCron(ctx context.Context, logger *slog.Logger, job *workerPkg.CycleJob, cfg *workerPkg.WorkerConfig, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}

	// SkipIfStillRunning keeps a slow cycle from overlapping the next tick.
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(cfg.CronSchedule, job.Run); err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", loc.String()))

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)
	<-c.Stop().Done()
	logger.Info("worker stopped")
}
