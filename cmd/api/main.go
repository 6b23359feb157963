package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"draftdesk/internal/bootstrap"
	"draftdesk/internal/config"
	hhttp "draftdesk/internal/handler/http"
	"draftdesk/internal/handler/http/requestid"
	hrevision "draftdesk/internal/handler/http/revision"
	pgRepo "draftdesk/internal/infra/adapter/persistence/postgres"
	"draftdesk/internal/observability/tracing"
	pkgconfig "draftdesk/internal/pkg/config"
	"draftdesk/internal/resilience/circuitbreaker"
	"draftdesk/internal/usecase/autopublish"
	"draftdesk/internal/usecase/strategy"

	_ "draftdesk/docs" // swagger docs
)

const maxRequestBody = 1 << 20

// @title           Draftdesk API
// @version         1.0
// @description     記事リビジョン、バージョン管理、自動公開判定の REST API

// @host      localhost:8080
// @BasePath  /

func main() {
	logger := bootstrap.InitLogger()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
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

	policies, err := config.LoadPoliciesFromEnv(logger)
	if err != nil {
		logger.Error("invalid policy configuration", slog.Any("error", err))
		os.Exit(1)
	}
	providers, err := config.LoadProviderConfig(logger)
	if err != nil {
		logger.Error("invalid provider configuration", slog.Any("error", err))
		os.Exit(1)
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

	logger.Info("configuration loaded",
		slog.Bool("autopublish_enabled", policies.AutoPublish.Enabled),
		slog.String("autopublish_max_risk", policies.AutoPublish.MaxRiskLevel.String()),
		slog.Any("providers", providers.Order()),
		slog.Duration("provider_timeout", providers.ProviderTimeout))

	h := &hrevision.Handler{
		Reviser:      bootstrap.NewRevisionService(database, providers, policies, locker),
		Versions:     bootstrap.NewVersioning(database),
		Articles:     pgRepo.NewArticleRepo(database),
		Selector:     strategy.NewSelector(nil),
		Gate:         bootstrap.NewGate(database, integrations, locker),
		Policy:       func() autopublish.Policy { return policies.AutoPublish },
		Thresholds:   policies.Quality,
		CycleTimeout: loadCycleTimeout(logger),
	}

	handler := setupRoutes(h, healthChecks(database, lockPing), getVersion())
	runServer(logger, applyMiddleware(logger, handler), getAddr())
}

func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

func getAddr() string {
	port := pkgconfig.LoadEnvString("PORT", "8080")
	return ":" + port
}

func loadCycleTimeout(logger *slog.Logger) time.Duration {
	r := pkgconfig.LoadEnvDuration("CYCLE_TIMEOUT", 10*time.Minute, func(d time.Duration) error {
		return pkgconfig.ValidateDuration(d, time.Minute, 2*time.Hour)
	})
	for _, w := range r.Warnings {
		logger.Warn("Configuration fallback applied",
			slog.String("field", "cycle_timeout"),
			slog.String("warning", w))
	}
	return r.Value.(time.Duration)
}

// healthChecks returns the dependencies probed by /health and /ready.
// The database is probed through a circuit breaker so a dead database does
// not pile up slow pings.
func healthChecks(database *sql.DB, lockPing func(context.Context) error) map[string]hhttp.Pinger {
	checks := map[string]hhttp.Pinger{
		"database": circuitbreaker.NewDBCircuitBreaker(database),
	}
	if lockPing != nil {
		checks["redis"] = hhttp.PingFunc(lockPing)
	}
	return checks
}

func setupRoutes(h *hrevision.Handler, checks map[string]hhttp.Pinger, version string) http.Handler {
	mux := http.NewServeMux()
	hrevision.Register(mux, h)

	mux.Handle("GET /health", &hhttp.HealthHandler{Checks: checks, Version: version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{Checks: checks})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	// Swagger UI
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)
	return mux
}

// applyMiddleware wraps the router; the first middleware is outermost.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	return hhttp.Chain(handler,
		requestid.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.LimitRequestBody(maxRequestBody),
		tracing.Middleware,
		hhttp.MetricsMiddleware,
	)
}

func runServer(logger *slog.Logger, handler http.Handler, addr string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", getVersion()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// Revisions in flight get a grace period before their contexts are cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	cancel()
	logger.Info("server stopped")
}
