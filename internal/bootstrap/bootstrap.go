// Package bootstrap assembles the engine's services from configuration. It
// is shared by the API server and the worker so both run identical wiring.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"draftdesk/internal/config"
	pgRepo "draftdesk/internal/infra/adapter/persistence/postgres"
	"draftdesk/internal/infra/db"
	"draftdesk/internal/infra/linker"
	"draftdesk/internal/infra/llm"
	"draftdesk/internal/infra/lock"
	"draftdesk/internal/infra/notifier"
	"draftdesk/internal/infra/publisher"
	"draftdesk/internal/infra/validator"
	"draftdesk/internal/observability/logging"
	"draftdesk/internal/usecase/autopublish"
	"draftdesk/internal/usecase/revision"
	"draftdesk/internal/usecase/strategy"
	"draftdesk/internal/usecase/versioning"
)

// Locker is satisfied by lock.Redis and lock.Local.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(context.Context) error, acquired bool, err error)
}

// InitLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func InitLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// OpenDatabase connects to DATABASE_URL and applies the schema.
func OpenDatabase(ctx context.Context) (*sql.DB, error) {
	database, err := db.Open(ctx)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return database, nil
}

// NewLocker returns a Redis lock when REDIS_ADDR is set and a process-local
// lock otherwise. ping is nil for the local lock; closeFn is always safe to call.
func NewLocker(cfg *config.Integrations, logger *slog.Logger) (locker Locker, ping func(context.Context) error, closeFn func() error) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, article locks are process-local")
		return lock.NewLocal(cfg.LockTTL), nil, func() error { return nil }
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	l := lock.NewRedis(client, cfg.LockTTL)
	logger.Info("article locks use redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Duration("ttl", cfg.LockTTL))
	return l, l.Ping, client.Close
}

// NewGate wires the eligibility gate to postgres, the structural validator,
// WordPress and the enabled chat notifiers.
func NewGate(database *sql.DB, integ *config.Integrations, locker Locker) *autopublish.Gate {
	gate := &autopublish.Gate{
		Articles:  pgRepo.NewArticleRepo(database),
		Audit:     pgRepo.NewAuditRepo(database),
		Validator: validator.New(validator.DefaultConfig()),
		Publisher: publisher.NewWordPress(integ.WordPress),
		Locker:    locker,
	}
	if n := newNotifier(integ); n != nil {
		gate.Notifier = n
	}
	return gate
}

func newNotifier(integ *config.Integrations) autopublish.Notifier {
	var channels notifier.Multi
	if integ.Slack.Enabled {
		channels = append(channels, notifier.NewSlackNotifier(integ.Slack))
	}
	if integ.Discord.Enabled {
		channels = append(channels, notifier.NewDiscordNotifier(integ.Discord))
	}
	if len(channels) == 0 {
		return nil
	}
	return channels
}

// NewVersioning returns the version history service backed by postgres.
func NewVersioning(database *sql.DB) *versioning.Service {
	return &versioning.Service{
		Articles: pgRepo.NewArticleRepo(database),
		Versions: pgRepo.NewVersionRepo(database),
	}
}

// NewRevisionService wires the orchestrator with providers in the
// configured order. Every provider serves both generation and humanization.
func NewRevisionService(database *sql.DB, prov *config.ProviderConfig, policies *config.Policies, locker Locker) *revision.Service {
	svc := &revision.Service{
		Articles:   pgRepo.NewArticleRepo(database),
		Audit:      pgRepo.NewAuditRepo(database),
		Versions:   NewVersioning(database),
		Selector:   strategy.NewSelector(nil),
		Linker:     linker.New(pgRepo.NewLinkCatalogRepo(database), linker.Config{}),
		Locker:     locker,
		Thresholds: policies.Quality,
		Config: revision.Config{
			ProviderTimeout: prov.ProviderTimeout,
			HumanizeStyle:   prov.HumanizeStyle,
		},
	}

	for _, name := range prov.Order() {
		switch name {
		case config.ProviderClaude:
			cfg := llm.DefaultClaudeConfig()
			if prov.ClaudeModel != "" {
				cfg.Model = prov.ClaudeModel
			}
			cfg.Timeout = prov.ProviderTimeout
			c := llm.NewClaude(prov.AnthropicAPIKey, cfg)
			svc.Generators = append(svc.Generators, c)
			svc.Humanizers = append(svc.Humanizers, c)
		case config.ProviderOpenAI:
			cfg := llm.DefaultOpenAIConfig()
			if prov.OpenAIModel != "" {
				cfg.Model = prov.OpenAIModel
			}
			cfg.Timeout = prov.ProviderTimeout
			o := llm.NewOpenAI(prov.OpenAIAPIKey, cfg)
			svc.Generators = append(svc.Generators, o)
			svc.Humanizers = append(svc.Humanizers, o)
		}
	}
	return svc
}
