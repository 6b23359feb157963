// Package worker holds the auto-publish worker's configuration, health
// server, metrics and cycle job.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"draftdesk/internal/pkg/config"
)

// WorkerConfig controls the auto-publish schedule and the worker's
// operational limits. LoadConfigFromEnv never fails: an invalid value falls
// back to its default with a warning and a metric.
type WorkerConfig struct {
	// CronSchedule is a 5-field cron expression. Default: every 15 minutes.
	CronSchedule string
	// Timezone is the IANA zone the schedule is evaluated in. Default: UTC.
	Timezone string
	// CycleTimeout bounds one RunCycle call (1m-2h). Default: 10m.
	CycleTimeout time.Duration
	// HealthPort serves /health, /health/ready and /metrics (1024-65535). Default: 9091.
	HealthPort int
}

func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule: "*/15 * * * *",
		Timezone:     "UTC",
		CycleTimeout: 10 * time.Minute,
		HealthPort:   9091,
	}
}

// Validate reports every invalid field at once.
func (c *WorkerConfig) Validate() error {
	var errs []error
	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.CycleTimeout, time.Minute, 2*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("cycle timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv reads AUTOPUBLISH_CRON, WORKER_TIMEZONE, CYCLE_TIMEOUT
// and WORKER_HEALTH_PORT on top of DefaultConfig. The error is always nil.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	track := func(field string, result config.ConfigLoadResult) {
		if !result.FallbackApplied {
			return
		}
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field)
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("AUTOPUBLISH_CRON", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	track("cron_schedule", result)

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	track("timezone", result)

	result = config.LoadEnvDuration("CYCLE_TIMEOUT", cfg.CycleTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 2*time.Hour)
	})
	cfg.CycleTimeout = result.Value.(time.Duration)
	track("cycle_timeout", result)

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	track("health_port", result)

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()
	return &cfg, nil
}
