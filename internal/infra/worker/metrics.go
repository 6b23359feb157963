package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"draftdesk/internal/pkg/config"
)

// WorkerMetrics tracks scheduled cycle runs. It embeds the config fallback
// metrics of the "worker" component.
type WorkerMetrics struct {
	*config.ConfigMetrics

	CronJobRunsTotal            *prometheus.CounterVec
	CronJobDurationSeconds      prometheus.Histogram
	CronJobArticlesTotal        *prometheus.CounterVec
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics registers the collectors with the default registry, so it
// must be called once per process.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Scheduled auto-publish cycles by status (started, success, failure)",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of scheduled auto-publish cycles in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		CronJobArticlesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_articles_total",
			Help: "Articles handled by scheduled cycles by outcome",
		}, []string{"outcome"}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful scheduled cycle",
		}),
	}
}

func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordArticles adds one cycle's per-outcome counts.
func (m *WorkerMetrics) RecordArticles(published, failed, skipped int) {
	m.CronJobArticlesTotal.WithLabelValues("published").Add(float64(published))
	m.CronJobArticlesTotal.WithLabelValues("failed").Add(float64(failed))
	m.CronJobArticlesTotal.WithLabelValues("skipped").Add(float64(skipped))
}

func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
