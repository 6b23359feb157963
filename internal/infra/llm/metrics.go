package llm

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder records provider-level measurements. Tests inject a fake.
type MetricsRecorder interface {
	// RecordDuration records the latency of one API call.
	RecordDuration(provider, operation string, d time.Duration)
	// RecordOutputLength records the length of an answer in runes.
	RecordOutputLength(provider, operation string, runes int)
	// RecordPlainFallback counts generations that were not valid JSON.
	RecordPlainFallback(provider string)
}

// PrometheusMetrics implements MetricsRecorder with Prometheus collectors.
type PrometheusMetrics struct {
	duration      *prometheus.HistogramVec
	outputLength  *prometheus.HistogramVec
	plainFallback *prometheus.CounterVec
}

var (
	prometheusMetricsInstance *PrometheusMetrics
	prometheusMetricsOnce     sync.Once
)

// NewPrometheusMetrics returns the process-wide recorder, registering the
// collectors on first use.
func NewPrometheusMetrics() *PrometheusMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusMetrics{
			duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "draftdesk_llm_request_duration_seconds",
				Help:    "Latency of a single AI provider API call",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			}, []string{"provider", "operation"}),
			outputLength: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "draftdesk_llm_output_length_runes",
				Help:    "Length of AI provider answers in runes",
				Buckets: []float64{500, 2000, 5000, 10000, 20000, 40000},
			}, []string{"provider", "operation"}),
			plainFallback: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "draftdesk_llm_plain_fallback_total",
				Help: "Generations that could not be decoded as JSON and were used as plain content",
			}, []string{"provider"}),
		}
	})
	return prometheusMetricsInstance
}

func (p *PrometheusMetrics) RecordDuration(provider, operation string, d time.Duration) {
	p.duration.WithLabelValues(provider, operation).Observe(d.Seconds())
}

func (p *PrometheusMetrics) RecordOutputLength(provider, operation string, runes int) {
	p.outputLength.WithLabelValues(provider, operation).Observe(float64(runes))
}

func (p *PrometheusMetrics) RecordPlainFallback(provider string) {
	p.plainFallback.WithLabelValues(provider).Inc()
}
