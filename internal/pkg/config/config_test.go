package config

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ───────── loaders ───────── */

func TestLoadEnvString(t *testing.T) {
	t.Setenv("DD_TEST_STRING", "")
	assert.Equal(t, "fallback", LoadEnvString("DD_TEST_STRING", "fallback"))

	t.Setenv("DD_TEST_STRING", "value")
	assert.Equal(t, "value", LoadEnvString("DD_TEST_STRING", "fallback"))
}

func TestLoadEnvWithFallback(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		want     string
		fallback bool
	}{
		{name: "unset uses default", env: "", want: "*/15 * * * *"},
		{name: "valid value", env: "0 6 * * *", want: "0 6 * * *"},
		{name: "invalid value falls back", env: "not a cron", want: "*/15 * * * *", fallback: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DD_TEST_CRON", tt.env)
			r := LoadEnvWithFallback("DD_TEST_CRON", "*/15 * * * *", ValidateCronSchedule)

			assert.Equal(t, tt.want, r.Value)
			assert.Equal(t, tt.fallback, r.FallbackApplied)
			if tt.fallback {
				require.Len(t, r.Warnings, 1)
				assert.Contains(t, r.Warnings[0], "DD_TEST_CRON='not a cron'")
				assert.Contains(t, r.Warnings[0], "falling back to default")
			} else {
				assert.Empty(t, r.Warnings)
			}
		})
	}
}

func TestLoadEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		want     time.Duration
		fallback bool
	}{
		{name: "unset", env: "", want: 90 * time.Second},
		{name: "valid", env: "2m", want: 2 * time.Minute},
		{name: "unparsable", env: "soon", want: 90 * time.Second, fallback: true},
		{name: "out of range", env: "1s", want: 90 * time.Second, fallback: true},
	}
	validate := func(d time.Duration) error { return ValidateDuration(d, 5*time.Second, 10*time.Minute) }
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DD_TEST_DURATION", tt.env)
			r := LoadEnvDuration("DD_TEST_DURATION", 90*time.Second, validate)
			assert.Equal(t, tt.want, r.Value)
			assert.Equal(t, tt.fallback, r.FallbackApplied)
		})
	}
}

func TestLoadEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		want     int
		fallback bool
	}{
		{name: "unset", env: "", want: 10},
		{name: "valid", env: "25", want: 25},
		{name: "trailing garbage", env: "25x", want: 10, fallback: true},
		{name: "out of range", env: "5000", want: 10, fallback: true},
	}
	validate := func(v int) error { return ValidateIntRange(v, 1, 1000) }
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DD_TEST_INT", tt.env)
			r := LoadEnvInt("DD_TEST_INT", 10, validate)
			assert.Equal(t, tt.want, r.Value)
			assert.Equal(t, tt.fallback, r.FallbackApplied)
		})
	}
}

func TestLoadEnvBool(t *testing.T) {
	tests := []struct {
		env      string
		want     bool
		fallback bool
	}{
		{env: "", want: false},
		{env: "true", want: true},
		{env: "1", want: true},
		{env: "FALSE", want: false},
		{env: "yes", want: false, fallback: true},
	}
	for _, tt := range tests {
		t.Run("value="+tt.env, func(t *testing.T) {
			t.Setenv("DD_TEST_BOOL", tt.env)
			r := LoadEnvBool("DD_TEST_BOOL", false)
			assert.Equal(t, tt.want, r.Value)
			assert.Equal(t, tt.fallback, r.FallbackApplied)
		})
	}
}

/* ───────── validators ───────── */

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("*/15 * * * *"))
	assert.NoError(t, ValidateCronSchedule("30 5 * * 1-5"))
	assert.Error(t, ValidateCronSchedule(""))
	assert.Error(t, ValidateCronSchedule("* * * *"))
	assert.Error(t, ValidateCronSchedule("0 0 0 * * *"), "seconds field is not accepted")
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, ValidateTimezone("UTC"))
	assert.NoError(t, ValidateTimezone("Asia/Tokyo"))
	assert.Error(t, ValidateTimezone(""))
	assert.Error(t, ValidateTimezone("Mars/Olympus"))
}

func TestValidateRanges(t *testing.T) {
	assert.NoError(t, ValidateDuration(time.Minute, time.Second, time.Hour))
	assert.NoError(t, ValidateDuration(time.Second, time.Second, time.Hour), "bounds are inclusive")
	assert.ErrorContains(t, ValidateDuration(time.Millisecond, time.Second, time.Hour), "below minimum")
	assert.ErrorContains(t, ValidateDuration(2*time.Hour, time.Second, time.Hour), "exceeds maximum")
	assert.ErrorContains(t, ValidateDuration(time.Minute, time.Hour, time.Second), "invalid range")

	assert.NoError(t, ValidateIntRange(100, 0, 100))
	assert.ErrorContains(t, ValidateIntRange(-1, 0, 100), "below minimum")
	assert.ErrorContains(t, ValidateIntRange(101, 0, 100), "exceeds maximum")
	assert.ErrorContains(t, ValidateIntRange(5, 10, 1), "invalid range")

	assert.NoError(t, ValidatePositiveDuration(time.Nanosecond))
	assert.Error(t, ValidatePositiveDuration(0))
}

/* ───────── metrics ───────── */

func TestConfigMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newConfigMetrics(promauto.With(reg), "test")

	m.RecordValidationError("cron_schedule")
	m.RecordFallback("cron_schedule")
	m.RecordFallback("cron_schedule")
	m.SetFallbackActive(true)
	m.RecordLoadTimestamp()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("cron_schedule")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("cron_schedule")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackActive))
	assert.Greater(t, testutil.ToFloat64(m.LoadTimestamp), 0.0)

	m.SetFallbackActive(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FallbackActive))

	count, err := testutil.GatherAndCount(reg, "test_config_fallbacks_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
