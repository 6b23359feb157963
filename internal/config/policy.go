// Package config loads the engine's policy file and the settings of its
// external integrations from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"draftdesk/internal/domain/entity"
	pkgconfig "draftdesk/internal/pkg/config"
	"draftdesk/internal/usecase/autopublish"
	"draftdesk/internal/usecase/quality"
)

// PolicyFileEnv names the optional YAML policy file.
const PolicyFileEnv = "DRAFTDESK_POLICY_FILE"

// Policies bundles the auto-publish policy and the quality thresholds.
type Policies struct {
	AutoPublish autopublish.Policy
	Quality     quality.Thresholds
}

// policyFile mirrors the YAML layout. Pointer fields distinguish "absent"
// from zero so a partial file only overrides what it names.
type policyFile struct {
	AutoPublish struct {
		Enabled           *bool   `yaml:"enabled"`
		MaxRiskLevel      *string `yaml:"max_risk_level"`
		MinQualityScore   *int    `yaml:"min_quality_score"`
		MaxArticlesPerRun *int    `yaml:"max_articles_per_run"`
		DaysUntilDeadline *int    `yaml:"days_until_deadline"`
	} `yaml:"autopublish"`
	Quality *quality.Thresholds `yaml:"quality"`
}

// LoadPolicies builds the policies from defaults, then the YAML file at
// path (skipped when path is empty), then AUTOPUBLISH_* environment
// overrides. Invalid env values fall back with a warning; an unreadable
// file or an invalid final policy is an error.
func LoadPolicies(path string, logger *slog.Logger) (*Policies, error) {
	p := &Policies{
		AutoPublish: autopublish.DefaultPolicy(),
		Quality:     quality.DefaultThresholds(),
	}

	if path != "" {
		if err := p.applyFile(path); err != nil {
			return nil, err
		}
	}
	p.applyEnv(logger)

	if err := p.AutoPublish.Validate(); err != nil {
		return nil, fmt.Errorf("autopublish policy: %w", err)
	}
	if err := validateThresholds(p.Quality); err != nil {
		return nil, fmt.Errorf("quality thresholds: %w", err)
	}
	return p, nil
}

// LoadPoliciesFromEnv reads the file named by DRAFTDESK_POLICY_FILE.
func LoadPoliciesFromEnv(logger *slog.Logger) (*Policies, error) {
	return LoadPolicies(os.Getenv(PolicyFileEnv), logger)
}

func (p *Policies) applyFile(path string) error {
	// #nosec G304 -- path comes from the operator's environment
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read policy file: %w", err)
	}

	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse policy file: %w", err)
	}

	ap := &p.AutoPublish
	if f.AutoPublish.Enabled != nil {
		ap.Enabled = *f.AutoPublish.Enabled
	}
	if f.AutoPublish.MaxRiskLevel != nil {
		level, err := entity.ParseRiskLevel(*f.AutoPublish.MaxRiskLevel)
		if err != nil {
			return fmt.Errorf("policy file: %w", err)
		}
		ap.MaxRiskLevel = level
	}
	if f.AutoPublish.MinQualityScore != nil {
		ap.MinQualityScore = *f.AutoPublish.MinQualityScore
	}
	if f.AutoPublish.MaxArticlesPerRun != nil {
		ap.MaxArticlesPerRun = *f.AutoPublish.MaxArticlesPerRun
	}
	if f.AutoPublish.DaysUntilDeadline != nil {
		ap.DaysUntilDeadline = *f.AutoPublish.DaysUntilDeadline
	}
	if f.Quality != nil {
		p.Quality = mergeThresholds(p.Quality, *f.Quality)
	}
	return nil
}

func (p *Policies) applyEnv(logger *slog.Logger) {
	warn := func(field string, r pkgconfig.ConfigLoadResult) { logWarnings(logger, field, r) }
	ap := &p.AutoPublish

	r := pkgconfig.LoadEnvBool("AUTOPUBLISH_ENABLED", ap.Enabled)
	ap.Enabled = r.Value.(bool)
	warn("autopublish_enabled", r)

	r = pkgconfig.LoadEnvWithFallback("AUTOPUBLISH_MAX_RISK", ap.MaxRiskLevel.String(), func(s string) error {
		_, err := entity.ParseRiskLevel(strings.ToUpper(s))
		return err
	})
	ap.MaxRiskLevel, _ = entity.ParseRiskLevel(strings.ToUpper(r.Value.(string)))
	warn("autopublish_max_risk", r)

	r = pkgconfig.LoadEnvInt("AUTOPUBLISH_MIN_QUALITY", ap.MinQualityScore, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 0, 100)
	})
	ap.MinQualityScore = r.Value.(int)
	warn("autopublish_min_quality", r)

	r = pkgconfig.LoadEnvInt("AUTOPUBLISH_MAX_PER_RUN", ap.MaxArticlesPerRun, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 1, 1000)
	})
	ap.MaxArticlesPerRun = r.Value.(int)
	warn("autopublish_max_per_run", r)

	r = pkgconfig.LoadEnvInt("AUTOPUBLISH_DEADLINE_DAYS", ap.DaysUntilDeadline, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 0, 365)
	})
	ap.DaysUntilDeadline = r.Value.(int)
	warn("autopublish_deadline_days", r)
}

// mergeThresholds takes every non-zero field of override.
func mergeThresholds(base, override quality.Thresholds) quality.Thresholds {
	if override.MinWordCount != 0 {
		base.MinWordCount = override.MinWordCount
	}
	if override.MaxWordCount != 0 {
		base.MaxWordCount = override.MaxWordCount
	}
	if override.MinInternalLinks != 0 {
		base.MinInternalLinks = override.MinInternalLinks
	}
	if override.MinExternalLinks != 0 {
		base.MinExternalLinks = override.MinExternalLinks
	}
	if override.MinFAQs != 0 {
		base.MinFAQs = override.MinFAQs
	}
	if override.MinHeadings != 0 {
		base.MinHeadings = override.MinHeadings
	}
	if override.MaxAvgSentenceLength != 0 {
		base.MaxAvgSentenceLength = override.MaxAvgSentenceLength
	}
	return base
}

func validateThresholds(t quality.Thresholds) error {
	if t.MinWordCount < 0 || t.MinInternalLinks < 0 || t.MinExternalLinks < 0 || t.MinFAQs < 0 || t.MinHeadings < 0 {
		return errors.New("minimums must not be negative")
	}
	if t.MaxWordCount <= t.MinWordCount {
		return fmt.Errorf("max_word_count (%d) must exceed min_word_count (%d)", t.MaxWordCount, t.MinWordCount)
	}
	if t.MaxAvgSentenceLength <= 0 {
		return errors.New("max_avg_sentence_length must be positive")
	}
	return nil
}
