// Package revision runs a single AI revision of an article: it analyzes the
// current content, builds the instruction payload for a strategy, asks the
// generation providers in order until one succeeds, optionally humanizes and
// enriches the result, and stores it as the article's new current version.
package revision

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for revision operations.
var (
	// ErrGenerationFailed indicates that every generation provider failed.
	// No version is written when it is returned.
	ErrGenerationFailed = errors.New("all generation providers failed")

	// ErrHumanizationFailed indicates that required humanization could not be
	// performed by any humanization provider.
	ErrHumanizationFailed = errors.New("humanization failed")

	// ErrEnrichmentFailed marks a failed link enrichment. It is logged, never returned.
	ErrEnrichmentFailed = errors.New("link enrichment failed")

	// ErrRevisionInProgress indicates that another revision holds the article lock.
	ErrRevisionInProgress = errors.New("revision already in progress for article")

	errEmptyContent = errors.New("provider returned empty content")
)

// ProviderError is the failure of one provider in a fallback chain.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ProviderErrors collects every failure of an exhausted fallback chain, in call order.
type ProviderErrors []*ProviderError

func (pe ProviderErrors) Error() string {
	if len(pe) == 0 {
		return "no providers configured"
	}
	parts := make([]string, len(pe))
	for i, e := range pe {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets errors.Is and errors.As inspect each provider failure.
func (pe ProviderErrors) Unwrap() []error {
	errs := make([]error, len(pe))
	for i, e := range pe {
		errs[i] = e
	}
	return errs
}

// StageError reports the stage at which a revision attempt failed.
type StageError struct {
	ArticleID int64
	Stage     Stage
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("revision of article %d failed at %s: %v", e.ArticleID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
