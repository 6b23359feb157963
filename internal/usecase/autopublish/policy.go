// Package autopublish decides whether ready articles may be published without
// human review and runs the periodic publish cycle over the candidates.
package autopublish

import (
	"fmt"
	"time"

	"draftdesk/internal/domain/entity"
)

// Policy configures eligibility and the batch cycle.
type Policy struct {
	Enabled           bool
	MaxRiskLevel      entity.RiskLevel
	MinQualityScore   int
	MaxArticlesPerRun int
	DaysUntilDeadline int
}

// DefaultPolicy returns a conservative policy: disabled, LOW risk only,
// quality score of at least 80.
func DefaultPolicy() Policy {
	return Policy{
		Enabled:           false,
		MaxRiskLevel:      entity.RiskLow,
		MinQualityScore:   80,
		MaxArticlesPerRun: 10,
		DaysUntilDeadline: 3,
	}
}

// Validate checks the policy bounds.
func (p Policy) Validate() error {
	if p.MaxRiskLevel < entity.RiskLow || p.MaxRiskLevel > entity.RiskCritical {
		return &entity.ValidationError{Field: "max_risk_level", Message: fmt.Sprintf("unknown risk level %d", int(p.MaxRiskLevel))}
	}
	if p.MinQualityScore < 0 || p.MinQualityScore > 100 {
		return &entity.ValidationError{Field: "min_quality_score", Message: "must be between 0 and 100"}
	}
	if p.MaxArticlesPerRun <= 0 {
		return &entity.ValidationError{Field: "max_articles_per_run", Message: "must be positive"}
	}
	if p.DaysUntilDeadline < 0 {
		return &entity.ValidationError{Field: "days_until_deadline", Message: "must not be negative"}
	}
	return nil
}

// DeadlineFor returns the auto-publish deadline of an article that became
// ready at readyAt.
func DeadlineFor(readyAt time.Time, p Policy) time.Time {
	return readyAt.AddDate(0, 0, p.DaysUntilDeadline)
}
