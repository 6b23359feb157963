package autopublish

import (
	"context"
	"fmt"
	"time"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/observability/metrics"
)

// ValidationReport is the answer of a pre-publish Validator.
type ValidationReport struct {
	CanPublish     bool     `json:"can_publish"`
	BlockingIssues []string `json:"blocking_issues"`
	Warnings       []string `json:"warnings"`
}

// Validator runs structural and compliance checks before publishing.
type Validator interface {
	Validate(ctx context.Context, a *entity.Article) (*ValidationReport, error)
}

// EligibilityResult lists every rule an article fails. Eligible is true only
// when Reasons is empty.
type EligibilityResult struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons"`
	Warnings []string `json:"warnings,omitempty"`
}

// IsEligible evaluates every rule against a and p. Rules are not
// short-circuited: a caller sees every blocking condition at once.
func (g *Gate) IsEligible(ctx context.Context, a *entity.Article, p Policy) EligibilityResult {
	res := EligibilityResult{Reasons: []string{}}
	now := g.now()

	if a.Status != entity.StatusReadyToPublish {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Status is %s, not %s", a.Status, entity.StatusReadyToPublish))
	}
	if a.HumanReviewed {
		res.Reasons = append(res.Reasons, "Article was human-reviewed and must be published manually")
	}
	switch {
	case a.AutopublishDeadline == nil:
		res.Reasons = append(res.Reasons, "No auto-publish deadline set")
	case a.AutopublishDeadline.After(now):
		res.Reasons = append(res.Reasons, fmt.Sprintf("Auto-publish deadline %s not reached", a.AutopublishDeadline.UTC().Format(time.RFC3339)))
	}
	if a.RiskLevel > p.MaxRiskLevel {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Risk level %s exceeds maximum %s", a.RiskLevel, p.MaxRiskLevel))
	}
	if a.QualityScore < p.MinQualityScore {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Quality score %d below minimum %d", a.QualityScore, p.MinQualityScore))
	}

	if g.Validator != nil {
		report, err := g.Validator.Validate(ctx, a)
		switch {
		case err != nil:
			res.Reasons = append(res.Reasons, fmt.Sprintf("Pre-publish validation unavailable: %v", err))
		case report == nil:
			res.Reasons = append(res.Reasons, "Pre-publish validation returned no report")
		case !report.CanPublish && len(report.BlockingIssues) == 0:
			res.Reasons = append(res.Reasons, "Pre-publish validation failed")
		default:
			for _, issue := range report.BlockingIssues {
				res.Reasons = append(res.Reasons, "Validation: "+issue)
			}
			res.Warnings = append(res.Warnings, report.Warnings...)
		}
	}

	res.Eligible = len(res.Reasons) == 0
	metrics.RecordEligibility(res.Eligible)
	return res
}
