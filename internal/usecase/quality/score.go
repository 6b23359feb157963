package quality

import "draftdesk/internal/domain/entity"

// Band is the presentation bucket of a quality score.
type Band string

const (
	BandGreen Band = "green"
	BandAmber Band = "amber"
	BandRed   Band = "red"
)

const (
	majorPenalty = 15
	minorPenalty = 5
)

// Score rolls an issue list up into a 0-100 quality score.
func Score(issues []Issue) int {
	score := 100
	for _, is := range issues {
		switch is.Severity {
		case SeverityMajor:
			score -= majorPenalty
		case SeverityMinor:
			score -= minorPenalty
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

// BandFor maps a score onto its presentation band.
func BandFor(score int) Band {
	switch {
	case score >= 85:
		return BandGreen
	case score >= 75:
		return BandAmber
	default:
		return BandRed
	}
}

// Report bundles everything the analyzer knows about one article.
type Report struct {
	Metrics Metrics `json:"metrics"`
	Issues  []Issue `json:"issues"`
	Score   int     `json:"score"`
	Band    Band    `json:"band"`
}

// Evaluate runs Analyze, IdentifyIssues and Score in one pass.
func Evaluate(content string, faqs []entity.FAQ, t Thresholds) Report {
	m := Analyze(content, faqs)
	issues := IdentifyIssues(m, t)
	score := Score(issues)
	return Report{Metrics: m, Issues: issues, Score: score, Band: BandFor(score)}
}
