package quality

import "fmt"

// IssueType identifies a kind of content problem.
type IssueType string

const (
	IssueTooShort             IssueType = "too_short"
	IssueTooLong              IssueType = "too_long"
	IssueMissingInternalLinks IssueType = "missing_internal_links"
	IssueMissingExternalLinks IssueType = "missing_external_links"
	IssueMissingFAQs          IssueType = "missing_faqs"
	IssueWeakHeadings         IssueType = "weak_headings"
	IssueLongSentences        IssueType = "long_sentences"
)

// Severity of an Issue.
type Severity string

const (
	SeverityMajor Severity = "major"
	SeverityMinor Severity = "minor"
)

// Issue is one problem found in an article's metrics.
type Issue struct {
	Type        IssueType `json:"type"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
}

// Thresholds configure IdentifyIssues. The zero value is not useful;
// start from DefaultThresholds.
type Thresholds struct {
	MinWordCount         int     `yaml:"min_word_count"`
	MaxWordCount         int     `yaml:"max_word_count"`
	MinInternalLinks     int     `yaml:"min_internal_links"`
	MinExternalLinks     int     `yaml:"min_external_links"`
	MinFAQs              int     `yaml:"min_faqs"`
	MinHeadings          int     `yaml:"min_headings"`
	MaxAvgSentenceLength float64 `yaml:"max_avg_sentence_length"`
}

// DefaultThresholds returns the editorial defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinWordCount:         1500,
		MaxWordCount:         2500,
		MinInternalLinks:     3,
		MinExternalLinks:     2,
		MinFAQs:              3,
		MinHeadings:          3,
		MaxAvgSentenceLength: 25,
	}
}

// IdentifyIssues derives the issue list for m under t. Issues are returned in
// a fixed order so the output is stable for identical input.
func IdentifyIssues(m Metrics, t Thresholds) []Issue {
	var issues []Issue

	if m.WordCount < t.MinWordCount {
		issues = append(issues, Issue{
			Type:        IssueTooShort,
			Severity:    SeverityMajor,
			Description: fmt.Sprintf("Content is too short: %d words (minimum %d)", m.WordCount, t.MinWordCount),
		})
	}
	if m.WordCount > t.MaxWordCount {
		issues = append(issues, Issue{
			Type:        IssueTooLong,
			Severity:    SeverityMinor,
			Description: fmt.Sprintf("Content is too long: %d words (maximum %d)", m.WordCount, t.MaxWordCount),
		})
	}
	if m.InternalLinkCount < t.MinInternalLinks {
		issues = append(issues, Issue{
			Type:        IssueMissingInternalLinks,
			Severity:    SeverityMajor,
			Description: fmt.Sprintf("Missing internal links: %d found (minimum %d)", m.InternalLinkCount, t.MinInternalLinks),
		})
	}
	if m.ExternalLinkCount < t.MinExternalLinks {
		issues = append(issues, Issue{
			Type:        IssueMissingExternalLinks,
			Severity:    SeverityMinor,
			Description: fmt.Sprintf("Missing external links: %d found (minimum %d)", m.ExternalLinkCount, t.MinExternalLinks),
		})
	}
	if m.FAQCount < t.MinFAQs {
		issues = append(issues, Issue{
			Type:        IssueMissingFAQs,
			Severity:    SeverityMinor,
			Description: fmt.Sprintf("Missing FAQs: %d found (minimum %d)", m.FAQCount, t.MinFAQs),
		})
	}
	if m.HeadingCount < t.MinHeadings {
		issues = append(issues, Issue{
			Type:        IssueWeakHeadings,
			Severity:    SeverityMinor,
			Description: fmt.Sprintf("Weak heading structure: %d H2 headings (minimum %d)", m.HeadingCount, t.MinHeadings),
		})
	}
	if m.AvgSentenceLength > t.MaxAvgSentenceLength {
		issues = append(issues, Issue{
			Type:        IssueLongSentences,
			Severity:    SeverityMinor,
			Description: fmt.Sprintf("Sentences are too long: %.1f words on average (maximum %.0f)", m.AvgSentenceLength, t.MaxAvgSentenceLength),
		})
	}

	return issues
}
