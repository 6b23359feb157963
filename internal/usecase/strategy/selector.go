package strategy

import (
	"fmt"
	"time"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/usecase/quality"
)

// Severity of a Finding.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Priority of a revision recommendation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// FindingKind names the condition behind a Finding.
type FindingKind string

const (
	FindingVeryShort   FindingKind = "very_short"
	FindingShort       FindingKind = "short"
	FindingStale       FindingKind = "stale"
	FindingAging       FindingKind = "aging"
	FindingFewHeadings FindingKind = "few_headings"
	FindingFewFAQs     FindingKind = "few_faqs"
	FindingFewInternal FindingKind = "few_internal_links"
)

// Finding is one reason to revise an article.
type Finding struct {
	Kind        FindingKind `json:"kind"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
	Recommends  ID          `json:"recommends"`
}

// Analysis is the outcome of Selector.Analyze.
type Analysis struct {
	Issues          []Finding       `json:"issues"`
	Recommendations []ID            `json:"recommendations"`
	Priority        Priority        `json:"priority"`
	ContentAgeDays  int             `json:"content_age_days"`
	Metrics         quality.Metrics `json:"metrics"`
}

// unknownAgeDays is used when an article carries no timestamp at all.
const unknownAgeDays = 999

// Selector recommends strategies. The clock is injected so age-based rules
// are testable.
type Selector struct {
	now func() time.Time
}

// NewSelector creates a Selector. A nil clock means time.Now.
func NewSelector(now func() time.Time) *Selector {
	if now == nil {
		now = time.Now
	}
	return &Selector{now: now}
}

// ContentAgeDays returns whole days since the article's latest activity.
func (s *Selector) ContentAgeDays(a *entity.Article) int {
	latest, ok := a.LatestActivity()
	if !ok {
		return unknownAgeDays
	}
	return int(s.now().Sub(latest).Hours() / 24)
}

// Analyze inspects a and recommends strategies.
func (s *Selector) Analyze(a *entity.Article) Analysis {
	m := quality.Analyze(a.Content, a.FAQs)
	age := s.ContentAgeDays(a)

	var findings []Finding
	add := func(kind FindingKind, sev Severity, rec ID, format string, args ...any) {
		findings = append(findings, Finding{
			Kind:        kind,
			Severity:    sev,
			Description: fmt.Sprintf(format, args...),
			Recommends:  rec,
		})
	}

	switch {
	case m.WordCount < 1000:
		add(FindingVeryShort, SeverityHigh, AddSections, "Article is very short (%d words)", m.WordCount)
	case m.WordCount < 1500:
		add(FindingShort, SeverityMedium, AddSections, "Article is below the recommended length (%d words)", m.WordCount)
	}

	stale := age > 365
	switch {
	case stale:
		add(FindingStale, SeverityHigh, Refresh, "Content is %d days old", age)
	case age > 180:
		add(FindingAging, SeverityMedium, Refresh, "Content is %d days old", age)
	}

	if m.HeadingCount < 3 {
		add(FindingFewHeadings, SeverityMedium, ImproveQuality, "Only %d H2 headings", m.HeadingCount)
	}
	if m.FAQCount < 3 {
		add(FindingFewFAQs, SeverityLow, AddSections, "Only %d FAQs", m.FAQCount)
	}
	if m.InternalLinkCount < 3 {
		add(FindingFewInternal, SeverityMedium, UpdateLinks, "Only %d internal links", m.InternalLinkCount)
	}

	priority := escalate(findings)
	if stale {
		priority = PriorityHigh
	}

	return Analysis{
		Issues:          findings,
		Recommendations: recommendations(findings),
		Priority:        priority,
		ContentAgeDays:  age,
		Metrics:         m,
	}
}

func escalate(findings []Finding) Priority {
	var high, medium int
	for _, f := range findings {
		switch f.Severity {
		case SeverityHigh:
			high++
		case SeverityMedium:
			medium++
		case SeverityLow:
		}
	}
	switch {
	case high >= 2, high >= 1 && medium >= 2:
		return PriorityHigh
	case high >= 1, medium >= 2:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// recommendations de-duplicates in order of first occurrence.
func recommendations(findings []Finding) []ID {
	seen := make(map[ID]bool, len(findings))
	var out []ID
	for _, f := range findings {
		if !seen[f.Recommends] {
			seen[f.Recommends] = true
			out = append(out, f.Recommends)
		}
	}
	return out
}
