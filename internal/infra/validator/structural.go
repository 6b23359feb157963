// Package validator implements the pre-publish checks run by the
// auto-publish gate before an article leaves the pipeline.
package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/usecase/autopublish"
	"draftdesk/internal/utils/text"
)

// Config holds the structural thresholds.
type Config struct {
	MinWords      int
	MaxTitleRunes int
	MaxMetaRunes  int
	ForbiddenTags []string
}

// DefaultConfig returns the thresholds used in production.
func DefaultConfig() Config {
	return Config{
		MinWords:      300,
		MaxTitleRunes: 70,
		MaxMetaRunes:  160,
		ForbiddenTags: []string{"script", "iframe", "form", "object", "embed"},
	}
}

// Structural checks the article's HTML structure and metadata.
// Blocking issues stop the publish; warnings are reported only.
type Structural struct {
	cfg Config
}

func New(cfg Config) *Structural {
	return &Structural{cfg: cfg}
}

// Validate implements autopublish.Validator.
func (v *Structural) Validate(ctx context.Context, a *entity.Article) (*autopublish.ValidationReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report := &autopublish.ValidationReport{BlockingIssues: []string{}, Warnings: []string{}}
	block := func(format string, args ...any) {
		report.BlockingIssues = append(report.BlockingIssues, fmt.Sprintf(format, args...))
	}
	warn := func(format string, args ...any) {
		report.Warnings = append(report.Warnings, fmt.Sprintf(format, args...))
	}

	title := strings.TrimSpace(a.Title)
	switch {
	case title == "":
		block("Title is empty")
	case text.CountRunes(title) > v.cfg.MaxTitleRunes:
		warn("Title is longer than %d characters", v.cfg.MaxTitleRunes)
	}

	meta := strings.TrimSpace(a.MetaDescription)
	switch {
	case meta == "":
		warn("Meta description is missing")
	case text.CountRunes(meta) > v.cfg.MaxMetaRunes:
		warn("Meta description is longer than %d characters", v.cfg.MaxMetaRunes)
	}

	if strings.TrimSpace(a.Content) == "" {
		block("Content is empty")
		return report, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(a.Content))
	if err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}

	if words := text.CountWords(a.Content); words < v.cfg.MinWords {
		block("Content has %d words, minimum is %d", words, v.cfg.MinWords)
	}

	for _, tag := range v.cfg.ForbiddenTags {
		if n := doc.Find(tag).Length(); n > 0 {
			block("Content contains %d <%s> element(s)", n, tag)
		}
	}

	if doc.Find("h2").Length() == 0 {
		block("Content has no <h2> section headings")
	}
	if doc.Find("h1").Length() > 0 {
		warn("Content contains <h1>; the title is rendered as the page heading")
	}
	empty := 0
	doc.Find("h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "" {
			empty++
		}
	})
	if empty > 0 {
		block("Content has %d empty heading(s)", empty)
	}
	if skipped := headingLevelSkips(doc); skipped > 0 {
		warn("Heading levels skip %d time(s)", skipped)
	}

	broken := 0
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" || href == "#" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			broken++
		}
	})
	if broken > 0 {
		block("Content has %d link(s) without a usable href", broken)
	}

	missingAlt := 0
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if alt, ok := s.Attr("alt"); !ok || strings.TrimSpace(alt) == "" {
			missingAlt++
		}
	})
	if missingAlt > 0 {
		warn("%d image(s) have no alt text", missingAlt)
	}

	if kw := strings.TrimSpace(a.FocusKeyword); kw != "" && title != "" &&
		!strings.Contains(strings.ToLower(title), strings.ToLower(kw)) {
		warn("Focus keyword %q does not appear in the title", kw)
	}

	report.CanPublish = len(report.BlockingIssues) == 0
	return report, nil
}

// headingLevelSkips counts places where the outline jumps more than one
// level deeper, such as h2 followed by h4.
func headingLevelSkips(doc *goquery.Document) int {
	skips, prev := 0, 0
	doc.Find("h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		level := int(goquery.NodeName(s)[1] - '0')
		if prev > 0 && level > prev+1 {
			skips++
		}
		prev = level
	})
	return skips
}
