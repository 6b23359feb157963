package strategy_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/usecase/quality"
	"draftdesk/internal/usecase/strategy"
)

/* ───────── helpers ───────── */

var fixedNow = time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func daysAgo(n int) time.Time { return fixedNow.Add(-time.Duration(n) * 24 * time.Hour) }

// healthyContent returns HTML with the given word count, three H2s and
// three internal links.
func healthyContent(words int) string {
	var b strings.Builder
	b.WriteString("<h2>A</h2><h2>B</h2><h2>C</h2><p>")
	b.WriteString(`<a href="/1">x</a> <a href="/2">y</a> <a href="/3">z</a> `)
	b.WriteString(strings.Repeat("word. ", words-6))
	b.WriteString("</p>")
	return b.String()
}

func threeFAQs() []entity.FAQ {
	return []entity.FAQ{{Question: "a"}, {Question: "b"}, {Question: "c"}}
}

/* ───────── catalog ───────── */

func TestCatalog_Flags(t *testing.T) {
	tests := []struct {
		id       strategy.ID
		links    bool
		faqs     bool
		humanize bool
	}{
		{strategy.FullRewrite, true, false, true},
		{strategy.Refresh, true, true, true},
		{strategy.SEOOptimize, true, true, false},
		{strategy.AddSections, true, true, true},
		{strategy.ImproveQuality, true, true, true},
		{strategy.UpdateLinks, false, true, false},
	}

	require.Len(t, strategy.Catalog(), len(tests))
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			st, err := strategy.Lookup(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.links, st.PreservesLinks, "preserves links")
			assert.Equal(t, tt.faqs, st.PreservesFAQs, "preserves faqs")
			assert.Equal(t, tt.humanize, st.RequiresHumanize, "requires humanize")
			assert.NotEmpty(t, st.Name)
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := strategy.ParseID("refresh")
	require.NoError(t, err)
	assert.Equal(t, strategy.Refresh, id)

	_, err = strategy.ParseID("translate")
	assert.True(t, errors.Is(err, strategy.ErrUnknownStrategy))
}

/* ───────── Analyze ───────── */

func TestSelector_Analyze_HealthyRecentArticle(t *testing.T) {
	a := &entity.Article{
		ContentSnapshot: entity.ContentSnapshot{Content: healthyContent(1800), FAQs: threeFAQs()},
		CreatedAt:       daysAgo(10),
	}

	got := strategy.NewSelector(clock).Analyze(a)

	assert.Empty(t, got.Issues)
	assert.Empty(t, got.Recommendations)
	assert.Equal(t, strategy.PriorityLow, got.Priority)
	assert.Equal(t, 10, got.ContentAgeDays)
}

func TestSelector_Analyze_Rules(t *testing.T) {
	tests := []struct {
		name     string
		article  *entity.Article
		wantKind []strategy.FindingKind
		wantRecs []strategy.ID
		wantPrio strategy.Priority
	}{
		{
			name: "very short",
			article: &entity.Article{
				ContentSnapshot: entity.ContentSnapshot{Content: healthyContent(900), FAQs: threeFAQs()},
				CreatedAt:       daysAgo(1),
			},
			wantKind: []strategy.FindingKind{strategy.FindingVeryShort},
			wantRecs: []strategy.ID{strategy.AddSections},
			wantPrio: strategy.PriorityMedium,
		},
		{
			name: "short",
			article: &entity.Article{
				ContentSnapshot: entity.ContentSnapshot{Content: healthyContent(1200), FAQs: threeFAQs()},
				CreatedAt:       daysAgo(1),
			},
			wantKind: []strategy.FindingKind{strategy.FindingShort},
			wantRecs: []strategy.ID{strategy.AddSections},
			wantPrio: strategy.PriorityLow,
		},
		{
			name: "stale content forces high priority",
			article: &entity.Article{
				ContentSnapshot: entity.ContentSnapshot{Content: healthyContent(1800), FAQs: threeFAQs()},
				CreatedAt:       daysAgo(400),
			},
			wantKind: []strategy.FindingKind{strategy.FindingStale},
			wantRecs: []strategy.ID{strategy.Refresh},
			wantPrio: strategy.PriorityHigh,
		},
		{
			name: "aging content",
			article: &entity.Article{
				ContentSnapshot: entity.ContentSnapshot{Content: healthyContent(1800), FAQs: threeFAQs()},
				CreatedAt:       daysAgo(200),
			},
			wantKind: []strategy.FindingKind{strategy.FindingAging},
			wantRecs: []strategy.ID{strategy.Refresh},
			wantPrio: strategy.PriorityLow,
		},
		{
			name: "two mediums escalate to medium",
			article: &entity.Article{
				ContentSnapshot: entity.ContentSnapshot{Content: "<p>" + strings.Repeat("word. ", 1800) + "</p>", FAQs: threeFAQs()},
				CreatedAt:       daysAgo(1),
			},
			wantKind: []strategy.FindingKind{strategy.FindingFewHeadings, strategy.FindingFewInternal},
			wantRecs: []strategy.ID{strategy.ImproveQuality, strategy.UpdateLinks},
			wantPrio: strategy.PriorityMedium,
		},
		{
			name: "one high and two mediums escalate to high; duplicates removed",
			article: &entity.Article{
				ContentSnapshot: entity.ContentSnapshot{Content: "<p>" + strings.Repeat("word. ", 500) + "</p>"},
				CreatedAt:       daysAgo(1),
			},
			wantKind: []strategy.FindingKind{
				strategy.FindingVeryShort, strategy.FindingFewHeadings,
				strategy.FindingFewFAQs, strategy.FindingFewInternal,
			},
			wantRecs: []strategy.ID{strategy.AddSections, strategy.ImproveQuality, strategy.UpdateLinks},
			wantPrio: strategy.PriorityHigh,
		},
		{
			name: "no timestamps default to very old",
			article: &entity.Article{
				ContentSnapshot: entity.ContentSnapshot{Content: healthyContent(1800), FAQs: threeFAQs()},
			},
			wantKind: []strategy.FindingKind{strategy.FindingStale},
			wantRecs: []strategy.ID{strategy.Refresh},
			wantPrio: strategy.PriorityHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strategy.NewSelector(clock).Analyze(tt.article)

			var kinds []strategy.FindingKind
			for _, f := range got.Issues {
				kinds = append(kinds, f.Kind)
			}
			assert.Equal(t, tt.wantKind, kinds)
			assert.Equal(t, tt.wantRecs, got.Recommendations)
			assert.Equal(t, tt.wantPrio, got.Priority)
		})
	}
}

func TestSelector_ContentAgeUsesLatestTimestamp(t *testing.T) {
	scraped := daysAgo(30)
	published := daysAgo(500)
	a := &entity.Article{CreatedAt: daysAgo(900), ScrapedAt: &scraped, PublishedAt: &published}

	assert.Equal(t, 30, strategy.NewSelector(clock).ContentAgeDays(a))
	assert.Equal(t, 999, strategy.NewSelector(clock).ContentAgeDays(&entity.Article{}))
}

/* ───────── BuildRequest ───────── */

func TestSelector_BuildRequest(t *testing.T) {
	a := &entity.Article{
		ContentSnapshot: entity.ContentSnapshot{
			Title:         "Go testing",
			Content:       healthyContent(1200),
			FocusKeyword:  "go testing",
			FAQs:          threeFAQs(),
			InternalLinks: []string{"/1", "/2"},
			ExternalLinks: []string{"https://go.dev"},
		},
	}
	issues := []quality.Issue{{Type: quality.IssueTooShort, Severity: quality.SeverityMajor, Description: "Content is too short"}}

	req, err := strategy.NewSelector(clock).BuildRequest(a, strategy.AddSections, strategy.Options{
		CustomInstructions: "  mention table-driven tests ",
		Issues:             issues,
	})
	require.NoError(t, err)

	assert.Equal(t, strategy.AddSections, req.Strategy)
	assert.Equal(t, 1800, req.TargetWordCount)
	assert.Equal(t, []string{"/1", "/2", "https://go.dev"}, req.PreserveLinks)
	assert.Len(t, req.ExistingFAQs, 3)
	assert.True(t, req.HumanizeRequired)
	assert.Equal(t, "mention table-driven tests", req.CustomInstructions)

	prompt := req.Prompt()
	for _, want := range []string{"Add Sections", "mention table-driven tests", "Content is too short", "https://go.dev", `"changes_summary"`, "Aim for about 1800 words"} {
		assert.Contains(t, prompt, want)
	}
}

func TestSelector_BuildRequest_StrategyFlagsShapePayload(t *testing.T) {
	a := &entity.Article{ContentSnapshot: entity.ContentSnapshot{
		Content:       healthyContent(1600),
		FAQs:          threeFAQs(),
		InternalLinks: []string{"/1"},
	}}
	sel := strategy.NewSelector(clock)

	req, err := sel.BuildRequest(a, strategy.UpdateLinks, strategy.Options{TargetWordCount: 1700})
	require.NoError(t, err)
	assert.Empty(t, req.PreserveLinks, "update_links does not preserve links")
	assert.Len(t, req.ExistingFAQs, 3)
	assert.Equal(t, 1700, req.TargetWordCount)
	assert.False(t, req.HumanizeRequired)

	req, err = sel.BuildRequest(a, strategy.FullRewrite, strategy.Options{})
	require.NoError(t, err)
	assert.Empty(t, req.ExistingFAQs, "full_rewrite does not preserve FAQs")
	assert.Equal(t, 2000, req.TargetWordCount)

	_, err = sel.BuildRequest(a, strategy.ID("nope"), strategy.Options{})
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
}

func ExampleCatalog() {
	for _, s := range strategy.Catalog() {
		fmt.Println(s.ID)
	}
	// Output:
	// full_rewrite
	// refresh
	// seo_optimize
	// add_sections
	// improve_quality
	// update_links
}
