package quality_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/usecase/quality"
)

/* ───────── helpers ───────── */

// buildContent produces HTML with exactly `words` words. Headings and link
// texts are one word each; the remainder is filled with ten-word sentences.
func buildContent(words, h2s int, hrefs ...string) string {
	var b strings.Builder
	for i := 0; i < h2s; i++ {
		b.WriteString("<h2>Heading</h2>\n")
	}
	b.WriteString("<p>")
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<a href="%s">link</a> `, h)
	}
	remaining := words - h2s - len(hrefs)
	for i := 0; i < remaining; i++ {
		b.WriteString("word")
		if (i+1)%10 == 0 {
			b.WriteString(". ")
		} else {
			b.WriteString(" ")
		}
	}
	b.WriteString("</p>")
	return b.String()
}

func faqs(n int) []entity.FAQ {
	out := make([]entity.FAQ, n)
	for i := range out {
		out[i] = entity.FAQ{Question: fmt.Sprintf("Q%d?", i), Answer: "A."}
	}
	return out
}

func issueTypes(issues []quality.Issue) map[quality.IssueType]quality.Severity {
	m := make(map[quality.IssueType]quality.Severity, len(issues))
	for _, is := range issues {
		m[is.Type] = is.Severity
	}
	return m
}

/* ───────── Analyze ───────── */

func TestAnalyze_Counts(t *testing.T) {
	content := `<h2>One</h2><p>First sentence here. Second one!</p>
<h2>Two</h2><p><a href="/internal">in</a> and <a href="https://ext.test">out</a> and <a>no href</a>?</p>`

	m := quality.Analyze(content, faqs(2))

	assert.Equal(t, 14, m.WordCount)
	assert.Equal(t, 2, m.InternalLinkCount, "every href-bearing anchor counts as internal")
	assert.Equal(t, 1, m.ExternalLinkCount)
	assert.Equal(t, 2, m.FAQCount)
	assert.Equal(t, 2, m.HeadingCount)
	assert.Greater(t, m.AvgSentenceLength, 0.0)
}

func TestAnalyze_AbsoluteLinkCountsTwice(t *testing.T) {
	m := quality.Analyze(`<p><a href="http://mysite.test/page">same site</a></p>`, nil)
	assert.Equal(t, 1, m.InternalLinkCount)
	assert.Equal(t, 1, m.ExternalLinkCount)
}

func TestAnalyze_NoSentences(t *testing.T) {
	m := quality.Analyze("", nil)
	assert.Equal(t, quality.Metrics{}, m)
}

func TestAnalyze_Deterministic(t *testing.T) {
	content := buildContent(1700, 4, "/a", "/b", "https://c.test")
	first := quality.Analyze(content, faqs(3))
	second := quality.Analyze(content, faqs(3))
	assert.Equal(t, first, second)
}

/* ───────── IdentifyIssues ───────── */

func TestIdentifyIssues_ScenarioA(t *testing.T) {
	// 1200 words, one internal link, no FAQs, one H2
	content := buildContent(1200, 1, "/guide")

	m := quality.Analyze(content, nil)
	require.Equal(t, 1200, m.WordCount)
	require.Equal(t, 1, m.InternalLinkCount)
	require.Equal(t, 1, m.HeadingCount)

	got := issueTypes(quality.IdentifyIssues(m, quality.DefaultThresholds()))

	assert.Equal(t, quality.SeverityMajor, got[quality.IssueTooShort])
	assert.Equal(t, quality.SeverityMajor, got[quality.IssueMissingInternalLinks])
	assert.Equal(t, quality.SeverityMinor, got[quality.IssueMissingFAQs])
	assert.Equal(t, quality.SeverityMinor, got[quality.IssueWeakHeadings])
	assert.NotContains(t, got, quality.IssueTooLong)
}

func TestIdentifyIssues_Thresholds(t *testing.T) {
	th := quality.DefaultThresholds()

	tests := []struct {
		name    string
		metrics quality.Metrics
		want    []quality.IssueType
	}{
		{
			name: "healthy article",
			metrics: quality.Metrics{
				WordCount: 1800, InternalLinkCount: 3, ExternalLinkCount: 2,
				FAQCount: 3, HeadingCount: 3, AvgSentenceLength: 18,
			},
			want: nil,
		},
		{
			name: "boundaries are inclusive",
			metrics: quality.Metrics{
				WordCount: 1500, InternalLinkCount: 3, ExternalLinkCount: 2,
				FAQCount: 3, HeadingCount: 3, AvgSentenceLength: 25,
			},
			want: nil,
		},
		{
			name: "too long with long sentences",
			metrics: quality.Metrics{
				WordCount: 2501, InternalLinkCount: 5, ExternalLinkCount: 2,
				FAQCount: 4, HeadingCount: 6, AvgSentenceLength: 25.5,
			},
			want: []quality.IssueType{quality.IssueTooLong, quality.IssueLongSentences},
		},
		{
			name:    "empty article",
			metrics: quality.Metrics{},
			want: []quality.IssueType{
				quality.IssueTooShort,
				quality.IssueMissingInternalLinks,
				quality.IssueMissingExternalLinks,
				quality.IssueMissingFAQs,
				quality.IssueWeakHeadings,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := quality.IdentifyIssues(tt.metrics, th)
			var got []quality.IssueType
			for _, is := range issues {
				got = append(got, is.Type)
				assert.NotEmpty(t, is.Description)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentifyIssues_CustomThresholds(t *testing.T) {
	th := quality.DefaultThresholds()
	th.MinWordCount = 500

	m := quality.Metrics{WordCount: 800, InternalLinkCount: 3, ExternalLinkCount: 2, FAQCount: 3, HeadingCount: 3}
	assert.Empty(t, quality.IdentifyIssues(m, th))
}

/* ───────── Score / Band ───────── */

func TestScore(t *testing.T) {
	major := quality.Issue{Severity: quality.SeverityMajor}
	minor := quality.Issue{Severity: quality.SeverityMinor}

	assert.Equal(t, 100, quality.Score(nil))
	assert.Equal(t, 80, quality.Score([]quality.Issue{major, minor}))
	assert.Equal(t, 0, quality.Score([]quality.Issue{major, major, major, major, major, major, major}))
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		score int
		want  quality.Band
	}{
		{100, quality.BandGreen},
		{85, quality.BandGreen},
		{84, quality.BandAmber},
		{75, quality.BandAmber},
		{74, quality.BandRed},
		{0, quality.BandRed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, quality.BandFor(tt.score), "score %d", tt.score)
	}
}

func TestEvaluate(t *testing.T) {
	content := buildContent(1800, 3, "/a", "/b", "https://c.test/x", "https://d.test/y")
	r := quality.Evaluate(content, faqs(3), quality.DefaultThresholds())

	assert.Empty(t, r.Issues)
	assert.Equal(t, 100, r.Score)
	assert.Equal(t, quality.BandGreen, r.Band)
}

/* ───────── ExtractOutline ───────── */

func TestExtractOutline(t *testing.T) {
	content := `<h2>Intro</h2><p>See <a href="/guides/a">a</a>, <a href="/guides/a">again</a>,
<a href="https://example.org/x">x</a>, <a href="#top">top</a> and <a href="mailto:hi@example.org">mail</a>.</p>
<h3>Detail</h3><h2> </h2>`

	o := quality.ExtractOutline(content)

	assert.Equal(t, []entity.Heading{{Level: 2, Text: "Intro"}, {Level: 3, Text: "Detail"}}, o.Headings)
	assert.Equal(t, []string{"/guides/a"}, o.InternalLinks)
	assert.Equal(t, []string{"https://example.org/x"}, o.ExternalLinks)
}
