package validator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftdesk/internal/domain/entity"
)

func body(words int) string {
	return "<p>" + strings.TrimSpace(strings.Repeat("brew ", words)) + "</p>"
}

func article(content string) *entity.Article {
	return &entity.Article{ContentSnapshot: entity.ContentSnapshot{
		Title:           "Espresso at home",
		MetaDescription: "How to pull a good shot.",
		FocusKeyword:    "espresso",
		Content:         content,
	}}
}

func TestStructural_Validate(t *testing.T) {
	good := "<h2>Grind</h2>" + body(200) + "<h3>Dose</h3>" + body(150) + `<p><a href="/guides/milk">milk</a></p>`

	tests := []struct {
		name         string
		mutate       func(a *entity.Article)
		wantPublish  bool
		wantBlocking []string
		wantWarnings []string
	}{
		{
			name:         "clean article",
			mutate:       func(*entity.Article) {},
			wantPublish:  true,
			wantBlocking: []string{},
			wantWarnings: []string{},
		},
		{
			name:         "empty content",
			mutate:       func(a *entity.Article) { a.Content = "  " },
			wantBlocking: []string{"Content is empty"},
			wantWarnings: []string{},
		},
		{
			name:         "too short without headings",
			mutate:       func(a *entity.Article) { a.Content = body(20) },
			wantBlocking: []string{"Content has 20 words, minimum is 300", "Content has no <h2> section headings"},
			wantWarnings: []string{},
		},
		{
			name:         "script tag and broken link",
			mutate:       func(a *entity.Article) { a.Content = good + `<script>x()</script><p><a href="#">top</a></p>` },
			wantBlocking: []string{"Content contains 1 <script> element(s)", "Content has 1 link(s) without a usable href"},
			wantWarnings: []string{},
		},
		{
			name: "metadata warnings only",
			mutate: func(a *entity.Article) {
				a.MetaDescription = ""
				a.FocusKeyword = "latte"
				a.Content = good + `<img src="/x.png">`
			},
			wantPublish:  true,
			wantBlocking: []string{},
			wantWarnings: []string{
				"Meta description is missing",
				"1 image(s) have no alt text",
				`Focus keyword "latte" does not appear in the title`,
			},
		},
		{
			name:         "heading problems",
			mutate:       func(a *entity.Article) { a.Content = "<h1>Title</h1><h2>A</h2><h4>Deep</h4><h3> </h3>" + body(400) },
			wantBlocking: []string{"Content has 1 empty heading(s)"},
			wantWarnings: []string{
				"Content contains <h1>; the title is rendered as the page heading",
				"Heading levels skip 1 time(s)",
			},
		},
		{
			name:         "empty title",
			mutate:       func(a *entity.Article) { a.Title = "" },
			wantBlocking: []string{"Title is empty"},
			wantWarnings: []string{},
		},
	}

	v := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := article(good)
			tt.mutate(a)

			report, err := v.Validate(context.Background(), a)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPublish, report.CanPublish)
			assert.Equal(t, tt.wantBlocking, report.BlockingIssues)
			assert.Equal(t, tt.wantWarnings, report.Warnings)
		})
	}
}

func TestStructural_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultConfig()).Validate(ctx, article("<p>x</p>"))
	require.ErrorIs(t, err, context.Canceled)
}
