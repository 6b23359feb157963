package revision

import (
	"context"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/usecase/strategy"
)

// Generation is the structured answer of a generation provider.
// Providers that could not produce JSON fill only Content.
type Generation struct {
	Title           string       `json:"title"`
	MetaDescription string       `json:"meta_description"`
	Content         string       `json:"content"`
	FocusKeyword    string       `json:"focus_keyword"`
	FAQs            []entity.FAQ `json:"faqs"`
	ChangesSummary  string       `json:"changes_summary"`
}

// Generator produces revised content from an instruction payload.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req strategy.Request) (*Generation, error)
}

// Humanizer rewrites generated content in a natural editorial voice.
type Humanizer interface {
	Name() string
	Humanize(ctx context.Context, content, style string) (string, error)
}

// LinkEnricher inserts internal links into content. hints are topic words
// (focus keyword, title) used to pick relevant catalog entries.
type LinkEnricher interface {
	SuggestLinks(ctx context.Context, content string, hints []string) (string, error)
}

// Locker grants exclusive, expiring ownership of a key.
// acquired is false when another holder owns the key.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(context.Context) error, acquired bool, err error)
}
