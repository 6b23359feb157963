// Package strategy recommends revision strategies for an article and builds
// the provider-agnostic request that a generation provider executes.
package strategy

import (
	"errors"
	"fmt"
)

// ErrUnknownStrategy is returned for an id outside the catalog.
var ErrUnknownStrategy = errors.New("unknown revision strategy")

// ID identifies a revision strategy.
type ID string

const (
	FullRewrite    ID = "full_rewrite"
	Refresh        ID = "refresh"
	SEOOptimize    ID = "seo_optimize"
	AddSections    ID = "add_sections"
	ImproveQuality ID = "improve_quality"
	UpdateLinks    ID = "update_links"
)

// Strategy describes one kind of revision and the invariants it must keep.
type Strategy struct {
	ID               ID
	Name             string
	PreservesLinks   bool
	PreservesFAQs    bool
	RequiresHumanize bool
	Instructions     []string
}

var catalog = []Strategy{
	{
		ID:               FullRewrite,
		Name:             "Full Rewrite",
		PreservesLinks:   true,
		RequiresHumanize: true,
		Instructions: []string{
			"Rewrite the article from scratch while keeping its topic and search intent.",
			"Restructure the content with clear H2 sections and a strong introduction.",
			"Write a fresh FAQ section of at least three questions.",
		},
	},
	{
		ID:               Refresh,
		Name:             "Content Refresh",
		PreservesLinks:   true,
		PreservesFAQs:    true,
		RequiresHumanize: true,
		Instructions: []string{
			"Update outdated facts, figures and references to reflect the current year.",
			"Keep the existing structure; revise sections that no longer hold.",
		},
	},
	{
		ID:             SEOOptimize,
		Name:           "SEO Optimization",
		PreservesLinks: true,
		PreservesFAQs:  true,
		Instructions: []string{
			"Work the focus keyword naturally into the title, first paragraph and at least one H2.",
			"Write a meta description of at most 155 characters.",
			"Do not change the meaning of existing sections.",
		},
	},
	{
		ID:               AddSections,
		Name:             "Add Sections",
		PreservesLinks:   true,
		PreservesFAQs:    true,
		RequiresHumanize: true,
		Instructions: []string{
			"Expand the article with new H2 sections that cover missing subtopics.",
			"Add FAQs until there are at least three.",
		},
	},
	{
		ID:               ImproveQuality,
		Name:             "Improve Quality",
		PreservesLinks:   true,
		PreservesFAQs:    true,
		RequiresHumanize: true,
		Instructions: []string{
			"Improve readability: shorten long sentences and tighten paragraphs.",
			"Make sure the article has at least three descriptive H2 headings.",
		},
	},
	{
		ID:            UpdateLinks,
		Name:          "Update Links",
		PreservesFAQs: true,
		Instructions: []string{
			"Review every link; replace broken or outdated references.",
			"Leave the prose unchanged apart from link anchors.",
		},
	},
}

// Catalog returns every known strategy in a fixed order.
func Catalog() []Strategy {
	out := make([]Strategy, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the strategy with the given id.
func Lookup(id ID) (Strategy, error) {
	for _, s := range catalog {
		if s.ID == id {
			return s, nil
		}
	}
	return Strategy{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, id)
}

// ParseID validates a strategy id received from outside.
func ParseID(s string) (ID, error) {
	st, err := Lookup(ID(s))
	if err != nil {
		return "", err
	}
	return st.ID, nil
}

// defaultTargetWords returns the target length for a strategy given the
// article's current length.
func defaultTargetWords(id ID, current int) int {
	switch id {
	case FullRewrite:
		return max(current, 2000)
	case AddSections:
		return max(current+500, 1800)
	case Refresh, ImproveQuality:
		return max(current, 1500)
	case SEOOptimize, UpdateLinks:
		return current
	default:
		return current
	}
}
