package strategy

import (
	"fmt"
	"strings"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/usecase/quality"
	"draftdesk/internal/utils/text"
)

const excerptRunes = 600

// Options tune BuildRequest.
type Options struct {
	CustomInstructions string
	TargetWordCount    int // 0 selects the strategy default
	Issues             []quality.Issue
}

// Request is the provider-agnostic instruction payload for one revision.
type Request struct {
	Strategy           ID
	StrategyName       string
	Instructions       []string
	Constraints        []string
	TargetWordCount    int
	Title              string
	FocusKeyword       string
	Content            string
	Excerpt            string
	Issues             []quality.Issue
	PreserveLinks      []string
	ExistingFAQs       []entity.FAQ
	CustomInstructions string
	HumanizeRequired   bool
}

// BuildRequest assembles the instruction payload for revising a with the
// strategy identified by id.
func (s *Selector) BuildRequest(a *entity.Article, id ID, opts Options) (Request, error) {
	st, err := Lookup(id)
	if err != nil {
		return Request{}, err
	}

	target := opts.TargetWordCount
	if target <= 0 {
		target = defaultTargetWords(id, text.CountWords(a.Content))
	}

	req := Request{
		Strategy:           st.ID,
		StrategyName:       st.Name,
		Instructions:       append([]string(nil), st.Instructions...),
		TargetWordCount:    target,
		Title:              a.Title,
		FocusKeyword:       a.FocusKeyword,
		Content:            a.Content,
		Excerpt:            text.Excerpt(a.Content, excerptRunes),
		Issues:             append([]quality.Issue(nil), opts.Issues...),
		CustomInstructions: strings.TrimSpace(opts.CustomInstructions),
		HumanizeRequired:   st.RequiresHumanize,
	}

	if st.PreservesLinks {
		req.PreserveLinks = append(append([]string(nil), a.InternalLinks...), a.ExternalLinks...)
		req.Constraints = append(req.Constraints, "Keep every existing link and its destination URL.")
	}
	if st.PreservesFAQs {
		req.ExistingFAQs = append([]entity.FAQ(nil), a.FAQs...)
		req.Constraints = append(req.Constraints, "Keep the existing FAQs; you may add new ones.")
	}
	if a.FocusKeyword != "" {
		req.Constraints = append(req.Constraints, fmt.Sprintf("Keep the focus keyword %q.", a.FocusKeyword))
	}
	req.Constraints = append(req.Constraints,
		fmt.Sprintf("Aim for about %d words.", target),
		"Return HTML using <h2> for section headings and <p> for paragraphs.",
	)

	return req, nil
}

// Prompt renders the request as plain instruction text. The expected answer
// is a JSON object; providers that cannot comply may return bare HTML.
func (r Request) Prompt() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Revise the following article. Strategy: %s.\n\n", r.StrategyName)

	b.WriteString("Instructions:\n")
	for _, in := range r.Instructions {
		fmt.Fprintf(&b, "- %s\n", in)
	}
	if r.CustomInstructions != "" {
		fmt.Fprintf(&b, "- %s\n", r.CustomInstructions)
	}

	b.WriteString("\nConstraints:\n")
	for _, c := range r.Constraints {
		fmt.Fprintf(&b, "- %s\n", c)
	}

	if len(r.Issues) > 0 {
		b.WriteString("\nDetected issues:\n")
		for _, is := range r.Issues {
			fmt.Fprintf(&b, "- [%s] %s\n", is.Severity, is.Description)
		}
	}

	if len(r.PreserveLinks) > 0 {
		b.WriteString("\nLinks to keep:\n")
		for _, l := range r.PreserveLinks {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}

	if len(r.ExistingFAQs) > 0 {
		b.WriteString("\nExisting FAQs:\n")
		for _, f := range r.ExistingFAQs {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", f.Question, f.Answer)
		}
	}

	fmt.Fprintf(&b, "\nTitle: %s\n", r.Title)
	if r.FocusKeyword != "" {
		fmt.Fprintf(&b, "Focus keyword: %s\n", r.FocusKeyword)
	}
	fmt.Fprintf(&b, "\nArticle HTML:\n%s\n", r.Content)

	b.WriteString(`
Respond with a single JSON object and nothing else:
{"title": "...", "meta_description": "...", "content": "<html>", "focus_keyword": "...", "faqs": [{"question": "...", "answer": "..."}], "changes_summary": "..."}`)

	return b.String()
}
