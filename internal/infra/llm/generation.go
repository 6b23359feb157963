// Package llm adapts the Claude (Anthropic) and OpenAI chat APIs to the
// revision generator and humanizer contracts. Every call runs under a
// per-call timeout, a circuit breaker and a bounded retry.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"draftdesk/internal/usecase/revision"
)

const generationSystemPrompt = `You are a senior editor revising published web articles.
Answer with a single JSON object and nothing else, using these keys:
"title", "meta_description", "content" (HTML), "focus_keyword",
"faqs" (array of {"question","answer"}) and "changes_summary" (one or two sentences).`

const humanizeSystemPrompt = `You rewrite machine-generated HTML so it reads like a human editor wrote it.
Keep every HTML tag, heading, link and fact. Vary sentence length, remove filler
and stock phrases. Answer with the rewritten HTML only.`

func humanizePrompt(content, style string) string {
	return fmt.Sprintf("Style: %s.\n\nRewrite the following HTML:\n\n%s", style, content)
}

// ParseGeneration decodes a provider answer. A fenced or bare JSON object is
// decoded field by field; anything else becomes the content of a plain
// generation and structured is false.
func ParseGeneration(raw string) (gen *revision.Generation, structured bool) {
	body := StripCodeFence(raw)

	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		var parsed revision.Generation
		if err := json.Unmarshal([]byte(body[start:end+1]), &parsed); err == nil && strings.TrimSpace(parsed.Content) != "" {
			return &parsed, true
		}
	}
	return &revision.Generation{Content: body}, false
}

// StripCodeFence removes a surrounding Markdown code fence, with or without
// a language tag, and trims whitespace.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
