// Package text provides utilities for text processing and analysis.
// Word counting here is the single rule used by both the quality analyzer
// and the version store, so persisted word counts always match analysis.
package text

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	sentenceSplitter  = regexp.MustCompile(`[.!?]`)
)

// CountRunes counts the number of Unicode characters (runes) in the given text.
//
// Examples:
//
//	CountRunes("hello")     // returns 5
//	CountRunes("日本語")     // returns 3
//	CountRunes("")          // returns 0
func CountRunes(text string) int {
	return len([]rune(text))
}

// StripHTML removes markup from content and collapses runs of whitespace
// into a single space. Entities are decoded after tags are removed.
func StripHTML(content string) string {
	plain := tagPattern.ReplaceAllString(content, " ")
	plain = html.UnescapeString(plain)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(plain, " "))
}

// CountWords returns the number of whitespace-delimited tokens in the plain
// text of content.
func CountWords(content string) int {
	return len(strings.Fields(StripHTML(content)))
}

// CountSentences returns the number of non-empty segments of plain text
// separated by '.', '!' or '?'.
func CountSentences(plain string) int {
	n := 0
	for _, seg := range sentenceSplitter.Split(plain, -1) {
		if strings.TrimSpace(seg) != "" {
			n++
		}
	}
	return n
}

// Excerpt returns the first maxRunes characters of the plain text of content,
// suffixed with "..." when truncated.
func Excerpt(content string, maxRunes int) string {
	plain := StripHTML(content)
	runes := []rune(plain)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return plain
	}
	return string(runes[:maxRunes]) + "..."
}
