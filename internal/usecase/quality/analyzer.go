// Package quality measures article content and derives a structured issue
// list from the measurements. Everything here is pure: no I/O, no clock,
// identical input yields identical output.
package quality

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/utils/text"
)

// Metrics are the quantitative measurements of one piece of content.
type Metrics struct {
	WordCount         int     `json:"word_count"`
	InternalLinkCount int     `json:"internal_link_count"`
	ExternalLinkCount int     `json:"external_link_count"`
	FAQCount          int     `json:"faq_count"`
	HeadingCount      int     `json:"heading_count"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
}

// Analyze computes Metrics for HTML content and its FAQ list.
//
// Link counting is deliberately coarse: every anchor carrying an href counts
// as internal, and anchors whose href is scheme-qualified (http/https) also
// count as external. A same-site absolute link is therefore counted twice.
func Analyze(content string, faqs []entity.FAQ) Metrics {
	m := Metrics{
		WordCount: text.CountWords(content),
		FAQCount:  len(faqs),
	}

	if sentences := text.CountSentences(text.StripHTML(content)); sentences > 0 {
		m.AvgSentenceLength = float64(m.WordCount) / float64(sentences)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return m
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		m.InternalLinkCount++
		href, _ := s.Attr("href")
		if isAbsoluteHTTP(href) {
			m.ExternalLinkCount++
		}
	})
	m.HeadingCount = doc.Find("h2").Length()

	return m
}

func isAbsoluteHTTP(href string) bool {
	h := strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(h, "http://") || strings.HasPrefix(h, "https://")
}
