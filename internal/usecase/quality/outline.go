package quality

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"draftdesk/internal/domain/entity"
)

// Outline is the structure extracted from HTML content when a version is stored.
type Outline struct {
	Headings      []entity.Heading `json:"headings"`
	InternalLinks []string         `json:"internal_links"`
	ExternalLinks []string         `json:"external_links"`
}

// ExtractOutline returns the h2/h3 outline and the distinct link targets of
// content. Unlike Analyze, links are partitioned: scheme-qualified hrefs are
// external, everything else is internal. Fragment-only and mailto links are dropped.
func ExtractOutline(content string) Outline {
	var o Outline
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return o
	}

	doc.Find("h2, h3").Each(func(_ int, s *goquery.Selection) {
		level := 2
		if goquery.NodeName(s) == "h3" {
			level = 3
		}
		if t := strings.TrimSpace(s.Text()); t != "" {
			o.Headings = append(o.Headings, entity.Heading{Level: level, Text: t})
		}
	})

	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		lower := strings.ToLower(href)
		if href == "" || seen[href] || strings.HasPrefix(href, "#") || strings.HasPrefix(lower, "mailto:") {
			return
		}
		seen[href] = true
		if isAbsoluteHTTP(href) {
			o.ExternalLinks = append(o.ExternalLinks, href)
		} else {
			o.InternalLinks = append(o.InternalLinks, href)
		}
	})
	return o
}
