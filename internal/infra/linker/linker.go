package linker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"draftdesk/internal/repository"
)

const (
	defaultMaxLinks = 5
	defaultTTL      = 10 * time.Minute
)

// Config tunes CatalogLinker.
type Config struct {
	MaxLinks int           // links added per call; 0 means 5
	TTL      time.Duration // catalog snapshot lifetime; 0 means 10m
}

// CatalogLinker implements revision.LinkEnricher. It wraps the first plain
// text occurrence of a catalog keyword in a paragraph or list item with a
// link to the catalog entry. Pages already linked from the content are not
// linked again.
type CatalogLinker struct {
	cache    *snapshotCache
	maxLinks int
}

// New creates a CatalogLinker backed by repo.
func New(repo repository.LinkCatalogRepository, cfg Config) *CatalogLinker {
	if cfg.MaxLinks <= 0 {
		cfg.MaxLinks = defaultMaxLinks
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	return &CatalogLinker{
		cache:    &snapshotCache{repo: repo, ttl: cfg.TTL, now: time.Now},
		maxLinks: cfg.MaxLinks,
	}
}

// Reload refreshes the catalog snapshot regardless of its age.
func (l *CatalogLinker) Reload(ctx context.Context) (CatalogSnapshot, error) {
	return l.cache.reload(ctx)
}

type candidate struct {
	url      string
	keywords []string
	score    int
}

// SuggestLinks returns content with catalog links merged in. Entries
// matching a topic hint are tried first. Content without a match is
// returned unchanged.
func (l *CatalogLinker) SuggestLinks(ctx context.Context, content string, hints []string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", errors.New("content is empty")
	}
	snap, err := l.cache.get(ctx)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse content: %w", err)
	}

	linked := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		linked[normalizeURL(href)] = true
	})

	candidates := rank(snap, hints, linked)
	added := 0
	for _, c := range candidates {
		if added >= l.maxLinks {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if linkFirstMatch(doc.Find("p, li"), c) {
			linked[normalizeURL(c.url)] = true
			added++
		}
	}
	if added == 0 {
		return content, nil
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("render content: %w", err)
	}
	return out, nil
}

func rank(snap CatalogSnapshot, hints []string, linked map[string]bool) []candidate {
	lowerHints := make([]string, 0, len(hints))
	for _, h := range hints {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			lowerHints = append(lowerHints, h)
		}
	}

	var out []candidate
	for _, e := range snap.Entries {
		if e.URL == "" || linked[normalizeURL(e.URL)] {
			continue
		}
		c := candidate{url: e.URL}
		for _, k := range append([]string{e.Title}, e.Keywords...) {
			if k = strings.TrimSpace(k); k != "" {
				c.keywords = append(c.keywords, k)
			}
		}
		for _, h := range lowerHints {
			for _, k := range c.keywords {
				lk := strings.ToLower(k)
				if strings.Contains(h, lk) || strings.Contains(lk, h) {
					c.score++
					break
				}
			}
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out
}

// linkFirstMatch wraps the first keyword occurrence found in a text node of
// blocks that is not already inside an anchor.
func linkFirstMatch(blocks *goquery.Selection, c candidate) bool {
	for _, block := range blocks.Nodes {
		for _, kw := range c.keywords {
			if wrapInText(block, kw, c.url) {
				return true
			}
		}
	}
	return false
}

func wrapInText(n *html.Node, keyword, href string) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.ElementNode:
			if child.DataAtom == atom.A {
				continue
			}
			if wrapInText(child, keyword, href) {
				return true
			}
		case html.TextNode:
			idx := indexWord(child.Data, keyword)
			if idx < 0 {
				continue
			}
			splitAndLink(child, idx, len(keyword), href)
			return true
		}
	}
	return false
}

// splitAndLink replaces text node t with before + <a href>match</a> + after.
func splitAndLink(t *html.Node, idx, n int, href string) {
	parent := t.Parent
	before, match, after := t.Data[:idx], t.Data[idx:idx+n], t.Data[idx+n:]

	anchor := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.A,
		Data:     "a",
		Attr:     []html.Attribute{{Key: "href", Val: href}},
	}
	anchor.AppendChild(&html.Node{Type: html.TextNode, Data: match})

	if before != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: before}, t)
	}
	parent.InsertBefore(anchor, t)
	if after != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: after}, t)
	}
	parent.RemoveChild(t)
}

// indexWord finds keyword in s case-insensitively on word boundaries.
// Keywords are matched on ASCII case folding so byte offsets stay valid.
func indexWord(s, keyword string) int {
	ls, lk := asciiLower(s), asciiLower(keyword)
	for from := 0; from <= len(ls)-len(lk); {
		i := strings.Index(ls[from:], lk)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(lk)
		if (i == 0 || !isWordByte(ls[i-1])) && (end == len(ls) || !isWordByte(ls[end])) {
			return i
		}
		from = i + 1
	}
	return -1
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func isWordByte(c byte) bool {
	return c == '_' || c == '-' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || c >= 0x80
}

func normalizeURL(u string) string {
	u = strings.TrimSpace(u)
	u = strings.SplitN(u, "#", 2)[0]
	return strings.TrimSuffix(u, "/")
}
