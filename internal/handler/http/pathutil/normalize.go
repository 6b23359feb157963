// Package pathutil parses ids out of request paths and folds concrete paths
// into route templates for metric labels.
package pathutil

import (
	"regexp"
	"strings"
)

type pathPattern struct {
	re       *regexp.Regexp
	template string
}

// Most specific first.
var pathPatterns = []pathPattern{
	{regexp.MustCompile(`^/articles/\d+/versions/\d+/restore$`), "/articles/:id/versions/:version_id/restore"},
	{regexp.MustCompile(`^/articles/\d+/versions$`), "/articles/:id/versions"},
	{regexp.MustCompile(`^/articles/\d+/revisions$`), "/articles/:id/revisions"},
	{regexp.MustCompile(`^/articles/\d+/analysis$`), "/articles/:id/analysis"},
	{regexp.MustCompile(`^/articles/\d+/eligibility$`), "/articles/:id/eligibility"},
	{regexp.MustCompile(`^/articles/\d+/ready$`), "/articles/:id/ready"},
	{regexp.MustCompile(`^/articles/\d+$`), "/articles/:id"},
}

// NormalizePath replaces ids in known routes with placeholders so metric
// label cardinality stays bounded. Unknown paths are returned unchanged
// apart from a stripped query string and trailing slash.
//
//	NormalizePath("/articles/12/versions/40/restore") // "/articles/:id/versions/:version_id/restore"
//	NormalizePath("/autopublish/run")                 // "/autopublish/run"
func NormalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i != -1 {
		path = path[:i]
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	for _, p := range pathPatterns {
		if p.re.MatchString(path) {
			return p.template
		}
	}
	return path
}
