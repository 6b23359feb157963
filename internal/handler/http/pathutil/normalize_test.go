package pathutil

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/articles/12", "/articles/:id"},
		{"/articles/12/", "/articles/:id"},
		{"/articles/12/versions", "/articles/:id/versions"},
		{"/articles/12/versions/40/restore", "/articles/:id/versions/:version_id/restore"},
		{"/articles/12/revisions?dry=1", "/articles/:id/revisions"},
		{"/articles/12/analysis", "/articles/:id/analysis"},
		{"/articles/12/eligibility", "/articles/:id/eligibility"},
		{"/articles/12/ready", "/articles/:id/ready"},
		{"/autopublish/run", "/autopublish/run"},
		{"/health", "/health"},
		{"/", "/"},
		{"/articles/abc", "/articles/abc"},
		{"/articles/12/versions/40/unknown", "/articles/12/versions/40/unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePath(tt.in), tt.in)
	}
}

func TestNormalizePath_BoundedCardinality(t *testing.T) {
	seen := map[string]bool{}
	for i := 1; i <= 500; i++ {
		seen[NormalizePath("/articles/"+strconv.Itoa(i)+"/versions")] = true
	}
	assert.Len(t, seen, 1)
}
