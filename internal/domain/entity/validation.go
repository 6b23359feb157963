package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// ValidateURL validates the format of a link target or endpoint URL.
// It checks that the URL is well-formed, uses HTTP/HTTPS scheme, and has a valid host.
// Returns a ValidationError if the URL is invalid or empty.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	return nil
}

// Validate checks the invariants a version snapshot must satisfy before it is stored.
func (v *Version) Validate() error {
	if v.ArticleID <= 0 {
		return &ValidationError{Field: "article_id", Message: "must be positive"}
	}
	if v.VersionNumber < 1 {
		return &ValidationError{Field: "version_number", Message: "must start at 1"}
	}
	if _, err := ParseVersionType(string(v.VersionType)); err != nil {
		return err
	}
	if v.VersionType == VersionOriginal && v.VersionNumber != 1 {
		return &ValidationError{Field: "version_number", Message: "original version must be number 1"}
	}
	if strings.TrimSpace(v.Content) == "" {
		return &ValidationError{Field: "content", Message: "content is required"}
	}
	return nil
}
