// Package entity defines the core domain entities for the editorial pipeline.
// It contains the Article aggregate, its immutable Version snapshots, the closed
// enumerations used by the pipeline (status, risk level, version type) and the
// domain-level errors shared by every layer.
package entity

import (
	"strconv"
	"time"
)

// FAQ is a single question/answer pair attached to an article.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Heading is one entry of an article's heading outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// ContentSnapshot holds the content fields that are mirrored between an
// Article and each of its Versions. Restoring a version copies this struct
// back onto the article verbatim.
type ContentSnapshot struct {
	Title            string
	Content          string // HTML
	MetaDescription  string
	FocusKeyword     string
	WordCount        int
	HeadingStructure []Heading
	FAQs             []FAQ
	InternalLinks    []string
	ExternalLinks    []string
}

// Article represents an article moving through the idea→draft→review→publish pipeline.
// Content fields are owned by the revision flow; Status and HumanReviewed are owned
// by the review and auto-publish flow.
type Article struct {
	ID int64
	ContentSnapshot

	QualityScore        int
	RiskLevel           RiskLevel
	Status              Status
	HumanReviewed       bool
	AutopublishDeadline *time.Time
	CurrentVersionID    *int64
	ExternalRef         string

	PublishedAt *time.Time
	ScrapedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LatestActivity returns the most recent of PublishedAt, ScrapedAt and CreatedAt.
// The boolean is false when none of them is set.
func (a *Article) LatestActivity() (time.Time, bool) {
	var latest time.Time
	for _, t := range []*time.Time{a.PublishedAt, a.ScrapedAt, &a.CreatedAt} {
		if t != nil && !t.IsZero() && t.After(latest) {
			latest = *t
		}
	}
	return latest, !latest.IsZero()
}

// LinkTarget is an entry of the internal link catalog used to enrich articles.
type LinkTarget struct {
	URL      string
	Title    string
	Keywords []string
}

// AuditEvent records a state change performed by the engine.
type AuditEvent struct {
	ID        int64
	ArticleID int64
	Action    string
	Detail    string
	CreatedAt time.Time
}

// ArticleLockKey is the lock key that serializes revision and publish work on one article.
func ArticleLockKey(articleID int64) string {
	return "draftdesk:article:" + strconv.FormatInt(articleID, 10)
}
