package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"draftdesk/internal/domain/entity"
)

type rowScanner interface {
	Scan(dest ...any) error
}

var articleColumns = []string{
	"id", "title", "content", "meta_description", "focus_keyword", "word_count",
	"heading_structure", "faqs", "internal_links", "external_links",
	"quality_score", "risk_level", "status", "human_reviewed",
	"autopublish_deadline", "current_version_id", "external_ref",
	"published_at", "scraped_at", "created_at", "updated_at",
}

var versionColumns = []string{
	"id", "article_id", "version_number", "version_type",
	"title", "content", "meta_description", "focus_keyword", "word_count",
	"heading_structure", "faqs", "internal_links", "external_links",
	"is_current", "revision_type", "revision_prompt", "changes_summary",
	"provider", "created_at",
}

func columnList(cols []string) string {
	return strings.Join(cols, ", ")
}

func scanArticle(row rowScanner) (*entity.Article, error) {
	var (
		a                   entity.Article
		headings, faqs      []byte
		internal, external  pq.StringArray
		risk, status        string
		deadline, published sql.NullTime
		scraped             sql.NullTime
		currentVersion      sql.NullInt64
	)
	if err := row.Scan(
		&a.ID, &a.Title, &a.Content, &a.MetaDescription, &a.FocusKeyword, &a.WordCount,
		&headings, &faqs, &internal, &external,
		&a.QualityScore, &risk, &status, &a.HumanReviewed,
		&deadline, &currentVersion, &a.ExternalRef,
		&published, &scraped, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if a.RiskLevel, err = entity.ParseRiskLevel(risk); err != nil {
		return nil, err
	}
	if a.Status, err = entity.ParseStatus(status); err != nil {
		return nil, err
	}
	if err := decodeJSON(headings, &a.HeadingStructure); err != nil {
		return nil, fmt.Errorf("heading_structure: %w", err)
	}
	if err := decodeJSON(faqs, &a.FAQs); err != nil {
		return nil, fmt.Errorf("faqs: %w", err)
	}
	a.InternalLinks = []string(internal)
	a.ExternalLinks = []string(external)
	a.AutopublishDeadline = timePtr(deadline)
	a.PublishedAt = timePtr(published)
	a.ScrapedAt = timePtr(scraped)
	if currentVersion.Valid {
		id := currentVersion.Int64
		a.CurrentVersionID = &id
	}
	return &a, nil
}

func scanVersion(row rowScanner) (*entity.Version, error) {
	var (
		v                  entity.Version
		versionType        string
		headings, faqs     []byte
		internal, external pq.StringArray
	)
	if err := row.Scan(
		&v.ID, &v.ArticleID, &v.VersionNumber, &versionType,
		&v.Title, &v.Content, &v.MetaDescription, &v.FocusKeyword, &v.WordCount,
		&headings, &faqs, &internal, &external,
		&v.IsCurrent, &v.RevisionType, &v.RevisionPrompt, &v.ChangesSummary,
		&v.Provider, &v.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if v.VersionType, err = entity.ParseVersionType(versionType); err != nil {
		return nil, err
	}
	if err := decodeJSON(headings, &v.HeadingStructure); err != nil {
		return nil, fmt.Errorf("heading_structure: %w", err)
	}
	if err := decodeJSON(faqs, &v.FAQs); err != nil {
		return nil, fmt.Errorf("faqs: %w", err)
	}
	v.InternalLinks = []string(internal)
	v.ExternalLinks = []string(external)
	return &v, nil
}

func decodeJSON(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// encodeJSON renders v for a JSONB column; nil slices become "[]".
func encodeJSON[T any](v []T) (string, error) {
	if v == nil {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func stringArray(v []string) pq.StringArray {
	if v == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(v)
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	tt := t.Time
	return &tt
}
