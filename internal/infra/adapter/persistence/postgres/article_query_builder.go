// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"draftdesk/internal/repository"
)

// psql renders $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ArticleQueryBuilder builds the dynamic article statements.
// Static statements live next to the repository methods as string constants.
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// BuildCandidateQuery builds the SELECT for ListCandidates.
func (qb *ArticleQueryBuilder) BuildCandidateQuery(f repository.CandidateFilter) (string, []any, error) {
	q := psql.Select(articleColumns...).From("articles")

	if f.Status != "" {
		q = q.Where(sq.Eq{"status": string(f.Status)})
	}
	if !f.DeadlineBefore.IsZero() {
		q = q.Where(sq.LtOrEq{"autopublish_deadline": f.DeadlineBefore})
	}
	if f.HumanReviewed != nil {
		q = q.Where(sq.Eq{"human_reviewed": *f.HumanReviewed})
	}
	q = q.OrderBy("autopublish_deadline ASC", "id ASC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	return q.ToSql()
}

// BuildPatchQuery builds the UPDATE for Save. It returns an empty query when
// the patch changes nothing.
func (qb *ArticleQueryBuilder) BuildPatchQuery(id int64, p repository.ArticlePatch, now time.Time) (string, []any, error) {
	if p.IsEmpty() {
		return "", nil, nil
	}

	q := psql.Update("articles")
	if p.Status != nil {
		q = q.Set("status", string(*p.Status))
	}
	if p.HumanReviewed != nil {
		q = q.Set("human_reviewed", *p.HumanReviewed)
	}
	switch {
	case p.ClearDeadline:
		q = q.Set("autopublish_deadline", nil)
	case p.AutopublishDeadline != nil:
		q = q.Set("autopublish_deadline", *p.AutopublishDeadline)
	}
	if p.PublishedAt != nil {
		q = q.Set("published_at", *p.PublishedAt)
	}
	if p.ExternalRef != nil {
		q = q.Set("external_ref", *p.ExternalRef)
	}
	if p.QualityScore != nil {
		q = q.Set("quality_score", *p.QualityScore)
	}
	if p.RiskLevel != nil {
		q = q.Set("risk_level", p.RiskLevel.String())
	}
	return q.Set("updated_at", now).Where(sq.Eq{"id": id}).ToSql()
}
