package repository

import (
	"context"
	"time"

	"draftdesk/internal/domain/entity"
)

// CandidateFilter selects articles for the auto-publish cycle.
type CandidateFilter struct {
	Status         entity.Status
	DeadlineBefore time.Time // autopublish_deadline <= DeadlineBefore; zero means no bound
	HumanReviewed  *bool     // nil matches both
	Limit          int       // 0 means unlimited
}

// ArticlePatch is a partial update of an article's workflow fields.
// Fields with nil values will not be updated. Content fields are never
// patched directly; they change only through VersionRepository.
type ArticlePatch struct {
	Status              *entity.Status
	HumanReviewed       *bool
	AutopublishDeadline *time.Time
	ClearDeadline       bool
	PublishedAt         *time.Time
	ExternalRef         *string
	QualityScore        *int
	RiskLevel           *entity.RiskLevel
}

// IsEmpty reports whether the patch would change nothing.
func (p ArticlePatch) IsEmpty() bool {
	return p.Status == nil && p.HumanReviewed == nil && p.AutopublishDeadline == nil &&
		!p.ClearDeadline && p.PublishedAt == nil && p.ExternalRef == nil &&
		p.QualityScore == nil && p.RiskLevel == nil
}

type ArticleRepository interface {
	// Get returns (nil, nil) if the article is not found.
	Get(ctx context.Context, id int64) (*entity.Article, error)
	// ListCandidates returns matching articles ordered by deadline, oldest first.
	ListCandidates(ctx context.Context, f CandidateFilter) ([]*entity.Article, error)
	Create(ctx context.Context, article *entity.Article) error
	// Save applies patch to the article. Returns entity.ErrNotFound if no row matched.
	Save(ctx context.Context, id int64, patch ArticlePatch) error
}
