package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/repository"
)

type ArticleRepo struct {
	db           *sql.DB
	queryBuilder *ArticleQueryBuilder
	now          func() time.Time
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{
		db:           db,
		queryBuilder: NewArticleQueryBuilder(),
		now:          time.Now,
	}
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	query := `SELECT ` + columnList(articleColumns) + `
FROM articles
WHERE id = $1
LIMIT 1`
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) ListCandidates(ctx context.Context, f repository.CandidateFilter) ([]*entity.Article, error) {
	query, args, err := repo.queryBuilder.BuildCandidateQuery(f)
	if err != nil {
		return nil, fmt.Errorf("ListCandidates: build: %w", err)
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListCandidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, f.Limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListCandidates: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) Create(ctx context.Context, a *entity.Article) error {
	const query = `
INSERT INTO articles
       (title, content, meta_description, focus_keyword, word_count,
        heading_structure, faqs, internal_links, external_links,
        quality_score, risk_level, status, human_reviewed,
        autopublish_deadline, published_at, scraped_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING id, created_at, updated_at`

	headings, err := encodeJSON(a.HeadingStructure)
	if err != nil {
		return fmt.Errorf("Create: heading_structure: %w", err)
	}
	faqs, err := encodeJSON(a.FAQs)
	if err != nil {
		return fmt.Errorf("Create: faqs: %w", err)
	}
	status := a.Status
	if status == "" {
		status = entity.StatusDrafting
	}

	err = repo.db.QueryRowContext(ctx, query,
		a.Title, a.Content, a.MetaDescription, a.FocusKeyword, a.WordCount,
		headings, faqs, stringArray(a.InternalLinks), stringArray(a.ExternalLinks),
		a.QualityScore, a.RiskLevel.String(), string(status), a.HumanReviewed,
		a.AutopublishDeadline, a.PublishedAt, a.ScrapedAt,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	a.Status = status
	return nil
}

func (repo *ArticleRepo) Save(ctx context.Context, id int64, patch repository.ArticlePatch) error {
	query, args, err := repo.queryBuilder.BuildPatchQuery(id, patch, repo.now())
	if err != nil {
		return fmt.Errorf("Save: build: %w", err)
	}
	if query == "" {
		return nil
	}

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Save: %w", entity.ErrNotFound)
	}
	return nil
}
