package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/repository"
)

type LinkCatalogRepo struct {
	db *sql.DB
}

func NewLinkCatalogRepo(db *sql.DB) repository.LinkCatalogRepository {
	return &LinkCatalogRepo{db: db}
}

func (repo *LinkCatalogRepo) ListLinkTargets(ctx context.Context) ([]entity.LinkTarget, error) {
	const query = `SELECT url, title, keywords FROM link_targets ORDER BY id`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListLinkTargets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	targets := make([]entity.LinkTarget, 0, 64)
	for rows.Next() {
		var (
			t        entity.LinkTarget
			keywords pq.StringArray
		)
		if err := rows.Scan(&t.URL, &t.Title, &keywords); err != nil {
			return nil, fmt.Errorf("ListLinkTargets: Scan: %w", err)
		}
		t.Keywords = []string(keywords)
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) repository.AuditRepository {
	return &AuditRepo{db: db}
}

func (repo *AuditRepo) Record(ctx context.Context, ev *entity.AuditEvent) error {
	const query = `
INSERT INTO audit_events (article_id, action, detail)
VALUES ($1, $2, $3)
RETURNING id, created_at`
	if err := repo.db.QueryRowContext(ctx, query, ev.ArticleID, ev.Action, ev.Detail).
		Scan(&ev.ID, &ev.CreatedAt); err != nil {
		return fmt.Errorf("Record: %w", err)
	}
	return nil
}

func (repo *AuditRepo) ListByArticle(ctx context.Context, articleID int64, limit int) ([]*entity.AuditEvent, error) {
	const query = `
SELECT id, article_id, action, detail, created_at
FROM audit_events
WHERE article_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`
	rows, err := repo.db.QueryContext(ctx, query, articleID, limit)
	if err != nil {
		return nil, fmt.Errorf("ListByArticle: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*entity.AuditEvent
	for rows.Next() {
		var ev entity.AuditEvent
		if err := rows.Scan(&ev.ID, &ev.ArticleID, &ev.Action, &ev.Detail, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByArticle: Scan: %w", err)
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}
