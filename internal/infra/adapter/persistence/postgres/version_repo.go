package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/repository"
)

type VersionRepo struct {
	db *sql.DB
}

func NewVersionRepo(db *sql.DB) repository.VersionRepository {
	return &VersionRepo{db: db}
}

func (repo *VersionRepo) ListByArticle(ctx context.Context, articleID int64) ([]*entity.Version, error) {
	query := `SELECT ` + columnList(versionColumns) + `
FROM article_versions
WHERE article_id = $1
ORDER BY version_number DESC`
	rows, err := repo.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, fmt.Errorf("ListByArticle: %w", err)
	}
	defer func() { _ = rows.Close() }()

	versions := make([]*entity.Version, 0, 8)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByArticle: Scan: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (repo *VersionRepo) Get(ctx context.Context, id int64) (*entity.Version, error) {
	query := `SELECT ` + columnList(versionColumns) + `
FROM article_versions
WHERE id = $1`
	v, err := scanVersion(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return v, nil
}

func (repo *VersionRepo) FindOriginal(ctx context.Context, articleID int64) (*entity.Version, error) {
	query := `SELECT ` + columnList(versionColumns) + `
FROM article_versions
WHERE article_id = $1 AND version_type = 'original'`
	v, err := scanVersion(repo.db.QueryRowContext(ctx, query, articleID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindOriginal: %w", err)
	}
	return v, nil
}

// Append runs in one transaction: lock the article row, pick the next
// number, demote the current version, insert v as current and mirror it
// onto the article.
func (repo *VersionRepo) Append(ctx context.Context, v *entity.Version) error {
	return repo.appendVersions(ctx, "Append", nil, v)
}

// AppendRevision is Append with the article's original recorded as version 1
// in the same transaction when the article has no versions yet.
func (repo *VersionRepo) AppendRevision(ctx context.Context, original, v *entity.Version) error {
	return repo.appendVersions(ctx, "AppendRevision", original, v)
}

func (repo *VersionRepo) appendVersions(ctx context.Context, op string, original, v *entity.Version) (err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockArticle(ctx, tx, v.ArticleID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var maxNumber int
	if err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version_number), 0) FROM article_versions WHERE article_id = $1`,
		v.ArticleID,
	).Scan(&maxNumber); err != nil {
		return fmt.Errorf("%s: next number: %w", op, err)
	}

	// オリジナルは履歴が空のときだけ version 1 として記録
	if original != nil && maxNumber == 0 {
		original.VersionNumber = 1
		original.IsCurrent = false
		if err = original.Validate(); err != nil {
			return fmt.Errorf("%s: original: %w", op, err)
		}
		if err = insertVersion(ctx, tx, original); err != nil {
			return fmt.Errorf("%s: original: %w", op, err)
		}
		maxNumber = 1
	}

	v.VersionNumber = maxNumber + 1
	v.IsCurrent = true
	if err = v.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = demoteAll(ctx, tx, v.ArticleID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = insertVersion(ctx, tx, v); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = mirrorOntoArticle(ctx, tx, v); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

func insertVersion(ctx context.Context, tx *sql.Tx, v *entity.Version) error {
	headings, err := encodeJSON(v.HeadingStructure)
	if err != nil {
		return fmt.Errorf("heading_structure: %w", err)
	}
	faqs, err := encodeJSON(v.FAQs)
	if err != nil {
		return fmt.Errorf("faqs: %w", err)
	}

	const insert = `
INSERT INTO article_versions
       (article_id, version_number, version_type,
        title, content, meta_description, focus_keyword, word_count,
        heading_structure, faqs, internal_links, external_links,
        is_current, revision_type, revision_prompt, changes_summary, provider)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING id, created_at`
	if err := tx.QueryRowContext(ctx, insert,
		v.ArticleID, v.VersionNumber, string(v.VersionType),
		v.Title, v.Content, v.MetaDescription, v.FocusKeyword, v.WordCount,
		headings, faqs, stringArray(v.InternalLinks), stringArray(v.ExternalLinks),
		v.IsCurrent, v.RevisionType, v.RevisionPrompt, v.ChangesSummary, v.Provider,
	).Scan(&v.ID, &v.CreatedAt); err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

// Promote runs in one transaction: lock the article row, verify ownership,
// demote the current version, promote the target and mirror it onto the article.
func (repo *VersionRepo) Promote(ctx context.Context, articleID, versionID int64) (_ *entity.Version, err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Promote: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockArticle(ctx, tx, articleID); err != nil {
		return nil, fmt.Errorf("Promote: %w", err)
	}

	query := `SELECT ` + columnList(versionColumns) + `
FROM article_versions
WHERE id = $1 AND article_id = $2`
	v, err := scanVersion(tx.QueryRowContext(ctx, query, versionID, articleID))
	if errors.Is(err, sql.ErrNoRows) {
		err = entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Promote: version %d: %w", versionID, err)
	}

	if err = demoteAll(ctx, tx, articleID); err != nil {
		return nil, fmt.Errorf("Promote: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE article_versions SET is_current = TRUE WHERE id = $1`, versionID,
	); err != nil {
		return nil, fmt.Errorf("Promote: mark current: %w", err)
	}
	v.IsCurrent = true

	if err = mirrorOntoArticle(ctx, tx, v); err != nil {
		return nil, fmt.Errorf("Promote: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("Promote: commit: %w", err)
	}
	return v, nil
}

func lockArticle(ctx context.Context, tx *sql.Tx, articleID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM articles WHERE id = $1 FOR UPDATE`, articleID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("article %d: %w", articleID, entity.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lock article: %w", err)
	}
	return nil
}

func demoteAll(ctx context.Context, tx *sql.Tx, articleID int64) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE article_versions SET is_current = FALSE WHERE article_id = $1 AND is_current`, articleID,
	); err != nil {
		return fmt.Errorf("demote: %w", err)
	}
	return nil
}

func mirrorOntoArticle(ctx context.Context, tx *sql.Tx, v *entity.Version) error {
	headings, err := encodeJSON(v.HeadingStructure)
	if err != nil {
		return fmt.Errorf("mirror: heading_structure: %w", err)
	}
	faqs, err := encodeJSON(v.FAQs)
	if err != nil {
		return fmt.Errorf("mirror: faqs: %w", err)
	}

	const query = `
UPDATE articles SET
       title              = $1,
       content            = $2,
       meta_description   = $3,
       focus_keyword      = $4,
       word_count         = $5,
       heading_structure  = $6,
       faqs               = $7,
       internal_links     = $8,
       external_links     = $9,
       current_version_id = $10,
       updated_at         = now()
WHERE id = $11`
	if _, err := tx.ExecContext(ctx, query,
		v.Title, v.Content, v.MetaDescription, v.FocusKeyword, v.WordCount,
		headings, faqs, stringArray(v.InternalLinks), stringArray(v.ExternalLinks),
		v.ID, v.ArticleID,
	); err != nil {
		return fmt.Errorf("mirror: %w", err)
	}
	return nil
}
