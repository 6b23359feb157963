package db

import (
	"database/sql"
)

var schemaStatements = []string{
	`
CREATE TABLE IF NOT EXISTS articles (
    id                   BIGSERIAL PRIMARY KEY,
    title                TEXT NOT NULL,
    content              TEXT NOT NULL DEFAULT '',
    meta_description     TEXT NOT NULL DEFAULT '',
    focus_keyword        TEXT NOT NULL DEFAULT '',
    word_count           INTEGER NOT NULL DEFAULT 0,
    heading_structure    JSONB NOT NULL DEFAULT '[]',
    faqs                 JSONB NOT NULL DEFAULT '[]',
    internal_links       TEXT[] NOT NULL DEFAULT '{}',
    external_links       TEXT[] NOT NULL DEFAULT '{}',
    quality_score        INTEGER NOT NULL DEFAULT 0 CHECK (quality_score BETWEEN 0 AND 100),
    risk_level           VARCHAR(10) NOT NULL DEFAULT 'LOW'
                         CHECK (risk_level IN ('LOW', 'MEDIUM', 'HIGH', 'CRITICAL')),
    status               VARCHAR(20) NOT NULL DEFAULT 'drafting'
                         CHECK (status IN ('drafting', 'refinement', 'qa_review', 'ready_to_publish', 'published', 'rejected')),
    human_reviewed       BOOLEAN NOT NULL DEFAULT FALSE,
    autopublish_deadline TIMESTAMPTZ,
    current_version_id   BIGINT,
    external_ref         TEXT NOT NULL DEFAULT '',
    published_at         TIMESTAMPTZ,
    scraped_at           TIMESTAMPTZ,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`
CREATE TABLE IF NOT EXISTS article_versions (
    id                BIGSERIAL PRIMARY KEY,
    article_id        BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    version_number    INTEGER NOT NULL CHECK (version_number >= 1),
    version_type      VARCHAR(20) NOT NULL CHECK (version_type IN ('original', 'ai_revision')),
    title             TEXT NOT NULL,
    content           TEXT NOT NULL,
    meta_description  TEXT NOT NULL DEFAULT '',
    focus_keyword     TEXT NOT NULL DEFAULT '',
    word_count        INTEGER NOT NULL DEFAULT 0,
    heading_structure JSONB NOT NULL DEFAULT '[]',
    faqs              JSONB NOT NULL DEFAULT '[]',
    internal_links    TEXT[] NOT NULL DEFAULT '{}',
    external_links    TEXT[] NOT NULL DEFAULT '{}',
    is_current        BOOLEAN NOT NULL DEFAULT FALSE,
    revision_type     VARCHAR(30) NOT NULL DEFAULT '',
    revision_prompt   TEXT NOT NULL DEFAULT '',
    changes_summary   TEXT NOT NULL DEFAULT '',
    provider          VARCHAR(50) NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (article_id, version_number)
)`,
	`
CREATE TABLE IF NOT EXISTS link_targets (
    id       BIGSERIAL PRIMARY KEY,
    url      TEXT NOT NULL UNIQUE,
    title    TEXT NOT NULL,
    keywords TEXT[] NOT NULL DEFAULT '{}'
)`,
	`
CREATE TABLE IF NOT EXISTS audit_events (
    id         BIGSERIAL PRIMARY KEY,
    article_id BIGINT NOT NULL,
    action     VARCHAR(50) NOT NULL,
    detail     TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
}

var indexStatements = []string{
	// at most one current and one original version per article
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_article_versions_current ON article_versions(article_id) WHERE is_current`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_article_versions_original ON article_versions(article_id) WHERE version_type = 'original'`,
	// auto-publish candidate scan
	`CREATE INDEX IF NOT EXISTS idx_articles_autopublish ON articles(status, autopublish_deadline) WHERE human_reviewed = FALSE`,
	`CREATE INDEX IF NOT EXISTS idx_audit_events_article_id ON audit_events(article_id, created_at DESC)`,
}

// MigrateUp creates the schema. It is safe to run repeatedly.
func MigrateUp(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	for _, idx := range indexStatements {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown drops every table created by MigrateUp.
// Use with caution: this will delete all data.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS audit_events`,
		`DROP TABLE IF EXISTS link_targets`,
		`DROP TABLE IF EXISTS article_versions CASCADE`,
		`DROP TABLE IF EXISTS articles CASCADE`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
