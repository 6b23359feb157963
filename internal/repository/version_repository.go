package repository

import (
	"context"

	"draftdesk/internal/domain/entity"
)

// VersionRepository persists the append-only version history of articles.
//
// Append, AppendRevision and Promote are the only operations that move the "current" pointer.
// Each runs as a single transaction that demotes every version of the article,
// marks exactly one version current and mirrors its content onto the article,
// so readers never observe zero or two current versions.
type VersionRepository interface {
	// ListByArticle returns versions ordered by version_number descending.
	ListByArticle(ctx context.Context, articleID int64) ([]*entity.Version, error)
	// Get returns (nil, nil) if the version is not found.
	Get(ctx context.Context, id int64) (*entity.Version, error)
	// FindOriginal returns (nil, nil) if the article has no original version.
	FindOriginal(ctx context.Context, articleID int64) (*entity.Version, error)
	// Append assigns the next version number, stores v as the current version
	// and copies its content onto the article. v.ID, v.VersionNumber,
	// v.IsCurrent and v.CreatedAt are filled in on success.
	Append(ctx context.Context, v *entity.Version) error
	// AppendRevision appends v like Append. When the article has no versions
	// yet, original is stored first as version 1 (not current) in the same
	// unit of work; otherwise original is ignored and its ID stays zero.
	// On error neither version is stored.
	AppendRevision(ctx context.Context, original, v *entity.Version) error
	// Promote makes versionID the current version of articleID and copies its
	// content onto the article. Returns entity.ErrNotFound if the version
	// does not belong to the article.
	Promote(ctx context.Context, articleID, versionID int64) (*entity.Version, error)
}

// LinkCatalogRepository lists the internal pages that may be linked to.
type LinkCatalogRepository interface {
	ListLinkTargets(ctx context.Context) ([]entity.LinkTarget, error)
}

// AuditRepository records engine state changes.
type AuditRepository interface {
	Record(ctx context.Context, ev *entity.AuditEvent) error
	ListByArticle(ctx context.Context, articleID int64, limit int) ([]*entity.AuditEvent, error)
}
