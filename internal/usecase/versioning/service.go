package versioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/observability/metrics"
	"draftdesk/internal/repository"
	"draftdesk/internal/utils/text"
)

// Metadata describes how a new version was produced.
type Metadata struct {
	RevisionType   string
	RevisionPrompt string
	ChangesSummary string
	Provider       string
}

// Service provides version history use cases.
type Service struct {
	Articles repository.ArticleRepository
	Versions repository.VersionRepository
}

// EnsureOriginal records the article's present content as version 1 unless an
// original already exists, and returns the original's id. Calling it twice
// never creates a second original. The original can only be version 1, so an
// article whose history started without one gets ErrHistoryStarted.
func (s *Service) EnsureOriginal(ctx context.Context, a *entity.Article) (int64, error) {
	existing, err := s.Versions.FindOriginal(ctx, a.ID)
	if err != nil {
		return 0, fmt.Errorf("find original: %w", err)
	}
	if existing != nil {
		return existing.ID, nil
	}
	versions, err := s.Versions.ListByArticle(ctx, a.ID)
	if err != nil {
		return 0, fmt.Errorf("list versions: %w", err)
	}
	if len(versions) > 0 {
		return 0, fmt.Errorf("article %d: %w", a.ID, ErrHistoryStarted)
	}

	v := originalOf(a)
	if err := s.Versions.Append(ctx, v); err != nil {
		// A concurrent caller may have recorded the original first.
		if again, findErr := s.Versions.FindOriginal(ctx, a.ID); findErr == nil && again != nil {
			return again.ID, nil
		}
		if errors.Is(err, entity.ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: ensure original for article %d: %w", ErrPersistenceFailed, a.ID, err)
	}

	metrics.RecordVersionCreated(string(entity.VersionOriginal))
	slog.Info("original version recorded",
		slog.Int64("article_id", a.ID),
		slog.Int64("version_id", v.ID))
	return v.ID, nil
}

// CreateVersion appends content as the new current version of a. The word
// count is recomputed from content with the analyzer's counting rule.
func (s *Service) CreateVersion(ctx context.Context, a *entity.Article, content entity.ContentSnapshot, meta Metadata) (*entity.Version, error) {
	v := revisionOf(a, content, meta)
	if err := s.Versions.Append(ctx, v); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create version for article %d: %w", ErrPersistenceFailed, a.ID, err)
	}

	metrics.RecordVersionCreated(string(entity.VersionAIRevision))
	logVersion(v, meta)
	return v, nil
}

// CreateRevision is EnsureOriginal followed by CreateVersion as one store
// write: either both versions are stored and the article points at the new
// one, or nothing changes.
func (s *Service) CreateRevision(ctx context.Context, a *entity.Article, content entity.ContentSnapshot, meta Metadata) (*entity.Version, error) {
	original := originalOf(a)
	v := revisionOf(a, content, meta)
	if err := s.Versions.AppendRevision(ctx, original, v); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create revision for article %d: %w", ErrPersistenceFailed, a.ID, err)
	}

	if original.ID != 0 {
		metrics.RecordVersionCreated(string(entity.VersionOriginal))
		slog.Info("original version recorded",
			slog.Int64("article_id", a.ID),
			slog.Int64("version_id", original.ID))
	}
	metrics.RecordVersionCreated(string(entity.VersionAIRevision))
	logVersion(v, meta)
	return v, nil
}

func originalOf(a *entity.Article) *entity.Version {
	snap := a.ContentSnapshot
	snap.WordCount = text.CountWords(snap.Content)
	return &entity.Version{
		ArticleID:       a.ID,
		VersionType:     entity.VersionOriginal,
		ContentSnapshot: snap,
		ChangesSummary:  "Original content",
	}
}

func revisionOf(a *entity.Article, content entity.ContentSnapshot, meta Metadata) *entity.Version {
	content.WordCount = text.CountWords(content.Content)
	return &entity.Version{
		ArticleID:       a.ID,
		VersionType:     entity.VersionAIRevision,
		ContentSnapshot: content,
		RevisionType:    meta.RevisionType,
		RevisionPrompt:  meta.RevisionPrompt,
		ChangesSummary:  meta.ChangesSummary,
		Provider:        meta.Provider,
	}
}

func logVersion(v *entity.Version, meta Metadata) {
	slog.Info("version created",
		slog.Int64("article_id", v.ArticleID),
		slog.Int64("version_id", v.ID),
		slog.Int("version_number", v.VersionNumber),
		slog.String("revision_type", meta.RevisionType))
}

// Restore makes versionID current again and copies its content back onto the
// article. Returns entity.ErrNotFound if the version does not belong to the article.
func (s *Service) Restore(ctx context.Context, articleID, versionID int64) (*entity.Version, error) {
	if articleID <= 0 {
		return nil, ErrInvalidArticleID
	}
	v, err := s.Versions.Promote(ctx, articleID, versionID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: restore version %d: %w", ErrPersistenceFailed, versionID, err)
	}

	slog.Info("version restored",
		slog.Int64("article_id", articleID),
		slog.Int64("version_id", versionID),
		slog.Int("version_number", v.VersionNumber))
	return v, nil
}

// History returns the article's versions, newest first.
func (s *Service) History(ctx context.Context, articleID int64) ([]*entity.Version, error) {
	if articleID <= 0 {
		return nil, ErrInvalidArticleID
	}
	a, err := s.Articles.Get(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("article %d: %w", articleID, entity.ErrNotFound)
	}
	versions, err := s.Versions.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}
