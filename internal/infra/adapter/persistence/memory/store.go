// Package memory provides in-process implementations of the repository
// interfaces. All repositories created from one Store share its state and a
// single lock, so every version write is atomic with respect to readers.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/repository"
)

// Store holds articles, versions, link targets and audit events.
type Store struct {
	mu sync.RWMutex

	articles map[int64]*entity.Article
	versions map[int64]*entity.Version
	history  map[int64][]int64 // article id -> version ids in append order
	links    []entity.LinkTarget
	audit    []*entity.AuditEvent

	nextArticleID int64
	nextVersionID int64
	nextAuditID   int64

	now func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		articles: make(map[int64]*entity.Article),
		versions: make(map[int64]*entity.Version),
		history:  make(map[int64][]int64),
		now:      time.Now,
	}
}

// SetClock overrides the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetLinkTargets replaces the link catalog.
func (s *Store) SetLinkTargets(targets []entity.LinkTarget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = append([]entity.LinkTarget(nil), targets...)
}

func (s *Store) Articles() repository.ArticleRepository        { return articleRepo{s} }
func (s *Store) Versions() repository.VersionRepository        { return versionRepo{s} }
func (s *Store) LinkCatalog() repository.LinkCatalogRepository { return catalogRepo{s} }
func (s *Store) Audit() repository.AuditRepository             { return auditRepo{s} }

/* ───────── articles ───────── */

type articleRepo struct{ s *Store }

func (r articleRepo) Get(_ context.Context, id int64) (*entity.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.articles[id]
	if !ok {
		return nil, nil
	}
	return cloneArticle(a), nil
}

func (r articleRepo) ListCandidates(_ context.Context, f repository.CandidateFilter) ([]*entity.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*entity.Article
	for _, a := range r.s.articles {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if !f.DeadlineBefore.IsZero() && (a.AutopublishDeadline == nil || a.AutopublishDeadline.After(f.DeadlineBefore)) {
			continue
		}
		if f.HumanReviewed != nil && a.HumanReviewed != *f.HumanReviewed {
			continue
		}
		out = append(out, cloneArticle(a))
	}

	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].AutopublishDeadline, out[j].AutopublishDeadline
		if di != nil && dj != nil && !di.Equal(*dj) {
			return di.Before(*dj)
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r articleRepo) Create(_ context.Context, a *entity.Article) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextArticleID++
	a.ID = r.s.nextArticleID
	if a.Status == "" {
		a.Status = entity.StatusDrafting
	}
	now := r.s.now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	r.s.articles[a.ID] = cloneArticle(a)
	return nil
}

func (r articleRepo) Save(_ context.Context, id int64, p repository.ArticlePatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.articles[id]
	if !ok {
		return fmt.Errorf("Save: %w", entity.ErrNotFound)
	}
	if p.IsEmpty() {
		return nil
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.HumanReviewed != nil {
		a.HumanReviewed = *p.HumanReviewed
	}
	switch {
	case p.ClearDeadline:
		a.AutopublishDeadline = nil
	case p.AutopublishDeadline != nil:
		d := *p.AutopublishDeadline
		a.AutopublishDeadline = &d
	}
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		a.PublishedAt = &t
	}
	if p.ExternalRef != nil {
		a.ExternalRef = *p.ExternalRef
	}
	if p.QualityScore != nil {
		a.QualityScore = *p.QualityScore
	}
	if p.RiskLevel != nil {
		a.RiskLevel = *p.RiskLevel
	}
	a.UpdatedAt = r.s.now()
	return nil
}

/* ───────── versions ───────── */

type versionRepo struct{ s *Store }

func (r versionRepo) ListByArticle(_ context.Context, articleID int64) ([]*entity.Version, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := r.s.history[articleID]
	out := make([]*entity.Version, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, cloneVersion(r.s.versions[ids[i]]))
	}
	return out, nil
}

func (r versionRepo) Get(_ context.Context, id int64) (*entity.Version, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.versions[id]
	if !ok {
		return nil, nil
	}
	return cloneVersion(v), nil
}

func (r versionRepo) FindOriginal(_ context.Context, articleID int64) (*entity.Version, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, id := range r.s.history[articleID] {
		if v := r.s.versions[id]; v.VersionType == entity.VersionOriginal {
			return cloneVersion(v), nil
		}
	}
	return nil, nil
}

func (r versionRepo) Append(_ context.Context, v *entity.Version) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.appendVersions("Append", nil, v)
}

func (r versionRepo) AppendRevision(_ context.Context, original, v *entity.Version) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.appendVersions("AppendRevision", original, v)
}

// appendVersions validates everything before it mutates, so a failed call
// leaves the store untouched. Requires s.mu held for writing.
func (s *Store) appendVersions(op string, original, v *entity.Version) error {
	a, ok := s.articles[v.ArticleID]
	if !ok {
		return fmt.Errorf("%s: article %d: %w", op, v.ArticleID, entity.ErrNotFound)
	}

	ids := s.history[v.ArticleID]
	maxNumber := 0
	for _, id := range ids {
		if n := s.versions[id].VersionNumber; n > maxNumber {
			maxNumber = n
		}
		if v.VersionType == entity.VersionOriginal && s.versions[id].VersionType == entity.VersionOriginal {
			return fmt.Errorf("%s: article %d already has an original version", op, v.ArticleID)
		}
	}

	withOriginal := original != nil && maxNumber == 0
	if withOriginal {
		original.VersionNumber = 1
		original.IsCurrent = false
		if err := original.Validate(); err != nil {
			return fmt.Errorf("%s: original: %w", op, err)
		}
		maxNumber = 1
	}
	v.VersionNumber = maxNumber + 1
	v.IsCurrent = true
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if withOriginal {
		s.insert(original)
	}
	s.demoteAll(v.ArticleID)
	s.insert(v)
	s.mirror(a, v)
	return nil
}

func (r versionRepo) Promote(_ context.Context, articleID, versionID int64) (*entity.Version, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.articles[articleID]
	if !ok {
		return nil, fmt.Errorf("Promote: article %d: %w", articleID, entity.ErrNotFound)
	}
	v, ok := r.s.versions[versionID]
	if !ok || v.ArticleID != articleID {
		return nil, fmt.Errorf("Promote: version %d: %w", versionID, entity.ErrNotFound)
	}

	r.s.demoteAll(articleID)
	v.IsCurrent = true
	r.s.mirror(a, v)
	return cloneVersion(v), nil
}

// demoteAll, insert and mirror require s.mu held for writing.
func (s *Store) demoteAll(articleID int64) {
	for _, id := range s.history[articleID] {
		s.versions[id].IsCurrent = false
	}
}

func (s *Store) mirror(a *entity.Article, v *entity.Version) {
	a.ContentSnapshot = cloneSnapshot(v.ContentSnapshot)
	id := v.ID
	a.CurrentVersionID = &id
	a.UpdatedAt = s.now()
}

func (s *Store) insert(v *entity.Version) {
	s.nextVersionID++
	v.ID = s.nextVersionID
	v.CreatedAt = s.now()
	s.versions[v.ID] = cloneVersion(v)
	s.history[v.ArticleID] = append(s.history[v.ArticleID], v.ID)
}

/* ───────── catalog & audit ───────── */

type catalogRepo struct{ s *Store }

func (r catalogRepo) ListLinkTargets(_ context.Context) ([]entity.LinkTarget, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]entity.LinkTarget(nil), r.s.links...), nil
}

type auditRepo struct{ s *Store }

func (r auditRepo) Record(_ context.Context, ev *entity.AuditEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextAuditID++
	ev.ID = r.s.nextAuditID
	ev.CreatedAt = r.s.now()
	cp := *ev
	r.s.audit = append(r.s.audit, &cp)
	return nil
}

func (r auditRepo) ListByArticle(_ context.Context, articleID int64, limit int) ([]*entity.AuditEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.AuditEvent
	for i := len(r.s.audit) - 1; i >= 0; i-- {
		if ev := r.s.audit[i]; ev.ArticleID == articleID {
			cp := *ev
			out = append(out, &cp)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

/* ───────── copies ───────── */

func cloneSnapshot(c entity.ContentSnapshot) entity.ContentSnapshot {
	c.HeadingStructure = append([]entity.Heading(nil), c.HeadingStructure...)
	c.FAQs = append([]entity.FAQ(nil), c.FAQs...)
	c.InternalLinks = append([]string(nil), c.InternalLinks...)
	c.ExternalLinks = append([]string(nil), c.ExternalLinks...)
	return c
}

func cloneArticle(a *entity.Article) *entity.Article {
	cp := *a
	cp.ContentSnapshot = cloneSnapshot(a.ContentSnapshot)
	cp.AutopublishDeadline = copyTime(a.AutopublishDeadline)
	cp.PublishedAt = copyTime(a.PublishedAt)
	cp.ScrapedAt = copyTime(a.ScrapedAt)
	if a.CurrentVersionID != nil {
		id := *a.CurrentVersionID
		cp.CurrentVersionID = &id
	}
	return &cp
}

func cloneVersion(v *entity.Version) *entity.Version {
	cp := *v
	cp.ContentSnapshot = cloneSnapshot(v.ContentSnapshot)
	return &cp
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	tt := *t
	return &tt
}
