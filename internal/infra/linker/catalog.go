// Package linker enriches article HTML with internal links taken from the
// site's link catalog.
package linker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/repository"
)

// CatalogSnapshot is a point-in-time copy of the link catalog.
type CatalogSnapshot struct {
	Entries  []entity.LinkTarget
	LoadedAt time.Time
}

// IsFresh reports whether the snapshot is younger than ttl at now.
// A zero snapshot is never fresh.
func (s CatalogSnapshot) IsFresh(now time.Time, ttl time.Duration) bool {
	if s.LoadedAt.IsZero() {
		return false
	}
	return now.Sub(s.LoadedAt) < ttl
}

// snapshotCache holds the last loaded snapshot. Reload is explicit: callers
// check freshness and reload when stale.
type snapshotCache struct {
	repo repository.LinkCatalogRepository
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	snapshot CatalogSnapshot
}

func (c *snapshotCache) get(ctx context.Context) (CatalogSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot.IsFresh(c.now(), c.ttl) {
		return c.snapshot, nil
	}
	return c.reloadLocked(ctx)
}

func (c *snapshotCache) reload(ctx context.Context) (CatalogSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reloadLocked(ctx)
}

func (c *snapshotCache) reloadLocked(ctx context.Context) (CatalogSnapshot, error) {
	entries, err := c.repo.ListLinkTargets(ctx)
	if err != nil {
		return CatalogSnapshot{}, fmt.Errorf("load link catalog: %w", err)
	}
	c.snapshot = CatalogSnapshot{Entries: entries, LoadedAt: c.now()}
	slog.Debug("link catalog reloaded", slog.Int("entries", len(entries)))
	return c.snapshot, nil
}
