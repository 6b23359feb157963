package lock

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type localEntry struct {
	token   uint64
	expires time.Time
}

// Local serializes holders within one process. It is used when no Redis
// address is configured.
type Local struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.Mutex
	next uint64
	held map[string]localEntry
}

// NewLocal creates an in-process locker. A non-positive ttl selects DefaultTTL.
func NewLocal(ttl time.Duration) *Local {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Local{ttl: ttl, now: time.Now, held: make(map[string]localEntry)}
}

func (l *Local) TryLock(_ context.Context, key string) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return nil, false, nil
	}
	l.next++
	token := l.next
	l.held[key] = localEntry{token: token, expires: now.Add(l.ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if e, ok := l.held[key]; !ok || e.token != token {
			return fmt.Errorf("release lock %s: %w", key, ErrNotHeld)
		}
		delete(l.held, key)
		return nil
	}, true, nil
}
