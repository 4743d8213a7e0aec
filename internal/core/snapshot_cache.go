package core

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultSnapshotTTL is how long a session keeps its snapshot when no TTL
// is configured.
const DefaultSnapshotTTL = 30 * time.Minute

type snapshotSession struct {
	snap    *Snapshot
	expires time.Time
}

// SnapshotCache keeps one registry snapshot per session. A session fetches
// on first use and keeps the same snapshot until it expires or is refreshed
// explicitly; snapshots are never modified in place.
type SnapshotCache struct {
	source RegistrySource
	ttl    time.Duration
	now    func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	sessions map[string]snapshotSession
}

// NewSnapshotCache creates a cache reading from source.
func NewSnapshotCache(source RegistrySource, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{
		source:   source,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]snapshotSession),
	}
}

// Get returns the session's snapshot, fetching one if the session has none
// or it has expired. Concurrent first fetches for a session share one read.
func (c *SnapshotCache) Get(ctx context.Context, session string) *Snapshot {
	c.mu.Lock()
	s, ok := c.sessions[session]
	c.mu.Unlock()

	if ok && c.now().Before(s.expires) {
		return s.snap
	}
	return c.fetch(ctx, session, false)
}

// Refresh replaces the session's snapshot with a freshly fetched one.
func (c *SnapshotCache) Refresh(ctx context.Context, session string) *Snapshot {
	return c.fetch(ctx, session, true)
}

// Invalidate drops the session's snapshot.
func (c *SnapshotCache) Invalidate(session string) {
	c.mu.Lock()
	delete(c.sessions, session)
	c.mu.Unlock()
}

// Sessions returns the number of sessions currently holding a snapshot.
func (c *SnapshotCache) Sessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// fetch loads a snapshot for session. Unless force is set, a snapshot stored
// by a fetch that finished after the caller's cache miss is reused.
func (c *SnapshotCache) fetch(ctx context.Context, session string, force bool) *Snapshot {
	v, _, _ := c.group.Do(session, func() (any, error) {
		if !force {
			c.mu.Lock()
			s, ok := c.sessions[session]
			c.mu.Unlock()
			if ok && c.now().Before(s.expires) {
				return s.snap, nil
			}
		}

		snap := FetchSnapshot(ctx, c.source)

		c.mu.Lock()
		c.sweepLocked()
		c.sessions[session] = snapshotSession{snap: snap, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()

		return snap, nil
	})
	return v.(*Snapshot)
}

// sweepLocked drops expired sessions. Callers hold c.mu.
func (c *SnapshotCache) sweepLocked() {
	now := c.now()
	for k, s := range c.sessions {
		if !now.Before(s.expires) {
			delete(c.sessions, k)
		}
	}
}
