package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/CompanyPortal/internal/logging"
	"github.com/JonMunkholm/CompanyPortal/internal/normalize"
)

// Snapshot is an immutable in-memory copy of the main registry with
// precomputed normalized keys. A nil *Snapshot behaves as an empty one.
type Snapshot struct {
	entries   []RegistryEntry
	byPair    map[normalize.Key]int
	byName    map[string]int
	byWebsite map[string]int
	fetchedAt time.Time
}

// NewSnapshot indexes entries. When several entries share a key, the first
// one in input order is the one Lookup returns.
func NewSnapshot(entries []RegistryEntry, fetchedAt time.Time) *Snapshot {
	s := &Snapshot{
		entries:   make([]RegistryEntry, len(entries)),
		byPair:    make(map[normalize.Key]int, len(entries)),
		byName:    make(map[string]int, len(entries)),
		byWebsite: make(map[string]int, len(entries)),
		fetchedAt: fetchedAt,
	}
	copy(s.entries, entries)

	for i, e := range s.entries {
		key := normalize.KeyOf(e.Name, e.Website)
		if key.Name != "" && key.Website != "" {
			if _, ok := s.byPair[key]; !ok {
				s.byPair[key] = i
			}
		}
		if key.Name != "" {
			if _, ok := s.byName[key.Name]; !ok {
				s.byName[key.Name] = i
			}
		}
		if key.Website != "" {
			if _, ok := s.byWebsite[key.Website]; !ok {
				s.byWebsite[key.Website] = i
			}
		}
	}
	return s
}

// Len returns the number of registry entries.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// FetchedAt returns when the snapshot was taken. Zero for an empty fallback.
func (s *Snapshot) FetchedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.fetchedAt
}

// Lookup finds the registry entry for a normalized key using the three match
// tiers in order: both fields, name only, website only.
func (s *Snapshot) Lookup(key normalize.Key) (*RegistryEntry, bool) {
	if s == nil {
		return nil, false
	}
	if key.Name != "" && key.Website != "" {
		if i, ok := s.byPair[key]; ok {
			return s.entry(i), true
		}
	}
	if key.Name != "" {
		if i, ok := s.byName[key.Name]; ok {
			return s.entry(i), true
		}
	}
	if key.Website != "" {
		if i, ok := s.byWebsite[key.Website]; ok {
			return s.entry(i), true
		}
	}
	return nil, false
}

// entry returns a copy so callers cannot mutate the snapshot.
func (s *Snapshot) entry(i int) *RegistryEntry {
	e := s.entries[i]
	return &e
}

// FetchSnapshot reads the registry and builds a snapshot. It never fails: when
// the source errors, a warning is logged and an empty snapshot is returned,
// so every candidate classifies as UNIQUE until the next refresh.
func FetchSnapshot(ctx context.Context, src RegistrySource) *Snapshot {
	if src == nil {
		return NewSnapshot(nil, time.Time{})
	}

	start := time.Now()
	entries, err := src.FetchAll(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("main registry unavailable, using empty snapshot",
			"event", "registry_fetch_failed",
			"error", err,
		)
		return NewSnapshot(nil, time.Time{})
	}

	snap := NewSnapshot(entries, time.Now())
	logging.FromContext(ctx).Debug("registry snapshot fetched",
		"entries", snap.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return snap
}
