package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/CompanyPortal/internal/normalize"
)

// StagingMatch describes an existing staging record that collides with a
// candidate.
type StagingMatch struct {
	Found         bool
	OriginalOwner string
	Record        Record
}

// CheckInternalDuplicate looks for an existing staging record from any
// submitter that matches key. The tiers are tried in order and the first hit
// wins: both normalized fields, then name only, then website only.
//
// Matching on a single field is intentionally broad; two different companies
// that share a normalized name are reported as duplicates. Empty key
// components never match.
func CheckInternalDuplicate(ctx context.Context, lookup StagingLookup, key normalize.Key) (StagingMatch, error) {
	type tier struct {
		enabled bool
		find    func() (Record, error)
	}

	tiers := []tier{
		{key.Name != "" && key.Website != "", func() (Record, error) {
			return lookup.FindByKey(ctx, key.Name, key.Website)
		}},
		{key.Name != "", func() (Record, error) {
			return lookup.FindByName(ctx, key.Name)
		}},
		{key.Website != "", func() (Record, error) {
			return lookup.FindByWebsite(ctx, key.Website)
		}},
	}

	for _, t := range tiers {
		if !t.enabled {
			continue
		}
		rec, err := t.find()
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return StagingMatch{}, fmt.Errorf("staging lookup: %w", err)
		}
		return StagingMatch{Found: true, OriginalOwner: rec.SubmittedBy, Record: rec}, nil
	}

	return StagingMatch{}, nil
}

// CheckMainRegistry looks key up in the snapshot using the same tiers as
// CheckInternalDuplicate. It returns nil when there is no match.
func CheckMainRegistry(snap *Snapshot, key normalize.Key) *RegistryEntry {
	entry, ok := snap.Lookup(key)
	if !ok {
		return nil
	}
	return entry
}

// Evaluate runs the full decision for one candidate: a staging duplicate
// always wins over any registry match, otherwise the registry hit (or its
// absence) is classified.
func Evaluate(ctx context.Context, lookup StagingLookup, snap *Snapshot, name, website string) (Decision, error) {
	key := normalize.KeyOf(name, website)

	match, err := CheckInternalDuplicate(ctx, lookup, key)
	if err != nil {
		return Decision{}, err
	}
	if match.Found {
		return Decision{
			Key:           key,
			Status:        StatusDuplicateUser,
			OriginalOwner: match.OriginalOwner,
		}, nil
	}

	entry := CheckMainRegistry(snap, key)
	return Decision{
		Key:           key,
		Status:        Classify(entry),
		RegistryMatch: entry,
	}, nil
}
