package core

import (
	"context"
	"strings"
)

// RegistryEntry is one company row from the main registry. Status and
// Deleted are kept as the free text the registry stores.
type RegistryEntry struct {
	Name    string `json:"name"`
	Website string `json:"website"`
	Status  string `json:"status"`
	Deleted string `json:"deleted"`
}

// RegistrySource reads the full main registry.
type RegistrySource interface {
	FetchAll(ctx context.Context) ([]RegistryEntry, error)
}

// RegistrySourceFunc adapts a function to RegistrySource.
type RegistrySourceFunc func(ctx context.Context) ([]RegistryEntry, error)

// FetchAll calls f.
func (f RegistrySourceFunc) FetchAll(ctx context.Context) ([]RegistryEntry, error) {
	return f(ctx)
}

// RegistryState is the parsed lifecycle status of a registry entry.
type RegistryState int

const (
	RegistryUnrecognized RegistryState = iota
	RegistryActive
	RegistryInactive
)

// ParseRegistryState parses the registry's status text case-insensitively.
func ParseRegistryState(raw string) RegistryState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active":
		return RegistryActive
	case "inactive":
		return RegistryInactive
	default:
		return RegistryUnrecognized
	}
}

// DeletedFlag is the parsed soft-delete marker of a registry entry.
type DeletedFlag int

const (
	DeletedUnrecognized DeletedFlag = iota
	DeletedNo
	DeletedYes
)

// ParseDeletedFlag parses "y"/"n" case-insensitively. An absent value is "n".
func ParseDeletedFlag(raw string) DeletedFlag {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "n":
		return DeletedNo
	case "y":
		return DeletedYes
	default:
		return DeletedUnrecognized
	}
}

// Classify maps a registry hit to a staging status. A nil entry means the
// company is not in the registry and is UNIQUE. Any combination outside the
// three named ones falls through to DB_MATCH_INACTIVE_Y.
func Classify(entry *RegistryEntry) Status {
	if entry == nil {
		return StatusUnique
	}

	state := ParseRegistryState(entry.Status)
	deleted := ParseDeletedFlag(entry.Deleted)

	switch {
	case state == RegistryActive && deleted == DeletedNo:
		return StatusActiveN
	case state == RegistryInactive && deleted == DeletedNo:
		return StatusInactiveN
	case state == RegistryActive && deleted == DeletedYes:
		return StatusActiveY
	default:
		return StatusInactiveY
	}
}
