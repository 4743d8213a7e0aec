// Package core holds the staging rules of the company portal: the duplicate
// engine, the main-registry snapshot, reconciliation of a submitter's
// records, and the Service that web handlers call.
//
// # Decision flow
//
// Every candidate (name, website) is normalized with package normalize and
// then checked in two steps:
//
//  1. [CheckInternalDuplicate] searches staging across all submitters. Any
//     hit makes the candidate DUPLICATE_USER, regardless of the registry.
//  2. Otherwise [CheckMainRegistry] searches the session's [Snapshot] and
//     [Classify] turns the hit, or its absence, into one of the DB_MATCH_*
//     statuses or UNIQUE.
//
// Both steps try three tiers in order: both fields, name only, website only.
//
// # Snapshots
//
// A [Snapshot] is immutable. [SnapshotCache] hands each session the same
// snapshot until it expires or the caller asks for a refresh. A registry
// outage yields an empty snapshot, never an error.
//
// # Errors
//
// Technical errors are mapped to user-facing messages with codes by
// [MapError]: DB, VAL, FILE, UPL, AUTH, REC and RATE groups, with ERR000 as
// the fallback.
package core
