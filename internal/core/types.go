package core

import (
	"strings"
	"time"

	"github.com/JonMunkholm/CompanyPortal/internal/normalize"
)

// Status is the classification stored on every staging record.
type Status string

const (
	StatusDuplicateUser Status = "DUPLICATE_USER"
	StatusActiveN       Status = "DB_MATCH_ACTIVE_N"
	StatusInactiveN     Status = "DB_MATCH_INACTIVE_N"
	StatusActiveY       Status = "DB_MATCH_ACTIVE_Y"
	StatusInactiveY     Status = "DB_MATCH_INACTIVE_Y"
	StatusUnique        Status = "UNIQUE"

	// StatusUnknown is what ParseStatus returns for text that names no known
	// status. It is never assigned by the engine.
	StatusUnknown Status = ""
)

// knownStatuses lists every assignable status in display order.
var knownStatuses = []Status{
	StatusDuplicateUser,
	StatusActiveN,
	StatusInactiveN,
	StatusActiveY,
	StatusInactiveY,
	StatusUnique,
}

// KnownStatuses returns every status the engine can assign.
func KnownStatuses() []Status {
	out := make([]Status, len(knownStatuses))
	copy(out, knownStatuses)
	return out
}

// ParseStatus maps free text to a Status, ignoring case and surrounding
// whitespace. Unrecognized text yields StatusUnknown.
func ParseStatus(raw string) Status {
	s := strings.ToUpper(strings.TrimSpace(raw))
	for _, known := range knownStatuses {
		if string(known) == s {
			return known
		}
	}
	return StatusUnknown
}

// IsRegistryMatch reports whether s records a hit in the main registry.
func (s Status) IsRegistryMatch() bool {
	switch s {
	case StatusActiveN, StatusInactiveN, StatusActiveY, StatusInactiveY:
		return true
	}
	return false
}

// Record is one staged company submission.
type Record struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Website           string    `json:"website"`
	NormalizedName    string    `json:"normalizedName"`
	NormalizedWebsite string    `json:"normalizedWebsite"`
	SubmittedBy       string    `json:"submittedBy"`
	Status            Status    `json:"status"`
	DuplicateOwner    *string   `json:"duplicateOwner,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Key returns the stored normalized key of the record.
func (r Record) Key() normalize.Key {
	return normalize.Key{Name: r.NormalizedName, Website: r.NormalizedWebsite}
}

// Renormalize recomputes the normalized fields from the raw ones.
func (r *Record) Renormalize() {
	key := normalize.KeyOf(r.Name, r.Website)
	r.NormalizedName = key.Name
	r.NormalizedWebsite = key.Website
}

// SetStatus assigns a status and keeps DuplicateOwner consistent with it:
// the owner is only retained for StatusDuplicateUser.
func (r *Record) SetStatus(status Status, owner string) {
	r.Status = status
	if status == StatusDuplicateUser && owner != "" {
		r.DuplicateOwner = &owner
		return
	}
	r.DuplicateOwner = nil
}

// Identity is the authenticated caller of a service operation.
type Identity struct {
	Submitter string `json:"submitter"`
	Admin     bool   `json:"admin"`
}

// CanModify reports whether the identity may delete rec.
func (id Identity) CanModify(rec Record) bool {
	return id.Admin || rec.SubmittedBy == id.Submitter
}

// Candidate is a (name, website) pair proposed for staging, typically one
// row of a bulk file.
type Candidate struct {
	Line    int    `json:"line,omitempty"`
	Name    string `json:"name"`
	Website string `json:"website"`
}

// blank reports whether the candidate has no usable name or website.
// Spreadsheet exports write "nan" for missing cells.
func (c Candidate) blank() bool {
	name := strings.TrimSpace(c.Name)
	website := strings.TrimSpace(c.Website)
	if name == "" || website == "" {
		return true
	}
	return strings.EqualFold(name, "nan") || strings.EqualFold(website, "nan")
}

// Decision is the outcome of running a candidate through the duplicate engine.
// RegistryMatch stays server side: callers only ever see the derived Status.
type Decision struct {
	Key           normalize.Key  `json:"-"`
	Status        Status         `json:"status"`
	OriginalOwner string         `json:"originalOwner,omitempty"`
	RegistryMatch *RegistryEntry `json:"-"`
}

// IsDuplicate reports whether the candidate already exists in staging.
func (d Decision) IsDuplicate() bool {
	return d.Status == StatusDuplicateUser
}

// SubmitResult is returned from a single submission.
type SubmitResult struct {
	Decision
	Stored bool    `json:"stored"`
	Record *Record `json:"record,omitempty"`
}

// BulkRow is the preview of one bulk-file row.
type BulkRow struct {
	Candidate
	Skipped  bool     `json:"skipped,omitempty"`
	Decision Decision `json:"decision"`
}

// BulkResult summarizes a confirmed bulk submission.
type BulkResult struct {
	Total      int            `json:"total"`
	Inserted   int            `json:"inserted"`
	Duplicates int            `json:"duplicates"`
	Skipped    int            `json:"skipped"`
	ByStatus   map[Status]int `json:"byStatus"`
	BatchID    string         `json:"batchId"`
}

// PurgeResult summarizes a reconciliation pass.
type PurgeResult struct {
	Removed int    `json:"removed"`
	Updated int    `json:"updated"`
	BatchID string `json:"batchId"`
}
