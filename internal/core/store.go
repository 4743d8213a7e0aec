package core

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a record or user does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden is returned when a caller acts on another submitter's record.
	ErrForbidden = errors.New("forbidden: record belongs to another submitter")

	// ErrEmptyInput is returned when a name or website is empty after trimming.
	ErrEmptyInput = errors.New("required field: company name and website must not be empty")
)

// StagingLookup is the read side of the staging store used by the duplicate
// engine. Each method matches on stored normalized values exactly, across all
// submitters, and returns ErrNotFound when nothing matches. When several
// records match, the earliest stored one is returned.
type StagingLookup interface {
	FindByKey(ctx context.Context, name, website string) (Record, error)
	FindByName(ctx context.Context, name string) (Record, error)
	FindByWebsite(ctx context.Context, website string) (Record, error)
}

// Batch is a set of record changes applied all-or-nothing.
type Batch struct {
	Updates []Record
	Deletes []string
}

// Empty reports whether the batch has nothing to apply.
func (b Batch) Empty() bool {
	return len(b.Updates) == 0 && len(b.Deletes) == 0
}

// Store persists staging records. List methods return records in stored
// order, oldest first.
type Store interface {
	StagingLookup

	// Insert stores rec and returns it with ID and CreatedAt assigned.
	Insert(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]Record, error)
	ListBySubmitter(ctx context.Context, submitter string) ([]Record, error)

	// ApplyBatch applies every update and delete or none of them.
	ApplyBatch(ctx context.Context, batch Batch) error
}

// UserStore persists portal accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, username string) (User, error)
	SetUserActive(ctx context.Context, username string, active bool) error
}

// AuditSink records audit events.
type AuditSink interface {
	InsertAudit(ctx context.Context, e AuditEvent) error
}

// AuditReader lists recorded audit events, newest first.
type AuditReader interface {
	ListAudit(ctx context.Context, opts AuditLogOptions) ([]AuditEvent, error)
}
