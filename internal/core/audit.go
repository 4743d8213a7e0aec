package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/CompanyPortal/internal/logging"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionSubmit       AuditAction = "submit"
	ActionBulkConfirm  AuditAction = "bulk_confirm"
	ActionRecordDelete AuditAction = "record_delete"
	ActionPurge        AuditAction = "purge"
	ActionExport       AuditAction = "export"
	ActionUserCreate   AuditAction = "user_create"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// AuditEvent is a single audit log entry.
type AuditEvent struct {
	ID           int64         `json:"id,omitempty"`
	Action       AuditAction   `json:"action"`
	Severity     AuditSeverity `json:"severity"`
	Actor        string        `json:"actor,omitempty"`
	IPAddress    string        `json:"ipAddress,omitempty"`
	UserAgent    string        `json:"userAgent,omitempty"`
	RecordID     string        `json:"recordId,omitempty"`
	RowsAffected int           `json:"rowsAffected,omitempty"`
	BatchID      string        `json:"batchId,omitempty"`
	Detail       string        `json:"detail,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Audit log query limits.
const (
	DefaultAuditLimit = 100
	MaxAuditLimit     = 1000
)

// AuditLogOptions filters an audit log query. Zero values match everything.
type AuditLogOptions struct {
	Action AuditAction
	Actor  string
	Since  time.Time
	Limit  int
}

// Matches reports whether e passes the filter, ignoring Limit.
func (o AuditLogOptions) Matches(e AuditEvent) bool {
	if o.Action != "" && e.Action != o.Action {
		return false
	}
	if o.Actor != "" && e.Actor != o.Actor {
		return false
	}
	return o.Since.IsZero() || !e.CreatedAt.Before(o.Since)
}

func (o AuditLogOptions) normalized() AuditLogOptions {
	switch {
	case o.Limit <= 0:
		o.Limit = DefaultAuditLimit
	case o.Limit > MaxAuditLimit:
		o.Limit = MaxAuditLimit
	}
	return o
}

// AuditLog returns recent audit events, newest first. It returns an empty
// list when the audit sink cannot be queried.
func (s *Service) AuditLog(ctx context.Context, opts AuditLogOptions) ([]AuditEvent, error) {
	reader, ok := s.audit.(AuditReader)
	if !ok {
		return []AuditEvent{}, nil
	}
	events, err := reader.ListAudit(ctx, opts.normalized())
	if err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	return events, nil
}

func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionBulkConfirm, ActionRecordDelete, ActionPurge:
		return SeverityHigh
	case ActionSubmit:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// logAudit fills the request metadata and hands the event to the sink.
// Audit failures are logged and never fail the operation being audited.
func (s *Service) logAudit(ctx context.Context, e AuditEvent) {
	if s.audit == nil {
		return
	}

	e.Severity = determineSeverity(e.Action)
	if e.Actor == "" {
		if id, ok := IdentityFromContext(ctx); ok {
			e.Actor = id.Submitter
		}
	}
	e.IPAddress = GetIPAddressFromContext(ctx)
	e.UserAgent = GetUserAgentFromContext(ctx)
	e.CreatedAt = s.now()

	if err := s.audit.InsertAudit(ctx, e); err != nil {
		logging.FromContext(ctx).Warn("failed to write audit entry",
			"action", e.Action,
			"error", err,
		)
	}
}
