package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/CompanyPortal/internal/core"
	db "github.com/JonMunkholm/CompanyPortal/internal/database"
)

// parseID converts a record ID to a UUID. Malformed IDs cannot exist in the
// table, so they report ErrNotFound.
func parseID(id string) (pgtype.UUID, error) {
	var u pgtype.UUID
	if err := u.Scan(id); err != nil {
		return u, fmt.Errorf("record %s: %w", id, core.ErrNotFound)
	}
	return u, nil
}

// uuidString formats a pgtype.UUID in canonical form.
func uuidString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	b := u.Bytes
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

func toPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func textOrNull(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func fromRow(row db.StagingCompany) core.Record {
	rec := core.Record{
		ID:                uuidString(row.ID),
		Name:              row.Name,
		Website:           row.Website,
		NormalizedName:    row.NormName,
		NormalizedWebsite: row.NormWeb,
		SubmittedBy:       row.SubmittedBy,
		Status:            core.ParseStatus(row.Status),
		CreatedAt:         row.CreatedAt.Time,
	}
	if row.DuplicateOwner.Valid {
		owner := row.DuplicateOwner.String
		rec.DuplicateOwner = &owner
	}
	return rec
}

func fromRows(rows []db.StagingCompany) []core.Record {
	out := make([]core.Record, len(rows))
	for i, r := range rows {
		out[i] = fromRow(r)
	}
	return out
}

// single converts a :one query result, mapping no rows to ErrNotFound.
func single(row db.StagingCompany, err error, key string) (core.Record, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Record{}, core.ErrNotFound
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("query staging company %s: %w", key, err)
	}
	return fromRow(row), nil
}

func auditFromRow(r db.AuditLog) core.AuditEvent {
	return core.AuditEvent{
		ID:           r.ID,
		Action:       core.AuditAction(r.Action),
		Severity:     core.AuditSeverity(r.Severity),
		Actor:        r.Actor.String,
		IPAddress:    r.IpAddress.String,
		UserAgent:    r.UserAgent.String,
		RecordID:     r.RecordID.String,
		RowsAffected: int(r.RowsAffected),
		BatchID:      r.BatchID.String,
		Detail:       r.Detail.String,
		CreatedAt:    r.CreatedAt.Time,
	}
}
