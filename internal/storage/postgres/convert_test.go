package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/CompanyPortal/internal/core"
	db "github.com/JonMunkholm/CompanyPortal/internal/database"
)

func TestParseID(t *testing.T) {
	const id = "0f8fad5b-d9cb-469f-a165-70867728950e"

	u, err := parseID(id)
	if err != nil {
		t.Fatalf("parseID() error = %v", err)
	}
	if got := uuidString(u); got != id {
		t.Errorf("uuidString(parseID(%q)) = %q", id, got)
	}

	if _, err := parseID("not-a-uuid"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("parseID(invalid) error = %v, want ErrNotFound", err)
	}
}

func TestUUIDString_Invalid(t *testing.T) {
	if got := uuidString(pgtype.UUID{}); got != "" {
		t.Errorf("uuidString(invalid) = %q, want empty", got)
	}
}

func TestFromRow(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id, _ := parseID("0f8fad5b-d9cb-469f-a165-70867728950e")

	rec := fromRow(db.StagingCompany{
		ID:             id,
		Name:           "Acme Inc",
		Website:        "acme.com",
		NormName:       "acme",
		NormWeb:        "acme.com",
		SubmittedBy:    "bob",
		Status:         "DUPLICATE_USER",
		DuplicateOwner: pgtype.Text{String: "alice", Valid: true},
		CreatedAt:      pgtype.Timestamptz{Time: created, Valid: true},
	})

	if rec.Status != core.StatusDuplicateUser {
		t.Errorf("Status = %q", rec.Status)
	}
	if rec.DuplicateOwner == nil || *rec.DuplicateOwner != "alice" {
		t.Errorf("DuplicateOwner = %v, want alice", rec.DuplicateOwner)
	}
	if !rec.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v", rec.CreatedAt)
	}

	rec = fromRow(db.StagingCompany{Status: "UNIQUE"})
	if rec.DuplicateOwner != nil {
		t.Error("NULL duplicate_owner should map to nil")
	}
}

func TestToPgText(t *testing.T) {
	if got := toPgText(nil); got.Valid {
		t.Errorf("toPgText(nil) = %+v, want NULL", got)
	}
	owner := "alice"
	if got := toPgText(&owner); !got.Valid || got.String != "alice" {
		t.Errorf("toPgText(&alice) = %+v", got)
	}
	if got := textOrNull(""); got.Valid {
		t.Error("textOrNull(\"\") should be NULL")
	}
}

func TestSingle(t *testing.T) {
	if _, err := single(db.StagingCompany{}, pgx.ErrNoRows, "k"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("single(ErrNoRows) = %v, want ErrNotFound", err)
	}
	boom := fmt.Errorf("connection reset")
	if _, err := single(db.StagingCompany{}, boom, "k"); !errors.Is(err, boom) {
		t.Errorf("single(boom) = %v, want wrapped boom", err)
	}
}

func TestAuditFromRow(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := auditFromRow(db.AuditLog{
		ID:           7,
		Action:       "purge",
		Severity:     "high",
		Actor:        pgtype.Text{String: "alice", Valid: true},
		RowsAffected: 3,
		CreatedAt:    pgtype.Timestamptz{Time: created, Valid: true},
	})
	if e.ID != 7 || e.Action != core.ActionPurge || e.Severity != core.SeverityHigh {
		t.Errorf("auditFromRow() = %+v", e)
	}
	if e.Actor != "alice" || e.IPAddress != "" || e.RowsAffected != 3 || !e.CreatedAt.Equal(created) {
		t.Errorf("auditFromRow() fields = %+v", e)
	}
}
