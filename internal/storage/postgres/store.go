// Package postgres implements the portal's stores on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/CompanyPortal/internal/core"
	db "github.com/JonMunkholm/CompanyPortal/internal/database"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Store implements core.Store, core.UserStore and core.AuditSink.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a store backed by pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) queries() *db.Queries {
	return db.New(s.pool)
}

// Insert stores rec and returns it with the database-assigned ID and time.
func (s *Store) Insert(ctx context.Context, rec core.Record) (core.Record, error) {
	row, err := s.queries().InsertStagingCompany(ctx, db.InsertStagingCompanyParams{
		Name:           rec.Name,
		Website:        rec.Website,
		NormName:       rec.NormalizedName,
		NormWeb:        rec.NormalizedWebsite,
		SubmittedBy:    rec.SubmittedBy,
		Status:         string(rec.Status),
		DuplicateOwner: toPgText(rec.DuplicateOwner),
	})
	if err != nil {
		return core.Record{}, fmt.Errorf("insert staging company: %w", err)
	}
	return fromRow(row), nil
}

// Get returns the record with id.
func (s *Store) Get(ctx context.Context, id string) (core.Record, error) {
	uid, err := parseID(id)
	if err != nil {
		return core.Record{}, err
	}
	row, err := s.queries().GetStagingCompany(ctx, uid)
	return single(row, err, id)
}

// FindByKey returns the earliest record with both normalized fields equal.
func (s *Store) FindByKey(ctx context.Context, name, website string) (core.Record, error) {
	row, err := s.queries().FindStagingByPair(ctx, db.FindStagingByPairParams{NormName: name, NormWeb: website})
	return single(row, err, name+"|"+website)
}

// FindByName returns the earliest record with the normalized name.
func (s *Store) FindByName(ctx context.Context, name string) (core.Record, error) {
	row, err := s.queries().FindStagingByName(ctx, name)
	return single(row, err, name)
}

// FindByWebsite returns the earliest record with the normalized website.
func (s *Store) FindByWebsite(ctx context.Context, website string) (core.Record, error) {
	row, err := s.queries().FindStagingByWebsite(ctx, website)
	return single(row, err, website)
}

// Delete removes the record with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	n, err := s.queries().DeleteStagingCompany(ctx, uid)
	if err != nil {
		return fmt.Errorf("delete staging company: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// ListAll returns every record in stored order.
func (s *Store) ListAll(ctx context.Context) ([]core.Record, error) {
	rows, err := s.queries().ListStagingCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list staging companies: %w", err)
	}
	return fromRows(rows), nil
}

// ListBySubmitter returns the submitter's records in stored order.
func (s *Store) ListBySubmitter(ctx context.Context, submitter string) ([]core.Record, error) {
	rows, err := s.queries().ListStagingCompaniesBySubmitter(ctx, submitter)
	if err != nil {
		return nil, fmt.Errorf("list staging companies for %s: %w", submitter, err)
	}
	return fromRows(rows), nil
}

// ApplyBatch runs every update and delete in one transaction. Any failure,
// including an ID that no longer exists, rolls the whole batch back.
func (s *Store) ApplyBatch(ctx context.Context, batch core.Batch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q := db.New(s.pool).WithTx(tx)

	for _, rec := range batch.Updates {
		uid, err := parseID(rec.ID)
		if err != nil {
			return err
		}
		n, err := q.UpdateStagingClassification(ctx, db.UpdateStagingClassificationParams{
			ID:             uid,
			NormName:       rec.NormalizedName,
			NormWeb:        rec.NormalizedWebsite,
			Status:         string(rec.Status),
			DuplicateOwner: toPgText(rec.DuplicateOwner),
		})
		if err != nil {
			return fmt.Errorf("update %s: %w", rec.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("update %s: %w", rec.ID, core.ErrNotFound)
		}
	}

	for _, id := range batch.Deletes {
		uid, err := parseID(id)
		if err != nil {
			return err
		}
		n, err := q.DeleteStagingCompany(ctx, uid)
		if err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("delete %s: %w", id, core.ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CreateUser stores a new account.
func (s *Store) CreateUser(ctx context.Context, u core.User) error {
	err := s.queries().CreatePortalUser(ctx, db.CreatePortalUserParams{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		IsActive:     u.Active,
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return core.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("insert portal user: %w", err)
	}
	return nil
}

// GetUser returns the account for username.
func (s *Store) GetUser(ctx context.Context, username string) (core.User, error) {
	row, err := s.queries().GetPortalUser(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %s: %w", username, core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get portal user: %w", err)
	}
	return core.User{
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		Role:         core.Role(row.Role),
		Active:       row.IsActive,
		CreatedAt:    row.CreatedAt.Time,
	}, nil
}

// SetUserActive enables or disables an account.
func (s *Store) SetUserActive(ctx context.Context, username string, active bool) error {
	n, err := s.queries().SetPortalUserActive(ctx, db.SetPortalUserActiveParams{Username: username, IsActive: active})
	if err != nil {
		return fmt.Errorf("update portal user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", username, core.ErrNotFound)
	}
	return nil
}

// InsertAudit writes an audit event.
func (s *Store) InsertAudit(ctx context.Context, e core.AuditEvent) error {
	return s.queries().InsertAuditLog(ctx, db.InsertAuditLogParams{
		Action:       string(e.Action),
		Severity:     string(e.Severity),
		Actor:        textOrNull(e.Actor),
		IpAddress:    textOrNull(e.IPAddress),
		UserAgent:    textOrNull(e.UserAgent),
		RecordID:     textOrNull(e.RecordID),
		RowsAffected: int32(e.RowsAffected),
		BatchID:      textOrNull(e.BatchID),
		Detail:       textOrNull(e.Detail),
		CreatedAt:    pgtype.Timestamptz{Time: e.CreatedAt, Valid: !e.CreatedAt.IsZero()},
	})
}

// ListAudit returns matching audit events, newest first.
func (s *Store) ListAudit(ctx context.Context, opts core.AuditLogOptions) ([]core.AuditEvent, error) {
	rows, err := s.queries().ListAuditLog(ctx, db.ListAuditLogParams{
		Action:   string(opts.Action),
		Actor:    opts.Actor,
		Since:    pgtype.Timestamptz{Time: opts.Since, Valid: true},
		RowLimit: int32(opts.Limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	out := make([]core.AuditEvent, len(rows))
	for i, r := range rows {
		out[i] = auditFromRow(r)
	}
	return out, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
