// Package memory implements the portal's stores in process memory. It backs
// the test suites and local runs without PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/CompanyPortal/internal/core"
)

// Store keeps staging records in stored order, plus users and audit events.
// It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	records   []core.Record
	users     map[string]core.User
	audit     []core.AuditEvent
	applyErr  error
	insertOK  int
	insertErr error
	now       func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users: make(map[string]core.User),
		now:   time.Now,
	}
}

// FailNextApply makes the next ApplyBatch return err without applying
// anything.
func (s *Store) FailNextApply(err error) {
	s.mu.Lock()
	s.applyErr = err
	s.mu.Unlock()
}

// FailInsertAfter lets n more inserts succeed, then makes every Insert
// return err until it is called again with a nil err.
func (s *Store) FailInsertAfter(n int, err error) {
	s.mu.Lock()
	s.insertOK = n
	s.insertErr = err
	s.mu.Unlock()
}

func clone(r core.Record) core.Record {
	if r.DuplicateOwner != nil {
		owner := *r.DuplicateOwner
		r.DuplicateOwner = &owner
	}
	return r
}

func notFound(id string) error {
	return fmt.Errorf("record %s: %w", id, core.ErrNotFound)
}

// Insert stores rec with a new ID and creation time.
func (s *Store) Insert(_ context.Context, rec core.Record) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertErr != nil {
		if s.insertOK <= 0 {
			return core.Record{}, s.insertErr
		}
		s.insertOK--
	}

	rec = clone(rec)
	rec.ID = uuid.NewString()
	rec.CreatedAt = s.now().UTC()
	s.records = append(s.records, rec)
	return clone(rec), nil
}

func (s *Store) find(match func(core.Record) bool) (core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if match(r) {
			return clone(r), nil
		}
	}
	return core.Record{}, core.ErrNotFound
}

// FindByKey returns the earliest record with both normalized fields equal.
func (s *Store) FindByKey(_ context.Context, name, website string) (core.Record, error) {
	return s.find(func(r core.Record) bool {
		return r.NormalizedName == name && r.NormalizedWebsite == website
	})
}

// FindByName returns the earliest record with the normalized name.
func (s *Store) FindByName(_ context.Context, name string) (core.Record, error) {
	return s.find(func(r core.Record) bool { return r.NormalizedName == name })
}

// FindByWebsite returns the earliest record with the normalized website.
func (s *Store) FindByWebsite(_ context.Context, website string) (core.Record, error) {
	return s.find(func(r core.Record) bool { return r.NormalizedWebsite == website })
}

// Get returns the record with id.
func (s *Store) Get(_ context.Context, id string) (core.Record, error) {
	rec, err := s.find(func(r core.Record) bool { return r.ID == id })
	if err != nil {
		return core.Record{}, notFound(id)
	}
	return rec, nil
}

// Delete removes the record with id.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return notFound(id)
}

// ListAll returns every record in stored order.
func (s *Store) ListAll(_ context.Context) ([]core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, clone(r))
	}
	return out, nil
}

// ListBySubmitter returns the submitter's records in stored order.
func (s *Store) ListBySubmitter(_ context.Context, submitter string) ([]core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Record
	for _, r := range s.records {
		if r.SubmittedBy == submitter {
			out = append(out, clone(r))
		}
	}
	return out, nil
}

// ApplyBatch validates every referenced ID before changing anything, so a
// batch either applies completely or not at all.
func (s *Store) ApplyBatch(_ context.Context, batch core.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyErr; err != nil {
		s.applyErr = nil
		return err
	}

	pos := make(map[string]int, len(s.records))
	for i, r := range s.records {
		pos[r.ID] = i
	}

	updates := make(map[string]core.Record, len(batch.Updates))
	for _, u := range batch.Updates {
		if _, ok := pos[u.ID]; !ok {
			return notFound(u.ID)
		}
		updates[u.ID] = clone(u)
	}
	deletes := make(map[string]bool, len(batch.Deletes))
	for _, id := range batch.Deletes {
		if _, ok := pos[id]; !ok {
			return notFound(id)
		}
		deletes[id] = true
	}

	next := make([]core.Record, 0, len(s.records)-len(deletes))
	for _, r := range s.records {
		if deletes[r.ID] {
			continue
		}
		if u, ok := updates[r.ID]; ok {
			u.CreatedAt = r.CreatedAt
			u.SubmittedBy = r.SubmittedBy
			r = u
		}
		next = append(next, r)
	}
	s.records = next
	return nil
}

// CreateUser stores a new account.
func (s *Store) CreateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Username]; ok {
		return core.ErrUserExists
	}
	u.CreatedAt = s.now().UTC()
	s.users[u.Username] = u
	return nil
}

// GetUser returns the account for username.
func (s *Store) GetUser(_ context.Context, username string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return core.User{}, fmt.Errorf("user %s: %w", username, core.ErrNotFound)
	}
	return u, nil
}

// SetUserActive enables or disables an account.
func (s *Store) SetUserActive(_ context.Context, username string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return fmt.Errorf("user %s: %w", username, core.ErrNotFound)
	}
	u.Active = active
	s.users[username] = u
	return nil
}

// InsertAudit appends an audit event and assigns it the next ID.
func (s *Store) InsertAudit(_ context.Context, e core.AuditEvent) error {
	s.mu.Lock()
	e.ID = int64(len(s.audit) + 1)
	s.audit = append(s.audit, e)
	s.mu.Unlock()
	return nil
}

// ListAudit returns matching audit events, newest first.
func (s *Store) ListAudit(_ context.Context, opts core.AuditLogOptions) ([]core.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []core.AuditEvent{}
	for i := len(s.audit) - 1; i >= 0; i-- {
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
		if opts.Matches(s.audit[i]) {
			out = append(out, s.audit[i])
		}
	}
	return out, nil
}

// AuditEvents returns the recorded audit events, oldest first.
func (s *Store) AuditEvents() []core.AuditEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.AuditEvent, len(s.audit))
	copy(out, s.audit)
	return out
}
