package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/JonMunkholm/CompanyPortal/internal/logging"
	"github.com/JonMunkholm/CompanyPortal/internal/normalize"
)

// Options tunes service behavior.
type Options struct {
	// RejectDuplicates reports staging duplicates without storing them.
	// When false they are stored as DUPLICATE_USER with their owner.
	RejectDuplicates bool

	MaxConcurrentBulk int
	BulkWait          time.Duration
	BcryptCost        int
}

// Service is the entry point for every staging operation.
type Service struct {
	store   Store
	users   UserStore
	audit   AuditSink
	opts    Options
	limiter *UploadLimiter
	now     func() time.Time
}

// NewService wires a service. audit may be nil.
func NewService(store Store, users UserStore, audit AuditSink, opts Options) *Service {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		store:   store,
		users:   users,
		audit:   audit,
		opts:    opts,
		limiter: NewUploadLimiter(opts.MaxConcurrentBulk, opts.BulkWait),
		now:     time.Now,
	}
}

// Limiter returns the limiter guarding bulk confirmations.
func (s *Service) Limiter() *UploadLimiter {
	return s.limiter
}

// Submit stages a single company for the caller.
func (s *Service) Submit(ctx context.Context, id Identity, snap *Snapshot, name, website string) (SubmitResult, error) {
	c := Candidate{Name: strings.TrimSpace(name), Website: strings.TrimSpace(website)}
	if c.blank() {
		return SubmitResult{}, ErrEmptyInput
	}

	res, err := s.stage(ctx, id.Submitter, snap, c)
	if err != nil {
		return SubmitResult{}, err
	}

	logging.FromContext(ctx).Info("company submitted",
		"status", res.Status,
		"stored", res.Stored,
	)
	if res.Stored {
		s.logAudit(ctx, AuditEvent{
			Action:       ActionSubmit,
			Actor:        id.Submitter,
			RecordID:     res.Record.ID,
			RowsAffected: 1,
			Detail:       string(res.Status),
		})
	}
	return res, nil
}

// stage evaluates c and, unless it is a rejected duplicate, inserts it.
func (s *Service) stage(ctx context.Context, submitter string, snap *Snapshot, c Candidate) (SubmitResult, error) {
	dec, err := Evaluate(ctx, s.store, snap, c.Name, c.Website)
	if err != nil {
		return SubmitResult{}, err
	}
	if dec.IsDuplicate() && s.opts.RejectDuplicates {
		return SubmitResult{Decision: dec}, nil
	}

	rec := Record{
		Name:              c.Name,
		Website:           c.Website,
		NormalizedName:    dec.Key.Name,
		NormalizedWebsite: dec.Key.Website,
		SubmittedBy:       submitter,
	}
	rec.SetStatus(dec.Status, dec.OriginalOwner)

	stored, err := s.store.Insert(ctx, rec)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("insert record: %w", err)
	}
	return SubmitResult{Decision: dec, Stored: true, Record: &stored}, nil
}

// AnalyzeBulk previews the status every row would receive without writing
// anything. A row that repeats an earlier row of the same file is reported as
// a duplicate owned by the caller, since confirming would stage it second.
func (s *Service) AnalyzeBulk(ctx context.Context, id Identity, snap *Snapshot, rows []Candidate) ([]BulkRow, error) {
	seen := newFileIndex(id.Submitter)
	out := make([]BulkRow, 0, len(rows))

	for _, c := range rows {
		c.Name = strings.TrimSpace(c.Name)
		c.Website = strings.TrimSpace(c.Website)
		if c.blank() {
			out = append(out, BulkRow{Candidate: c, Skipped: true})
			continue
		}

		key := normalize.KeyOf(c.Name, c.Website)
		inFile, err := CheckInternalDuplicate(ctx, seen, key)
		if err != nil {
			return nil, err
		}

		var dec Decision
		if inFile.Found {
			dec = Decision{Key: key, Status: StatusDuplicateUser, OriginalOwner: id.Submitter}
		} else {
			dec, err = Evaluate(ctx, s.store, snap, c.Name, c.Website)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", c.Line, err)
			}
		}
		seen.add(key)
		out = append(out, BulkRow{Candidate: c, Decision: dec})
	}

	return out, nil
}

// ConfirmBulk stages rows one at a time through the same path as Submit, so
// later rows see earlier ones. Only a limited number of confirmations run at
// once; callers beyond that wait and then get ErrTooManyUploads.
func (s *Service) ConfirmBulk(ctx context.Context, id Identity, snap *Snapshot, rows []Candidate) (BulkResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return BulkResult{}, err
	}
	defer s.limiter.Release()

	result := BulkResult{
		Total:    len(rows),
		ByStatus: make(map[Status]int),
		BatchID:  uuid.NewString(),
	}
	logger := logging.WithFields(ctx, "batch_id", result.BatchID)

	for _, c := range rows {
		c.Name = strings.TrimSpace(c.Name)
		c.Website = strings.TrimSpace(c.Website)
		if c.blank() {
			result.Skipped++
			continue
		}

		res, err := s.stage(ctx, id.Submitter, snap, c)
		if err != nil {
			logger.Error("bulk confirm aborted", "line", c.Line, "inserted", result.Inserted, "error", err)
			if result.Inserted > 0 {
				s.logAudit(ctx, AuditEvent{
					Action:       ActionBulkConfirm,
					Actor:        id.Submitter,
					RowsAffected: result.Inserted,
					BatchID:      result.BatchID,
					Detail:       fmt.Sprintf("aborted at line %d", c.Line),
				})
			}
			return result, fmt.Errorf("line %d: %w", c.Line, err)
		}
		if res.IsDuplicate() {
			result.Duplicates++
		}
		if res.Stored {
			result.Inserted++
			result.ByStatus[res.Status]++
		}
	}

	logger.Info("bulk confirm completed",
		"total", result.Total,
		"inserted", result.Inserted,
		"duplicates", result.Duplicates,
		"skipped", result.Skipped,
	)
	s.logAudit(ctx, AuditEvent{
		Action:       ActionBulkConfirm,
		Actor:        id.Submitter,
		RowsAffected: result.Inserted,
		BatchID:      result.BatchID,
	})
	return result, nil
}

// List returns every record for admins and the caller's own records otherwise.
func (s *Service) List(ctx context.Context, id Identity) ([]Record, error) {
	if id.Admin {
		return s.store.ListAll(ctx)
	}
	return s.store.ListBySubmitter(ctx, id.Submitter)
}

// Delete removes a record. Non-admins may only delete their own.
func (s *Service) Delete(ctx context.Context, id Identity, recordID string) error {
	rec, err := s.store.Get(ctx, recordID)
	if err != nil {
		return err
	}
	if !id.CanModify(rec) {
		return ErrForbidden
	}
	if err := s.store.Delete(ctx, recordID); err != nil {
		return fmt.Errorf("delete record %s: %w", recordID, err)
	}

	s.logAudit(ctx, AuditEvent{
		Action:       ActionRecordDelete,
		Actor:        id.Submitter,
		RecordID:     recordID,
		RowsAffected: 1,
		Detail:       fmt.Sprintf("owner=%s name=%s", rec.SubmittedBy, rec.Name),
	})
	return nil
}

// StatusSummary counts records per submitter and status.
func (s *Service) StatusSummary(ctx context.Context) (map[string]map[Status]int, error) {
	recs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[Status]int)
	for _, r := range recs {
		counts, ok := out[r.SubmittedBy]
		if !ok {
			counts = make(map[Status]int)
			out[r.SubmittedBy] = counts
		}
		counts[r.Status]++
	}
	return out, nil
}

// UploadCounts counts records per submitter.
func (s *Service) UploadCounts(ctx context.Context) (map[string]int, error) {
	recs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int)
	for _, r := range recs {
		out[r.SubmittedBy]++
	}
	return out, nil
}

// ExportGroup is the set of records exported under one status.
type ExportGroup struct {
	Status    Status
	SheetName string
	Records   []Record
}

// exportSheets fixes the export order and sheet names.
var exportSheets = []struct {
	status Status
	sheet  string
}{
	{StatusUnique, "Approved"},
	{StatusActiveN, "Active_N"},
	{StatusInactiveN, "Inactive_N"},
	{StatusActiveY, "Active_Y"},
	{StatusInactiveY, "Inactive_Y"},
}

// ExportableStatuses returns the statuses ExportGroups accepts, in export order.
func ExportableStatuses() []Status {
	out := make([]Status, len(exportSheets))
	for i, e := range exportSheets {
		out[i] = e.status
	}
	return out
}

// ExportGroups returns the records of each requested status. An empty
// request means every exportable status. DUPLICATE_USER and unknown statuses
// are ignored, and groups without records are omitted.
func (s *Service) ExportGroups(ctx context.Context, statuses []Status) ([]ExportGroup, error) {
	want := make(map[Status]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}

	recs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byStatus := make(map[Status][]Record)
	for _, r := range recs {
		byStatus[r.Status] = append(byStatus[r.Status], r)
	}

	var groups []ExportGroup
	for _, e := range exportSheets {
		if len(want) > 0 && !want[e.status] {
			continue
		}
		if len(byStatus[e.status]) == 0 {
			continue
		}
		groups = append(groups, ExportGroup{
			Status:    e.status,
			SheetName: e.sheet,
			Records:   byStatus[e.status],
		})
	}

	exported := 0
	sheets := make([]string, 0, len(groups))
	for _, g := range groups {
		exported += len(g.Records)
		sheets = append(sheets, g.SheetName)
	}
	s.logAudit(ctx, AuditEvent{
		Action:       ActionExport,
		RowsAffected: exported,
		Detail:       "sheets=" + strings.Join(sheets, ","),
	})
	return groups, nil
}

// fileIndex is a StagingLookup over the keys already seen in one bulk file.
type fileIndex struct {
	submitter string
	pairs     map[normalize.Key]bool
	names     map[string]bool
	websites  map[string]bool
}

func newFileIndex(submitter string) *fileIndex {
	return &fileIndex{
		submitter: submitter,
		pairs:     make(map[normalize.Key]bool),
		names:     make(map[string]bool),
		websites:  make(map[string]bool),
	}
}

func (f *fileIndex) add(key normalize.Key) {
	f.pairs[key] = true
	f.names[key.Name] = true
	f.websites[key.Website] = true
}

func (f *fileIndex) hit(ok bool) (Record, error) {
	if !ok {
		return Record{}, ErrNotFound
	}
	return Record{SubmittedBy: f.submitter}, nil
}

func (f *fileIndex) FindByKey(_ context.Context, name, website string) (Record, error) {
	return f.hit(f.pairs[normalize.Key{Name: name, Website: website}])
}

func (f *fileIndex) FindByName(_ context.Context, name string) (Record, error) {
	return f.hit(f.names[name])
}

func (f *fileIndex) FindByWebsite(_ context.Context, website string) (Record, error) {
	return f.hit(f.websites[website])
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
