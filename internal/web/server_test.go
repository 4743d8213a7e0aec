package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/JonMunkholm/CompanyPortal/internal/config"
	"github.com/JonMunkholm/CompanyPortal/internal/core"
	"github.com/JonMunkholm/CompanyPortal/internal/storage/memory"
)

type testEnv struct {
	srv   *Server
	store *memory.Store
	svc   *core.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	svc := core.NewService(store, store, store, core.Options{
		MaxConcurrentBulk: 1,
		BulkWait:          10 * time.Millisecond,
		BcryptCost:        bcrypt.MinCost,
	})
	registry := core.RegistrySourceFunc(func(context.Context) ([]core.RegistryEntry, error) {
		return []core.RegistryEntry{
			{Name: "Acme", Website: "acme.com", Status: "Active", Deleted: "n"},
		}, nil
	})
	cfg := &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Upload: config.UploadConfig{MaxFileSize: 1 << 20},
	}

	ctx := context.Background()
	for _, u := range []struct {
		name string
		role core.Role
	}{{"alice", core.RoleUser}, {"bob", core.RoleUser}, {"root", core.RoleAdmin}} {
		if err := svc.CreateUser(ctx, u.name, u.name+"-pw", u.role); err != nil {
			t.Fatalf("CreateUser(%s) error = %v", u.name, err)
		}
	}

	srv := NewServer(svc, core.NewSnapshotCache(registry, time.Minute), cfg)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return &testEnv{srv: srv, store: store, svc: svc}
}

func (e *testEnv) do(t *testing.T, user, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if user != "" {
		req.SetBasicAuth(user, user+"-pw")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) submit(t *testing.T, user, name, website string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(submitRequest{Name: name, Website: website})
	return e.do(t, user, http.MethodPost, "/api/companies", body, "application/json")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func multipartFile(t *testing.T, name string, content []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()
	return buf.Bytes(), mw.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, "", http.MethodGet, "/healthz", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  func() *http.Request
		want int
	}{
		{"no credentials", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/companies", nil)
		}, http.StatusUnauthorized},
		{"wrong password", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
			r.SetBasicAuth("alice", "nope")
			return r
		}, http.StatusUnauthorized},
		{"unknown user", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
			r.SetBasicAuth("mallory", "x")
			return r
		}, http.StatusUnauthorized},
		{"valid", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
			r.SetBasicAuth("alice", "alice-pw")
			return r
		}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.srv.Router().ServeHTTP(rec, tt.req())
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 without WWW-Authenticate challenge")
			}
		})
	}
}

func TestAuth_DisabledUser(t *testing.T) {
	env := newTestEnv(t)
	if err := env.svc.SetUserActive(context.Background(), "bob", false); err != nil {
		t.Fatal(err)
	}
	if rec := env.do(t, "bob", http.MethodGet, "/api/companies", nil, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("disabled user status = %d, want 401", rec.Code)
	}
}

func TestSubmit(t *testing.T) {
	env := newTestEnv(t)

	rec := env.submit(t, "alice", "Acme Inc.", "https://www.acme.com/")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	res := decode[core.SubmitResult](t, rec)
	if res.Status != core.StatusActiveN {
		t.Errorf("status = %s, want %s", res.Status, core.StatusActiveN)
	}
	if res.Record == nil || res.Record.SubmittedBy != "alice" {
		t.Errorf("record = %+v, want submitted by alice", res.Record)
	}

	rec = env.submit(t, "bob", "ACME", "acme.com")
	res = decode[core.SubmitResult](t, rec)
	if res.Status != core.StatusDuplicateUser || res.OriginalOwner != "alice" {
		t.Errorf("second submit = %s owner %q, want DUPLICATE_USER owned by alice", res.Status, res.OriginalOwner)
	}
}

func TestSubmit_BadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"empty fields", `{"name":"  ","website":""}`, "VAL003"},
		{"malformed json", `{"name":`, "VAL001"},
		{"unknown field", `{"name":"a","website":"b","extra":1}`, "VAL001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, "alice", http.MethodPost, "/api/companies", []byte(tt.body), "application/json")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := decode[ErrorResponse](t, rec); got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestListAndDeleteScope(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, "alice", "Alpha", "alpha.io")
	env.submit(t, "bob", "Bravo", "bravo.io")

	type listResponse struct {
		Count   int           `json:"count"`
		Records []core.Record `json:"records"`
	}

	alice := decode[listResponse](t, env.do(t, "alice", http.MethodGet, "/api/companies", nil, ""))
	if alice.Count != 1 || alice.Records[0].Name != "Alpha" {
		t.Fatalf("alice sees %+v, want only Alpha", alice.Records)
	}
	all := decode[listResponse](t, env.do(t, "root", http.MethodGet, "/api/companies", nil, ""))
	if all.Count != 2 {
		t.Fatalf("admin sees %d records, want 2", all.Count)
	}

	var bobID string
	for _, r := range all.Records {
		if r.SubmittedBy == "bob" {
			bobID = r.ID
		}
	}

	if rec := env.do(t, "alice", http.MethodDelete, "/api/companies/"+bobID, nil, ""); rec.Code != http.StatusForbidden {
		t.Errorf("alice deleting bob's record = %d, want 403", rec.Code)
	}
	if rec := env.do(t, "root", http.MethodDelete, "/api/companies/"+bobID, nil, ""); rec.Code != http.StatusNoContent {
		t.Errorf("admin delete = %d, want 204", rec.Code)
	}
	if rec := env.do(t, "root", http.MethodDelete, "/api/companies/"+bobID, nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rec.Code)
	}
}

func TestBulkAnalyzeAndConfirm(t *testing.T) {
	env := newTestEnv(t)
	csv := []byte("Name,Website\nAcme,acme.com\nNew Co,new.co\nnan,x.com\nNEW CO,https://new.co\n")

	body, ct := multipartFile(t, "companies.csv", csv)
	rec := env.do(t, "alice", http.MethodPost, "/api/bulk/analyze", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze status = %d, body %s", rec.Code, rec.Body)
	}
	preview := decode[struct {
		Total    int                 `json:"total"`
		Skipped  int                 `json:"skipped"`
		ByStatus map[core.Status]int `json:"byStatus"`
	}](t, rec)
	if preview.Total != 4 || preview.Skipped != 1 {
		t.Errorf("preview total/skipped = %d/%d, want 4/1", preview.Total, preview.Skipped)
	}
	if preview.ByStatus[core.StatusDuplicateUser] != 1 || preview.ByStatus[core.StatusUnique] != 1 {
		t.Errorf("preview byStatus = %v", preview.ByStatus)
	}
	if recs, _ := env.store.ListAll(context.Background()); len(recs) != 0 {
		t.Fatalf("analyze wrote %d records", len(recs))
	}

	body, ct = multipartFile(t, "companies.csv", csv)
	rec = env.do(t, "alice", http.MethodPost, "/api/bulk/confirm", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status = %d, body %s", rec.Code, rec.Body)
	}
	res := decode[core.BulkResult](t, rec)
	if res.Inserted != 3 || res.Duplicates != 1 || res.Skipped != 1 {
		t.Errorf("confirm result = %+v, want 3 inserted, 1 duplicate, 1 skipped", res)
	}
}

func TestRegistryRowsStayServerSide(t *testing.T) {
	env := newTestEnv(t)

	assertHidden := func(t *testing.T, rec *httptest.ResponseRecorder) {
		t.Helper()
		body := rec.Body.String()
		if !strings.Contains(body, string(core.StatusActiveN)) {
			t.Fatalf("body %s lacks the derived status", body)
		}
		for _, field := range []string{"registryMatch", `"deleted"`, `"Active"`} {
			if strings.Contains(body, field) {
				t.Errorf("body exposes registry data %s: %s", field, body)
			}
		}
	}

	t.Run("submit", func(t *testing.T) {
		rec := env.submit(t, "alice", "Acme Inc", "https://acme.com/")
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
		}
		assertHidden(t, rec)
	})

	t.Run("bulk analyze", func(t *testing.T) {
		body, ct := multipartFile(t, "list.csv", []byte("name,website\nAcme Inc,acme.com\n"))
		rec := env.do(t, "bob", http.MethodPost, "/api/bulk/analyze", body, ct)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
		}
		if strings.Contains(rec.Body.String(), "registryMatch") {
			t.Errorf("analyze exposes registry row: %s", rec.Body)
		}
	})
}

func TestBulkConfirm_ReportsRowsStagedBeforeFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.FailInsertAfter(2, errors.New("connection reset by peer"))

	body, ct := multipartFile(t, "list.csv", []byte("name,website\nGamma,gamma.io\nDelta,delta.io\nOmega,omega.io\n"))
	rec := env.do(t, "alice", http.MethodPost, "/api/bulk/confirm", body, ct)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500; body %s", rec.Code, rec.Body)
	}

	got := decode[bulkErrorResponse](t, rec)
	if got.Inserted != 2 || got.BatchID == "" {
		t.Errorf("error body = %+v, want 2 inserted with a batch ID", got)
	}
	if got.Code != "DB005" {
		t.Errorf("code = %q, want DB005", got.Code)
	}
	if recs, _ := env.store.ListAll(context.Background()); len(recs) != 2 {
		t.Errorf("stored %d records, want 2", len(recs))
	}
}

func TestBulk_XLSX(t *testing.T) {
	env := newTestEnv(t)

	f := excelize.NewFile()
	f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Company Name", "URL"})
	f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Zeta GmbH", "zeta.de"})
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	f.Close()

	body, ct := multipartFile(t, "upload.xlsx", buf.Bytes())
	rec := env.do(t, "alice", http.MethodPost, "/api/bulk/confirm", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if res := decode[core.BulkResult](t, rec); res.Inserted != 1 {
		t.Errorf("inserted = %d, want 1", res.Inserted)
	}
}

func TestBulk_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
	}{
		{"unsupported", "list.txt", "name,website\n", "FILE006"},
		{"missing column", "list.csv", "company,phone\nAcme,555\n", "VAL004"},
		{"empty", "list.csv", "", "FILE005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartFile(t, tt.file, []byte(tt.content))
			rec := env.do(t, "alice", http.MethodPost, "/api/bulk/analyze", body, ct)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := decode[ErrorResponse](t, rec); got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}

	t.Run("no file", func(t *testing.T) {
		rec := env.do(t, "alice", http.MethodPost, "/api/bulk/analyze", []byte("x"), "text/plain")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestBulkConfirm_Busy(t *testing.T) {
	env := newTestEnv(t)
	if err := env.svc.Limiter().Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer env.svc.Limiter().Release()

	body, ct := multipartFile(t, "a.csv", []byte("name,website\nA,a.io\n"))
	rec := env.do(t, "alice", http.MethodPost, "/api/bulk/confirm", body, ct)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestPurge(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, "alice", "Acme Inc", "acme.com")
	env.submit(t, "alice", "ACME", "www.acme.com")

	rec := env.do(t, "alice", http.MethodPost, "/api/purge", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if res := decode[core.PurgeResult](t, rec); res.Removed != 1 {
		t.Errorf("removed = %d, want 1", res.Removed)
	}
	recs, _ := env.store.ListBySubmitter(context.Background(), "alice")
	if len(recs) != 1 || recs[0].Status != core.StatusActiveN {
		t.Errorf("after purge = %+v, want one DB_MATCH_ACTIVE_N", recs)
	}
}

func TestSnapshotRefresh(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, "alice", http.MethodPost, "/api/snapshot/refresh", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[snapshotResponse](t, rec); got.Entries != 1 || got.FetchedAt.IsZero() {
		t.Errorf("snapshot = %+v, want 1 entry with a fetch time", got)
	}
}

func TestContributions(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, "alice", "Alpha", "alpha.io")
	env.submit(t, "alice", "Beta", "beta.io")
	env.submit(t, "bob", "Gamma", "gamma.io")

	got := decode[map[string]int](t, env.do(t, "bob", http.MethodGet, "/api/contributions", nil, ""))
	if got["alice"] != 2 || got["bob"] != 1 {
		t.Errorf("contributions = %v", got)
	}
}

func TestAdminRoutes(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, "alice", "Acme", "acme.com")
	env.submit(t, "alice", "Fresh", "fresh.io")

	if rec := env.do(t, "alice", http.MethodGet, "/api/admin/summary", nil, ""); rec.Code != http.StatusForbidden {
		t.Errorf("non-admin summary = %d, want 403", rec.Code)
	}

	summary := decode[map[string]map[core.Status]int](t, env.do(t, "root", http.MethodGet, "/api/admin/summary", nil, ""))
	if summary["alice"][core.StatusUnique] != 1 || summary["alice"][core.StatusActiveN] != 1 {
		t.Errorf("summary = %v", summary)
	}

	rec := env.do(t, "root", http.MethodGet, "/api/admin/export?status=unique,DB_MATCH_ACTIVE_N", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d, body %s", rec.Code, rec.Body)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment;") {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("export is not a workbook: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 2 || sheets[0] != "Approved" || sheets[1] != "Active_N" {
		t.Errorf("sheets = %v, want [Approved Active_N]", sheets)
	}
}

func TestAdminAuditLog(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, "alice", "Alpha", "alpha.io")
	env.submit(t, "bob", "Bravo", "bravo.io")

	type auditResponse struct {
		Count   int               `json:"count"`
		Entries []core.AuditEvent `json:"entries"`
	}

	got := decode[auditResponse](t, env.do(t, "root", http.MethodGet, "/api/admin/audit?action=submit&actor=alice", nil, ""))
	if got.Count != 1 || got.Entries[0].Actor != "alice" || got.Entries[0].Action != core.ActionSubmit {
		t.Fatalf("filtered audit = %+v", got.Entries)
	}
	if got.Entries[0].IPAddress != "192.0.2.1" {
		t.Errorf("IPAddress = %q, want 192.0.2.1", got.Entries[0].IPAddress)
	}

	got = decode[auditResponse](t, env.do(t, "root", http.MethodGet, "/api/admin/audit?limit=1", nil, ""))
	if got.Count != 1 || got.Entries[0].Actor != "bob" {
		t.Errorf("newest entry = %+v, want bob's submit", got.Entries)
	}

	if rec := env.do(t, "root", http.MethodGet, "/api/admin/audit?since=yesterday", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad since = %d, want 400", rec.Code)
	}
	if rec := env.do(t, "alice", http.MethodGet, "/api/admin/audit", nil, ""); rec.Code != http.StatusForbidden {
		t.Errorf("non-admin audit = %d, want 403", rec.Code)
	}
}

func TestAdminExport_Errors(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.do(t, "root", http.MethodGet, "/api/admin/export?status=bogus", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status = %d, want 400", rec.Code)
	}
	rec := env.do(t, "root", http.MethodGet, "/api/admin/export", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("empty export = %d, want 404", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Code != "EXP001" {
		t.Errorf("code = %q, want EXP001", got.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := &rateLimiter{visitors: map[string]*visitor{}, rate: 2, window: time.Minute, done: make(chan struct{})}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.allow("1.2.3.4") || !rl.allow("1.2.3.4") {
		t.Fatal("first two requests should pass")
	}
	if rl.allow("1.2.3.4") {
		t.Error("third request in the window should be limited")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("other IPs have their own budget")
	}

	now = now.Add(2 * time.Minute)
	if !rl.allow("1.2.3.4") {
		t.Error("budget should reset after the window")
	}

	now = now.Add(5 * time.Minute)
	rl.sweep()
	if len(rl.visitors) != 0 {
		t.Errorf("sweep left %d visitors", len(rl.visitors))
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrEmptyInput, http.StatusBadRequest},
		{core.ErrForbidden, http.StatusForbidden},
		{core.ErrNotFound, http.StatusNotFound},
		{core.ErrTooManyUploads, http.StatusTooManyRequests},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{context.Canceled, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
