package registry

import (
	"strings"
	"testing"
	"time"
)

func TestSelectQuery(t *testing.T) {
	tests := []struct {
		table   string
		want    string
		wantErr bool
	}{
		{"ts_entity_company_profile", "SELECT name, website, status, deleted FROM `ts_entity_company_profile`", false},
		{"crm.companies", "SELECT name, website, status, deleted FROM `crm`.`companies`", false},
		{"companies; DROP TABLE x", "", true},
		{"bad`name", "", true},
		{"1table", "", true},
		{"a.b.c", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			got, err := selectQuery(tt.table)
			if (err != nil) != tt.wantErr {
				t.Fatalf("selectQuery(%q) error = %v, wantErr %v", tt.table, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("selectQuery(%q) = %q, want %q", tt.table, got, tt.want)
			}
		})
	}
}

func TestOpen_InvalidDSN(t *testing.T) {
	_, err := Open("not a dsn", "", time.Second)
	if err == nil {
		t.Fatal("Open() should reject a malformed DSN")
	}
	if !strings.Contains(err.Error(), "invalid registry DSN") {
		t.Errorf("Open() error = %v", err)
	}
}

func TestOpen_Defaults(t *testing.T) {
	src, err := Open("reader:secret@tcp(127.0.0.1:3306)/crm", "", 0)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	if src.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", src.timeout, DefaultTimeout)
	}
	if !strings.HasSuffix(src.query, "`"+DefaultTable+"`") {
		t.Errorf("query = %q, want default table", src.query)
	}
}

func TestOpen_InvalidTable(t *testing.T) {
	if _, err := Open("reader:secret@tcp(127.0.0.1:3306)/crm", "x y", time.Second); err == nil {
		t.Error("Open() should reject an invalid table name")
	}
}
