package core

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		entry *RegistryEntry
		want  Status
	}{
		{name: "no hit", entry: nil, want: StatusUnique},
		{name: "active not deleted", entry: &RegistryEntry{Status: "active", Deleted: "n"}, want: StatusActiveN},
		{name: "inactive not deleted", entry: &RegistryEntry{Status: "inactive", Deleted: "n"}, want: StatusInactiveN},
		{name: "active deleted", entry: &RegistryEntry{Status: "active", Deleted: "y"}, want: StatusActiveY},
		{name: "inactive deleted", entry: &RegistryEntry{Status: "inactive", Deleted: "y"}, want: StatusInactiveY},
		{name: "case insensitive", entry: &RegistryEntry{Status: "ACTIVE", Deleted: "N"}, want: StatusActiveN},
		{name: "surrounding whitespace", entry: &RegistryEntry{Status: " Inactive ", Deleted: "n "}, want: StatusInactiveN},
		{name: "absent deleted flag is n", entry: &RegistryEntry{Status: "active"}, want: StatusActiveN},
		{name: "unrecognized status", entry: &RegistryEntry{Status: "pending", Deleted: "n"}, want: StatusInactiveY},
		{name: "empty status", entry: &RegistryEntry{}, want: StatusInactiveY},
		{name: "unrecognized deleted flag", entry: &RegistryEntry{Status: "active", Deleted: "maybe"}, want: StatusInactiveY},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.entry); got != tt.want {
				t.Errorf("Classify(%+v) = %s, want %s", tt.entry, got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input string
		want  Status
	}{
		{" unique ", StatusUnique},
		{"DUPLICATE_USER", StatusDuplicateUser},
		{"db_match_active_n", StatusActiveN},
		{"DB_MATCH_INACTIVE_Y", StatusInactiveY},
		{"approved", StatusUnknown},
		{"", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseStatus(tt.input); got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStatus_IsRegistryMatch(t *testing.T) {
	for _, s := range KnownStatuses() {
		want := s != StatusUnique && s != StatusDuplicateUser
		if got := s.IsRegistryMatch(); got != want {
			t.Errorf("%s.IsRegistryMatch() = %v, want %v", s, got, want)
		}
	}
}

func TestRecord_SetStatusKeepsOwnerConsistent(t *testing.T) {
	var r Record
	r.SetStatus(StatusDuplicateUser, "bob")
	if r.DuplicateOwner == nil || *r.DuplicateOwner != "bob" {
		t.Fatalf("DuplicateOwner = %v, want bob", r.DuplicateOwner)
	}

	r.SetStatus(StatusUnique, "bob")
	if r.DuplicateOwner != nil {
		t.Errorf("DuplicateOwner = %q after non-duplicate status, want nil", *r.DuplicateOwner)
	}
}

func TestCandidate_Blank(t *testing.T) {
	tests := []struct {
		c    Candidate
		want bool
	}{
		{Candidate{Name: "Acme", Website: "acme.com"}, false},
		{Candidate{Name: " ", Website: "acme.com"}, true},
		{Candidate{Name: "Acme", Website: ""}, true},
		{Candidate{Name: "NaN", Website: "acme.com"}, true},
		{Candidate{Name: "Acme", Website: "nan"}, true},
	}

	for _, tt := range tests {
		if got := tt.c.blank(); got != tt.want {
			t.Errorf("%+v.blank() = %v, want %v", tt.c, got, tt.want)
		}
	}
}
