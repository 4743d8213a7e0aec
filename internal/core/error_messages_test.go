package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "duplicate key", err: errors.New("ERROR: duplicate key value violates unique constraint"), wantCode: "DB001"},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), wantCode: "DB004"},
		{name: "empty input", err: ErrEmptyInput, wantCode: "VAL003"},
		{name: "wrapped missing columns", err: fmt.Errorf("parse: %w", ErrMissingColumns), wantCode: "VAL004"},
		{name: "invalid role", err: errors.New(`invalid enum: role "root"`), wantCode: "VAL006"},
		{name: "invalid csv", err: errors.New("invalid csv: bare quote"), wantCode: "FILE002"},
		{name: "empty file", err: ErrEmptyFile, wantCode: "FILE005"},
		{name: "unsupported file", err: ErrUnsupportedFile, wantCode: "FILE006"},
		{name: "too many uploads", err: ErrTooManyUploads, wantCode: "UPL002"},
		{name: "deadline beats generic timeout", err: context.DeadlineExceeded, wantCode: "UPL005"},
		{name: "cancelled", err: context.Canceled, wantCode: "UPL004"},
		{name: "invalid credentials", err: ErrInvalidCredentials, wantCode: "AUTH001"},
		{name: "forbidden", err: ErrForbidden, wantCode: "AUTH002"},
		{name: "user exists", err: ErrUserExists, wantCode: "AUTH003"},
		{name: "not found", err: ErrNotFound, wantCode: "REC001"},
		{name: "body too large", err: errors.New("http: request body too large"), wantCode: "FILE001"},
		{name: "invalid json", err: errors.New("invalid json body\nunexpected EOF"), wantCode: "VAL001"},
		{name: "nothing to export", err: errors.New("no records found for the selected statuses"), wantCode: "EXP001"},
		{name: "case insensitive", err: errors.New("DUPLICATE KEY value"), wantCode: "DB001"},
		{name: "unknown error", err: errors.New("some random internal error"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err); got.Code != tt.wantCode {
				t.Errorf("MapError(%v) code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrForbidden)
	want := "You can only change your own submissions (Code: AUTH002). Ask an administrator to make this change"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "known", err: ErrEmptyInput, want: true},
		{name: "unknown", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("delete record abc: %w", ErrNotFound)
		userErr := NewUserError(techErr)

		if userErr.Error() != "The record does not exist" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, ErrNotFound) {
			t.Error("Unwrap() should expose the original error")
		}
	})
}
