package core

// Error codes reference
//
// Users quote these codes to support staff. Codes are grouped by category
// and matched against the technical error text, case-insensitively, by
// strings.Contains. The first matching pattern wins, so specific patterns
// come before general ones.
//
//	DB001   duplicate key            A record with this ID already exists
//	DB002   unique constraint        This value must be unique but already exists
//	DB004   connection refused       Unable to connect to database
//	DB005   connection reset         Database connection was interrupted
//	DB006   timeout                  Operation timed out
//	DB007   deadlock                 Database was busy with conflicting operations
//
//	VAL001  invalid json             Request body is not valid JSON
//	VAL003  required field           Company name and website are required
//	VAL004  missing required column  File needs name and website columns
//	VAL006  invalid enum             Value is not in the allowed list
//
//	FILE001 file too large           File exceeds maximum size limit
//	FILE002 invalid csv              File is not a valid CSV
//	FILE003 invalid xlsx             File is not a valid Excel workbook
//	FILE004 no file provided         No file was selected
//	FILE005 empty file               The uploaded file is empty
//	FILE006 unsupported file type    Only .csv and .xlsx files are accepted
//
//	UPL002  too many uploads         System is busy processing other uploads
//	UPL004  context canceled         Request was cancelled
//	UPL005  context deadline exceeded Request timed out
//
//	AUTH001 invalid credentials      Username or password is incorrect
//	AUTH002 forbidden                You can only change your own submissions
//	AUTH003 user already exists      That username is taken
//
//	REC001  record not found         The record does not exist
//	EXP001  no records found         Nothing to export for the selection
//	RATE001 rate limit               Too many requests
//
//	ERR000  (fallback)               An unexpected error occurred; check the
//	                                 application logs for the technical error

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Database
	{"duplicate key", UserMessage{
		Message: "A record with this ID already exists",
		Action:  "Refresh the page and try again",
		Code:    "DB001",
	}},
	{"unique constraint", UserMessage{
		Message: "This value must be unique but already exists",
		Action:  "Check for an existing entry with the same value",
		Code:    "DB002",
	}},
	{"violates unique", UserMessage{
		Message: "A duplicate value was found",
		Action:  "Check for an existing entry with the same value",
		Code:    "DB002",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},

	// Request lifecycle. Listed before the generic "timeout" pattern.
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL005",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "DB006",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	}},

	// Validation
	{"invalid json", UserMessage{
		Message: "Request body is not valid JSON",
		Action:  "Send a JSON object with name and website",
		Code:    "VAL001",
	}},
	{"required field", UserMessage{
		Message: "Company name and website are required",
		Action:  "Fill in both fields and submit again",
		Code:    "VAL003",
	}},
	{"missing required column", UserMessage{
		Message: "File needs name and website columns",
		Action:  "Add a header row with 'name' and 'website'",
		Code:    "VAL004",
	}},
	{"invalid enum", UserMessage{
		Message: "Value is not in the allowed list",
		Action:  "Check the allowed values for this field",
		Code:    "VAL006",
	}},

	// Files
	{"file too large", UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{"request body too large", UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the file into smaller files",
		Code:    "FILE001",
	}},
	{"invalid csv", UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure the file is comma-separated",
		Code:    "FILE002",
	}},
	{"invalid xlsx", UserMessage{
		Message: "File is not a valid Excel workbook",
		Action:  "Save the file as .xlsx and upload again",
		Code:    "FILE003",
	}},
	{"no file provided", UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV or Excel file to upload",
		Code:    "FILE004",
	}},
	{"empty file", UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a file with data rows",
		Code:    "FILE005",
	}},
	{"unsupported file type", UserMessage{
		Message: "Only .csv and .xlsx files are accepted",
		Action:  "Convert the file and upload again",
		Code:    "FILE006",
	}},

	// Uploads
	{"too many uploads", UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}},

	// Access
	{"invalid credentials", UserMessage{
		Message: "Username or password is incorrect",
		Action:  "Check your credentials and sign in again",
		Code:    "AUTH001",
	}},
	{"forbidden", UserMessage{
		Message: "You can only change your own submissions",
		Action:  "Ask an administrator to make this change",
		Code:    "AUTH002",
	}},
	{"user already exists", UserMessage{
		Message: "That username is taken",
		Action:  "Choose a different username",
		Code:    "AUTH003",
	}},

	{"record not found", UserMessage{
		Message: "The record does not exist",
		Action:  "Refresh the list; it may have been removed",
		Code:    "REC001",
	}},
	{"no records found", UserMessage{
		Message: "There are no records with the selected statuses",
		Action:  "Choose different statuses to export",
		Code:    "EXP001",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unmatched
// errors map to ERR000.
//
//	msg := MapError(ErrForbidden)
//	// msg.Code == "AUTH002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. It returns nil for a nil error.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
