// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Source unavailable: The supplier data could not be read
//	         Action: Check that the data file or database is reachable, then reload
//	         Patterns: "source unavailable"
//
//	SRC002 - Unknown source type: The data location is not a supported format
//	         Action: Use an .xlsx, .csv or .db file, or a postgres:// URL
//	         Patterns: "unknown source type"
//
//	SRC003 - Unreadable workbook: The workbook or sheet could not be opened
//	         Action: Re-save the file from Excel and check the sheet name
//	         Patterns: "sheet", "zip: not a valid zip file"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Nothing to export: No rows match the current filters
//	         Action: Relax the filters or clear the search, then try again
//	         Patterns: "nothing to export"
//
//	EXP002 - Unknown export format
//	         Action: Choose xlsx or csv
//	         Patterns: "unknown export format"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large     Patterns: "file too large"
//	FILE002 - Unsupported type   Patterns: "unsupported file type"
//	FILE003 - Empty file         Patterns: "file is empty", "no file provided"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - System busy         Patterns: "too many concurrent uploads"
//	UPL002 - Request cancelled   Patterns: "context canceled"
//	UPL003 - Request timeout     Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests  Patterns: "rate limit"
//
// # Request Errors (REQ001)
//
//	REQ001 - Malformed form body Patterns: "invalid form data"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Support staff should check the
// application logs for the original technical error.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are defined
// before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgSourceUnavailable = UserMessage{
		Message: "The supplier data could not be read",
		Action:  "Check that the data file or database is reachable, then reload",
		Code:    "SRC001",
	}
	msgUnreadableWorkbook = UserMessage{
		Message: "The workbook or sheet could not be opened",
		Action:  "Re-save the file from Excel and check the sheet name",
		Code:    "SRC003",
	}
	msgEmptyFile = UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a file with a header row and data rows",
		Code:    "FILE003",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Order matters: source unavailability wraps lower-level errors whose text
// would otherwise match a later pattern.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Source Errors (SRC001-SRC003)
	// =========================================================================
	{pattern: "source unavailable", msg: msgSourceUnavailable},
	{
		pattern: "unknown source type",
		msg: UserMessage{
			Message: "The data location is not a supported format",
			Action:  "Use an .xlsx, .csv or .db file, or a postgres:// URL",
			Code:    "SRC002",
		},
	},
	{pattern: "zip: not a valid zip file", msg: msgUnreadableWorkbook},
	{pattern: "sheet", msg: msgUnreadableWorkbook},

	// =========================================================================
	// Export Errors (EXP001-EXP002)
	// =========================================================================
	{
		pattern: "nothing to export",
		msg: UserMessage{
			Message: "No rows match the current filters",
			Action:  "Relax the filters or clear the search, then try again",
			Code:    "EXP001",
		},
	},
	{
		pattern: "unknown export format",
		msg: UserMessage{
			Message: "Unknown export format",
			Action:  "Choose xlsx or csv",
			Code:    "EXP002",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE003)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Remove unused sheets or columns and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload an .xlsx, .csv or .db file",
			Code:    "FILE002",
		},
	},
	{pattern: "file is empty", msg: msgEmptyFile},
	{pattern: "no file provided", msg: msgEmptyFile},

	// =========================================================================
	// Upload Errors (UPL001-UPL003)
	// =========================================================================
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},

	// =========================================================================
	// Request Errors (REQ001)
	// =========================================================================
	{
		pattern: "invalid form data",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Reload the page and submit the form again",
			Code:    "REQ001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	msg := MapError(ErrExportEmpty)
//	// msg.Code == "EXP001"
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
