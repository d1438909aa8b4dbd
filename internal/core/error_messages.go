// Package core provides the cleaning engine for tabular datasets.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// The CLI prints them and the HTTP API returns them in error bodies, so users
// can quote the code when asking for help.
//
// Error codes are grouped by category:
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Invalid options: The cleaning options are invalid
//	         Action: Check rule columns do not overlap and the threshold is between 0 and 1
//	         Patterns: "invalid pipeline configuration"
//
//	CFG002 - Unsupported file type: Output file type is not supported
//	         Action: Use "csv" or "spreadsheet"
//	         Patterns: "unsupported file type"
//
//	CFG003 - Unsupported format: Requested output format is not supported
//	         Action: Use csv, xlsx or json
//	         Patterns: "unsupported format"
//
// # I/O Errors (IO001-IO099)
//
//	IO001 - No dataset: The file could not be read as a table
//	        Action: Check the separator, header row and encoding options
//	        Patterns: "no dataset"
//
//	IO002 - Missing chunk: A chunk file is missing
//	        Action: Make sure all ten chunk files are present before combining
//	        Patterns: "missing chunk"
//
//	IO003 - File not found: The file does not exist
//	        Action: Check the path and try again
//	        Patterns: "no such file"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds maximum size limit
//	          Action: Split the file with the chunk command and clean each part
//	          Patterns: "file too large"
//
//	FILE002 - Invalid CSV: Rows have an inconsistent number of fields
//	          Action: Fix the malformed rows or use the lenient engine
//	          Patterns: "wrong number of fields", "bare \" in non-quoted field", "extraneous or missing \" in quoted-field"
//
//	FILE003 - Encoding error: The text encoding is not recognised
//	          Action: Use a WHATWG encoding label such as utf-8 or windows-1252
//	          Patterns: "unknown encoding"
//
//	FILE004 - No file: No file was provided
//	          Action: Attach a CSV file in the "file" form field
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The file has no header row
//	          Action: Upload a file with a header row
//	          Patterns: "empty file"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Column not found: A rule column is missing from the file
//	         Action: Check the column bindings against the file header
//	         Patterns: "column not found"
//
//	VAL002 - Invalid dataset: The table is not rectangular or has duplicate columns
//	         Action: Check the header row for repeated names
//	         Patterns: "invalid dataset"
//
// # Job Errors (JOB001-JOB099)
//
//	JOB001 - System busy: Too many cleaning jobs in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many concurrent jobs"
//
//	JOB002 - Run not found: No run with this ID exists
//	         Action: List recent runs to find the right ID
//	         Patterns: "run not found"
//
//	JOB003 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	JOB004 - Request timeout: Request timed out
//	         Action: Try a smaller file or try again later
//	         Patterns: "context deadline exceeded"
//
// # Translation Errors (TR001-TR099)
//
//	TR001 - Translation failed: The translation service returned an error
//	        Action: Check the translation endpoint and API key
//	        Patterns: "translate"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Bad request: The request is malformed
//	         Action: Check the form fields and try again
//	         Patterns: "invalid request"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.
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
	msgInvalidCSV = UserMessage{
		Message: "Rows have an inconsistent number of fields",
		Action:  "Fix the malformed rows or use the lenient engine",
		Code:    "FILE002",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Configuration (CFG001-CFG003)
	// =========================================================================
	{
		pattern: "invalid pipeline configuration",
		msg: UserMessage{
			Message: "The cleaning options are invalid",
			Action:  "Check rule columns do not overlap and the threshold is between 0 and 1",
			Code:    "CFG001",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "Output file type is not supported",
			Action:  `Use "csv" or "spreadsheet"`,
			Code:    "CFG002",
		},
	},
	{
		pattern: "unsupported format",
		msg: UserMessage{
			Message: "Requested output format is not supported",
			Action:  "Use csv, xlsx or json",
			Code:    "CFG003",
		},
	},

	// =========================================================================
	// File contents (FILE001-FILE005)
	// Checked before IO so a parse error inside "no dataset" keeps its detail.
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file with the chunk command and clean each part",
			Code:    "FILE001",
		},
	},
	{pattern: "wrong number of fields", msg: msgInvalidCSV},
	{pattern: `bare " in non-quoted field`, msg: msgInvalidCSV},
	{pattern: `extraneous or missing " in quoted-field`, msg: msgInvalidCSV},
	{
		pattern: "unknown encoding",
		msg: UserMessage{
			Message: "The text encoding is not recognised",
			Action:  "Use a WHATWG encoding label such as utf-8 or windows-1252",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  `Attach a CSV file in the "file" form field`,
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file has no header row",
			Action:  "Upload a file with a header row",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// I/O (IO001-IO003)
	// =========================================================================
	{
		pattern: "no dataset",
		msg: UserMessage{
			Message: "The file could not be read as a table",
			Action:  "Check the separator, header row and encoding options",
			Code:    "IO001",
		},
	},
	{
		pattern: "missing chunk",
		msg: UserMessage{
			Message: "A chunk file is missing",
			Action:  "Make sure all ten chunk files are present before combining",
			Code:    "IO002",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The file does not exist",
			Action:  "Check the path and try again",
			Code:    "IO003",
		},
	},

	// =========================================================================
	// Validation (VAL001-VAL002)
	// =========================================================================
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "A rule column is missing from the file",
			Action:  "Check the column bindings against the file header",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid dataset",
		msg: UserMessage{
			Message: "The table is not rectangular or has duplicate columns",
			Action:  "Check the header row for repeated names",
			Code:    "VAL002",
		},
	},

	// =========================================================================
	// Translation (TR001)
	// Before the context patterns: a timed-out translation is still a
	// translation failure.
	// =========================================================================
	{
		pattern: "translate",
		msg: UserMessage{
			Message: "The translation service returned an error",
			Action:  "Check the translation endpoint and API key",
			Code:    "TR001",
		},
	},

	// =========================================================================
	// Jobs (JOB001-JOB004)
	// =========================================================================
	{
		pattern: "too many concurrent jobs",
		msg: UserMessage{
			Message: "Too many cleaning jobs in progress",
			Action:  "Please wait a moment and try again",
			Code:    "JOB001",
		},
	},
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "No run with this ID exists",
			Action:  "List recent runs to find the right ID",
			Code:    "JOB002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "JOB003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "JOB004",
		},
	},

	// =========================================================================
	// Requests (REQ001)
	// =========================================================================
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request is malformed",
			Action:  "Check the form fields and try again",
			Code:    "REQ001",
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
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
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
//	msg := MapError(fmt.Errorf("load: %w", csvio.ErrNoDataset))
//	// msg.Code == "IO001"
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
