package core

// error_messages.go maps technical errors to user-friendly messages with codes for
// support reference.
//
// # Document Errors (CSV001-CSV099)
//
//	CSV001 - Empty document: The document has no header line
//	CSV002 - Invalid header: The header does not match the expected columns
//	CSV003 - Short row: A row has fewer values than there are columns
//	CSV004 - Invalid value: A value could not be read as its column's type
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: Document exceeds the configured size limit
//	FILE002 - File not found: The named file does not exist
//	FILE003 - Encoding error: File could not be decoded
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: This log has already been stored
//	DB004 - Connection refused: Unable to connect to database
//	DB005 - Connection reset: Database connection was interrupted
//	DB006 - Timeout: Operation timed out
//	DB007 - Persistence disabled: No database is configured
//
// # Request Errors (UPL001-UPL099, REQ001-REQ099)
//
//	REQ001 - Invalid date: A date argument is not in Y-M-D form
//	REQ002 - Unknown schema: No schema is registered under the name
//	UPL002 - System busy: Too many documents are being parsed
//	UPL004 - Request cancelled
//	UPL005 - Request timeout
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check application logs for the original error.

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// parseMessages maps each parse error kind to its user message.
var parseMessages = map[Kind]UserMessage{
	KindUnexpectedEOF: {
		Message: "The document is empty",
		Action:  "Provide a document that starts with a header line",
		Code:    "CSV001",
	},
	KindInvalidHeader: {
		Message: "The header line does not match the expected columns",
		Action:  "Use the exact column names, in order, separated by commas",
		Code:    "CSV002",
	},
	KindUnexpectedEOL: {
		Message: "A row has fewer values than there are columns",
		Action:  "Check the reported line for missing values or a trailing blank line",
		Code:    "CSV003",
	},
	KindColumn: {
		Message: "A value could not be read as its column's type",
		Action:  "Check the reported line and column for a malformed value",
		Code:    "CSV004",
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// The first matching pattern wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "This log has already been stored",
			Action:  "No action needed; the earlier upload is kept",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller document or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "persistence is not configured",
		msg: UserMessage{
			Message: "Saving logs is not enabled",
			Action:  "Set DATABASE_URL and try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "The date is not in year-month-day form",
			Action:  "Pass the date as YYYY-MM-DD, for example 2018-12-09",
			Code:    "REQ001",
		},
	},
	{
		pattern: "unknown schema",
		msg: UserMessage{
			Message: "No schema is registered under that name",
			Action:  "List the available schemas and use one of their names",
			Code:    "REQ002",
		},
	},
	{
		pattern: "read document",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Save the file as UTF-8 text and try again",
			Code:    "FILE003",
		},
	},
}

// MapError converts a technical error into a user-friendly message.
// Returns the zero UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var perr *ParseError
	if errors.As(err, &perr) {
		if msg, ok := parseMessages[perr.Kind]; ok {
			return withLocation(msg, perr)
		}
	}

	switch {
	case errors.Is(err, ErrDocumentTooLarge):
		return UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		}
	case errors.Is(err, fs.ErrNotExist):
		return UserMessage{
			Message: "The file does not exist",
			Action:  "Check the file path and try again",
			Code:    "FILE002",
		}
	case errors.Is(err, ErrTooManyParses):
		return UserMessage{
			Message: "Too many documents are being processed",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		}
	case errors.Is(err, context.Canceled):
		return UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller document or check your connection",
			Code:    "UPL005",
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// withLocation appends the failing line and column to a parse message.
func withLocation(msg UserMessage, perr *ParseError) UserMessage {
	switch {
	case perr.Line > 0 && perr.Kind == KindColumn:
		msg.Message = fmt.Sprintf("%s (line %d, column %q)", msg.Message, perr.Line, perr.Column)
	case perr.Line > 0:
		msg.Message = fmt.Sprintf("%s (line %d)", msg.Message, perr.Line)
	}
	return msg
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

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
