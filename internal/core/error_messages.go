package core

// error_messages.go maps pipeline errors to user-facing messages with a code
// support staff can look up.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: upload exceeds the configured size limit
//	FILE002 - Unsupported type: extension is not csv, xls or xlsx
//	FILE003 - Not found: the uploaded file no longer exists
//	FILE004 - No file: the request carried no file
//	FILE005 - Empty file: the file has a header but no data rows
//	FILE006 - Unreadable: the file could not be parsed
//
// # Selection Errors (VAL001-VAL099)
//
//	VAL001 - Bad request: the request body could not be decoded
//	VAL004 - Missing columns: requested canonical names are absent
//	VAL007 - Empty selection: no columns were requested
//
// # Artifact Errors (ART001-ART099)
//
//	ART001 - Not generated: download requested before processing
//	ART002 - Bad variant: variant is not semicolon or comma
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: too many concurrent process calls
//	UPL003 - Unknown upload: file_id does not resolve
//	UPL004 - Request cancelled
//	UPL005 - Request timeout
//
// # Rate Limiting (RATE001)
//
// # Default (ERR000)
//
// Kinds are matched with errors.Is first; free-form errors from the transport
// layer fall back to case-insensitive substring patterns.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// ErrUploadNotFound is returned by upload stores for an unknown file id.
var ErrUploadNotFound = errors.New("upload not found")

type kindMessage struct {
	kind error
	msg  UserMessage
}

var kindMessages = []kindMessage{
	{ErrUnsupportedFileType, UserMessage{
		Message: "This file type is not supported",
		Action:  "Upload a .csv, .xls or .xlsx file",
		Code:    "FILE002",
	}},
	{ErrFileNotFound, UserMessage{
		Message: "The source file could not be found",
		Action:  "Upload the file again",
		Code:    "FILE003",
	}},
	{ErrEmptySource, UserMessage{
		Message: "The file has no data rows",
		Action:  "Upload a file with a header row and at least one data row",
		Code:    "FILE005",
	}},
	{ErrMissingColumns, UserMessage{
		Message: "Some selected columns are not in the file",
		Action:  "Refresh the preview and select columns from the normalized list",
		Code:    "VAL004",
	}},
	{ErrEmptySelection, UserMessage{
		Message: "No columns were selected",
		Action:  "Select at least one column to export",
		Code:    "VAL007",
	}},
	{ErrArtifactNotFound, UserMessage{
		Message: "The cleaned file has not been generated yet",
		Action:  "Process the file before downloading",
		Code:    "ART001",
	}},
	{ErrInvalidVariant, UserMessage{
		Message: "Unknown download format",
		Action:  "Choose semicolon or comma",
		Code:    "ART002",
	}},
	{ErrTooManyRequests, UserMessage{
		Message: "System is busy processing other files",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}},
	{ErrUploadNotFound, UserMessage{
		Message: "Upload not found",
		Action:  "Select a file from the upload list or upload it again",
		Code:    "UPL003",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL005",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns cover errors raised outside this package as plain strings.
// The first matching pattern wins.
var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "parse csv",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check that the file is a valid spreadsheet or comma-separated text",
			Code:    "FILE006",
		},
	},
	{
		pattern: "open workbook",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check that the file is a valid spreadsheet or comma-separated text",
			Code:    "FILE006",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Send columns as a list of normalized names",
			Code:    "VAL001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
// Support staff should check application logs for the original error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	msg := MapError(fmt.Errorf("load: %w", ErrEmptySource))
//	// msg.Code == "FILE005"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, km := range kindMessages {
		if errors.Is(err, km.kind) {
			return km.msg
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
