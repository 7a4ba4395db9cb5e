package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "unsupported type",
			err:         fmt.Errorf("%w: %q", ErrUnsupportedFileType, ".txt"),
			wantCode:    "FILE002",
			wantMessage: "This file type is not supported",
		},
		{
			name:        "file not found",
			err:         fmt.Errorf("%w: /tmp/x.csv", ErrFileNotFound),
			wantCode:    "FILE003",
			wantMessage: "The source file could not be found",
		},
		{
			name:        "empty source",
			err:         fmt.Errorf("%w: x.csv has no data rows", ErrEmptySource),
			wantCode:    "FILE005",
			wantMessage: "The file has no data rows",
		},
		{
			name:        "missing columns typed error",
			err:         fmt.Errorf("process: %w", &MissingColumnsError{Names: []string{"GHOST"}}),
			wantCode:    "VAL004",
			wantMessage: "Some selected columns are not in the file",
		},
		{
			name:        "empty selection",
			err:         ErrEmptySelection,
			wantCode:    "VAL007",
			wantMessage: "No columns were selected",
		},
		{
			name:        "artifact not found",
			err:         fmt.Errorf("%w: catalogo (comma)", ErrArtifactNotFound),
			wantCode:    "ART001",
			wantMessage: "The cleaned file has not been generated yet",
		},
		{
			name:        "invalid variant",
			err:         fmt.Errorf("%w: %q", ErrInvalidVariant, "tab"),
			wantCode:    "ART002",
			wantMessage: "Unknown download format",
		},
		{
			name:        "unknown upload",
			err:         fmt.Errorf("get 1234: %w", ErrUploadNotFound),
			wantCode:    "UPL003",
			wantMessage: "Upload not found",
		},
		{
			name:        "cancelled",
			err:         fmt.Errorf("acquire: %w", context.Canceled),
			wantCode:    "UPL004",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "deadline",
			err:         context.DeadlineExceeded,
			wantCode:    "UPL005",
			wantMessage: "Request timed out",
		},
		{
			name:        "corrupt csv falls back to pattern",
			err:         errors.New(`parse csv x.csv: record on line 2: bare " in non-quoted field`),
			wantCode:    "FILE006",
			wantMessage: "The file could not be read",
		},
		{
			name:        "corrupt workbook",
			err:         errors.New("open workbook x.xlsx: zip: not a valid zip file"),
			wantCode:    "FILE006",
			wantMessage: "The file could not be read",
		},
		{
			name:        "file too large",
			err:         errors.New("http: request body too large: file too large"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds maximum size limit",
		},
		{
			name:        "body limit from net/http",
			err:         errors.New("http: request body too large"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds maximum size limit",
		},
		{
			name:        "undecodable request body",
			err:         errors.New("invalid request body: unexpected EOF"),
			wantCode:    "VAL001",
			wantMessage: "The request could not be read",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("NO FILE PROVIDED"),
			wantCode:    "FILE004",
			wantMessage: "No file was selected",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrEmptySelection)

	expected := "No columns were selected (Code: VAL007). Select at least one column to export"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
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
		{"nil error is not user facing", nil, false},
		{"kind is user facing", ErrMissingColumns, true},
		{"pattern is user facing", errors.New("rate limit"), true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
