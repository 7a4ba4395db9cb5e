package core

import (
	"errors"
	"strings"
)

// Error kinds returned by the pipeline. Callers branch on them with errors.Is;
// every returned error wraps exactly one of these.
var (
	ErrFileNotFound        = errors.New("file not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptySource         = errors.New("empty source")
	ErrMissingColumns      = errors.New("missing columns")
	ErrEmptySelection      = errors.New("no columns selected")
	ErrArtifactNotFound    = errors.New("artifact not found")
	ErrInvalidVariant      = errors.New("invalid variant")
)

// MissingColumnsError lists every requested canonical name that has no
// source column. It matches ErrMissingColumns under errors.Is.
type MissingColumnsError struct {
	Names []string
}

func (e *MissingColumnsError) Error() string {
	return "columns not present in source file: " + strings.Join(e.Names, ", ")
}

func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}
