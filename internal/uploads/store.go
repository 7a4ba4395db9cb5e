// Package uploads keeps track of source files handed to the cleaner.
//
// Files are always stored on disk under a generated name so concurrent
// uploads of the same original file never collide. Metadata lives either
// next to the file (FSStore) or in PostgreSQL (PostgresStore).
package uploads

import (
	"context"
	"io"
	"time"
)

// Upload describes one stored source file.
type Upload struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"filename_original"`
	StoragePath  string    `json:"storage_path"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// DefaultListLimit is how many uploads List returns when limit <= 0.
const DefaultListLimit = 50

// Store saves and finds uploads.
type Store interface {
	// Save copies content to storage under a new ID. Fails with
	// core.ErrUnsupportedFileType when originalName has no accepted extension.
	Save(ctx context.Context, originalName string, content io.Reader) (*Upload, error)

	// Get fails with core.ErrUploadNotFound for an unknown id.
	Get(ctx context.Context, id string) (*Upload, error)

	// List returns the newest uploads first.
	List(ctx context.Context, limit int) ([]Upload, error)
}

// RunStatus is the outcome of one process call.
type RunStatus string

const (
	RunSucceeded RunStatus = "success"
	RunFailed    RunStatus = "failed"
)

// Run is one entry of the cleaning history.
type Run struct {
	UploadID  string    `json:"upload_id"`
	Status    RunStatus `json:"status"`
	Columns   []string  `json:"columns"`
	Rows      int       `json:"rows"`
	Message   string    `json:"message,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RunRecorder persists the cleaning history. Recording is best effort; a
// failure never turns a successful process call into an error.
type RunRecorder interface {
	RecordRun(ctx context.Context, run Run) error
}

// NopRecorder discards runs. Used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) RecordRun(context.Context, Run) error { return nil }
