package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool used here.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Schema creates the tables PostgresStore needs. It is safe to run on every
// startup.
const Schema = `
CREATE TABLE IF NOT EXISTS file_uploads (
	id                UUID PRIMARY KEY,
	filename_original TEXT        NOT NULL,
	storage_path      TEXT        NOT NULL,
	size_bytes        BIGINT      NOT NULL DEFAULT 0,
	uploaded_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS file_uploads_uploaded_at_idx ON file_uploads (uploaded_at DESC);

CREATE TABLE IF NOT EXISTS cleaning_run_logs (
	id             BIGSERIAL PRIMARY KEY,
	file_upload_id UUID        NOT NULL REFERENCES file_uploads (id),
	status         TEXT        NOT NULL,
	columns        TEXT[]      NOT NULL DEFAULT '{}',
	row_count      INTEGER     NOT NULL DEFAULT 0,
	message        TEXT,
	ip_address     TEXT,
	user_agent     TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PostgresStore stores file bytes through an FSStore and metadata in the
// file_uploads table. It also records the cleaning history.
type PostgresStore struct {
	files *FSStore
	db    DB
}

// NewPostgresStore wraps files with database-backed metadata.
func NewPostgresStore(db DB, files *FSStore) *PostgresStore {
	return &PostgresStore{files: files, db: db}
}

// Migrate applies Schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate uploads schema: %w", err)
	}
	return nil
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, originalName string, content io.Reader) (*Upload, error) {
	up, err := s.files.Save(ctx, originalName, content)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO file_uploads (id, filename_original, storage_path, size_bytes, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		up.ID, up.OriginalName, up.StoragePath, up.Size, up.UploadedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert upload %s: %w", up.ID, err)
	}
	return up, nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Upload, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", core.ErrUploadNotFound, id)
	}

	var up Upload
	err := s.db.QueryRow(ctx,
		`SELECT id::text, filename_original, storage_path, size_bytes, uploaded_at
		 FROM file_uploads WHERE id = $1`,
		id,
	).Scan(&up.ID, &up.OriginalName, &up.StoragePath, &up.Size, &up.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrUploadNotFound, id)
		}
		return nil, fmt.Errorf("get upload %s: %w", id, err)
	}
	return &up, nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]Upload, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.Query(ctx,
		`SELECT id::text, filename_original, storage_path, size_bytes, uploaded_at
		 FROM file_uploads ORDER BY uploaded_at DESC, id LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	out := []Upload{}
	for rows.Next() {
		var up Upload
		if err := rows.Scan(&up.ID, &up.OriginalName, &up.StoragePath, &up.Size, &up.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		out = append(out, up)
	}
	return out, rows.Err()
}

// RecordRun implements RunRecorder. Client details are taken from ctx when
// the run does not carry them.
func (s *PostgresStore) RecordRun(ctx context.Context, run Run) error {
	if run.IPAddress == "" && run.UserAgent == "" {
		run.IPAddress, run.UserAgent = ClientFromContext(ctx)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Columns == nil {
		run.Columns = []string{}
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO cleaning_run_logs
		 (file_upload_id, status, columns, row_count, message, ip_address, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)`,
		run.UploadID, string(run.Status), run.Columns, run.Rows,
		run.Message, run.IPAddress, run.UserAgent, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record run for %s: %w", run.UploadID, err)
	}
	return nil
}
