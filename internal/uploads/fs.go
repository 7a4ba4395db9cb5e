package uploads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/google/uuid"
)

// ErrFileTooLarge is returned by Save when content exceeds MaxSize.
var ErrFileTooLarge = errors.New("file too large")

const metaSuffix = ".meta.json"

// FSStore keeps uploads in Dir as {id}.{ext} with a {id}.meta.json sidecar.
type FSStore struct {
	Dir string

	// MaxSize limits a single upload in bytes. Zero means no limit.
	MaxSize int64

	now func() time.Time
}

// NewFSStore returns a store rooted at dir. The directory is created on the
// first Save.
func NewFSStore(dir string, maxSize int64) *FSStore {
	return &FSStore{Dir: dir, MaxSize: maxSize, now: time.Now}
}

// Save implements Store.
func (s *FSStore) Save(ctx context.Context, originalName string, content io.Reader) (*Upload, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if !core.IsSupportedExtension(ext) {
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFileType, originalName)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	up := &Upload{
		ID:           uuid.NewString(),
		OriginalName: filepath.Base(originalName),
		UploadedAt:   s.clock().UTC(),
	}
	up.StoragePath = filepath.Join(s.Dir, up.ID+"."+ext)

	size, err := s.writeContent(up.StoragePath, content)
	if err != nil {
		return nil, err
	}
	up.Size = size

	if err := s.writeMeta(up); err != nil {
		os.Remove(up.StoragePath)
		return nil, err
	}
	return up, nil
}

func (s *FSStore) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *FSStore) writeContent(path string, content io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create upload: %w", err)
	}

	src := content
	if s.MaxSize > 0 {
		src = io.LimitReader(content, s.MaxSize+1)
	}

	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.MaxSize > 0 && n > s.MaxSize {
		err = fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, s.MaxSize)
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return n, nil
}

func (s *FSStore) writeMeta(up *Upload) error {
	data, err := json.Marshal(up)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.Dir, up.ID+metaSuffix), data, 0o644); err != nil {
		return fmt.Errorf("write upload metadata: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *FSStore) Get(ctx context.Context, id string) (*Upload, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", core.ErrUploadNotFound, id)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir, id+metaSuffix))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrUploadNotFound, id)
		}
		return nil, err
	}

	var up Upload
	if err := json.Unmarshal(data, &up); err != nil {
		return nil, fmt.Errorf("decode upload %s: %w", id, err)
	}
	return &up, nil
}

// List implements Store.
func (s *FSStore) List(ctx context.Context, limit int) ([]Upload, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Upload{}, nil
		}
		return nil, err
	}

	out := make([]Upload, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), metaSuffix) {
			continue
		}
		up, err := s.Get(ctx, strings.TrimSuffix(e.Name(), metaSuffix))
		if err != nil {
			continue
		}
		out = append(out, *up)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
