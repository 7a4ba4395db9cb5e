package uploads

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_SaveAndGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store := NewFSStore(dir, 0)
	ctx := context.Background()

	up, err := store.Save(ctx, "Catálogo Marzo.CSV", strings.NewReader("PLU\n1\n"))
	require.NoError(t, err)

	_, err = uuid.Parse(up.ID)
	require.NoError(t, err)
	assert.Equal(t, "Catálogo Marzo.CSV", up.OriginalName)
	assert.Equal(t, filepath.Join(dir, up.ID+".csv"), up.StoragePath)
	assert.Equal(t, int64(6), up.Size)

	data, err := os.ReadFile(up.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, "PLU\n1\n", string(data))

	got, err := store.Get(ctx, up.ID)
	require.NoError(t, err)
	assert.Equal(t, up.ID, got.ID)
	assert.Equal(t, up.StoragePath, got.StoragePath)
	assert.True(t, up.UploadedAt.Equal(got.UploadedAt))

	// The stored file is loadable by the cleaner.
	ds, err := core.Load(got.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Rows)
}

func TestFSStore_SameNameTwiceGetsDistinctIDs(t *testing.T) {
	store := NewFSStore(t.TempDir(), 0)
	ctx := context.Background()

	a, err := store.Save(ctx, "datos.xlsx", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := store.Save(ctx, "datos.xlsx", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.StoragePath, b.StoragePath)
}

func TestFSStore_RejectsUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	store := NewFSStore(dir, 0)

	for _, name := range []string{"notes.txt", "noext", "archive.csv.zip", ""} {
		_, err := store.Save(context.Background(), name, strings.NewReader("x"))
		assert.ErrorIs(t, err, core.ErrUnsupportedFileType, name)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFSStore_MaxSize(t *testing.T) {
	dir := t.TempDir()
	store := NewFSStore(dir, 4)
	ctx := context.Background()

	_, err := store.Save(ctx, "big.csv", strings.NewReader("12345"))
	require.ErrorIs(t, err, ErrFileTooLarge)
	assert.Equal(t, "FILE001", core.MapError(err).Code)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected upload must be removed")

	up, err := store.Save(ctx, "ok.csv", strings.NewReader("1234"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), up.Size)
}

func TestFSStore_GetUnknown(t *testing.T) {
	store := NewFSStore(t.TempDir(), 0)

	for _, id := range []string{uuid.NewString(), "not-a-uuid", "../../etc/passwd"} {
		_, err := store.Get(context.Background(), id)
		assert.ErrorIs(t, err, core.ErrUploadNotFound, id)
	}
}

func TestFSStore_ListNewestFirst(t *testing.T) {
	store := NewFSStore(t.TempDir(), 0)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	ctx := context.Background()

	var names []string
	for _, n := range []string{"a.csv", "b.xls", "c.xlsx"} {
		_, err := store.Save(ctx, n, strings.NewReader("x"))
		require.NoError(t, err)
		names = append([]string{n}, names...)
	}

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, up := range all {
		assert.Equal(t, names[i], up.OriginalName)
	}

	two, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
	assert.Equal(t, "c.xlsx", two[0].OriginalName)
}

func TestFSStore_ListMissingDir(t *testing.T) {
	store := NewFSStore(filepath.Join(t.TempDir(), "never-created"), 0)

	got, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestContextWithClient(t *testing.T) {
	ip, ua := ClientFromContext(context.Background())
	assert.Empty(t, ip)
	assert.Empty(t, ua)

	ctx := ContextWithClient(context.Background(), "10.0.0.7", "curl/8.0")
	ip, ua = ClientFromContext(ctx)
	assert.Equal(t, "10.0.0.7", ip)
	assert.Equal(t, "curl/8.0", ua)
}
