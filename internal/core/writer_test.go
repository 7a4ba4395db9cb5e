package core

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readArtifact(t *testing.T, path string, delim rune) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delim
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestOutputWriter_WriteBothVariants(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "outputs")
	w := NewOutputWriter(dir)
	table := &Table{
		Columns: []string{"PLU", "DESC_PLU", "NOTE"},
		Rows: [][]string{
			{"1", "Agua; con gas", `dice "hola"`},
			{"2", "Leche, entera", "línea\nnueva"},
		},
	}

	artifacts, err := w.Write(table, "catalogo")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "catalogo_SEMICOLON.csv"), artifacts.SemicolonPath)
	assert.Equal(t, filepath.Join(dir, "catalogo_COMMA.csv"), artifacts.CommaPath)

	want := append([][]string{table.Columns}, table.Rows...)
	semi := readArtifact(t, artifacts.SemicolonPath, ';')
	comma := readArtifact(t, artifacts.CommaPath, ',')
	assert.Equal(t, want, semi)
	assert.Equal(t, want, comma)
	assert.Equal(t, semi, comma)
}

func TestOutputWriter_HeaderOnlyTable(t *testing.T) {
	w := NewOutputWriter(t.TempDir())

	artifacts, err := w.Write(&Table{Columns: []string{"PLU"}}, "vacio")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"PLU"}}, readArtifact(t, artifacts.CommaPath, ','))
}

func TestOutputWriter_OverwriteReplacesBoth(t *testing.T) {
	dir := t.TempDir()
	w := NewOutputWriter(dir)

	_, err := w.Write(&Table{Columns: []string{"A"}, Rows: [][]string{{"1"}, {"2"}, {"3"}}}, "f")
	require.NoError(t, err)
	artifacts, err := w.Write(&Table{Columns: []string{"B"}, Rows: [][]string{{"x"}}}, "f")
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"B"}, {"x"}}, readArtifact(t, artifacts.SemicolonPath, ';'))
	assert.Equal(t, [][]string{{"B"}, {"x"}}, readArtifact(t, artifacts.CommaPath, ','))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files must not be left behind")
}

func TestOutputWriter_FailedWriteKeepsPreviousPair(t *testing.T) {
	dir := t.TempDir()
	w := NewOutputWriter(dir)

	first, err := w.Write(&Table{Columns: []string{"A"}, Rows: [][]string{{"1"}}}, "f")
	require.NoError(t, err)

	// The second temp file cannot be created, after the first is staged.
	calls := 0
	createTemp = func(dir, pattern string) (*os.File, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("no space left on device")
		}
		return os.CreateTemp(dir, pattern)
	}
	t.Cleanup(func() { createTemp = os.CreateTemp })

	_, err = w.Write(&Table{Columns: []string{"B"}, Rows: [][]string{{"x"}}}, "f")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "f_COMMA.csv")

	assert.Equal(t, [][]string{{"A"}, {"1"}}, readArtifact(t, first.SemicolonPath, ';'))
	assert.Equal(t, [][]string{{"A"}, {"1"}}, readArtifact(t, first.CommaPath, ','))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "staged temp files must be removed")
}

func TestOutputWriter_InvalidBaseName(t *testing.T) {
	dir := t.TempDir()
	w := NewOutputWriter(dir)
	table := &Table{Columns: []string{"A"}}

	for _, base := range []string{"", ".", "..", "../escape", "a/b"} {
		_, err := w.Write(table, base)
		assert.Error(t, err, "base %q", base)
	}

	_, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape_COMMA.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestOutputWriter_Open(t *testing.T) {
	w := NewOutputWriter(t.TempDir())

	_, err := w.Open("nunca", VariantComma)
	assert.ErrorIs(t, err, ErrArtifactNotFound)
	_, err = w.Open("../etc/passwd", VariantComma)
	assert.ErrorIs(t, err, ErrArtifactNotFound)

	_, err = w.Write(&Table{Columns: []string{"A", "B"}, Rows: [][]string{{"1", "2"}}}, "ok")
	require.NoError(t, err)

	f, err := w.Open("ok", VariantSemicolon)
	require.NoError(t, err)
	defer f.Close()
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "A;B\n1;2\n", string(body))
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "catalogo_SEMICOLON.csv", ArtifactName("catalogo", VariantSemicolon))
	assert.Equal(t, "catalogo_COMMA.csv", ArtifactName("catalogo", VariantComma))
}

func TestNewOutputWriter_DefaultDir(t *testing.T) {
	assert.Equal(t, DefaultOutputDir, NewOutputWriter("").Dir)
	assert.Equal(t, filepath.Join("outputs", "x_COMMA.csv"), NewOutputWriter("").Path("x", VariantComma))
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in      string
		want    Variant
		wantErr bool
	}{
		{"semicolon", VariantSemicolon, false},
		{"COMMA", VariantComma, false},
		{" Comma ", VariantComma, false},
		{"tab", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseVariant(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidVariant, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	assert.Equal(t, ';', VariantSemicolon.Delimiter())
	assert.Equal(t, ',', VariantComma.Delimiter())
}
