package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultOutputDir is used when no output directory is configured.
const DefaultOutputDir = "outputs"

// Variant selects the field delimiter of an output artifact.
type Variant string

const (
	VariantSemicolon Variant = "semicolon"
	VariantComma     Variant = "comma"
)

// Variants lists every variant in the order they are written.
var Variants = []Variant{VariantSemicolon, VariantComma}

// ParseVariant accepts "semicolon" or "comma", case-insensitively.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantSemicolon:
		return VariantSemicolon, nil
	case VariantComma:
		return VariantComma, nil
	}
	return "", fmt.Errorf("%w: %q (want semicolon or comma)", ErrInvalidVariant, s)
}

// Delimiter returns the field separator for v.
func (v Variant) Delimiter() rune {
	if v == VariantSemicolon {
		return ';'
	}
	return ','
}

func (v Variant) suffix() string {
	return "_" + strings.ToUpper(string(v)) + ".csv"
}

// Artifacts holds the paths of one successful write.
type Artifacts struct {
	SemicolonPath string `json:"semicolon_path"`
	CommaPath     string `json:"comma_path"`
}

// OutputWriter serializes tables into Dir as {base}_SEMICOLON.csv and
// {base}_COMMA.csv. Writing the same base name again replaces both files.
type OutputWriter struct {
	Dir string
}

// NewOutputWriter returns a writer rooted at dir, or DefaultOutputDir when
// dir is empty.
func NewOutputWriter(dir string) *OutputWriter {
	if dir == "" {
		dir = DefaultOutputDir
	}
	return &OutputWriter{Dir: dir}
}

// ArtifactName is the file name written for base and v, for example
// "catalogo_SEMICOLON.csv".
func ArtifactName(base string, v Variant) string {
	return base + v.suffix()
}

// Path returns where the artifact for base and v lives.
func (w *OutputWriter) Path(base string, v Variant) string {
	return filepath.Join(w.Dir, ArtifactName(base, v))
}

// Write creates Dir if needed and writes both variants of t.
//
// Both variants are written to temp files before either is renamed into
// place, so a failed write leaves any previous pair for base untouched.
func (w *OutputWriter) Write(t *Table, base string) (Artifacts, error) {
	if err := validBaseName(base); err != nil {
		return Artifacts{}, err
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("create output dir: %w", err)
	}

	staged := make([]string, 0, len(Variants))
	defer func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}()

	for _, v := range Variants {
		path := w.Path(base, v)
		tmp, err := stage(path, t, v.Delimiter())
		if err != nil {
			return Artifacts{}, fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
		staged = append(staged, tmp)
	}

	var out Artifacts
	for i, v := range Variants {
		path := w.Path(base, v)
		if err := os.Rename(staged[i], path); err != nil {
			return Artifacts{}, fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
		switch v {
		case VariantSemicolon:
			out.SemicolonPath = path
		case VariantComma:
			out.CommaPath = path
		}
	}
	return out, nil
}

// Open returns the artifact for base and v. Fails with ErrArtifactNotFound
// when nothing has been written for that pair.
func (w *OutputWriter) Open(base string, v Variant) (*os.File, error) {
	if err := validBaseName(base); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactNotFound, err)
	}

	f, err := os.Open(w.Path(base, v))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrArtifactNotFound, base, v)
		}
		return nil, err
	}
	return f, nil
}

// createTemp is swapped in tests to simulate a full disk.
var createTemp = os.CreateTemp

// stage writes t to a temp file next to path and returns its name. The
// caller renames it over path, so readers see either the old file or the
// complete new one.
func stage(path string, t *Table, delim rune) (string, error) {
	tmp, err := createTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}

	fail := func(err error) (string, error) {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}

	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}

	cw := csv.NewWriter(tmp)
	cw.Comma = delim
	if err := cw.Write(t.Columns); err != nil {
		return fail(err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func validBaseName(base string) error {
	if base == "" || base == "." || base == ".." || base != filepath.Base(base) {
		return fmt.Errorf("invalid base name %q", base)
	}
	return nil
}
