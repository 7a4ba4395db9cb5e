package core

// loader.go reads a source file into a Dataset.
//
// The parser is picked by extension (case-insensitive):
//
//   - .csv:  comma-separated text with a header row
//   - .xlsx: first worksheet, via excelize
//   - .xls:  first worksheet of a BIFF workbook, via extrame/xls
//
// CSV bytes are decoded before parsing. A UTF-8 or UTF-16 BOM selects the
// matching decoder; otherwise valid UTF-8 is read as-is and anything else is
// treated as Windows-1252, which is what Excel writes for "CSV" on Spanish
// locale machines.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// SupportedExtensions lists the accepted source extensions, lowercase and
// without the dot.
var SupportedExtensions = []string{"csv", "xls", "xlsx"}

// IsSupportedExtension reports whether ext (with or without the leading dot)
// names a loadable file type.
func IsSupportedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load reads the file at path fully into memory.
//
// Fails with ErrFileNotFound when path is missing or a directory,
// ErrUnsupportedFileType for any extension outside SupportedExtensions and
// ErrEmptySource when there is no header or no data row.
func Load(path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}

	ext := strings.ToLower(filepath.Ext(path))

	var records [][]string
	switch ext {
	case ".csv":
		records, err = readCSVFile(path)
	case ".xlsx":
		records, err = readXLSXFile(path)
	case ".xls":
		records, err = readXLSFile(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrEmptySource, filepath.Base(path))
	}

	ds := newDataset(records[0], records[1:])
	if ds.Rows == 0 {
		return nil, fmt.Errorf("%w: %s has no data rows", ErrEmptySource, filepath.Base(path))
	}
	return ds, nil
}

func readCSVFile(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	records, err := parseCSV(decodeText(data))
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// decodeText returns a UTF-8 reader over data.
func decodeText(data []byte) io.Reader {
	var fallback transform.Transformer = unicode.UTF8.NewDecoder()
	if !utf8.Valid(data) && !hasBOM(data) {
		fallback = charmap.Windows1252.NewDecoder()
	}
	return transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(fallback))
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}

func parseCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.ReadAll()
}

func readXLSXFile(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return trimTrailingBlank(rows), nil
}

func readXLSFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	wb, err := xls.OpenReader(f, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", filepath.Base(path), err)
	}
	if wb == nil {
		// OpenReader returns (nil, nil) when the OLE container has no
		// Workbook or Book stream.
		return nil, fmt.Errorf("open workbook %s: no workbook stream", filepath.Base(path))
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	records := make([][]string, 0, int(sheet.MaxRow)+1)
	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		records = append(records, xlsRow(sheet, i, width))
		if n := len(records[i]); n > width {
			width = n
		}
	}
	return trimTrailingBlank(records), nil
}

// xlsRow returns the cells of row i, or nil when the sheet has no record for
// it. WorkSheet.Row dereferences the row without a presence check, so a gap
// in the sheet surfaces as a panic.
//
// Rows written without a ROW record report a last column of zero; for those
// the cells are read up to width, the widest row seen so far.
func xlsRow(sheet *xls.WorkSheet, i, width int) (cells []string) {
	defer func() {
		if recover() != nil {
			cells = nil
		}
	}()

	row := sheet.Row(i)
	if row == nil {
		return nil
	}

	last := row.LastCol()
	if last < width {
		last = width
	}
	cells = make([]string, last)
	for c := row.FirstCol(); c < last; c++ {
		cells[c] = row.Col(c)
	}
	for len(cells) > row.LastCol() && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}
