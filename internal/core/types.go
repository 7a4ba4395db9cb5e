package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ColumnKind is the value type inferred for a loaded column.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumber
	KindDate
)

func (k ColumnKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "text"
	}
}

// Column is one source column as read from the file.
type Column struct {
	Name   string     // Header text, verbatim
	Kind   ColumnKind // Inferred from the non-empty values
	Values []string   // One entry per data row
}

// Dataset is a whole source file held in memory.
// Every column has exactly Rows values. Column names are not unique.
type Dataset struct {
	Columns []Column
	Rows    int
}

// ColumnNames returns the source headers in file order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// newDataset builds a column-major dataset from a header and raw records.
//
// The width is the widest of the header and any record, so spreadsheet rows
// with trailing cells beyond the header still line up. Short records are
// padded with empty cells. Blank headers are named "Unnamed: N" (zero-based
// position). Records made only of empty cells are kept as data rows.
func newDataset(header []string, records [][]string) *Dataset {
	width := len(header)
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}

	ds := &Dataset{
		Columns: make([]Column, width),
		Rows:    len(records),
	}

	for i := range ds.Columns {
		name := ""
		if i < len(header) {
			name = header[i]
		}
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		values := make([]string, len(records))
		for r, rec := range records {
			if i < len(rec) {
				values[r] = rec[i]
			}
		}

		ds.Columns[i] = Column{
			Name:   name,
			Kind:   inferKind(values),
			Values: values,
		}
	}

	return ds
}

// trimTrailingBlank drops the all-blank rows at the end of a worksheet, which
// spreadsheet apps leave behind for formatted but empty cells.
func trimTrailingBlank(records [][]string) [][]string {
	end := len(records)
	for end > 0 && isEmptyRow(records[end-1]) {
		end--
	}
	return records[:end]
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// dateLayouts are the formats recognised when inferring KindDate.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"01-02-06",
	"1/2/06",
	"02-01-2006",
}

// inferKind reports KindNumber or KindDate when every non-empty value parses
// as one; anything else, including an all-empty column, is KindText.
func inferKind(values []string) ColumnKind {
	numeric, dated, seen := true, true, false

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		seen = true
		if numeric {
			if _, ok := parseNumber(v); !ok {
				numeric = false
			}
		}
		if dated && !isDate(v) {
			dated = false
		}
		if !numeric && !dated {
			return KindText
		}
	}

	switch {
	case !seen:
		return KindText
	case numeric:
		return KindNumber
	case dated:
		return KindDate
	}
	return KindText
}

// parseNumber accepts finite decimal values only; "NaN" and "Inf" stay text.
func parseNumber(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isDate(v string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}
