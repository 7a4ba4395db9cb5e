package core

import "strings"

// PreviewSummary describes a loaded file without any selection applied.
type PreviewSummary struct {
	Columns []string       `json:"columns"`
	Rows    int            `json:"rows"`
	Sample  map[string]any `json:"sample"`
}

// NormalizationPreview pairs every source header with its canonical name.
// Both slices have the same length and order as PreviewSummary.Columns.
type NormalizationPreview struct {
	Original   []string `json:"original"`
	Normalized []string `json:"normalized"`
}

// BuildPreview summarizes ds: headers in file order, the row count, and the
// first row keyed by header. Numeric cells are returned as float64, empty
// cells as nil. For repeated headers the first column's value is kept.
func BuildPreview(ds *Dataset) *PreviewSummary {
	summary := &PreviewSummary{
		Columns: ds.ColumnNames(),
		Rows:    ds.Rows,
		Sample:  make(map[string]any, len(ds.Columns)),
	}

	if ds.Rows == 0 {
		return summary
	}

	for _, col := range ds.Columns {
		if _, seen := summary.Sample[col.Name]; seen {
			continue
		}
		summary.Sample[col.Name] = sampleValue(col, col.Values[0])
	}

	return summary
}

// BuildNormalizationPreview normalizes columns without deduplicating them.
func BuildNormalizationPreview(columns []string) *NormalizationPreview {
	return &NormalizationPreview{
		Original:   append([]string(nil), columns...),
		Normalized: NormalizeColumns(columns),
	}
}

func sampleValue(col Column, raw string) any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if col.Kind == KindNumber {
		if f, ok := parseNumber(raw); ok {
			return f
		}
	}
	return raw
}
