// Package templates renders the HTMX fragments and the upload page.
//
// Components live in the .templ files; run `templ generate` after editing
// them. This file holds the plain Go helpers they call.
package templates

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/uploads"
)

// normalizationRow is one line of the normalization table.
type normalizationRow struct {
	Original  string
	Canonical string
	Sample    string
	Shadowed  bool // an earlier column already owns Canonical
}

func normalizationRows(preview *core.PreviewSummary, norm *core.NormalizationPreview) []normalizationRow {
	rows := make([]normalizationRow, len(norm.Normalized))
	seen := make(map[string]bool, len(norm.Normalized))
	for i, canonical := range norm.Normalized {
		original := norm.Original[i]
		rows[i] = normalizationRow{
			Original:  original,
			Canonical: canonical,
			Sample:    sampleText(preview.Sample[original]),
			Shadowed:  seen[canonical],
		}
		seen[canonical] = true
	}
	return rows
}

func sampleText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}

func summary(preview *core.PreviewSummary) string {
	return fmt.Sprintf("%d rows, %d columns", preview.Rows, len(preview.Columns))
}

func exportSummary(rows int, columns []string) string {
	return fmt.Sprintf("%d rows exported: %s", rows, strings.Join(columns, ", "))
}

func processURL(fileID string) string {
	return "/clean/process?file_id=" + url.QueryEscape(fileID)
}

func previewURL(fileID string) string {
	return "/clean/preview?file_id=" + url.QueryEscape(fileID)
}

func downloadURL(fileID string, v core.Variant) templ.SafeURL {
	q := url.Values{"file_id": {fileID}, "variant": {string(v)}}
	return templ.SafeURL("/clean/download?" + q.Encode())
}

func variantLabel(v core.Variant) string {
	return strings.ToUpper(string(v))
}

func uploadedAt(up uploads.Upload) string {
	return up.UploadedAt.Format("2006-01-02 15:04")
}
