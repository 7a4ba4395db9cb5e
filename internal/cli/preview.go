package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datacleaner/internal/core"
)

type previewOutput struct {
	File          string                     `json:"file"`
	Preview       *core.PreviewSummary       `json:"preview"`
	Normalization *core.NormalizationPreview `json:"normalization"`
}

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file>",
		Short: "Show the columns, row count and first row of a file",
		Example: `  datacleaner preview catalogo.xlsx
  datacleaner preview ventas.csv --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := core.NewService("")
			summary, norm, err := svc.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(w, previewOutput{File: args[0], Preview: summary, Normalization: norm})
			}

			fmt.Fprintf(w, "%s: %d rows, %d columns\n", args[0], summary.Rows, len(summary.Columns))
			t := newTable(w, "#", "Column", "Normalized", "First row")
			for i, col := range summary.Columns {
				t.AppendRow(table.Row{i + 1, col, norm.Normalized[i], sampleText(summary.Sample[col])})
			}
			t.Render()
			return nil
		},
	}
}

type normalizeEntry struct {
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
	ShadowedBy string `json:"shadowed_by,omitempty"`
}

func newNormalizeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <file>",
		Short: "Show how each header is normalized and which duplicates are dropped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := core.NewService("")
			norm, err := svc.NormalizationPreview(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			entries := normalizeEntries(norm)
			w := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(w, entries)
			}

			t := newTable(w, "Original", "Normalized", "Note")
			for _, e := range entries {
				note := ""
				if e.ShadowedBy != "" {
					note = fmt.Sprintf("ignored, %q comes first", e.ShadowedBy)
				}
				t.AppendRow(table.Row{e.Original, e.Normalized, note})
			}
			t.Render()
			return nil
		},
	}
}

// normalizeEntries pairs headers with canonical names. A later header whose
// canonical name is already taken is marked with the header that keeps it.
func normalizeEntries(norm *core.NormalizationPreview) []normalizeEntry {
	first := make(map[string]string, len(norm.Normalized))
	entries := make([]normalizeEntry, len(norm.Normalized))
	for i, canonical := range norm.Normalized {
		entries[i] = normalizeEntry{Original: norm.Original[i], Normalized: canonical}
		if kept, ok := first[canonical]; ok {
			entries[i].ShadowedBy = kept
			continue
		}
		first[canonical] = norm.Original[i]
	}
	return entries
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
