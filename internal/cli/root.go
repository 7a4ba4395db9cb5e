// Package cli implements the datacleaner command line: previews, the
// normalization table, batch processing and saved presets.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/logging"
)

// Version is set at build time.
var Version = "dev"

// DefaultPresetsFile is read when --presets-file is not given.
const DefaultPresetsFile = "presets.yaml"

type rootOptions struct {
	logLevel  string
	logFormat string
	json      bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "datacleaner",
		Short: "Normalize spreadsheet headers and export clean CSV files",
		Long: `datacleaner loads CSV, XLS or XLSX files, normalizes their column names
(upper case, no accents, spaces as underscores) and exports a selection of
columns as {name}_SEMICOLON.csv and {name}_COMMA.csv.`,
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			logger := logging.New(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
			cmd.SetContext(logging.WithLogger(ctx, logger))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text|json)")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print results as JSON")

	cmd.AddCommand(newPreviewCmd(opts))
	cmd.AddCommand(newNormalizeCmd(opts))
	cmd.AddCommand(newProcessCmd(opts))
	cmd.AddCommand(newPresetsCmd(opts))

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if core.IsUserFacing(err) {
			fmt.Fprintf(stderr, "%s\n", core.FormatUserError(err))
		}
		return 1
	}
	return 0
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))
	return t
}
