package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/logging"
	"github.com/JonMunkholm/datacleaner/internal/preset"
)

type processOptions struct {
	columns     []string
	preset      string
	presetsFile string
	imageName   bool
	out         string
	concurrency int
}

// fileResult is the outcome for one input file.
type fileResult struct {
	File   string                  `json:"file"`
	Result *core.CleanOutputResult `json:"result,omitempty"`
	Error  string                  `json:"error,omitempty"`
	Code   string                  `json:"code,omitempty"`

	err error
}

func newProcessCmd(root *rootOptions) *cobra.Command {
	opts := &processOptions{}

	cmd := &cobra.Command{
		Use:   "process <file>...",
		Short: "Export selected columns as semicolon and comma separated files",
		Example: `  # Pick columns by their normalized names
  datacleaner process catalogo.xlsx --columns PLU,DESC_PLU,PRECIO_VENTA

  # Use a saved preset on several files, two at a time
  datacleaner process enero.csv febrero.csv --preset catalogo --concurrency 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request()
			if err != nil {
				return err
			}
			if err := checkDistinctNames(args); err != nil {
				return err
			}

			results := runBatch(cmd, args, req, opts)

			w := cmd.OutOrStdout()
			if root.json {
				if err := writeJSON(w, results); err != nil {
					return err
				}
			} else {
				renderResults(cmd, results)
			}
			return batchError(results)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.columns, "columns", "c", nil, "Normalized column names to export, in order")
	cmd.Flags().StringVarP(&opts.preset, "preset", "p", "", "Name of a saved preset to use")
	cmd.Flags().StringVar(&opts.presetsFile, "presets-file", DefaultPresetsFile, "Preset file")
	cmd.Flags().BoolVar(&opts.imageName, "image-name", false, "Add the IMAGEN column when PLU, ID_MARCA, DESC_PLU and CONTENIDO are selected")
	cmd.Flags().StringVarP(&opts.out, "out", "o", core.DefaultOutputDir, "Directory for the generated files")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", core.DefaultMaxConcurrent, "Files processed at once")
	cmd.MarkFlagsMutuallyExclusive("columns", "preset")
	cmd.MarkFlagsOneRequired("columns", "preset")

	return cmd
}

// request builds the selection from --columns or a preset. --image-name
// turns synthesis on even when the preset leaves it off.
func (o *processOptions) request() (core.ProcessRequest, error) {
	var req core.ProcessRequest
	if o.preset != "" {
		set, err := preset.LoadFile(o.presetsFile)
		if err != nil {
			return req, err
		}
		p, err := set.Get(o.preset)
		if err != nil {
			return req, err
		}
		req = p.Request()
	} else {
		for _, c := range o.columns {
			if c = strings.TrimSpace(c); c != "" {
				req.Columns = append(req.Columns, c)
			}
		}
	}
	req.MakeImageName = req.MakeImageName || o.imageName

	if len(req.Columns) == 0 {
		return req, core.ErrEmptySelection
	}
	return req, nil
}

// checkDistinctNames rejects batches where two inputs would write the same
// artifacts, e.g. a/datos.csv and b/datos.xlsx.
func checkDistinctNames(files []string) error {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		base := core.BaseName(f)
		if prev, ok := seen[base]; ok {
			return fmt.Errorf("%s and %s would both write %s: process them separately",
				prev, f, core.ArtifactName(base, core.VariantComma))
		}
		seen[base] = f
	}
	return nil
}

// runBatch processes files with bounded concurrency. One failing file does
// not stop the others.
func runBatch(cmd *cobra.Command, files []string, req core.ProcessRequest, opts *processOptions) []fileResult {
	ctx := cmd.Context()
	svc := core.NewService(opts.out)
	results := make([]fileResult, len(files))

	var g errgroup.Group
	if opts.concurrency > 0 {
		g.SetLimit(opts.concurrency)
	}

	for i, file := range files {
		g.Go(func() error {
			res := fileResult{File: file}
			out, err := svc.Process(ctx, file, req)
			if err != nil {
				res.err = err
				res.Error = err.Error()
				res.Code = core.MapError(err).Code
				logging.FromContext(ctx).Debug("process failed", "file", file, "error", err)
			} else {
				res.Result = out
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func renderResults(cmd *cobra.Command, results []fileResult) {
	t := newTable(cmd.OutOrStdout(), "File", "Rows", "Columns", "Output")
	for _, r := range results {
		if r.Result == nil {
			t.AppendRow(table.Row{r.File, "-", "-", "FAILED (" + r.Code + ")"})
			continue
		}
		t.AppendRow(table.Row{
			r.File,
			r.Result.Rows,
			strings.Join(r.Result.Columns, ", "),
			filepath.Base(r.Result.SemicolonPath) + "\n" + filepath.Base(r.Result.CommaPath),
		})
		for _, sh := range r.Result.Shadowed {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: column %q ignored, %q also normalizes to %s\n",
				r.File, sh.Source, sh.KeptBy, sh.Canonical)
		}
	}
	t.Render()
}

// batchError summarizes failures. A single-file run returns that file's
// error unchanged so its code is reported.
func batchError(results []fileResult) error {
	var failed []string
	for _, r := range results {
		if r.err != nil {
			failed = append(failed, r.File+": "+r.Error)
		}
	}
	switch {
	case len(failed) == 0:
		return nil
	case len(results) == 1:
		return results[0].err
	}
	return fmt.Errorf("%d of %d files failed\n  %s",
		len(failed), len(results), strings.Join(failed, "\n  "))
}
