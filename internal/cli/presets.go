package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datacleaner/internal/preset"
)

func newPresetsCmd(root *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List and save column selections",
	}
	cmd.PersistentFlags().StringVar(&file, "presets-file", DefaultPresetsFile, "Preset file")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := preset.LoadFile(file)
			if err != nil {
				return err
			}
			if root.json {
				return writeJSON(cmd.OutOrStdout(), set.Presets)
			}

			t := newTable(cmd.OutOrStdout(), "Name", "Columns", "IMAGEN", "Description")
			for _, p := range set.Presets {
				t.AppendRow(table.Row{p.Name, strings.Join(p.Columns, ", "), p.MakeImageName, p.Description})
			}
			t.Render()
			return nil
		},
	})

	cmd.AddCommand(newPresetSaveCmd(&file))
	return cmd
}

func newPresetSaveCmd(file *string) *cobra.Command {
	var p preset.Preset

	cmd := &cobra.Command{
		Use:     "save <name>",
		Short:   "Add a preset, or replace the one with the same name",
		Example: `  datacleaner presets save catalogo --columns PLU,ID_MARCA,DESC_PLU,CONTENIDO --image-name`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Name = args[0]

			set, err := preset.LoadFile(*file)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				set = &preset.Set{}
			case err != nil:
				return err
			}

			replaced := false
			for i := range set.Presets {
				if strings.EqualFold(set.Presets[i].Name, p.Name) {
					set.Presets[i] = p
					replaced = true
				}
			}
			if !replaced {
				set.Presets = append(set.Presets, p)
			}
			if err := set.Validate(); err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := preset.Write(&buf, set); err != nil {
				return err
			}
			if err := os.WriteFile(*file, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write preset file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved preset %q to %s\n", p.Name, *file)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&p.Columns, "columns", "c", nil, "Normalized column names, in order")
	cmd.Flags().BoolVar(&p.MakeImageName, "image-name", false, "Add the IMAGEN column")
	cmd.Flags().StringVar(&p.Description, "description", "", "What the preset is for")
	_ = cmd.MarkFlagRequired("columns")
	return cmd
}
