package core

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/datacleaner/internal/logging"
)

// ProcessRequest selects canonical columns for one export.
type ProcessRequest struct {
	Columns       []string `json:"columns" yaml:"columns"`
	MakeImageName bool     `json:"make_image_name" yaml:"make_image_name"`
}

// CleanOutputResult describes one successful Process call.
type CleanOutputResult struct {
	Rows          int              `json:"rows"`
	Columns       []string         `json:"columns"`
	SemicolonPath string           `json:"semicolon_path"`
	CommaPath     string           `json:"comma_path"`
	ImageName     bool             `json:"image_name"`
	Shadowed      []ShadowedColumn `json:"shadowed,omitempty"`
	Duration      time.Duration    `json:"-"`
}

// Service runs the cleaning pipeline. It holds no per-call state; the only
// side effect is writing artifacts through its OutputWriter.
type Service struct {
	outputs *OutputWriter
}

// NewService creates a Service that writes artifacts under outputDir.
func NewService(outputDir string) *Service {
	return &Service{outputs: NewOutputWriter(outputDir)}
}

// Outputs returns the writer used for artifacts.
func (s *Service) Outputs() *OutputWriter {
	return s.outputs
}

// Preview loads path and summarizes it.
func (s *Service) Preview(ctx context.Context, path string) (*PreviewSummary, error) {
	ds, err := Load(path)
	if err != nil {
		return nil, err
	}
	return BuildPreview(ds), nil
}

// NormalizationPreview loads path and returns original and canonical headers.
func (s *Service) NormalizationPreview(ctx context.Context, path string) (*NormalizationPreview, error) {
	ds, err := Load(path)
	if err != nil {
		return nil, err
	}
	return BuildNormalizationPreview(ds.ColumnNames()), nil
}

// Inspect loads path once and returns both previews.
func (s *Service) Inspect(ctx context.Context, path string) (*PreviewSummary, *NormalizationPreview, error) {
	ds, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	return BuildPreview(ds), BuildNormalizationPreview(ds.ColumnNames()), nil
}

// Process loads path, projects the requested canonical columns, optionally
// adds IMAGEN, and writes both artifacts named after the file's base name.
//
// Fails with ErrFileNotFound, ErrUnsupportedFileType, ErrEmptySource,
// ErrEmptySelection or *MissingColumnsError. Nothing is written on failure.
func (s *Service) Process(ctx context.Context, path string, req ProcessRequest) (*CleanOutputResult, error) {
	start := time.Now()
	logger := logging.WithFields(ctx, "file", filepath.Base(path))

	ds, err := Load(path)
	if err != nil {
		return nil, err
	}

	cm := BuildColumnMap(ds.ColumnNames())
	for _, sh := range cm.Shadowed() {
		logger.Warn("column shadowed by earlier header",
			"source", sh.Source,
			"canonical", sh.Canonical,
			"kept_by", sh.KeptBy,
		)
	}

	cols, err := cm.Resolve(req.Columns)
	if err != nil {
		return nil, err
	}

	table := Project(ds, cols, req.Columns)

	imageName := false
	if req.MakeImageName {
		imageName = SynthesizeImageName(table)
		if !imageName {
			logger.Debug("image name skipped, required columns not selected",
				"required", ImageNameFields,
			)
		}
	}

	artifacts, err := s.outputs.Write(table, BaseName(path))
	if err != nil {
		return nil, err
	}

	result := &CleanOutputResult{
		Rows:          table.Len(),
		Columns:       append([]string(nil), table.Columns...),
		SemicolonPath: artifacts.SemicolonPath,
		CommaPath:     artifacts.CommaPath,
		ImageName:     imageName,
		Shadowed:      cm.Shadowed(),
		Duration:      time.Since(start),
	}

	logger.Info("process completed",
		"rows", result.Rows,
		"columns", len(result.Columns),
		"image_name", imageName,
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, nil
}

// FetchArtifact opens a previously written artifact. The caller closes it.
func (s *Service) FetchArtifact(ctx context.Context, baseName string, v Variant) (io.ReadCloser, error) {
	return s.outputs.Open(baseName, v)
}

// BaseName is the file name of path without directory or extension.
// Artifacts are keyed by it.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
