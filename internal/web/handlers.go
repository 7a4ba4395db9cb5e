package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/logging"
	"github.com/JonMunkholm/datacleaner/internal/uploads"
	"github.com/JonMunkholm/datacleaner/internal/web/templates"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temp files.
const multipartMemory = 32 << 20

var errBadRequest = errors.New("invalid request body")

// ============================================================================
// Page and health
// ============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context(), uploads.DefaultListLimit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Index(list).Render(r.Context(), w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"limiter": s.limiter.Status(),
	})
}

// ============================================================================
// Uploads
// ============================================================================

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Multipart framing adds a little on top of the file itself; the store
	// enforces the exact file limit.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.respondError(w, r, err)
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	up, err := s.store.Save(ctx, header.Filename, file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(ctx).Info("file uploaded",
		"file_id", up.ID,
		"filename", up.OriginalName,
		"size", up.Size,
	)

	if isHTMX(r) {
		list, err := s.store.List(ctx, uploads.DefaultListLimit)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		templates.UploadList(list).Render(ctx, w)
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		ID:       up.ID,
		Filename: up.OriginalName,
		Size:     up.Size,
	})
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.UploadList(list).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// lookupUpload resolves the file_id query parameter.
func (s *Server) lookupUpload(r *http.Request) (*uploads.Upload, error) {
	id := strings.TrimSpace(r.URL.Query().Get("file_id"))
	if id == "" {
		return nil, fmt.Errorf("file_id is required: %w", core.ErrUploadNotFound)
	}
	return s.store.Get(r.Context(), id)
}

// ============================================================================
// Cleaning
// ============================================================================

// PreviewResponse carries both previews of one upload.
type PreviewResponse struct {
	FileID        string                     `json:"file_id"`
	Preview       *core.PreviewSummary       `json:"preview"`
	Normalization *core.NormalizationPreview `json:"normalization"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	up, err := s.lookupUpload(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.ProcessTimeout)
	defer cancel()

	var (
		preview *core.PreviewSummary
		norm    *core.NormalizationPreview
	)
	err = s.limiter.Do(ctx, func(ctx context.Context) error {
		var err error
		preview, norm, err = s.service.Inspect(ctx, up.StoragePath)
		return err
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.NormalizationTable(up.ID, preview, norm).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{
		FileID:        up.ID,
		Preview:       preview,
		Normalization: norm,
	})
}

// ProcessResponse describes the artifacts produced by one process call.
type ProcessResponse struct {
	FileID    string                `json:"file_id"`
	Rows      int                   `json:"rows"`
	Columns   []string              `json:"columns"`
	ImageName bool                  `json:"image_name"`
	Shadowed  []core.ShadowedColumn `json:"shadowed,omitempty"`
	Downloads map[string]string     `json:"downloads"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	up, err := s.lookupUpload(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	req, err := decodeProcessRequest(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(withRequestMetadata(r.Context(), r), s.cfg.Upload.ProcessTimeout)
	defer cancel()

	var result *core.CleanOutputResult
	err = s.limiter.Do(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.service.Process(ctx, up.StoragePath, req)
		return err
	})
	s.recordRun(ctx, up, req, result, err)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.ProcessResult(up.ID, result.Rows, result.Columns).Render(r.Context(), w)
		return
	}

	downloads := make(map[string]string, len(core.Variants))
	for _, v := range core.Variants {
		downloads[string(v)] = downloadURL(up.ID, v)
	}
	writeJSON(w, http.StatusOK, ProcessResponse{
		FileID:    up.ID,
		Rows:      result.Rows,
		Columns:   result.Columns,
		ImageName: result.ImageName,
		Shadowed:  result.Shadowed,
		Downloads: downloads,
	})
}

// recordRun writes the cleaning history entry. Failures are logged only.
func (s *Server) recordRun(ctx context.Context, up *uploads.Upload, req core.ProcessRequest, result *core.CleanOutputResult, procErr error) {
	run := uploads.Run{
		UploadID: up.ID,
		Status:   uploads.RunSucceeded,
		Columns:  req.Columns,
	}
	if result != nil {
		run.Rows = result.Rows
		run.Columns = result.Columns
	}
	if procErr != nil {
		run.Status = uploads.RunFailed
		run.Message = procErr.Error()
	}

	// The request context may already be done when processing timed out.
	if err := s.runs.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		logging.FromContext(ctx).Warn("failed to record cleaning run",
			"file_id", up.ID,
			"error", err,
		)
	}
}

func downloadURL(fileID string, v core.Variant) string {
	return fmt.Sprintf("/clean/download?file_id=%s&variant=%s", fileID, v)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	v, err := core.ParseVariant(r.URL.Query().Get("variant"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	up, err := s.lookupUpload(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	f, err := s.service.FetchArtifact(r.Context(), core.BaseName(up.StoragePath), v)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer f.Close()

	name := core.ArtifactName(core.BaseName(up.OriginalName), v)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	if _, err := io.Copy(w, f); err != nil {
		logging.FromContext(r.Context()).Warn("download interrupted", "file_id", up.ID, "error", err)
	}
}

// ============================================================================
// Request decoding
// ============================================================================

// processBody accepts both the JSON API shape and what the HTMX json-enc
// extension sends: a lone checkbox arrives as a string, not a list, and
// make_image_name as "true".
type processBody struct {
	Columns       flexStrings `json:"columns"`
	MakeImageName flexBool    `json:"make_image_name"`
}

type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("columns must be a string or a list of strings")
	}
	*f = splitColumns(one)
	return nil
}

type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("make_image_name must be a boolean")
	}
	*f = flexBool(truthy(str))
	return nil
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// splitColumns splits a comma separated list, dropping blanks.
func splitColumns(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// decodeProcessRequest reads a JSON or form-encoded process request. An empty
// body is a request with no columns.
func decodeProcessRequest(r *http.Request) (core.ProcessRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		// ParseForm leaves PostForm empty for multipart bodies.
		parse := r.ParseForm
		if mediaType == "multipart/form-data" {
			parse = func() error { return r.ParseMultipartForm(multipartMemory) }
		}
		if err := parse(); err != nil {
			return core.ProcessRequest{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}
		var cols []string
		for _, v := range r.PostForm["columns"] {
			cols = append(cols, splitColumns(v)...)
		}
		return core.ProcessRequest{
			Columns:       cols,
			MakeImageName: truthy(r.PostForm.Get("make_image_name")),
		}, nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return core.ProcessRequest{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return core.ProcessRequest{}, nil
	}

	var body processBody
	if err := json.Unmarshal(data, &body); err != nil {
		return core.ProcessRequest{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return core.ProcessRequest{
		Columns:       body.Columns,
		MakeImageName: bool(body.MakeImageName),
	}, nil
}
