package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"docgraph/internal/importer"
	"docgraph/internal/model"
	"docgraph/internal/parser"
	"docgraph/internal/pipeline"
)

// chunkPreviewRunes bounds chunk text in result responses unless the full
// text is requested.
const chunkPreviewRunes = 200

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := s.readUpload(file)
	if err != nil {
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	cfg, err := s.importConfigFromForm(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(uuid.NewString(), filename, data, cfg)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Snapshot().Status,
		"poll_url": fmt.Sprintf("/api/import/%s/status", job.ID),
	})
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"filename": snap.Filename,
		"progress": snap.Progress,
	})
}

func (s *Server) handleImportResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	result := job.Result()
	if result == nil {
		jsonError(w, "result not ready", http.StatusConflict)
		return
	}

	if r.URL.Query().Get("include_text") != "true" {
		result = previewResult(result)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleBatchImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	cfg, err := s.importConfigFromForm(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var results []map[string]any
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}

		data, err := s.readUpload(f)
		f.Close()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		job := pipeline.NewJob(uuid.NewString(), filename, data, cfg)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"status":   job.Snapshot().Status,
			"poll_url": fmt.Sprintf("/api/import/%s/status", job.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

type directoryImportRequest struct {
	Path       string   `json:"path"`
	Recursive  bool     `json:"recursive"`
	Extensions []string `json:"extensions"`

	ChunkSize             *int     `json:"chunk_size"`
	ChunkOverlap          *int     `json:"chunk_overlap"`
	Language              *string  `json:"language"`
	AutoDetectLanguage    *bool    `json:"auto_detect_language"`
	BuildCorrelationGraph *bool    `json:"build_correlation_graph"`
	SimilarityThreshold   *float64 `json:"similarity_threshold"`
}

// handleDirectoryImport imports every supported file under a server-local
// directory synchronously and returns per-document summaries.
func (s *Server) handleDirectoryImport(w http.ResponseWriter, r *http.Request) {
	var req directoryImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		jsonError(w, "path is required", http.StatusBadRequest)
		return
	}

	cfg := s.cfg.ImportConfig()
	if req.ChunkSize != nil {
		cfg.ChunkSize = *req.ChunkSize
	}
	if req.ChunkOverlap != nil {
		cfg.ChunkOverlap = *req.ChunkOverlap
	}
	if req.Language != nil {
		cfg.DefaultLanguage = model.Language(*req.Language)
	}
	if req.AutoDetectLanguage != nil {
		cfg.AutoDetectLanguage = *req.AutoDetectLanguage
	}
	if req.BuildCorrelationGraph != nil {
		cfg.BuildCorrelationGraph = *req.BuildCorrelationGraph
	}
	if req.SimilarityThreshold != nil {
		cfg.SemanticSimilarityThreshold = *req.SimilarityThreshold
	}
	if err := cfg.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, err := s.orchestrator.Importer().ImportDirectory(r.Context(), req.Path, cfg, importer.DirectoryOptions{
		Recursive:  req.Recursive,
		Extensions: req.Extensions,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, importer.ErrInputNotFound) {
			status = http.StatusNotFound
		}
		jsonError(w, err.Error(), status)
		return
	}

	summaries := make([]map[string]any, 0, len(results))
	for _, result := range results {
		summaries = append(summaries, map[string]any{
			"import_id":    result.ID,
			"filename":     result.Document.FileName,
			"status":       result.Status,
			"language":     result.Document.Language,
			"elements":     result.ElementCount,
			"chunks":       result.ChunkCount,
			"total_tokens": result.TotalTokens,
			"errors":       result.Errors,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"imported": len(results),
		"results":  summaries,
	})
}

// importConfigFromForm applies optional form overrides to the configured
// defaults and validates the outcome.
func (s *Server) importConfigFromForm(r *http.Request) (model.ImportConfig, error) {
	cfg := s.cfg.ImportConfig()

	if v := r.FormValue("chunk_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid chunk_size: %s", v)
		}
		cfg.ChunkSize = n
	}
	if v := r.FormValue("chunk_overlap"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid chunk_overlap: %s", v)
		}
		cfg.ChunkOverlap = n
	}
	if v := r.FormValue("language"); v != "" {
		cfg.DefaultLanguage = model.Language(v)
	}
	if v := r.FormValue("auto_detect_language"); v != "" {
		cfg.AutoDetectLanguage = v == "true"
	}
	if v := r.FormValue("build_correlation_graph"); v != "" {
		cfg.BuildCorrelationGraph = v == "true"
	}
	if v := r.FormValue("similarity_threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid similarity_threshold: %s", v)
		}
		cfg.SemanticSimilarityThreshold = f
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (s *Server) readUpload(f multipart.File) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return data, nil
}

// previewResult returns a copy with chunk text truncated for response size.
func previewResult(result *model.ImportResult) *model.ImportResult {
	copied := *result
	copied.Chunks = make([]model.TextChunk, len(result.Chunks))
	for i, chunk := range result.Chunks {
		chunk.Text = truncateRunes(chunk.Text, chunkPreviewRunes)
		copied.Chunks[i] = chunk
	}
	// Element text can be as large as chunk text.
	copied.Elements = make([]model.NormalizedElement, len(result.Elements))
	for i, elem := range result.Elements {
		elem.Text = truncateRunes(elem.Text, chunkPreviewRunes)
		copied.Elements[i] = elem
	}
	return &copied
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
