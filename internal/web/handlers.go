package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dataveil/dataveil/internal/anonymize"
	"github.com/dataveil/dataveil/internal/audit"
	"github.com/dataveil/dataveil/internal/dataset"
	"github.com/dataveil/dataveil/internal/logging"
	"github.com/dataveil/dataveil/internal/security"
	"github.com/dataveil/dataveil/internal/store"
)

// maxMultipartMemory bounds the in-memory portion of multipart parsing;
// larger bodies spill to temp files.
const maxMultipartMemory = 32 << 20

// handleUpload accepts a multipart file upload, validates it, and stores it
// under a sanitized name.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		respondError(w, r, fmt.Errorf("no file provided: %w", err), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, fmt.Errorf("no file provided: %w", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	path, err := s.store.SaveUpload(header.Filename, file)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	validation := security.ValidateUpload(path, s.cfg.Upload.MaxFileSizeMB)
	if !validation.Valid {
		s.store.Remove(path)
		respondError(w, r, fmt.Errorf("file validation failed: %s", strings.Join(validation.Issues, "; ")), http.StatusBadRequest)
		return
	}

	stored := filepath.Base(path)
	detected := detectPatternsInFile(path)
	entry := s.auditor.Record(r.Context(), audit.ActionFileUpload, map[string]any{
		"original_filename":  header.Filename,
		"sanitized_filename": stored,
		"file_size_mb":       validation.SizeMB,
		"warnings":           validation.Warnings,
		"detected_patterns":  detected,
	})

	logging.FromContext(r.Context()).Info("file uploaded",
		"filename", stored,
		"size_mb", validation.SizeMB,
		"detected_patterns", detected,
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "success",
		"filename":          stored,
		"message":           fmt.Sprintf("File %s uploaded successfully", stored),
		"file_size_mb":      validation.SizeMB,
		"warnings":          validation.Warnings,
		"detected_patterns": detected,
		"audit_id":          entry.Hash,
	})
}

// patternScanLimit bounds how much of a file the sensitive-pattern scan
// reads. The scan advises which columns likely need anonymizing; a prefix
// is enough for that.
const patternScanLimit = 256 << 10

// detectPatternsInFile scans the head of a stored file for sensitive data
// patterns. XLSX is a zip container, so its bytes are scanned per sheet via
// the dataset loader instead of raw.
func detectPatternsInFile(path string) []string {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		ds, err := dataset.Load(path, "")
		if err != nil {
			return []string{}
		}
		var b strings.Builder
		for _, sheet := range ds.Sheets {
			for _, row := range sheet.Table.Rows {
				if b.Len() > patternScanLimit {
					break
				}
				for _, v := range row {
					b.WriteString(dataset.FormatValue(v))
					b.WriteByte(' ')
				}
			}
		}
		return nonNil(security.DetectSensitivePatterns(b.String()))
	}

	f, err := os.Open(path)
	if err != nil {
		return []string{}
	}
	defer f.Close()
	head, err := io.ReadAll(io.LimitReader(f, patternScanLimit))
	if err != nil {
		return []string{}
	}
	return nonNil(security.DetectSensitivePatterns(string(head)))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// anonymizeRequest is the wire form of an anonymization request.
type anonymizeRequest struct {
	Filename      string `json:"filename"`
	OutputFormat  string `json:"output_format"`
	MaskingConfig string `json:"masking_config"`
	SelectedSheet string `json:"selected_sheet"`
}

// parseAnonymizeRequest accepts both form-encoded and multipart bodies.
func parseAnonymizeRequest(r *http.Request) (anonymizeRequest, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		if err := r.ParseForm(); err != nil {
			return anonymizeRequest{}, fmt.Errorf("parse request: %w", err)
		}
	}
	return anonymizeRequest{
		Filename:      r.FormValue("filename"),
		OutputFormat:  r.FormValue("output_format"),
		MaskingConfig: r.FormValue("masking_config"),
		SelectedSheet: r.FormValue("selected_sheet"),
	}, nil
}

// handleAnonymize validates the request, registers a job, and runs the
// anonymization in the background. The response carries the job ID for
// polling and the eventual result filename.
func (s *Server) handleAnonymize(w http.ResponseWriter, r *http.Request) {
	req, err := parseAnonymizeRequest(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	raw := []byte(req.MaskingConfig)
	issues, err := anonymize.ValidateMaskingConfig(raw)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if len(issues) > 0 {
		respondError(w, r, fmt.Errorf("unknown anonymization method: %s", strings.Join(issues, "; ")), http.StatusBadRequest)
		return
	}
	cfg, err := anonymize.ParseMaskingConfig(raw)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	inputPath, err := s.store.Resolve(req.Filename)
	if err != nil {
		respondError(w, r, fmt.Errorf("file not found: %s", req.Filename), http.StatusNotFound)
		return
	}
	validation := security.ValidateUpload(inputPath, s.cfg.Upload.MaxFileSizeMB)
	if !validation.Valid {
		respondError(w, r, fmt.Errorf("input file validation failed: %s", strings.Join(validation.Issues, "; ")), http.StatusBadRequest)
		return
	}

	sessionID, err := security.SessionID()
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	resultName := security.SanitizeFilename(fmt.Sprintf("anonymized_%s_%s", sessionID[:8], filepath.Base(inputPath)))
	outputPath := filepath.Join(s.store.UploadsDir, resultName)

	job := anonymize.Job{
		InputPath:     inputPath,
		OutputPath:    outputPath,
		OutputFormat:  req.OutputFormat,
		SelectedSheet: req.SelectedSheet,
		Config:        cfg,
	}
	if err := job.ValidateFormat(); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	jobID := s.jobs.create(filepath.Base(inputPath), resultName)

	entry := s.auditor.Record(r.Context(), audit.ActionAnonymizationStarted, map[string]any{
		"job_id":         jobID,
		"input_file":     filepath.Base(inputPath),
		"output_file":    resultName,
		"selected_sheet": req.SelectedSheet,
	})

	go s.runJob(jobID, job)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":      "processing",
		"message":     "Anonymization job started",
		"job_id":      jobID,
		"result_file": resultName,
		"audit_id":    entry.Hash,
	})
}

// runJob executes one background anonymization run and records its outcome.
func (s *Server) runJob(jobID string, job anonymize.Job) {
	s.jobs.setRunning(jobID)
	logger := logging.WithFields(s.jobCtx, "job_id", jobID, "input", job.InputPath)
	logger.Info("anonymization started")

	report, err := s.engine.Run(s.jobCtx, job)
	s.jobs.finish(jobID, report, err)

	if err != nil {
		logger.Error("anonymization failed", "error", err)
		s.auditor.Record(s.jobCtx, audit.ActionAnonymizationFailed, map[string]any{
			"job_id": jobID,
			"error":  err.Error(),
		})
		return
	}

	applied, skipped, removed := report.Counts()
	logger.Info("anonymization completed",
		"applied", applied,
		"skipped", skipped,
		"removed", removed,
	)
	s.auditor.Record(s.jobCtx, audit.ActionAnonymizationCompleted, map[string]any{
		"job_id":  jobID,
		"applied": applied,
		"skipped": skipped,
		"removed": removed,
	})
}

// handleJobStatus reports the state of one background job.
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.jobs.get(chi.URLParam(r, "jobID"))
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleDownload streams a stored file back to the client.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	path, err := s.store.Resolve(name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, r, fmt.Errorf("file not found: %s", name), http.StatusNotFound)
			return
		}
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, path)
}

// handleListSamples lists the sample files available for anonymization.
func (s *Server) handleListSamples(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.ListSamples()
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// handleGenerateSamples regenerates the demo datasets.
func (s *Server) handleGenerateSamples(w http.ResponseWriter, r *http.Request) {
	files, err := s.samples.GenerateAll()
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	kinds := make([]string, 0, len(files))
	for kind := range files {
		kinds = append(kinds, kind)
	}

	s.auditor.Record(r.Context(), audit.ActionSampleGenerate, map[string]any{
		"files": kinds,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Sample files generated successfully",
		"files":   kinds,
	})
}

// handleStatus reports service health and capabilities.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "running",
		"version":     Version,
		"samples_dir": s.store.SamplesDir,
		"security_features": map[string]any{
			"file_validation":      true,
			"auto_cleanup":         true,
			"audit_persistence":    s.auditor.Persistent(),
			"max_file_size_mb":     s.cfg.Upload.MaxFileSizeMB,
			"supported_algorithms": []string{"sha256", "sha512", "md5"},
			"privacy_methods":      anonymize.Methods(),
		},
	})
}

// handleCleanup removes stale uploads on demand.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := s.store.Cleanup(s.cfg.Cleanup.Retention)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if removed == nil {
		removed = []string{}
	}

	s.auditor.Record(r.Context(), audit.ActionCleanup, map[string]any{
		"removed": removed,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"message":       fmt.Sprintf("Cleaned up %d temporary files", len(removed)),
		"cleaned_files": removed,
	})
}

// handleVerify compares an anonymized result against its original and
// reports the heuristic quality measures: word overlap and a
// sensitive-pattern scan of the output.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, r, fmt.Errorf("parse request: %w", err), http.StatusBadRequest)
		return
	}

	read := func(field string) (string, bool) {
		name := r.FormValue(field)
		path, err := s.store.Resolve(name)
		if err != nil {
			respondError(w, r, fmt.Errorf("file not found: %s", name), http.StatusNotFound)
			return "", false
		}
		f, err := os.Open(path)
		if err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
			return "", false
		}
		defer f.Close()
		content, err := io.ReadAll(io.LimitReader(f, patternScanLimit))
		if err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
			return "", false
		}
		return string(content), true
	}

	original, ok := read("original")
	if !ok {
		return
	}
	anonymized, ok := read("anonymized")
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, security.VerifyQuality(original, anonymized))
}

// handleAuditLog returns recent persisted audit entries. Without a database
// the service runs log-only and the entry list is empty.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, r, fmt.Errorf("invalid limit %q", v), http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.auditor.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"persistent": s.auditor.Persistent(),
		"entries":    entries,
	})
}
