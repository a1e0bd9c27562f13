package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dgallion1/docdistill/internal/chunker"
	"github.com/dgallion1/docdistill/internal/parser"
	"github.com/dgallion1/docdistill/internal/pipeline"
	"github.com/dgallion1/docdistill/internal/schema"
)

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
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

	job, errMsg, code := s.buildJob(r.Form, header.Filename, file)
	if errMsg != "" {
		jsonError(w, errMsg, code)
		return
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"doc_id":   job.DocID,
		"schema":   job.Schema,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/extract/%s/status", job.ID),
	})
}

func (s *Server) handleExtractStatus(w http.ResponseWriter, r *http.Request) {
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
		"doc_id":   snap.DocID,
		"schema":   snap.Schema,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	})
}

func (s *Server) handleBatchExtract(w http.ResponseWriter, r *http.Request) {
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

	var results []map[string]any
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{
				"filename": sanitizeFilename(fh.Filename),
				"error":    "failed to open file",
			})
			continue
		}

		job, errMsg, _ := s.buildJob(r.Form, fh.Filename, f)
		f.Close()
		if errMsg != "" {
			results = append(results, map[string]any{
				"filename": sanitizeFilename(fh.Filename),
				"error":    errMsg,
			})
			continue
		}

		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": job.Filename,
				"error":    err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"filename": job.Filename,
			"job_id":   job.ID,
			"doc_id":   job.DocID,
			"schema":   job.Schema,
			"status":   job.Status,
			"poll_url": fmt.Sprintf("/api/extract/%s/status", job.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

// buildJob validates the shared form fields and file content and assembles a
// queued job. On failure it returns a client-facing message and status code.
func (s *Server) buildJob(form url.Values, rawFilename string, file multipart.File) (*pipeline.Job, string, int) {
	filename := sanitizeFilename(rawFilename)
	if !parser.IsSupportedExtension(filename) {
		return nil, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest
	}

	kindStr := form.Get("schema")
	if kindStr == "" {
		kindStr = string(schema.KindKnowledge)
	}
	if !schema.IsValidKind(kindStr) {
		return nil, fmt.Sprintf("unknown schema %q (want knowledge or quiz)", kindStr), http.StatusBadRequest
	}
	kind := schema.Kind(kindStr)

	window := s.cfg.KnowledgeWindow
	overlap := s.cfg.KnowledgeOverlap
	if kind == schema.KindQuiz {
		window = s.cfg.QuizWindow
		overlap = s.cfg.QuizOverlap
	}
	if v := form.Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, "window must be an integer", http.StatusBadRequest
		}
		window = n
	}
	if v := form.Get("overlap"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, "overlap must be an integer", http.StatusBadRequest
		}
		overlap = n
	}
	if err := (chunker.Config{Window: window, Overlap: overlap}).Validate(); err != nil {
		return nil, err.Error(), http.StatusBadRequest
	}

	questionType := form.Get("question_type")
	if questionType == "" {
		questionType = s.cfg.DefaultQuestionType
	}
	if kind == schema.KindQuiz && !schema.IsValidQuestionType(questionType) {
		return nil, fmt.Sprintf("unknown question_type %q", questionType), http.StatusBadRequest
	}

	charLimit := s.cfg.AnswerCharLimit
	if v := form.Get("char_limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			charLimit = n
		}
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, "failed to read file", http.StatusInternalServerError
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge
	}

	docID := form.Get("doc_id")
	if docID == "" {
		docID = uuid.NewString()
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:           uuid.NewString(),
		DocID:        docID,
		Schema:       kind,
		Status:       pipeline.StatusQueued,
		Phase:        "queued",
		Filename:     filename,
		Title:        form.Get("title"),
		QuestionType: questionType,
		CharLimit:    charLimit,
		Window:       window,
		Overlap:      overlap,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	job.SetFileData(data)
	return job, "", 0
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
