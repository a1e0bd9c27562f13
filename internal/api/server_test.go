package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docdistill/internal/config"
	"github.com/dgallion1/docdistill/internal/pipeline"
	"github.com/dgallion1/docdistill/internal/store"
)

const testAPIKey = "test-key"

// newTestServer wires a server around an unstarted orchestrator, so submitted
// jobs stay queued and handlers can be exercised without a provider.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		DistillAPIKey:        testAPIKey,
		WorkerCount:          1,
		MaxQueueSize:         10,
		MaxConcurrentExtract: 2,
		MaxUploadBytes:       1 << 20,
		KnowledgeWindow:      3,
		KnowledgeOverlap:     1,
		QuizWindow:           2500,
		QuizOverlap:          100,
		DefaultQuestionType:  "Long Answer",
		AnswerCharLimit:      200,
		JobTTL:               time.Hour,
	}
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	log := slog.New(slog.DiscardHandler)
	orch := pipeline.NewOrchestrator(cfg, nil, st, log)
	return NewServer(orch, nil, nil, log, cfg)
}

func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func doRequest(s *Server, method, path string, body io.Reader, contentType string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testAPIKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/health", nil, "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/artifacts", nil, "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/artifacts", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExtractSubmitAndStatus(t *testing.T) {
	s := newTestServer(t)

	body, ct := multipartUpload(t, "notes.txt", []byte("Some content."), map[string]string{
		"schema": "knowledge",
	})
	rec := doRequest(s, http.MethodPost, "/api/extract", body, ct, true)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		JobID  string `json:"job_id"`
		DocID  string `json:"doc_id"`
		Schema string `json:"schema"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	assert.NotEmpty(t, resp.DocID)
	assert.Equal(t, "knowledge", resp.Schema)
	assert.Equal(t, string(pipeline.StatusQueued), resp.Status)

	rec = doRequest(s, http.MethodGet, "/api/extract/"+resp.JobID+"/status", nil, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		Status string `json:"status"`
		Phase  string `json:"phase"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, string(pipeline.StatusQueued), status.Status)
}

func TestExtractStatusNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/api/extract/no-such-job/status", nil, "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExtractRejectsUnknownSchema(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartUpload(t, "notes.txt", []byte("content"), map[string]string{
		"schema": "flashcards",
	})
	rec := doRequest(s, http.MethodPost, "/api/extract", body, ct, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown schema")
}

func TestExtractRejectsInvalidWindow(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartUpload(t, "notes.txt", []byte("content"), map[string]string{
		"window": "0",
	})
	rec := doRequest(s, http.MethodPost, "/api/extract", body, ct, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartUpload(t, "notes.txt", []byte("content"), map[string]string{
		"overlap": "-1",
	})
	rec = doRequest(s, http.MethodPost, "/api/extract", body, ct, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractRejectsUnsupportedFileType(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartUpload(t, "image.png", []byte{0x89, 0x50}, nil)
	rec := doRequest(s, http.MethodPost, "/api/extract", body, ct, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported file type")
}

func TestExtractRejectsBadQuestionType(t *testing.T) {
	s := newTestServer(t)
	body, ct := multipartUpload(t, "notes.txt", []byte("content"), map[string]string{
		"schema":        "quiz",
		"question_type": "Essay",
	})
	rec := doRequest(s, http.MethodPost, "/api/extract", body, ct, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "question_type")
}

func TestArtifactEndpoints(t *testing.T) {
	s := newTestServer(t)
	st := s.orchestrator.ArtifactStore()
	require.NoError(t, st.Save("doc-a", map[string]string{"title": "A"}))
	require.NoError(t, st.Save("doc-b", map[string]string{"title": "B"}))

	rec := doRequest(s, http.MethodGet, "/api/artifacts", nil, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Artifacts []string `json:"artifacts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, []string{"doc-a", "doc-b"}, list.Artifacts)

	rec = doRequest(s, http.MethodGet, "/api/artifacts/doc-a", nil, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title": "A"`)

	rec = doRequest(s, http.MethodGet, "/api/artifacts/missing", nil, "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// IDs the store refuses are client errors, not server errors.
	rec = doRequest(s, http.MethodGet, "/api/artifacts/bad..id", nil, "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodDelete, "/api/artifacts/bad..id", nil, "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodDelete, "/api/artifacts/doc-a", nil, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted":true`)
	assert.False(t, st.Exists("doc-a"))
}

func TestLLMStatsUnavailableWithoutProvider(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/api/stats/llm", nil, "", true)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBatchExtract(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"a.txt", "b.md"} {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("content"))
		require.NoError(t, err)
	}
	fw, err := mw.CreateFormFile("files", "bad.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte{0x89})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := doRequest(s, http.MethodPost, "/api/extract/batch", &buf, mw.FormDataContentType(), true)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Jobs []map[string]any `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 3)
	assert.NotEmpty(t, resp.Jobs[0]["job_id"])
	assert.NotEmpty(t, resp.Jobs[1]["job_id"])
	assert.Contains(t, resp.Jobs[2]["error"], "unsupported file type")
}
