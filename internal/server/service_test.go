package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumtech/hiredroid/internal/pipeline"
	"github.com/quantumtech/hiredroid/internal/repository"
)

func newTestServer(t *testing.T) (*Server, repository.ArtifactStore) {
	t.Helper()
	db, err := repository.Open(context.Background(), repository.Config{Driver: "sqlite", Path: t.TempDir()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	jobs := repository.NewJobRepository(db, nil)
	candidates := repository.NewCandidateRepository(db, nil)
	store := repository.NewArtifactStore(db, nil)

	// No workers are wired: every tested path halts at a gate before any stage
	// worker would run.
	engine := pipeline.NewEngine(nil, jobs, candidates, store, pipeline.Workers{}, pipeline.Policy{})
	return New(nil, engine, jobs, candidates, store, nil, nil, Config{InboxDir: t.TempDir()}), store
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestJobLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/api/jobs/job-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(s, http.MethodPost, "/api/jobs", `{"id": "job-1", "title": "Backend Engineer", "description": "Go services"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(s, http.MethodGet, "/api/jobs/job-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Backend Engineer")

	rec = do(s, http.MethodGet, "/api/jobs", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "job-1")
}

func TestUpsertJobValidation(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodPost, "/api/jobs", `{"id": "job-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodPost, "/api/jobs", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunPipelineWaitsOnEmptyPool(t *testing.T) {
	s, _ := newTestServer(t)
	do(s, http.MethodPost, "/api/jobs", `{"id": "job-1", "title": "Backend Engineer", "description": "Go services"}`)

	rec := do(s, http.MethodPost, "/api/jobs/job-1/run", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"waiting"`)
	assert.Contains(t, rec.Body.String(), `"last_status":"pool_loaded"`)
}

func TestRunPipelineUnknownJob(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(s, http.MethodPost, "/api/jobs/ghost/run", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)
}

func TestJobStateEndpoint(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()
	do(s, http.MethodPost, "/api/jobs", `{"id": "job-1", "title": "Backend Engineer", "description": "Go services"}`)

	rec := do(s, http.MethodGet, "/api/jobs/job-1/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"candidates":0`)

	_, err := store.EnsureCallRecords(ctx, "job-1", []string{"ada.pdf"})
	require.NoError(t, err)
	require.NoError(t, store.MarkCallDone(ctx, "job-1", "ada.pdf", "secret transcript"))

	rec = do(s, http.MethodGet, "/api/jobs/job-1/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"call_status":"done"`)
	assert.NotContains(t, rec.Body.String(), "secret transcript", "transcripts never leave the server")
}

func TestTranscriptUploadUnknownCandidate(t *testing.T) {
	s, _ := newTestServer(t)
	do(s, http.MethodPost, "/api/jobs", `{"id": "job-1", "title": "Backend Engineer", "description": "Go services"}`)

	rec := do(s, http.MethodPost, "/api/jobs/job-1/calls/ghost.pdf/transcript", `{"transcript": "hello"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTranscriptUploadEmptyBody(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(s, http.MethodPost, "/api/jobs/job-1/calls/ada.pdf/transcript", `{"transcript": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty transcript is invalid input")
}
