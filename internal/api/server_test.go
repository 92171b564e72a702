package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/kwiktwik/video-editor/internal/auth"
	"github.com/kwiktwik/video-editor/internal/storage"
	"github.com/kwiktwik/video-editor/internal/store"

	"github.com/gin-gonic/gin"
)

const (
	testEmail    = "demo@example.com"
	testPassword = "password123"
)

type testServer struct {
	router *gin.Engine
	store  *store.JobStore
	files  *storage.Local
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	files, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}
	authSvc, err := auth.NewService("test-secret", time.Hour, testEmail, testPassword)
	if err != nil {
		t.Fatalf("init auth: %v", err)
	}
	st := store.NewJobStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(authSvc, st, files, logger)
	return &testServer{router: srv.Router(), store: st, files: files}
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	TraceID string          `json:"trace_id"`
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func (ts *testServer) login(t *testing.T) string {
	t.Helper()
	rec, env := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    testEmail,
		"password": testPassword,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if data.AccessToken == "" {
		t.Fatalf("login returned empty access token")
	}
	return data.AccessToken
}

func exportPayload() gin.H {
	return gin.H{
		"clips": []gin.H{{
			"video_url":  "/static/uploads/a.mp4",
			"start_time": 0,
			"end_time":   5,
		}},
		"settings": gin.H{
			"aspect_ratio": "9:16",
			"quality":      "optimised",
			"format":       "mp4",
		},
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	rec, env := ts.do(t, http.MethodGet, "/api/v1/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if env.TraceID == "" {
		t.Fatalf("trace_id must be present")
	}
	if rec.Header().Get("X-Trace-Id") != env.TraceID {
		t.Fatalf("trace id header/body mismatch")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)
	rec, env := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    testEmail,
		"password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "INVALID_CREDENTIALS" {
		t.Fatalf("error = %+v", env.Error)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/export"},
		{http.MethodGet, "/api/v1/jobs"},
		{http.MethodGet, "/api/v1/jobs/stats"},
		{http.MethodGet, "/api/v1/jobs/some-id"},
		{http.MethodPost, "/api/v1/jobs/some-id/cancel"},
		{http.MethodGet, "/api/v1/download/out.mp4"},
	} {
		rec, env := ts.do(t, route.method, route.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s status = %d, want 401", route.method, route.path, rec.Code)
		}
		if env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
			t.Fatalf("%s %s error = %+v", route.method, route.path, env.Error)
		}
	}
}

func TestStartExportAndGetJob(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/export", token, exportPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("export status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode export data: %v", err)
	}
	if created.JobID == "" {
		t.Fatalf("job_id must not be empty")
	}

	rec, env = ts.do(t, http.MethodGet, "/api/v1/jobs/"+created.JobID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get job status = %d", rec.Code)
	}
	var job jobStatusResponse
	if err := json.Unmarshal(env.Data, &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.ID != created.JobID || job.Status != "pending" || job.Progress != 0 {
		t.Fatalf("job view = %+v", job)
	}
	if len(job.Logs) == 0 {
		t.Fatalf("job must carry its creation log")
	}
}

func TestStartExportValidation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	// No clips.
	rec, env := ts.do(t, http.MethodPost, "/api/v1/export", token, gin.H{"clips": []gin.H{}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty clips status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "INVALID_REQUEST" {
		t.Fatalf("error = %+v", env.Error)
	}

	// Trim range inverted.
	payload := exportPayload()
	payload["clips"] = []gin.H{{
		"video_url":  "/static/uploads/a.mp4",
		"start_time": 5,
		"end_time":   2,
	}}
	rec, env = ts.do(t, http.MethodPost, "/api/v1/export", token, payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("inverted trim status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "INVALID_REQUEST" {
		t.Fatalf("error = %+v", env.Error)
	}

	// Unknown aspect ratio rejected by binding.
	payload = exportPayload()
	payload["settings"] = gin.H{"aspect_ratio": "4:3"}
	rec, _ = ts.do(t, http.MethodPost, "/api/v1/export", token, payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad aspect ratio status = %d, want 400", rec.Code)
	}
}

func TestListJobsAndStats(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	for i := 0; i < 3; i++ {
		rec, _ := ts.do(t, http.MethodPost, "/api/v1/export", token, exportPayload())
		if rec.Code != http.StatusCreated {
			t.Fatalf("export status = %d", rec.Code)
		}
	}

	rec, env := ts.do(t, http.MethodGet, "/api/v1/jobs", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var jobs []jobStatusResponse
	if err := json.Unmarshal(env.Data, &jobs); err != nil {
		t.Fatalf("decode jobs: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("jobs listed = %d, want 3", len(jobs))
	}

	rec, env = ts.do(t, http.MethodGet, "/api/v1/jobs/stats", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var stats struct {
		Pending int `json:"pending"`
		Total   int `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Pending != 3 || stats.Total != 3 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestGetJobNotFound(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/jobs/missing-id", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "JOB_NOT_FOUND" {
		t.Fatalf("error = %+v", env.Error)
	}
}

func TestCancelJob(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/export", token, exportPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("export status = %d", rec.Code)
	}
	var created struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode export data: %v", err)
	}

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/jobs/"+created.JobID+"/cancel", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d", rec.Code)
	}

	// Already failed by the first cancel; a second must be rejected.
	rec, env = ts.do(t, http.MethodPost, "/api/v1/jobs/"+created.JobID+"/cancel", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second cancel status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "NOT_PENDING" {
		t.Fatalf("error = %+v", env.Error)
	}
	if env.Error.Message != "Can only cancel pending jobs" {
		t.Fatalf("error message = %q", env.Error.Message)
	}

	rec, env = ts.do(t, http.MethodPost, "/api/v1/jobs/missing/cancel", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cancel unknown status = %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "JOB_NOT_FOUND" {
		t.Fatalf("error = %+v", env.Error)
	}
}

func TestDownloadExport(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	path := ts.files.ExportPath("export_abcd1234.mp4")
	if err := os.WriteFile(path, []byte("artifact"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/download/export_abcd1234.mp4", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d", rec.Code)
	}
	if rec.Body.String() != "artifact" {
		t.Fatalf("download body = %q", rec.Body.String())
	}

	rec2, env := ts.do(t, http.MethodGet, "/api/v1/download/missing.mp4", token, nil)
	if rec2.Code != http.StatusNotFound {
		t.Fatalf("missing download status = %d, want 404", rec2.Code)
	}
	if env.Error == nil || env.Error.Code != "FILE_NOT_FOUND" {
		t.Fatalf("error = %+v", env.Error)
	}
}
