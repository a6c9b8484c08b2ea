package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/careermatch/internal/models"
	"alfredoptarigan/careermatch/internal/repositories"
	"alfredoptarigan/careermatch/internal/services"
	"alfredoptarigan/careermatch/internal/web"
)

const postingHTML = `<html><body><main id="main-content">
<h1 class="top-card-layout__title">Backend Engineer</h1>
<div class="details mx-details-container-padding"><div class="description__text">
<p>Go and Kubernetes.</p><button>Show more</button>
</div></div></main></body></html>`

type stubFetcher struct {
	page string
	err  error
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.page, f.err
}

type stubWorker struct {
	mu    sync.Mutex
	tasks []services.Task
	err   error
}

func (w *stubWorker) Start(context.Context) {}
func (w *stubWorker) Stop()                 {}

func (w *stubWorker) Enqueue(task services.Task) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.tasks = append(w.tasks, task)
	return nil
}

type testEnv struct {
	app     *fiber.App
	repo    repositories.JobRepository
	worker  *stubWorker
	fetcher *stubFetcher
	root    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	storage := services.NewStorageService(filepath.Join(root, "jobs"), filepath.Join(root, "outputs"), false, zap.NewNop())
	require.NoError(t, storage.EnsureDirs())

	pages, err := web.NewPages()
	require.NoError(t, err)

	env := &testEnv{
		app:     fiber.New(),
		repo:    repositories.NewMemoryJobRepository(),
		worker:  &stubWorker{},
		fetcher: &stubFetcher{page: postingHTML},
		root:    root,
	}
	Register(env.app, Handlers{
		Upload: NewUploadHandler(env.repo, storage, services.NewDocumentParser(), env.fetcher, env.worker, 1024, zap.NewNop()),
		Status: NewStatusHandler(env.repo),
		Report: NewReportHandler(env.repo),
		Pages:  NewPageHandler(env.repo, pages),
	})
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func uploadRequest(t *testing.T, filename string, cv []byte, jobURL string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("cv", filename)
		require.NoError(t, err)
		_, err = part.Write(cv)
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("job_url", jobURL))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// jobFromRedirect returns the job behind a /wait/:id redirect.
func (e *testEnv) jobFromRedirect(t *testing.T, resp *http.Response) *models.JobRecord {
	t.Helper()
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	loc := resp.Header.Get("Location")
	require.Regexp(t, `^/wait/[0-9a-f-]{36}$`, loc)

	id, err := uuid.Parse(loc[len("/wait/"):])
	require.NoError(t, err)
	job, err := e.repo.FindByID(id)
	require.NoError(t, err)
	return job
}

func TestUploadEnqueuesJob(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, uploadRequest(t, "cv.txt", []byte("Jane Doe\r\nGo developer"), " https://www.linkedin.com/jobs/view/1 "))
	job := env.jobFromRedirect(t, resp)
	assert.Equal(t, models.StatusUploaded, job.Status)

	require.Len(t, env.worker.tasks, 1)
	task := env.worker.tasks[0]
	assert.Equal(t, job.ID, task.JobID)
	assert.Equal(t, "Jane Doe\nGo developer", task.CVText)
	assert.Equal(t, "Go and Kubernetes.", task.JobText)
	assert.Equal(t, "Backend Engineer", task.JobTitle)

	dir := filepath.Join(env.root, "jobs", job.ID.String())
	assert.FileExists(t, filepath.Join(dir, "cv.txt"))
	assert.FileExists(t, filepath.Join(dir, "linkedin_job_raw.html"))
}

func TestUploadFailuresMarkJobError(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		cv       []byte
		jobURL   string
		fetcher  stubFetcher
		worker   error
		wantMsg  string
	}{
		{name: "missing file", jobURL: "https://x", fetcher: stubFetcher{page: postingHTML}, wantMsg: msgEmptyCV},
		{name: "empty file", filename: "cv.txt", cv: []byte{}, jobURL: "https://x", fetcher: stubFetcher{page: postingHTML}, wantMsg: msgEmptyCV},
		{name: "whitespace only", filename: "cv.txt", cv: []byte(" \n\n "), jobURL: "https://x", fetcher: stubFetcher{page: postingHTML}, wantMsg: msgEmptyCV},
		{name: "too large", filename: "cv.txt", cv: bytes.Repeat([]byte("a"), 2048), jobURL: "https://x", fetcher: stubFetcher{page: postingHTML}, wantMsg: msgCVTooLarge},
		{name: "missing url", filename: "cv.txt", cv: []byte("cv"), jobURL: "  ", fetcher: stubFetcher{page: postingHTML}, wantMsg: msgMissingURL},
		{name: "fetch error", filename: "cv.txt", cv: []byte("cv"), jobURL: "https://x", fetcher: stubFetcher{err: errors.New("timeout")}, wantMsg: msgFetchFailed},
		{name: "authwall", filename: "cv.txt", cv: []byte("cv"), jobURL: "https://x", fetcher: stubFetcher{page: `<a href="/authwall">Sign in</a>`}, wantMsg: msgAuthwall},
		{name: "queue full", filename: "cv.txt", cv: []byte("cv"), jobURL: "https://x", fetcher: stubFetcher{page: postingHTML}, worker: services.ErrQueueFull, wantMsg: msgQueueFull},
		{name: "shutting down", filename: "cv.txt", cv: []byte("cv"), jobURL: "https://x", fetcher: stubFetcher{page: postingHTML}, worker: services.ErrQueueClosed, wantMsg: msgShuttingDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			*env.fetcher = tt.fetcher
			env.worker.err = tt.worker

			job := env.jobFromRedirect(t, env.do(t, uploadRequest(t, tt.filename, tt.cv, tt.jobURL)))
			assert.Equal(t, models.StatusError, job.Status)
			require.NotNil(t, job.Error)
			assert.Equal(t, tt.wantMsg, *job.Error)
		})
	}
}

func TestUploadFetchErrorIsSaved(t *testing.T) {
	env := newTestEnv(t)
	env.fetcher.err = errors.New("connection refused")

	job := env.jobFromRedirect(t, env.do(t, uploadRequest(t, "cv.txt", []byte("cv"), "https://x")))
	saved, err := os.ReadFile(filepath.Join(env.root, "jobs", job.ID.String(), "fetch_error.txt"))
	require.NoError(t, err)
	assert.Equal(t, "connection refused", string(saved))
}

func decodeStatus(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestStatusEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/api/status/"+uuid.NewString(), nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, map[string]any{"status": "NOT_FOUND", "error": nil}, decodeStatus(t, resp))

	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/api/status/not-a-uuid", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	job, _ := env.repo.Create()
	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/api/status/"+job.ID.String(), nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"status": "UPLOADED", "error": nil}, decodeStatus(t, resp))

	require.NoError(t, env.repo.MarkRunning(job.ID))
	require.NoError(t, env.repo.MarkDone(job.ID, models.Artifacts{JSONPath: "out/a.json", HTMLPath: "out/a.html"}))
	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/api/status/"+job.ID.String(), nil))
	assert.Equal(t, map[string]any{
		"status":    "DONE",
		"error":     nil,
		"json_path": "out/a.json",
		"html_path": "out/a.html",
	}, decodeStatus(t, resp))
}

func (e *testEnv) finishedJob(t *testing.T) *models.JobRecord {
	t.Helper()
	dir := filepath.Join(e.root, "outputs", "done")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	jsonPath := filepath.Join(dir, "fit_report.json")
	htmlPath := filepath.Join(dir, "report.html")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"fit_score": 65}`), 0o644))
	require.NoError(t, os.WriteFile(htmlPath, []byte("<html>report</html>"), 0o644))

	job, err := e.repo.Create()
	require.NoError(t, err)
	require.NoError(t, e.repo.MarkRunning(job.ID))
	require.NoError(t, e.repo.MarkDone(job.ID, models.Artifacts{JSONPath: jsonPath, HTMLPath: htmlPath}))
	return job
}

func TestReportRoutes(t *testing.T) {
	env := newTestEnv(t)
	done := env.finishedJob(t)
	pending, _ := env.repo.Create()

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/report/"+uuid.NewString(), nil))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/report/"+pending.ID.String(), nil))
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/wait/"+pending.ID.String(), resp.Header.Get("Location"))

	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/report/"+done.ID.String(), nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "<html>report</html>", string(body))
}

func TestDownloadRoutes(t *testing.T) {
	env := newTestEnv(t)
	done := env.finishedJob(t)
	pending, _ := env.repo.Create()

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/download/"+done.ID.String()+"/json", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "fit_report.json")
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"fit_score": 65}`, string(body))

	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/download/"+done.ID.String()+"/html", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "report.html")

	for _, id := range []string{pending.ID.String(), uuid.NewString()} {
		resp = env.do(t, httptest.NewRequest(http.MethodGet, "/download/"+id+"/json", nil))
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/wait/"+id, resp.Header.Get("Location"))
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPages(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `action="/upload"`)

	id := uuid.NewString()
	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/wait/"+id, nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), id)

	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/error/"+id, nil))
	assert.Contains(t, readBody(t, resp), defaultErrorMessage)

	job, _ := env.repo.Create()
	require.NoError(t, env.repo.MarkError(job.ID, "LLM <timeout>"))
	resp = env.do(t, httptest.NewRequest(http.MethodGet, "/error/"+job.ID.String(), nil))
	assert.Contains(t, readBody(t, resp), "LLM &lt;timeout&gt;")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", decodeStatus(t, resp)["status"])
}
