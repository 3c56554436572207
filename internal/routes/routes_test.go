package routes

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/postline/internal/app"
	"github.com/templui/postline/internal/config"
	"github.com/templui/postline/internal/db/dbtest"
	"github.com/templui/postline/internal/storage"
)

type stubUploader struct{}

func (stubUploader) Upload(ctx context.Context, body io.ReadSeeker, fileName, contentType string) (*storage.UploadResult, error) {
	return &storage.UploadResult{URL: "https://cdn.example.com/posts/a.png", Name: "a.png", Key: "posts/a.png", Status: http.StatusOK}, nil
}

func (stubUploader) Delete(ctx context.Context, key string) error { return nil }

func newTestApp(t *testing.T) *app.App {
	t.Helper()

	cfg := &config.Config{
		StagingDir:       t.TempDir(),
		MaxUploadSize:    1 << 20,
		UploadRateLimit:  2,
		UploadRateWindow: time.Hour,
	}
	return app.NewWithUploader(cfg, dbtest.New(t), stubUploader{})
}

func upload(t *testing.T) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="a.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nbody"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.RemoteAddr = "203.0.113.9:4000"
	return req
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)
	h := SetupRoutes(a)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	require.NoError(t, a.Close())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy"}`, rec.Body.String())
}

func TestUploadIsRateLimited(t *testing.T) {
	h := SetupRoutes(newTestApp(t))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, upload(t))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, upload(t))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Other routes are not limited
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := SetupRoutes(newTestApp(t))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `postline_http_requests_total{method="GET",route="GET /posts",status="200"}`)
}

func TestUnknownRoute(t *testing.T) {
	h := SetupRoutes(newTestApp(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/posts/abc", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
