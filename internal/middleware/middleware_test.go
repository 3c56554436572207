package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/postline/internal/ctxkeys"
	"github.com/templui/postline/internal/metrics"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(ok), mark("first"), mark("second"), mark("third"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxkeys.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "InternalError", body["error"])
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestRecover_AfterHeaderWritten(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("late")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour, false)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, rl.Allow("10.0.0.1"))

	// Other clients have their own budget
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRateLimiter_Evict(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour, false)
	rl.Allow("10.0.0.1")

	rl.evict(time.Now().Add(-time.Minute))
	assert.Len(t, rl.visitors, 1)

	rl.evict(time.Now().Add(time.Minute))
	assert.Empty(t, rl.visitors)
}

func TestRateLimit_Middleware(t *testing.T) {
	h := RateLimit(NewRateLimiter(1, time.Minute, false))(http.HandlerFunc(ok))

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		return req
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newReq())
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, newReq())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "RateLimitExceeded", body["error"])
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(NewRateLimiter(0, time.Minute, false))(http.HandlerFunc(ok))

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remote     string
		trustProxy bool
		want       string
	}{
		{"remote addr", nil, "192.0.2.1:1234", false, "192.0.2.1"},
		{"forwarded for trusted", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.1:80", true, "203.0.113.5"},
		{"real ip trusted", map[string]string{"X-Real-IP": " 198.51.100.2 "}, "10.0.0.1:80", true, "198.51.100.2"},
		{"forwarded for untrusted", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "10.0.0.1:80", false, "10.0.0.1"},
		{"real ip untrusted", map[string]string{"X-Real-IP": "198.51.100.2"}, "10.0.0.1:80", false, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req, tt.trustProxy))
		})
	}
}

func TestRateLimit_ForwardedForCannotResetBudget(t *testing.T) {
	h := RateLimit(NewRateLimiter(1, time.Minute, false))(http.HandlerFunc(ok))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestRecover_LogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), RequestID, Recover, RequestLogging)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"msg":"panic in handler"`)
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
}

func TestMetrics_LabelsByPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Metrics(mux)

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "GET /widgets/{id}", "418")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/widgets/1", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/widgets/2", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
