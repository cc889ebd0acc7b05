package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	return r
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name      string
		allowed   []string
		origin    string
		wantAllow string
	}{
		{"any origin when unset", nil, "http://ui.example", "http://ui.example"},
		{"listed origin", []string{"http://ui.example/"}, "http://ui.example", "http://ui.example"},
		{"unlisted origin", []string{"http://ui.example"}, "http://evil.example", ""},
		{"no origin header", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(CORSMiddleware(tt.allowed))
			rec := do(r, http.MethodGet, "/ping", map[string]string{"Origin": tt.origin})

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d", rec.Code)
			}
		})
	}

	r := newEngine(CORSMiddleware(nil))
	rec := do(r, http.MethodOptions, "/ping", map[string]string{"Origin": "http://ui.example"})
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	rec := do(r, http.MethodGet, "/ping", nil)
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a generated X-Request-ID")
	}

	rec = do(r, http.MethodGet, "/ping", map[string]string{RequestIDHeader: "my-id"})
	if got := rec.Header().Get(RequestIDHeader); got != "my-id" {
		t.Errorf("X-Request-ID = %q, want my-id", got)
	}
}

func TestLoggerWritesRequestLine(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(RequestID(), Logger(zerolog.New(&buf)))

	do(r, http.MethodGet, "/ping", map[string]string{RequestIDHeader: "rid-1"})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line: %v (%q)", err, buf.String())
	}
	if line["path"] != "/ping" || line["request_id"] != "rid-1" || line["status"] != float64(200) {
		t.Errorf("log line = %v", line)
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(Recovery(zerolog.New(&buf)))

	rec := do(r, http.MethodGet, "/boom", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "kaboom") {
		t.Error("panic value should be logged")
	}
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	t.Cleanup(rl.Stop)
	r := newEngine(RateLimit(rl))

	for i := 0; i < 2; i++ {
		if rec := do(r, http.MethodGet, "/ping", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}

	rec := do(r, http.MethodGet, "/ping", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if !strings.Contains(rec.Body.String(), "rate_limited") {
		t.Errorf("body = %s", rec.Body.String())
	}

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	other := httptest.NewRecorder()
	r.ServeHTTP(other, req)
	if other.Code != http.StatusOK {
		t.Errorf("second client status = %d", other.Code)
	}
}

func TestRateLimiterEvictsStaleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	t.Cleanup(rl.Stop)

	rl.get("1.1.1.1")
	rl.get("2.2.2.2")
	if rl.tracked() != 2 {
		t.Fatalf("tracked = %d", rl.tracked())
	}

	rl.evict(time.Now().Add(staleAfter + time.Second))
	if rl.tracked() != 0 {
		t.Errorf("tracked after evict = %d, want 0", rl.tracked())
	}
}
