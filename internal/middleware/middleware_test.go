package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func statusHandler(code int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	})
}

func TestWithRequestLogging_Levels(t *testing.T) {
	tests := []struct {
		name  string
		code  int
		level zapcore.Level
	}{
		{"ok", http.StatusOK, zapcore.InfoLevel},
		{"created", http.StatusCreated, zapcore.InfoLevel},
		{"unprocessable", http.StatusUnprocessableEntity, zapcore.WarnLevel},
		{"unavailable", http.StatusServiceUnavailable, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			h := WithRequestLogging(zap.New(core))(statusHandler(tt.code, "hello"))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/projects", nil))

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 log entry, got %d", len(entries))
			}
			e := entries[0]
			if e.Level != tt.level {
				t.Errorf("level = %v; want %v", e.Level, tt.level)
			}
			ctx := e.ContextMap()
			if ctx["method"] != http.MethodPost || ctx["path"] != "/api/projects" {
				t.Errorf("unexpected method/path: %v", ctx)
			}
			if ctx["status"] != int64(tt.code) {
				t.Errorf("status = %v; want %d", ctx["status"], tt.code)
			}
			if ctx["bytes"] != int64(5) {
				t.Errorf("bytes = %v; want 5", ctx["bytes"])
			}
		})
	}
}

func TestWithRequestLogging_ImplicitOK(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := WithRequestLogging(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := logs.All()[0].ContextMap()["status"]; got != int64(http.StatusOK) {
		t.Errorf("status = %v; want 200", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, X-Trace")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if called {
		t.Error("preflight must not reach the next handler")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, X-Trace" {
		t.Errorf("Allow-Headers = %q", got)
	}
}

func TestCORS_PassThrough(t *testing.T) {
	h := CORS(statusHandler(http.StatusOK, "{}"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schema", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Errorf("Allow-Methods = %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestMetrics_RoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/api/{route}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	matched := httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/{route}", "200")
	unmatched := httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	beforeMatched := testutil.ToFloat64(matched)
	beforeUnmatched := testutil.ToFloat64(unmatched)

	for _, path := range []string{"/api/projects", "/api/tasks", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(matched) - beforeMatched; got != 2 {
		t.Errorf("matched delta = %v; want 2", got)
	}
	if got := testutil.ToFloat64(unmatched) - beforeUnmatched; got != 1 {
		t.Errorf("unmatched delta = %v; want 1", got)
	}
}
