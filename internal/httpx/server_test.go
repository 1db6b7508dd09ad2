package httpx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/welwishers/weldshop/internal/db"
)

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(body))
	})
}

func newTestRouter(t *testing.T, cfg Config) *chi.Mux {
	t.Helper()
	api := chi.NewRouter()
	api.Get("/inventory", okHandler("api").ServeHTTP)
	return NewRouter(cfg, db.NewTestDB(t), okHandler("page"), api)
}

func TestRouting(t *testing.T) {
	r := newTestRouter(t, Config{CORSAllowedOrigins: "*"})

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/healthz", http.StatusOK, "ok"},
		{"/api/inventory", http.StatusOK, "api"},
		{"/inventory", http.StatusOK, "page"},
		{"/metrics", http.StatusOK, "go_goroutines"},
	}

	for _, tt := range tests {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))
		if rr.Code != tt.status {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.status, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), tt.body) {
			t.Errorf("%s: expected body to contain %q", tt.path, tt.body)
		}
	}
}

func TestHealthUnavailable(t *testing.T) {
	database := db.NewTestDB(t)
	database.Close()

	rr := httptest.NewRecorder()
	Health(database)(rr, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rr.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := newTestRouter(t, Config{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/inventory", http.NoBody))

	checks := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'self'",
	}
	for header, expected := range checks {
		if got := rr.Header().Get(header); got != expected {
			t.Errorf("%s: got %q, want %q", header, got, expected)
		}
	}
}

func TestCORSOnAPI(t *testing.T) {
	r := newTestRouter(t, Config{CORSAllowedOrigins: "https://shop.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/api/inventory", http.NoBody)
	req.Header.Set("Origin", "https://shop.example.com")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Errorf("expected allowed origin header, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/inventory", http.NoBody)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow-origin for foreign origin, got %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	r := newTestRouter(t, Config{RequestsPerMinute: 2})

	var last int
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/inventory", http.NoBody))
		last = rr.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("expected 429 on third request, got %d", last)
	}
}

func TestParseOrigins(t *testing.T) {
	got := parseOrigins(" https://a.example.com , ,https://b.example.com")
	if len(got) != 2 || got[0] != "https://a.example.com" || got[1] != "https://b.example.com" {
		t.Errorf("unexpected origins %v", got)
	}
	if got := parseOrigins(""); len(got) != 1 || got[0] != "*" {
		t.Errorf("expected wildcard default, got %v", got)
	}
}

func TestRequestBodyLimit(t *testing.T) {
	h := RequestBodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short")))
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 for small body, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 100))))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 for large body, got %d", rr.Code)
	}
}
