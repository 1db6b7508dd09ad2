// Package httpx assembles the middleware stack and the HTTP server shared by
// the page and API routers.
package httpx

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/welwishers/weldshop/internal/logging"
	"github.com/welwishers/weldshop/internal/metrics"
)

// Config holds the options for NewRouter.
type Config struct {
	IsDevelopment bool
	// CORSAllowedOrigins is a comma-separated list of allowed origins for
	// /api. "*" allows all origins.
	CORSAllowedOrigins string
	// RequestsPerMinute caps requests per client IP. Zero disables the limit.
	RequestsPerMinute int
}

// NewRouter returns the root router: middleware, /healthz, /metrics, the API
// under /api and the pages everywhere else.
//
// Middleware order (outermost first): Recoverer, RequestID, RealIP, request
// logging, metrics, rate limit, body limit, security headers.
func NewRouter(cfg Config, db *sql.DB, pages, api http.Handler) *chi.Mux {
	sec := secure.New(secure.Options{
		STSSeconds:            63072000,
		STSIncludeSubdomains:  true,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		PermissionsPolicy:     "geolocation=(), microphone=(), camera=(), usb=()",
		IsDevelopment:         cfg.IsDevelopment,
	})

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		middleware.RequestID,
		middleware.RealIP,
		logging.Middleware,
		metrics.Middleware,
	)
	if cfg.RequestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RequestsPerMinute, time.Minute))
	}
	r.Use(
		RequestBodyLimit(10<<20),
		sec.Handler,
	)

	r.Get("/healthz", Health(db))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(CORSMiddleware(cfg.CORSAllowedOrigins))
		r.Mount("/", api)
	})
	r.Mount("/", pages)

	return r
}

// Health reports 200 when the database answers a ping and 503 otherwise.
func Health(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok\n"))
	}
}

// CORSMiddleware returns a CORS handler restricted to the given allowed origins.
func CORSMiddleware(allowedOrigins string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   parseOrigins(allowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// parseOrigins splits a comma-separated origins string, trimming spaces.
func parseOrigins(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p := strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// RequestBodyLimit caps the request body at maxBytes.
func RequestBodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// NewServer returns an *http.Server with the timeouts used in production.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
