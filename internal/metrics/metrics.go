// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// InvoicesCreated counts invoices written to the store.
	InvoicesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "weldshop",
		Name:      "invoices_created_total",
		Help:      "Invoices written to the store.",
	})

	// InvoiceAmount accumulates invoice totals in the shop currency.
	InvoiceAmount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "weldshop",
		Name:      "invoice_amount_total",
		Help:      "Sum of invoice totals.",
	})

	// InventoryChanges counts inventory writes by operation (add, update, delete).
	InventoryChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weldshop",
		Name:      "inventory_changes_total",
		Help:      "Inventory writes by operation.",
	}, []string{"op"})

	// PDFsRendered counts invoice PDFs rendered.
	PDFsRendered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "weldshop",
		Name:      "invoice_pdfs_rendered_total",
		Help:      "Invoice PDFs rendered.",
	})

	httpRequests = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "weldshop",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware records request latency labelled by the chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).
			Observe(time.Since(start).Seconds())
	})
}
