// Package web serves the HTML pages: inventory management, invoice
// generation and the invoice list.
package web

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/welwishers/weldshop/internal/imaging"
	"github.com/welwishers/weldshop/internal/invoicing"
	"github.com/welwishers/weldshop/internal/model"
	webembed "github.com/welwishers/weldshop/web"
)

// Options configures the page server.
type Options struct {
	DB       *sql.DB
	Invoices *invoicing.Service
	ShopName string
	Currency string
	Logo     *imaging.Logo
	// LinkSecret signs invoice PDF links valid for LinkTTL.
	LinkSecret []byte
	LinkTTL    time.Duration
}

// Server holds all dependencies for page handlers.
type Server struct {
	Options
	Templates *Templates
	now       func() time.Time
}

// NewServer parses the templates and returns a Server.
func NewServer(opts Options) (*Server, error) {
	if len(opts.LinkSecret) == 0 {
		return nil, errors.New("web: link secret is required")
	}
	if opts.Invoices == nil {
		opts.Invoices = invoicing.New(opts.DB, nil, false)
	}
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{Options: opts, Templates: templates, now: time.Now}, nil
}

// Routes returns the page router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/inventory", http.StatusSeeOther)
	})

	r.Get("/inventory", s.InventoryPage)
	r.Post("/inventory", s.ItemAddSubmit)
	r.Post("/inventory/update", s.ItemUpdateSubmit)
	r.Post("/inventory/delete", s.ItemDeleteSubmit)

	r.Get("/invoices/new", s.InvoiceNewPage)
	r.Post("/invoices/new", s.InvoiceNewSubmit)
	r.Get("/invoices", s.InvoicesPage)
	r.Get("/invoices/{id}/pdf", s.InvoicePDF)

	return r
}

func (s *Server) page(title, active string) PageData {
	return PageData{Title: title, ShopName: s.ShopName, Currency: s.Currency, Active: active}
}

// applyError fills pd with a message for err and returns the status to
// render with. Field errors are listed per field; unexpected errors are
// logged and reported generically.
func applyError(err error, pd *PageData) int {
	status := errorStatus(err)
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		pd.Error = "Please fix the highlighted fields."
		pd.Fields = verr.Fields
	case status == http.StatusInternalServerError:
		slog.Error("request failed", "error", err)
		pd.Error = "Something went wrong. Please try again."
	default:
		pd.Error = err.Error()
	}
	return status
}

// errorStatus maps store and billing errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrQuantityOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
