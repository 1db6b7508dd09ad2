package web

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/welwishers/weldshop/internal/billing"
	"github.com/welwishers/weldshop/internal/invoicepdf"
	"github.com/welwishers/weldshop/internal/metrics"
	"github.com/welwishers/weldshop/internal/model"
	"github.com/welwishers/weldshop/internal/pdflink"
	"github.com/welwishers/weldshop/internal/store"
)

// Invoice form actions.
const (
	actionPreview  = "preview"
	actionGenerate = "generate"
	actionPDF      = "pdf"
)

const quantityPrefix = "q_"

// invoiceForm is the state of the invoice form, parsed fresh from every
// request. The page is re-derived from it and the current inventory.
type invoiceForm struct {
	CustomerName    string
	CustomerContact string
	Quantities      map[int64]int
	Action          string
}

// parseInvoiceForm reads customer fields and q_<id> quantity inputs. Blank
// quantities count as zero.
func parseInvoiceForm(r *http.Request) (invoiceForm, error) {
	if err := r.ParseForm(); err != nil {
		return invoiceForm{}, model.NewValidationError("form", "Could not read the form")
	}

	f := invoiceForm{
		CustomerName:    strings.TrimSpace(r.PostForm.Get("customer_name")),
		CustomerContact: strings.TrimSpace(r.PostForm.Get("customer_contact")),
		Quantities:      make(map[int64]int),
		Action:          r.PostForm.Get("action"),
	}
	if f.Action == "" {
		f.Action = actionPreview
	}

	fields := map[string]string{}
	for key, values := range r.PostForm {
		if !strings.HasPrefix(key, quantityPrefix) || len(values) == 0 {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(key, quantityPrefix), 10, 64)
		if err != nil {
			fields[key] = "Unknown item"
			continue
		}
		raw := strings.TrimSpace(values[0])
		if raw == "" {
			continue
		}
		qty, err := strconv.Atoi(raw)
		if err != nil {
			fields[key] = "Must be a whole number"
			continue
		}
		if qty != 0 {
			f.Quantities[id] = qty
		}
	}
	if len(fields) > 0 {
		return f, &model.ValidationError{Fields: fields}
	}
	return f, nil
}

type invoiceNewPage struct {
	PageData
	Form      invoiceForm
	Items     []model.InventoryItem
	Selection *billing.Selection
	Created   *model.Invoice
	PDFLink   string
}

// InvoiceNewPage handles GET /invoices/new.
func (s *Server) InvoiceNewPage(w http.ResponseWriter, r *http.Request) {
	s.renderInvoiceNew(w, r, http.StatusOK, &invoiceNewPage{
		PageData: s.page("Generate Invoice", "invoice_new"),
	})
}

func (s *Server) renderInvoiceNew(w http.ResponseWriter, r *http.Request, status int, p *invoiceNewPage) {
	items, err := store.ListInventory(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list inventory", "error", err)
		p.Error = "Error loading inventory."
		status = http.StatusInternalServerError
	}
	p.Items = items
	s.Templates.Render(w, status, "invoice_new.html", p)
}

// InvoiceNewSubmit handles POST /invoices/new for the preview, generate and
// pdf actions.
func (s *Server) InvoiceNewSubmit(w http.ResponseWriter, r *http.Request) {
	p := &invoiceNewPage{PageData: s.page("Generate Invoice", "invoice_new")}

	form, err := parseInvoiceForm(r)
	p.Form = form
	if err != nil {
		status := applyError(err, &p.PageData)
		s.renderInvoiceNew(w, r, status, p)
		return
	}

	switch form.Action {
	case actionPreview:
		sel, err := s.Invoices.Quote(r.Context(), form.Quantities)
		if err != nil {
			status := applyError(err, &p.PageData)
			s.renderInvoiceNew(w, r, status, p)
			return
		}
		p.Selection = &sel
		s.renderInvoiceNew(w, r, http.StatusOK, p)

	case actionGenerate:
		inv, err := s.Invoices.Create(r.Context(), form.CustomerName, form.Quantities)
		if err != nil {
			status := applyError(err, &p.PageData)
			s.renderInvoiceNew(w, r, status, p)
			return
		}
		link, err := s.pdfLink(inv.ID, form.CustomerContact)
		if err != nil {
			slog.Error("failed to sign pdf link", "invoice", inv.ID, "error", err)
		}
		s.renderInvoiceNew(w, r, http.StatusOK, &invoiceNewPage{
			PageData: s.page("Generate Invoice", "invoice_new"),
			Created:  inv,
			PDFLink:  link,
		})

	case actionPDF:
		sel, err := s.Invoices.Quote(r.Context(), form.Quantities)
		if err == nil && (form.CustomerName == "" || sel.Empty()) {
			fields := map[string]string{}
			if form.CustomerName == "" {
				fields["customer_name"] = "This field is required"
			}
			if sel.Empty() {
				fields["lines"] = "Select at least one item"
			}
			err = &model.ValidationError{Fields: fields}
		}
		if err != nil {
			status := applyError(err, &p.PageData)
			s.renderInvoiceNew(w, r, status, p)
			return
		}
		s.writePDF(w, invoicepdf.Document{
			CustomerName:    form.CustomerName,
			CustomerContact: form.CustomerContact,
			Lines:           sel.Lines,
			Total:           sel.Total,
		}, "invoice.pdf")

	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

type invoiceRow struct {
	Invoice model.Invoice
	PDFLink string
}

type invoicesPage struct {
	PageData
	Invoices []invoiceRow
}

// InvoicesPage handles GET /invoices.
func (s *Server) InvoicesPage(w http.ResponseWriter, r *http.Request) {
	pd := s.page("Invoices", "invoices")
	status := http.StatusOK

	invoices, err := store.ListInvoices(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to list invoices", "error", err)
		pd.Error = "Error loading invoices."
		status = http.StatusInternalServerError
	}

	rows := make([]invoiceRow, len(invoices))
	for i, inv := range invoices {
		rows[i].Invoice = inv
		if rows[i].PDFLink, err = s.pdfLink(inv.ID, ""); err != nil {
			slog.Error("failed to sign pdf link", "invoice", inv.ID, "error", err)
		}
	}

	s.Templates.Render(w, status, "invoices.html", &invoicesPage{PageData: pd, Invoices: rows})
}

// InvoicePDF handles GET /invoices/{id}/pdf?t=<token>.
func (s *Server) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	claims, err := pdflink.Verify(s.LinkSecret, id, r.URL.Query().Get("t"))
	if err != nil {
		slog.Warn("rejected pdf link", "invoice", id, "error", err)
		http.Error(w, "link expired or invalid", http.StatusForbidden)
		return
	}

	inv, err := store.GetInvoice(r.Context(), s.DB, id)
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to get invoice", "invoice", id, "error", err)
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	s.writePDF(w, invoicepdf.Document{
		InvoiceID:       inv.ID,
		CustomerName:    inv.CustomerName,
		CustomerContact: claims.Contact,
		Lines:           inv.Lines,
		Summary:         inv.Items,
		Total:           inv.TotalBill,
	}, fmt.Sprintf("invoice-%d.pdf", inv.ID))
}

// writePDF fills the shop fields of doc and sends it as an attachment.
func (s *Server) writePDF(w http.ResponseWriter, doc invoicepdf.Document, filename string) {
	doc.ShopName = s.ShopName
	doc.Currency = s.Currency
	doc.Logo = s.Logo
	doc.Date = s.now()

	var buf bytes.Buffer
	if err := invoicepdf.Render(&buf, doc); err != nil {
		slog.Error("failed to render pdf", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	metrics.PDFsRendered.Inc()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write pdf response", "error", err)
	}
}

func (s *Server) pdfLink(id int64, contact string) (string, error) {
	token, err := pdflink.Sign(s.LinkSecret, id, contact, s.LinkTTL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/invoices/%d/pdf?t=%s", id, url.QueryEscape(token)), nil
}
