package api

import (
	"database/sql"
	"net/http"

	"github.com/welwishers/weldshop/internal/invoicing"
	"github.com/welwishers/weldshop/internal/model"
	"github.com/welwishers/weldshop/internal/store"
	"github.com/welwishers/weldshop/internal/validate"
)

// InvoicesHandler handles billing and invoice endpoints.
type InvoicesHandler struct {
	DB       *sql.DB
	Invoices *invoicing.Service
}

type quoteRequest struct {
	Quantities map[int64]int `json:"quantities" validate:"required"`
}

type createInvoiceRequest struct {
	CustomerName string        `json:"customer_name"`
	Quantities   map[int64]int `json:"quantities" validate:"required"`
}

// Quote handles POST /api/billing/quote. Nothing is stored.
func (h *InvoicesHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, r, err)
		return
	}

	sel, err := h.Invoices.Quote(r.Context(), req.Quantities)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sel.Lines == nil {
		sel.Lines = []model.InvoiceLine{}
	}
	jsonResponse(w, http.StatusOK, sel)
}

// List handles GET /api/invoices.
func (h *InvoicesHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := store.ListInvoices(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if invoices == nil {
		invoices = []model.Invoice{}
	}
	jsonResponse(w, http.StatusOK, invoices)
}

// Create handles POST /api/invoices.
func (h *InvoicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := h.Invoices.Create(r.Context(), req.CustomerName, req.Quantities)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, inv)
}

// Get handles GET /api/invoices/{id}.
func (h *InvoicesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	inv, err := store.GetInvoice(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, inv)
}
