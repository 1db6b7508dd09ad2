// Package api serves the JSON interface over the inventory and invoice
// operations.
package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/welwishers/weldshop/internal/invoicing"
)

// NewRouter creates the API router with all endpoints registered. Mount it
// at /api.
func NewRouter(db *sql.DB, svc *invoicing.Service) http.Handler {
	inventory := &InventoryHandler{DB: db}
	invoices := &InvoicesHandler{DB: db, Invoices: svc}

	r := chi.NewRouter()

	r.Get("/inventory", inventory.List)
	r.Post("/inventory", inventory.Create)
	r.Put("/inventory/{id}", inventory.Update)
	r.Delete("/inventory/{id}", inventory.Delete)

	r.Post("/billing/quote", invoices.Quote)

	r.Get("/invoices", invoices.List)
	r.Post("/invoices", invoices.Create)
	r.Get("/invoices/{id}", invoices.Get)

	return r
}
