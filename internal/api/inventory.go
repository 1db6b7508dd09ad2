package api

import (
	"database/sql"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/welwishers/weldshop/internal/metrics"
	"github.com/welwishers/weldshop/internal/model"
	"github.com/welwishers/weldshop/internal/store"
	"github.com/welwishers/weldshop/internal/validate"
)

// InventoryHandler handles inventory endpoints.
type InventoryHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	Item     string          `json:"item"`
	Brand    string          `json:"brand"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type updateItemRequest struct {
	Quantity *int             `json:"quantity" validate:"required"`
	Price    *decimal.Decimal `json:"price" validate:"required"`
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListInventory(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/inventory.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := store.AddItem(r.Context(), h.DB, req.Item, req.Brand, req.Quantity, req.Price)
	if err != nil {
		writeError(w, r, err)
		return
	}
	metrics.InventoryChanges.WithLabelValues("add").Inc()

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PUT /api/inventory/{id}. Only quantity and price change.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := store.UpdateItem(r.Context(), h.DB, id, *req.Quantity, *req.Price); err != nil {
		writeError(w, r, err)
		return
	}
	metrics.InventoryChanges.WithLabelValues("update").Inc()

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/inventory/{id}. Unknown ids succeed.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		writeError(w, r, err)
		return
	}
	metrics.InventoryChanges.WithLabelValues("delete").Inc()
	w.WriteHeader(http.StatusNoContent)
}
