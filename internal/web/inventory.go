package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/welwishers/weldshop/internal/metrics"
	"github.com/welwishers/weldshop/internal/model"
	"github.com/welwishers/weldshop/internal/store"
)

// addForm echoes the add-item inputs back after a failed submit.
type addForm struct {
	Item     string
	Brand    string
	Quantity string
	Price    string
}

type inventoryPage struct {
	PageData
	Add   addForm
	Items []model.InventoryItem
}

var inventoryMessages = map[string]string{
	"added":   "Item added successfully!",
	"updated": "Item updated successfully!",
	"deleted": "Item deleted successfully!",
}

// InventoryPage handles GET /inventory.
func (s *Server) InventoryPage(w http.ResponseWriter, r *http.Request) {
	pd := s.page("Inventory", "inventory")
	pd.Success = inventoryMessages[r.URL.Query().Get("ok")]
	s.renderInventory(r.Context(), w, http.StatusOK, pd, addForm{})
}

func (s *Server) renderInventory(ctx context.Context, w http.ResponseWriter, status int, pd PageData, add addForm) {
	items, err := store.ListInventory(ctx, s.DB)
	if err != nil {
		slog.Error("failed to list inventory", "error", err)
		pd.Error = "Error loading inventory."
		status = http.StatusInternalServerError
	}
	s.Templates.Render(w, status, "inventory.html", &inventoryPage{PageData: pd, Add: add, Items: items})
}

// RenderSnapshot writes a self-contained, read-only inventory page to w.
func (s *Server) RenderSnapshot(ctx context.Context, w io.Writer) error {
	items, err := store.ListInventory(ctx, s.DB)
	if err != nil {
		return err
	}
	pd := s.page("Inventory", "inventory")
	pd.Snapshot = true
	pd.InlineCSS = s.Templates.css
	return s.Templates.Execute(w, "inventory.html", &inventoryPage{PageData: pd, Items: items})
}

// ItemAddSubmit handles POST /inventory.
func (s *Server) ItemAddSubmit(w http.ResponseWriter, r *http.Request) {
	form := addForm{
		Item:     r.FormValue("item"),
		Brand:    r.FormValue("brand"),
		Quantity: r.FormValue("quantity"),
		Price:    r.FormValue("price"),
	}

	pd := s.page("Inventory", "inventory")
	quantity, price, err := parseQuantityPrice(form.Quantity, form.Price)
	if err == nil {
		_, err = store.AddItem(r.Context(), s.DB, form.Item, form.Brand, quantity, price)
	}
	if err != nil {
		status := applyError(err, &pd)
		s.renderInventory(r.Context(), w, status, pd, form)
		return
	}

	metrics.InventoryChanges.WithLabelValues("add").Inc()
	slog.Info("item added", "item", form.Item, "brand", form.Brand, "quantity", quantity)
	http.Redirect(w, r, "/inventory?ok=added", http.StatusSeeOther)
}

// ItemUpdateSubmit handles POST /inventory/update.
func (s *Server) ItemUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	pd := s.page("Inventory", "inventory")

	id, err := parseID(r.FormValue("id"))
	if err == nil {
		var quantity int
		var price decimal.Decimal
		quantity, price, err = parseQuantityPrice(r.FormValue("quantity"), r.FormValue("price"))
		if err == nil {
			err = store.UpdateItem(r.Context(), s.DB, id, quantity, price)
		}
	}
	if err != nil {
		status := applyError(err, &pd)
		s.renderInventory(r.Context(), w, status, pd, addForm{})
		return
	}

	metrics.InventoryChanges.WithLabelValues("update").Inc()
	slog.Info("item updated", "id", id)
	http.Redirect(w, r, "/inventory?ok=updated", http.StatusSeeOther)
}

// ItemDeleteSubmit handles POST /inventory/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	pd := s.page("Inventory", "inventory")

	id, err := parseID(r.FormValue("id"))
	if err == nil {
		err = store.DeleteItem(r.Context(), s.DB, id)
	}
	if err != nil {
		status := applyError(err, &pd)
		s.renderInventory(r.Context(), w, status, pd, addForm{})
		return
	}

	metrics.InventoryChanges.WithLabelValues("delete").Inc()
	slog.Info("item deleted", "id", id)
	http.Redirect(w, r, "/inventory?ok=deleted", http.StatusSeeOther)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, model.NewValidationError("id", "Must be a positive whole number")
	}
	return id, nil
}

// parseQuantityPrice converts form text; range checks are left to the store.
func parseQuantityPrice(rawQty, rawPrice string) (int, decimal.Decimal, error) {
	fields := map[string]string{}

	quantity, err := strconv.Atoi(strings.TrimSpace(rawQty))
	if err != nil {
		fields["quantity"] = "Must be a whole number"
	}
	price, err := decimal.NewFromString(strings.TrimSpace(rawPrice))
	if err != nil {
		fields["price"] = "Must be a number"
	}

	if len(fields) > 0 {
		return 0, decimal.Zero, &model.ValidationError{Fields: fields}
	}
	return quantity, price, nil
}
