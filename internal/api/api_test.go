package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/welwishers/weldshop/internal/db"
	"github.com/welwishers/weldshop/internal/invoicing"
	"github.com/welwishers/weldshop/internal/model"
	"github.com/welwishers/weldshop/internal/store"
)

func setupTestServer(t *testing.T) (*httptest.Server, *invoicing.Service) {
	t.Helper()
	database := db.NewTestDB(t)
	svc := invoicing.New(database, nil, false)
	server := httptest.NewServer(NewRouter(database, svc))
	t.Cleanup(server.Close)
	return server, svc
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestInventoryAPIFlow(t *testing.T) {
	server, _ := setupTestServer(t)

	// Create item.
	resp := doJSON(t, "POST", server.URL+"/inventory", map[string]any{
		"item":     "Welding Rod",
		"brand":    "BrandA",
		"quantity": 10,
		"price":    50.0,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created model.InventoryItem
	json.NewDecoder(resp.Body).Decode(&created)
	if created.ID == 0 || created.Item != "Welding Rod" {
		t.Fatalf("unexpected item %+v", created)
	}

	// Update quantity and price.
	resp = doJSON(t, "PUT", server.URL+"/inventory/"+itoa(created.ID), map[string]any{
		"quantity": 0,
		"price":    "45.25",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var updated model.InventoryItem
	json.NewDecoder(resp.Body).Decode(&updated)
	if updated.Quantity != 0 || !updated.Price.Equal(decimal.RequireFromString("45.25")) {
		t.Errorf("unexpected update result %+v", updated)
	}
	if updated.Brand != "BrandA" {
		t.Errorf("expected brand unchanged, got %q", updated.Brand)
	}

	// List.
	resp = doJSON(t, "GET", server.URL+"/inventory", nil)
	var items []model.InventoryItem
	json.NewDecoder(resp.Body).Decode(&items)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	// Delete twice; the second is a no-op.
	for i := 0; i < 2; i++ {
		resp = doJSON(t, "DELETE", server.URL+"/inventory/"+itoa(created.ID), nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("delete %d: expected 204, got %d", i, resp.StatusCode)
		}
	}
}

func TestInventoryAPIErrors(t *testing.T) {
	server, _ := setupTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"missing brand", "POST", "/inventory", map[string]any{"item": "Rod", "quantity": 1, "price": 1}, http.StatusUnprocessableEntity},
		{"zero quantity", "POST", "/inventory", map[string]any{"item": "Rod", "brand": "A", "quantity": 0, "price": 1}, http.StatusUnprocessableEntity},
		{"update unknown", "PUT", "/inventory/99", map[string]any{"quantity": 1, "price": 1}, http.StatusNotFound},
		{"update negative", "PUT", "/inventory/99", map[string]any{"quantity": -1, "price": 1}, http.StatusUnprocessableEntity},
		{"update missing price", "PUT", "/inventory/99", map[string]any{"quantity": 1}, http.StatusUnprocessableEntity},
		{"bad id", "DELETE", "/inventory/abc", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, tt.method, server.URL+tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("expected %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}

	req, _ := http.NewRequest("POST", server.URL+"/inventory", bytes.NewReader([]byte("{")))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
}

func TestInvoicesAPIFlow(t *testing.T) {
	server, svc := setupTestServer(t)
	ctx := context.Background()

	rod, _ := store.AddItem(ctx, svc.DB, "Welding Rod", "BrandA", 10, decimal.NewFromInt(50))
	helmet, _ := store.AddItem(ctx, svc.DB, "Helmet", "BrandB", 5, decimal.NewFromInt(200))
	quantities := map[int64]int{rod: 2, helmet: 1}

	// Quote.
	resp := doJSON(t, "POST", server.URL+"/billing/quote", map[string]any{"quantities": quantities})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("quote: expected 200, got %d", resp.StatusCode)
	}
	var quote struct {
		Lines []model.InvoiceLine `json:"lines"`
		Total decimal.Decimal     `json:"total_bill"`
	}
	json.NewDecoder(resp.Body).Decode(&quote)
	if len(quote.Lines) != 2 || !quote.Total.Equal(decimal.NewFromInt(300)) {
		t.Errorf("unexpected quote %+v", quote)
	}

	// Quote is not persisted.
	invoices, _ := store.ListInvoices(ctx, svc.DB)
	if len(invoices) != 0 {
		t.Fatalf("expected no invoices after quote, got %d", len(invoices))
	}

	// Create.
	resp = doJSON(t, "POST", server.URL+"/invoices", map[string]any{
		"customer_name": "Alice",
		"quantities":    quantities,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var inv model.Invoice
	json.NewDecoder(resp.Body).Decode(&inv)
	if !inv.TotalBill.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected total 300, got %s", inv.TotalBill)
	}

	// Get.
	resp = doJSON(t, "GET", server.URL+"/invoices/"+itoa(inv.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}
	var got model.Invoice
	json.NewDecoder(resp.Body).Decode(&got)
	if got.Items != "Welding Rod (BrandA) - 2 pcs, Helmet (BrandB) - 1 pcs" {
		t.Errorf("unexpected items %q", got.Items)
	}

	// List.
	resp = doJSON(t, "GET", server.URL+"/invoices", nil)
	var list []model.Invoice
	json.NewDecoder(resp.Body).Decode(&list)
	if len(list) != 1 || list[0].CustomerName != "Alice" {
		t.Errorf("unexpected list %+v", list)
	}
}

func TestInvoicesAPIErrors(t *testing.T) {
	server, svc := setupTestServer(t)
	rod, _ := store.AddItem(context.Background(), svc.DB, "Welding Rod", "BrandA", 10, decimal.NewFromInt(50))

	resp := doJSON(t, "POST", server.URL+"/billing/quote", map[string]any{"quantities": map[int64]int{rod: 11}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	var body struct {
		ItemID    int64 `json:"item_id"`
		Requested int   `json:"requested"`
		Available int   `json:"available"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.ItemID != rod || body.Requested != 11 || body.Available != 10 {
		t.Errorf("unexpected error body %+v", body)
	}

	resp = doJSON(t, "POST", server.URL+"/invoices", map[string]any{
		"customer_name": "",
		"quantities":    map[int64]int{rod: 1},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("empty customer: expected 422, got %d", resp.StatusCode)
	}
	var verr struct {
		Fields map[string]string `json:"fields"`
	}
	json.NewDecoder(resp.Body).Decode(&verr)
	if verr.Fields["customer_name"] == "" {
		t.Errorf("expected customer_name field error, got %+v", verr.Fields)
	}

	resp = doJSON(t, "POST", server.URL+"/invoices", map[string]any{"customer_name": "Alice"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("missing quantities: expected 422, got %d", resp.StatusCode)
	}

	resp = doJSON(t, "GET", server.URL+"/invoices/42", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown invoice: expected 404, got %d", resp.StatusCode)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
