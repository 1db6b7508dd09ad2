package model

import "github.com/shopspring/decimal"

// InventoryItem is one stocked product line. Item and Brand never change
// after creation; Quantity and Price are overwritten by explicit updates only.
type InventoryItem struct {
	ID       int64           `json:"id"`
	Item     string          `json:"item"`
	Brand    string          `json:"brand"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}
