// Package billing turns an inventory snapshot and requested quantities into
// invoice lines and a total. It performs no I/O.
package billing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/welwishers/weldshop/internal/model"
)

// Selection is the result of ComputeSelection.
type Selection struct {
	Lines []model.InvoiceLine `json:"lines"`
	Total decimal.Decimal     `json:"total_bill"`
}

// Empty reports whether no line qualified.
func (s Selection) Empty() bool { return len(s.Lines) == 0 }

// ComputeSelection builds one line per snapshot row with a nonzero requested
// quantity, in snapshot order. Prices come from the snapshot only.
//
// A requested quantity below zero or above the row's quantity fails with
// *model.QuantityOutOfRangeError and no lines are returned. Requested ids
// that are not in the snapshot fail the same way with Available 0.
//
// Line totals are kept unrounded; Total is rounded to 2 places at the end.
func ComputeSelection(snapshot []model.InventoryItem, requested map[int64]int) (Selection, error) {
	known := make(map[int64]bool, len(snapshot))
	for _, item := range snapshot {
		known[item.ID] = true
	}
	if err := checkUnknown(known, requested); err != nil {
		return Selection{}, err
	}

	var lines []model.InvoiceLine
	sum := decimal.Zero
	for _, item := range snapshot {
		qty := requested[item.ID]
		if qty < 0 || qty > item.Quantity {
			return Selection{}, &model.QuantityOutOfRangeError{
				ItemID:    item.ID,
				Requested: qty,
				Available: item.Quantity,
			}
		}
		if qty == 0 {
			continue
		}

		total := item.Price.Mul(decimal.NewFromInt(int64(qty)))
		lines = append(lines, model.InvoiceLine{
			ItemID:   item.ID,
			ItemName: item.Item,
			Brand:    item.Brand,
			Quantity: qty,
			Price:    item.Price,
			Total:    total,
		})
		sum = sum.Add(total)
	}

	return Selection{Lines: lines, Total: sum.Round(2)}, nil
}

// checkUnknown rejects nonzero requests for ids missing from the snapshot.
// Ids are checked in ascending order so the reported id is deterministic.
func checkUnknown(known map[int64]bool, requested map[int64]int) error {
	var missing []int64
	for id, qty := range requested {
		if qty != 0 && !known[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	id := missing[0]
	return &model.QuantityOutOfRangeError{ItemID: id, Requested: requested[id], Available: 0}
}
