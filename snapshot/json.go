/*
Package snapshot implements the boundary formats around the registry:
the persisted JSON snapshot and the tabular report exports (CSV, XLSX).

JSON CONTRACT:
  One object keyed by item name:

    { "<name>": {
        "name": ..., "category": ..., "price": ...,
        "quantity": ..., "expiry_dates": ["YYYY-MM-DD", ...],
        "date_added": "YYYY-MM-DD" } }

LOSSY ROUND-TRIP:
  Import re-creates each entry through the registry's own operations:
  AddItem (duplicates skipped, matching its false-on-duplicate result)
  and one unit-quantity AddStock per listed expiry date. Batch groupings
  are NOT reconstructed - a batch of 10 exports as 10 dates and imports
  as 10 batches of 1. Per-item totals and the set of distinct expiry
  dates survive the round trip; groupings and date_added do not.

FAILURE MODEL:
  Read fails atomically only at the decode stage. Per-item replay
  failures are skipped silently and already-applied additions stay
  (no transaction), matching the registry's stop-on-first-error posture.
*/
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/inventory-engine/inventory"
)

// ItemSnapshot is one item's wire entry. Price travels as a JSON number;
// the registry side stays decimal.
type ItemSnapshot struct {
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Price       float64          `json:"price"`
	Quantity    int              `json:"quantity"`
	ExpiryDates []inventory.Date `json:"expiry_dates"`
	DateAdded   inventory.Date   `json:"date_added"`
}

// Export builds the snapshot map from current registry state. Expiry
// dates are written one per unit, not one per batch, so the unit-wise
// replay in Read rebuilds the same per-item total.
func Export(reg *inventory.Registry) map[string]ItemSnapshot {
	out := make(map[string]ItemSnapshot)
	for _, d := range reg.Items() {
		price, _ := d.Price.Float64()
		dates := []inventory.Date{}
		if item, ok := reg.Item(d.Name); ok {
			for _, b := range item.Batches() {
				for i := 0; i < b.Quantity; i++ {
					dates = append(dates, b.Expiry)
				}
			}
		}
		out[d.Name] = ItemSnapshot{
			Name:        d.Name,
			Category:    d.Category,
			Price:       price,
			Quantity:    d.Quantity,
			ExpiryDates: dates,
			DateAdded:   d.DateAdded,
		}
	}
	return out
}

// Write encodes the registry snapshot as indented JSON.
func Write(w io.Writer, reg *inventory.Registry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Export(reg)); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// Read decodes a snapshot and replays it into the registry. Existing
// items keep their state: the AddItem replay is a no-op for them, and
// their expiry replays land on the existing ledger. Returns an error
// only when the document itself is unreadable.
func Read(r io.Reader, reg *inventory.Registry) error {
	var data map[string]ItemSnapshot
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	// Deterministic replay order; map iteration order is not.
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := data[name]
		reg.AddItem(name, entry.Category, decimal.NewFromFloat(entry.Price))
		for _, date := range entry.ExpiryDates {
			reg.AddStock(name, 1, date.String())
		}
	}
	return nil
}
