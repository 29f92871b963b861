package inventory

import "github.com/shopspring/decimal"

// =============================================================================
// ITEM - A named stocked product wrapping one batch ledger
// =============================================================================

// Item is a stocked product. Name is the registry-wide primary key
// (case-sensitive, never normalized). Category is a free-form grouping
// label. Price uses decimal to keep value arithmetic exact.
//
// Quantity is a separately-maintained counter kept in lockstep with the
// ledger by AddStock and EvictExpired. It is allowed to diverge from the
// ledger sum after a stock undo - see Registry.UndoLast.
type Item struct {
	Name      string
	Category  string
	Price     decimal.Decimal
	Quantity  int
	DateAdded Date

	ledger BatchLedger
}

func newItem(name, category string, price decimal.Decimal, added Date) *Item {
	return &Item{
		Name:      name,
		Category:  category,
		Price:     price,
		DateAdded: added,
	}
}

// AddStock records one restocking event: the batch joins the ledger and
// the aggregate counter grows by quantity.
//
// PRECONDITION: quantity > 0 (validated before this call).
func (it *Item) AddStock(quantity int, expiry Date) {
	it.Quantity += quantity
	it.ledger.Add(quantity, expiry)
}

// EvictExpired drains expired batches and decrements the counter by the
// evicted amount. Returns the evicted quantity (0 if none).
func (it *Item) EvictExpired(today Date) int {
	evicted := it.ledger.EvictExpired(today)
	it.Quantity -= evicted
	return evicted
}

// Value is quantity × unit price.
func (it *Item) Value() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Batches returns a copy of the item's live batches in expiry order.
func (it *Item) Batches() []Batch { return it.ledger.Batches() }

// ExpiryDates returns the expiry dates in ledger order.
func (it *Item) ExpiryDates() []Date { return it.ledger.ExpiryDates() }

// LedgerQuantity re-derives the aggregate from the ledger itself.
// Equal to Quantity except after a stock undo.
func (it *Item) LedgerQuantity() int { return it.ledger.Quantity() }
