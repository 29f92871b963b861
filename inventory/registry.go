/*
registry.go - Inventory registry: items, categories, undo stack, reports

PURPOSE:
  The Registry owns the set of named items (each wrapping one batch
  ledger), the derived category index, and a single-level undo stack.
  Mutations delegate batch work to the item's ledger and record the
  inverse action; reports are pure reads over current state.

VALIDATION CONTRACT:
  Rejected mutations return false and leave state untouched - duplicate
  names, unknown items, malformed dates. Nothing here panics or aborts.
  Quantity positivity is the caller's precondition (the presentation
  layer validates form input before it gets this far).

CONCURRENCY:
  A single RWMutex serializes all calls. The engine itself is a
  single-writer design; the mutex exists because the HTTP facade is a
  multi-threaded host.

KNOWN GAPS (deliberate):
  - Undoing AddStock adjusts only the quantity counter; the ledger keeps
    the inserted batch, so counter and ledger sum diverge afterward.
  - Undoing AddItem discards the item's category from the index even if
    another live item shares it. The index goes stale until that other
    item's category is re-added.
  Both are observable, tested behaviors, not accidents. See DESIGN.md.

SEE ALSO:
  - ledger.go: batch ordering and eviction
  - undo.go: undo record variants
  - snapshot/: import/export boundary built on this API
*/
package inventory

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// NoUndoMessage is the fixed result of undoing with an empty stack.
const NoUndoMessage = "No actions to undo."

// =============================================================================
// REGISTRY
// =============================================================================

type Registry struct {
	mu         sync.RWMutex
	items      map[string]*Item
	categories map[string]struct{}
	undo       []UndoRecord

	// now stamps DateAdded on new items; injectable for tests.
	now func() Date
}

func NewRegistry() *Registry {
	return &Registry{
		items:      make(map[string]*Item),
		categories: make(map[string]struct{}),
		now:        Today,
	}
}

// NewRegistryAt fixes the clock used for DateAdded stamps.
func NewRegistryAt(now func() Date) *Registry {
	r := NewRegistry()
	r.now = now
	return r
}

// =============================================================================
// MUTATIONS
// =============================================================================

// AddItem creates a new item with zero stock. Returns false without
// mutating anything when the name is already registered (names are
// case-sensitive). On success the category joins the index and the
// creation becomes undoable.
func (r *Registry) AddItem(name, category string, price decimal.Decimal) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; exists {
		return false
	}

	r.items[name] = newItem(name, category, price, r.now())
	r.categories[category] = struct{}{}
	r.undo = append(r.undo, UndoCreateItem{Name: name})
	return true
}

// AddStock adds a batch to the named item. Returns false - with no
// mutation and no undo record - when the item is unknown or expiryText
// is not an ISO YYYY-MM-DD date.
//
// PRECONDITION: quantity > 0, validated by the caller.
func (r *Registry) AddStock(name string, quantity int, expiryText string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[name]
	if !ok {
		return false
	}
	expiry, err := ParseDate(expiryText)
	if err != nil {
		return false
	}

	item.AddStock(quantity, expiry)
	r.undo = append(r.undo, UndoAddStock{Name: name, Delta: -quantity})
	return true
}

// EvictAllExpired removes expired batches from every item and returns
// one row per item that lost stock, in item-name order. Items with
// nothing expired are omitted. Eviction is not undoable.
func (r *Registry) EvictAllExpired(today Date) []Eviction {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evictions []Eviction
	for _, name := range r.sortedNamesLocked() {
		if removed := r.items[name].EvictExpired(today); removed > 0 {
			evictions = append(evictions, Eviction{Name: name, Quantity: removed})
		}
	}
	return evictions
}

// UndoLast pops the most recent undo record and applies its inverse,
// returning a description of what was undone. With an empty stack it
// returns NoUndoMessage and changes nothing.
func (r *Registry) UndoLast() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.undo) == 0 {
		return NoUndoMessage
	}
	record := r.undo[len(r.undo)-1]
	r.undo = r.undo[:len(r.undo)-1]

	switch rec := record.(type) {
	case UndoCreateItem:
		// The category is discarded unconditionally, even when another
		// item still uses it (kept gap, see file header).
		if item, ok := r.items[rec.Name]; ok {
			delete(r.categories, item.Category)
			delete(r.items, rec.Name)
		}
	case UndoAddStock:
		// Counter-only reversal: the batch stays in the ledger (kept gap).
		if item, ok := r.items[rec.Name]; ok {
			item.Quantity += rec.Delta
		}
	}
	return record.Description()
}

// RestoreItem re-creates an item from persisted state: exact batch
// groupings, quantity counter and creation date, with no undo record.
// Stores use it when loading a registry. An existing item with the same
// name is replaced. The counter is restored verbatim, not re-derived,
// so a persisted post-undo divergence survives the reload.
func (r *Registry) RestoreItem(name, category string, price decimal.Decimal, quantity int, dateAdded Date, batches []Batch) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item := newItem(name, category, price, dateAdded)
	for _, b := range batches {
		item.ledger.Add(b.Quantity, b.Expiry)
	}
	item.Quantity = quantity

	r.items[name] = item
	r.categories[category] = struct{}{}
}

// =============================================================================
// QUERIES
// =============================================================================

// GenerateReport returns one row per item in name-ascending order.
// A non-empty categoryFilter restricts rows to that exact category.
func (r *Registry) GenerateReport(categoryFilter string) []ReportRow {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []ReportRow
	for _, name := range r.sortedNamesLocked() {
		item := r.items[name]
		if categoryFilter != "" && item.Category != categoryFilter {
			continue
		}
		rows = append(rows, ReportRow{
			Name:        item.Name,
			Category:    item.Category,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Value:       item.Value(),
			ExpiryDates: item.ExpiryDates(),
		})
	}
	return rows
}

// GetItemDetails returns the full detail record for one item.
// ok is false when the name is not registered.
func (r *Registry) GetItemDetails(name string) (ItemDetails, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[name]
	if !ok {
		return ItemDetails{}, false
	}
	return ItemDetails{
		Name:        item.Name,
		Category:    item.Category,
		Quantity:    item.Quantity,
		Price:       item.Price,
		Value:       item.Value(),
		ExpiryDates: item.ExpiryDates(),
		DateAdded:   item.DateAdded,
	}, true
}

// Item returns a snapshot copy of one item, ledger included. Mutating
// the copy never touches registry state.
func (r *Registry) Item(name string) (Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[name]
	if !ok {
		return Item{}, false
	}
	cp := *item
	cp.ledger = BatchLedger{batches: item.ledger.Batches()}
	return cp, true
}

// Items returns detail records for every item in name order.
func (r *Registry) Items() []ItemDetails {
	r.mu.RLock()
	defer r.mu.RUnlock()

	details := make([]ItemDetails, 0, len(r.items))
	for _, name := range r.sortedNamesLocked() {
		item := r.items[name]
		details = append(details, ItemDetails{
			Name:        item.Name,
			Category:    item.Category,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Value:       item.Value(),
			ExpiryDates: item.ExpiryDates(),
			DateAdded:   item.DateAdded,
		})
	}
	return details
}

// Categories returns the category index in sorted order.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cats := make([]string, 0, len(r.categories))
	for c := range r.categories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// HasCategory reports whether the category is in the index.
func (r *Registry) HasCategory(category string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.categories[category]
	return ok
}

// Summarize totals a filtered report: item count, unit count, value.
func (r *Registry) Summarize(categoryFilter string) Summary {
	rows := r.GenerateReport(categoryFilter)

	s := Summary{Items: len(rows), TotalValue: decimal.Zero}
	for _, row := range rows {
		s.TotalQuantity += row.Quantity
		s.TotalValue = s.TotalValue.Add(row.Value)
	}
	return s
}

// UndoDepth returns the number of undoable actions.
func (r *Registry) UndoDepth() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.undo)
}

func (r *Registry) sortedNamesLocked() []string {
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
