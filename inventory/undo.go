/*
undo.go - Single-level action undo records

PURPOSE:
  Every mutating registry call pushes the inverse of what it did onto
  the undo stack. UndoLast pops exactly one record and applies it.
  The stack is owned by the Registry instance, so independent registries
  undo independently (no process-global state).

VARIANTS:
  UndoCreateItem  - inverse of AddItem: delete the item
  UndoAddStock    - inverse of AddStock: add the (negative) delta back
                    to the item's quantity counter

KNOWN GAPS (see registry.go):
  - Undoing a create discards the item's category from the category set
    even when another live item still uses it.
  - Undoing a stock addition adjusts only the counter, not the ledger,
    so counter and ledger sum diverge afterward.
*/
package inventory

import "fmt"

// UndoRecord is a tagged variant; Registry.UndoLast dispatches on the
// concrete type. The unexported marker keeps the set of variants closed.
type UndoRecord interface {
	undoRecord()
	// Description is the human-readable result reported after applying.
	Description() string
}

// UndoCreateItem reverses an AddItem: the named item is deleted.
type UndoCreateItem struct {
	Name string
}

func (UndoCreateItem) undoRecord() {}

func (u UndoCreateItem) Description() string {
	return fmt.Sprintf("Undid: Deleted item '%s'", u.Name)
}

// UndoAddStock reverses an AddStock: Delta (stored negative) is added to
// the item's quantity counter.
type UndoAddStock struct {
	Name  string
	Delta int
}

func (UndoAddStock) undoRecord() {}

func (u UndoAddStock) Description() string {
	return fmt.Sprintf("Undid: Quantity adjustment for '%s'", u.Name)
}
