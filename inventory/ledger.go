/*
ledger.go - Per-item batch ledger ordered by expiry date

PURPOSE:
  The BatchLedger holds one item's live stock batches, kept sorted
  ascending by expiry date. Every restocking event becomes one batch;
  eviction drains expired batches from the front.

CRITICAL INVARIANTS:
  1. SORTED: batches are always ascending by expiry date.
  2. STABLE: batches with equal expiry dates keep insertion order.
  3. POSITIVE: a stored batch never has zero or negative quantity.
  4. PREFIX EVICTION: expired stock is always a prefix of the sequence,
     so eviction never inspects past the first unexpired batch.

EDGE CASE:
  A batch expiring exactly today is NOT evicted. Eviction uses a strict
  before-today comparison: stock is sellable through its expiry day.

SEE ALSO:
  - item.go: owns one ledger per item and the aggregate quantity counter
  - registry.go: delegates batch-level work here
*/
package inventory

import "sort"

// =============================================================================
// BATCH - One restocking event's remaining units
// =============================================================================

// Batch is an immutable (expiry date, quantity) pair.
type Batch struct {
	Expiry   Date
	Quantity int
}

// =============================================================================
// BATCH LEDGER - Sorted collection of an item's live batches
// =============================================================================

type BatchLedger struct {
	batches []Batch
}

// Add inserts a batch, keeping the sequence sorted ascending by expiry.
// Equal expiry dates preserve insertion order: the new batch goes after
// existing batches with the same date.
//
// PRECONDITION: quantity > 0. The caller validates input; malformed
// quantities never reach the ledger.
func (l *BatchLedger) Add(quantity int, expiry Date) {
	// Binary search for the first batch strictly after the new expiry.
	// Inserting there lands after any equal-expiry batches (stable).
	i := sort.Search(len(l.batches), func(i int) bool {
		return l.batches[i].Expiry.After(expiry)
	})

	l.batches = append(l.batches, Batch{})
	copy(l.batches[i+1:], l.batches[i:])
	l.batches[i] = Batch{Expiry: expiry, Quantity: quantity}
}

// EvictExpired removes every batch whose expiry date is strictly before
// today and returns the total quantity removed (0 if none). Batches
// expiring exactly today survive. Because the sequence is sorted this is
// a prefix drain; the remainder keeps its relative order untouched.
func (l *BatchLedger) EvictExpired(today Date) int {
	evicted := 0
	n := 0
	for n < len(l.batches) && l.batches[n].Expiry.Before(today) {
		evicted += l.batches[n].Quantity
		n++
	}
	if n > 0 {
		l.batches = append([]Batch(nil), l.batches[n:]...)
	}
	return evicted
}

// Quantity returns the sum of quantities across all live batches.
// This is the re-derivable truth the item counter should agree with.
func (l *BatchLedger) Quantity() int {
	total := 0
	for _, b := range l.batches {
		total += b.Quantity
	}
	return total
}

// Batches returns a copy of the live batches in expiry order.
func (l *BatchLedger) Batches() []Batch {
	out := make([]Batch, len(l.batches))
	copy(out, l.batches)
	return out
}

// ExpiryDates returns the expiry dates in ledger order, one per batch.
func (l *BatchLedger) ExpiryDates() []Date {
	dates := make([]Date, len(l.batches))
	for i, b := range l.batches {
		dates[i] = b.Expiry
	}
	return dates
}

// Len returns the number of live batches.
func (l *BatchLedger) Len() int { return len(l.batches) }
