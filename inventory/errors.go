/*
errors.go - Centralized error types for the inventory engine

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  Registry operations themselves report failure as boolean results (a
  rejected mutation is normal control flow, not a fault); these errors
  exist for the boundary layers - snapshot codecs, the SQLite store and
  the HTTP facade - which need errors.Is dispatch.

SEE ALSO:
  - registry.go: boolean-result mutation API
  - snapshot/: wraps ErrInvalidDate during import replay
*/
package inventory

import "errors"

var (
	// ErrInvalidDate is returned when a date string is not ISO YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date: expected YYYY-MM-DD")

	// ErrItemExists is returned by boundary layers when a create collides
	// with an existing item name (names are case-sensitive, no normalization).
	ErrItemExists = errors.New("item already exists")

	// ErrItemNotFound is returned when an item name is not registered.
	ErrItemNotFound = errors.New("item not found")
)
