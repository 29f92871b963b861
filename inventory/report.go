package inventory

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REPORT TYPES - Pure read projections over registry state
// =============================================================================

// ReportRow is one item's line in a summary report.
type ReportRow struct {
	Name        string
	Category    string
	Quantity    int
	Price       decimal.Decimal
	Value       decimal.Decimal
	ExpiryDates []Date
}

// ExpiryDatesJoined renders the expiry dates as a comma-joined list in
// ledger order, the display form used by reports and exports.
func (r ReportRow) ExpiryDatesJoined() string {
	parts := make([]string, len(r.ExpiryDates))
	for i, d := range r.ExpiryDates {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}

// ItemDetails carries the report-row fields plus the raw expiry list
// and the creation date, for single-item lookups.
type ItemDetails struct {
	Name        string
	Category    string
	Quantity    int
	Price       decimal.Decimal
	Value       decimal.Decimal
	ExpiryDates []Date
	DateAdded   Date
}

// Eviction reports expired stock removed from one item.
type Eviction struct {
	Name     string
	Quantity int
}

// Summary aggregates a report: how many items, total units, total value.
type Summary struct {
	Items         int
	TotalQuantity int
	TotalValue    decimal.Decimal
}
