package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/warp/inventory-engine/inventory"
)

// reportHeader is the column order for tabular report exports.
var reportHeader = []string{"Name", "Category", "Quantity", "Price", "Value", "Expiry Dates"}

// money renders a decimal with the display convention used by reports.
func money(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

// WriteReportCSV writes report rows as CSV, one record per row, with
// price and value as currency text and expiry dates comma-joined.
func WriteReportCSV(w io.Writer, rows []inventory.ReportRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(reportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Name,
			row.Category,
			strconv.Itoa(row.Quantity),
			money(row.Price),
			money(row.Value),
			row.ExpiryDatesJoined(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %q: %w", row.Name, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
