package snapshot

import (
	"fmt"
	"io"
	"strconv"

	"github.com/tealeg/xlsx/v3"

	"github.com/warp/inventory-engine/inventory"
)

// WriteReportXLSX writes report rows as a single-sheet Excel workbook
// with the same columns and display conventions as the CSV export.
func WriteReportXLSX(w io.Writer, rows []inventory.ReportRow) error {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Inventory")
	if err != nil {
		return fmt.Errorf("add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range reportHeader {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
	}

	for _, row := range rows {
		dataRow := sheet.AddRow()
		for _, value := range []string{
			row.Name,
			row.Category,
			strconv.Itoa(row.Quantity),
			money(row.Price),
			money(row.Value),
			row.ExpiryDatesJoined(),
		} {
			dataRow.AddCell().Value = value
		}
	}

	// SetColWidth columns are 1-based.
	for i := range reportHeader {
		sheet.SetColWidth(i+1, i+1, 18)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
