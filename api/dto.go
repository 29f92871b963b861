/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupled from the domain
  model. Prices and values travel as float64 on the wire; the domain
  keeps them decimal.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *DTO: Response types returned to clients

VALIDATION:
  Done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import "github.com/warp/inventory-engine/inventory"

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CreateItemRequest is the request to register a new item.
type CreateItemRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// AddStockRequest is the request to add a batch to an item.
type AddStockRequest struct {
	Quantity   int    `json:"quantity"`
	ExpiryDate string `json:"expiry_date"`
}

// EvictRequest optionally pins the eviction day (defaults to today).
type EvictRequest struct {
	Today string `json:"today,omitempty"`
}

// ItemDTO is one item in report listings.
type ItemDTO struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Quantity    int      `json:"quantity"`
	Price       float64  `json:"price"`
	Value       float64  `json:"value"`
	ExpiryDates []string `json:"expiry_dates"`
}

// ItemDetailsDTO is the single-item lookup response.
type ItemDetailsDTO struct {
	ItemDTO
	DateAdded string `json:"date_added"`
}

// EvictionDTO reports expired stock removed from one item.
type EvictionDTO struct {
	Name    string `json:"name"`
	Removed int    `json:"removed"`
	Message string `json:"message"`
}

// UndoDTO carries the undo result description.
type UndoDTO struct {
	Message string `json:"message"`
}

// SummaryDTO totals a filtered report.
type SummaryDTO struct {
	Items         int     `json:"items"`
	TotalQuantity int     `json:"total_quantity"`
	TotalValue    float64 `json:"total_value"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toItemDTO(row inventory.ReportRow) ItemDTO {
	price, _ := row.Price.Float64()
	value, _ := row.Value.Float64()
	return ItemDTO{
		Name:        row.Name,
		Category:    row.Category,
		Quantity:    row.Quantity,
		Price:       price,
		Value:       value,
		ExpiryDates: formatDates(row.ExpiryDates),
	}
}

func toItemDTOs(rows []inventory.ReportRow) []ItemDTO {
	dtos := make([]ItemDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toItemDTO(row)
	}
	return dtos
}

func toItemDetailsDTO(d inventory.ItemDetails) ItemDetailsDTO {
	price, _ := d.Price.Float64()
	value, _ := d.Value.Float64()
	return ItemDetailsDTO{
		ItemDTO: ItemDTO{
			Name:        d.Name,
			Category:    d.Category,
			Quantity:    d.Quantity,
			Price:       price,
			Value:       value,
			ExpiryDates: formatDates(d.ExpiryDates),
		},
		DateAdded: d.DateAdded.String(),
	}
}

func formatDates(dates []inventory.Date) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out
}
