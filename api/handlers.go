/*
handlers.go - HTTP handlers for the inventory engine

PURPOSE:
  Exposes the registry via REST. This layer plays the presentation role:
  it carries the input validation a form would (required fields, positive
  quantity, date format) before anything reaches the registry, then maps
  boolean registry results to HTTP statuses.

ENDPOINTS:
  Items:
    POST   /api/items                   Register an item
    GET    /api/items?category=         Report rows
    GET    /api/items/{name}            Item details
    POST   /api/items/{name}/stock      Add a batch

  Actions:
    POST   /api/evictions               Remove expired stock everywhere
    POST   /api/undo                    Undo the last mutating action
    POST   /api/save                    Persist state to the SQLite store

  Reports and interchange:
    GET    /api/summary?category=       Report totals
    GET    /api/categories              Category index
    GET    /api/report/export?format=   Download report (csv | xlsx)
    GET    /api/snapshot                JSON snapshot export
    POST   /api/snapshot                JSON snapshot import

ERROR HANDLING:
  - 400: Validation failures (missing fields, bad date, bad quantity)
  - 404: Unknown item name
  - 409: Duplicate item name
  - 500: Export/persistence failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/snapshot"
	"github.com/warp/inventory-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Registry *inventory.Registry
	Store    *sqlite.Store // nil when running without persistence
}

// NewHandler creates a handler around the given registry. store may be
// nil; POST /api/save then reports persistence as unavailable.
func NewHandler(reg *inventory.Registry, store *sqlite.Store) *Handler {
	return &Handler{Registry: reg, Store: store}
}

// =============================================================================
// ITEM HANDLERS
// =============================================================================

// CreateItem registers a new item with zero stock.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.Name == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "Name and category are required.", nil)
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusBadRequest, "Price cannot be negative.", nil)
		return
	}

	if !h.Registry.AddItem(req.Name, req.Category, decimal.NewFromFloat(req.Price)) {
		writeError(w, http.StatusConflict, fmt.Sprintf("Item '%s' already exists.", req.Name), inventory.ErrItemExists)
		return
	}

	details, _ := h.Registry.GetItemDetails(req.Name)
	writeJSON(w, http.StatusCreated, toItemDetailsDTO(details))
}

// ListItems returns report rows, optionally filtered by exact category.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	rows := h.Registry.GenerateReport(r.URL.Query().Get("category"))
	writeJSON(w, http.StatusOK, toItemDTOs(rows))
}

// GetItem returns one item's details.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	details, ok := h.Registry.GetItemDetails(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Item '%s' not found.", name), inventory.ErrItemNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toItemDetailsDTO(details))
}

// AddStock adds a batch to an item. Quantity positivity and date format
// are validated here - the registry treats them as preconditions.
func (h *Handler) AddStock(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req AddStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "Quantity must be a positive integer.", nil)
		return
	}
	if _, err := inventory.ParseDate(req.ExpiryDate); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD.", err)
		return
	}

	if !h.Registry.AddStock(name, req.Quantity, req.ExpiryDate) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Item '%s' not found.", name), inventory.ErrItemNotFound)
		return
	}

	details, _ := h.Registry.GetItemDetails(name)
	writeJSON(w, http.StatusOK, toItemDetailsDTO(details))
}

// =============================================================================
// ACTION HANDLERS
// =============================================================================

// EvictExpired removes expired stock from every item. The body may pin
// the eviction day; it defaults to today.
func (h *Handler) EvictExpired(w http.ResponseWriter, r *http.Request) {
	today := inventory.Today()

	var req EvictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Today != "" {
		parsed, err := inventory.ParseDate(req.Today)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD.", err)
			return
		}
		today = parsed
	}

	evictions := h.Registry.EvictAllExpired(today)
	dtos := make([]EvictionDTO, len(evictions))
	for i, e := range evictions {
		dtos[i] = EvictionDTO{
			Name:    e.Name,
			Removed: e.Quantity,
			Message: fmt.Sprintf("%d units removed from '%s'", e.Quantity, e.Name),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Undo reverses the last mutating action (one level only).
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, UndoDTO{Message: h.Registry.UndoLast()})
}

// Save persists the registry to the SQLite store.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "Persistence is not configured.", nil)
		return
	}
	if err := h.Store.Save(r.Context(), h.Registry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT AND INTERCHANGE HANDLERS
// =============================================================================

// GetSummary returns report totals, optionally category-filtered.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	s := h.Registry.Summarize(r.URL.Query().Get("category"))
	value, _ := s.TotalValue.Float64()
	writeJSON(w, http.StatusOK, SummaryDTO{
		Items:         s.Items,
		TotalQuantity: s.TotalQuantity,
		TotalValue:    value,
	})
}

// ListCategories returns the category index in sorted order.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Registry.Categories())
}

// ExportReport downloads the report as CSV (default) or XLSX.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	rows := h.Registry.GenerateReport(r.URL.Query().Get("category"))
	stamp := time.Now().Format("20060102_150405")

	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="inventory_report_%s.csv"`, stamp))
		if err := snapshot.WriteReportCSV(w, rows); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to export report", err)
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="inventory_report_%s.xlsx"`, stamp))
		if err := snapshot.WriteReportXLSX(w, rows); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to export report", err)
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown export format %q (use csv or xlsx).", format), nil)
	}
}

// ExportSnapshot writes the JSON snapshot of all items.
func (h *Handler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := snapshot.Write(w, h.Registry); err != nil {
		// Headers are gone; log so a truncated download is diagnosable.
		log.Printf("snapshot export failed mid-stream: %v", err)
	}
}

// ImportSnapshot replays a JSON snapshot into the registry. Existing
// items are kept; a malformed document imports nothing.
func (h *Handler) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := snapshot.Read(r.Body, h.Registry); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to import data", err)
		return
	}

	items := h.Registry.Items()
	dtos := make([]ItemDetailsDTO, len(items))
	for i, d := range items {
		dtos[i] = toItemDetailsDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
