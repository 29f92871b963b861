package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/inventory-engine/api"
	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) (http.Handler, *inventory.Registry) {
	t.Helper()
	reg := inventory.NewRegistry()
	return api.NewRouter(api.NewHandler(reg, nil)), reg
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createItem(t *testing.T, router http.Handler, name, category string, price float64) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/items",
		api.CreateItemRequest{Name: name, Category: category, Price: price})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func addStock(t *testing.T, router http.Handler, name string, qty int, expiry string) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/items/"+name+"/stock",
		api.AddStockRequest{Quantity: qty, ExpiryDate: expiry})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// =============================================================================
// ITEMS
// =============================================================================

func TestCreateItem_Success(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/items",
		api.CreateItemRequest{Name: "Milk", Category: "Dairy", Price: 50})

	require.Equal(t, http.StatusCreated, rec.Code)
	var dto api.ItemDetailsDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "Milk", dto.Name)
	assert.Equal(t, 0, dto.Quantity)
	assert.NotEmpty(t, dto.DateAdded)
}

func TestCreateItem_Duplicate_Conflict(t *testing.T) {
	router, reg := newTestRouter(t)
	createItem(t, router, "Milk", "Dairy", 50)

	rec := doJSON(t, router, http.MethodPost, "/api/items",
		api.CreateItemRequest{Name: "Milk", Category: "Bread", Price: 10})

	assert.Equal(t, http.StatusConflict, rec.Code)
	details, _ := reg.GetItemDetails("Milk")
	assert.Equal(t, "Dairy", details.Category)
}

func TestCreateItem_Validation(t *testing.T) {
	router, _ := newTestRouter(t)

	cases := []api.CreateItemRequest{
		{Name: "", Category: "Dairy", Price: 50},
		{Name: "Milk", Category: "", Price: 50},
		{Name: "Milk", Category: "Dairy", Price: -1},
	}
	for _, c := range cases {
		rec := doJSON(t, router, http.MethodPost, "/api/items", c)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "request %+v", c)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/items/Ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddStock_Flow(t *testing.T) {
	router, _ := newTestRouter(t)
	createItem(t, router, "Milk", "Dairy", 50)

	rec := doJSON(t, router, http.MethodPost, "/api/items/Milk/stock",
		api.AddStockRequest{Quantity: 10, ExpiryDate: "2099-01-01"})

	require.Equal(t, http.StatusOK, rec.Code)
	var dto api.ItemDetailsDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, 10, dto.Quantity)
	assert.Equal(t, 500.0, dto.Value)
	assert.Equal(t, []string{"2099-01-01"}, dto.ExpiryDates)
}

func TestAddStock_Rejections(t *testing.T) {
	router, reg := newTestRouter(t)
	createItem(t, router, "Milk", "Dairy", 50)

	// Bad quantity
	rec := doJSON(t, router, http.MethodPost, "/api/items/Milk/stock",
		api.AddStockRequest{Quantity: 0, ExpiryDate: "2099-01-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Bad date
	rec = doJSON(t, router, http.MethodPost, "/api/items/Milk/stock",
		api.AddStockRequest{Quantity: 5, ExpiryDate: "01/01/2099"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown item
	rec = doJSON(t, router, http.MethodPost, "/api/items/Ghost/stock",
		api.AddStockRequest{Quantity: 5, ExpiryDate: "2099-01-01"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	details, _ := reg.GetItemDetails("Milk")
	assert.Equal(t, 0, details.Quantity)
	assert.Equal(t, 1, reg.UndoDepth(), "only the create is undoable")
}

func TestListItems_CategoryFilter(t *testing.T) {
	router, _ := newTestRouter(t)
	createItem(t, router, "Milk", "Dairy", 50)
	createItem(t, router, "Bread", "Bakery", 30)
	createItem(t, router, "Cheese", "Dairy", 80)

	rec := doJSON(t, router, http.MethodGet, "/api/items?category=Dairy", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dtos []api.ItemDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dtos))
	require.Len(t, dtos, 2)
	assert.Equal(t, "Cheese", dtos[0].Name)
	assert.Equal(t, "Milk", dtos[1].Name)
}

// =============================================================================
// ACTIONS
// =============================================================================

func TestEvictExpired_PinnedDay(t *testing.T) {
	router, _ := newTestRouter(t)
	createItem(t, router, "Milk", "Dairy", 50)
	addStock(t, router, "Milk", 4, "2026-03-01")
	addStock(t, router, "Milk", 6, "2026-05-01")

	rec := doJSON(t, router, http.MethodPost, "/api/evictions",
		api.EvictRequest{Today: "2026-04-01"})

	require.Equal(t, http.StatusOK, rec.Code)
	var dtos []api.EvictionDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dtos))
	require.Len(t, dtos, 1)
	assert.Equal(t, "Milk", dtos[0].Name)
	assert.Equal(t, 4, dtos[0].Removed)
	assert.Equal(t, "4 units removed from 'Milk'", dtos[0].Message)
}

func TestEvictExpired_EmptyBodyDefaultsToToday(t *testing.T) {
	router, _ := newTestRouter(t)
	createItem(t, router, "Milk", "Dairy", 50)
	addStock(t, router, "Milk", 4, "2000-01-01")

	req := httptest.NewRequest(http.MethodPost, "/api/evictions", strings.NewReader(""))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var dtos []api.EvictionDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dtos))
	require.Len(t, dtos, 1)
	assert.Equal(t, 4, dtos[0].Removed)
}

func TestUndo_OverHTTP(t *testing.T) {
	router, reg := newTestRouter(t)
	createItem(t, router, "X", "Y", 1)

	rec := doJSON(t, router, http.MethodPost, "/api/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto api.UndoDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "Undid: Deleted item 'X'", dto.Message)
	assert.Empty(t, reg.Categories())

	rec = doJSON(t, router, http.MethodPost, "/api/undo", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, inventory.NoUndoMessage, dto.Message)
}

func TestSave_WithoutStore_Unavailable(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/save", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSave_WithStore(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	reg := inventory.NewRegistry()
	router := api.NewRouter(api.NewHandler(reg, store))
	createItem(t, router, "Milk", "Dairy", 50)

	rec := doJSON(t, router, http.MethodPost, "/api/save", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	loaded := inventory.NewRegistry()
	require.NoError(t, store.Load(context.Background(), loaded))
	_, ok := loaded.GetItemDetails("Milk")
	assert.True(t, ok)
}

// =============================================================================
// REPORTS AND INTERCHANGE
// =============================================================================

func TestSummary(t *testing.T) {
	router, _ := newTestRouter(t)
	createItem(t, router, "Milk", "Dairy", 50)
	addStock(t, router, "Milk", 10, "2099-01-01")

	rec := doJSON(t, router, http.MethodGet, "/api/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto api.SummaryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, 1, dto.Items)
	assert.Equal(t, 10, dto.TotalQuantity)
	assert.Equal(t, 500.0, dto.TotalValue)
}

func TestCategories(t *testing.T) {
	router, _ := newTestRouter(t)
	createItem(t, router, "Milk", "Dairy", 50)
	createItem(t, router, "Bread", "Bakery", 30)

	rec := doJSON(t, router, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cats []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	assert.Equal(t, []string{"Bakery", "Dairy"}, cats)
}

func TestExportReport_CSV(t *testing.T) {
	router, _ := newTestRouter(t)
	createItem(t, router, "Milk", "Dairy", 50)
	addStock(t, router, "Milk", 10, "2099-01-01")

	rec := doJSON(t, router, http.MethodGet, "/api/report/export?format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, rec.Body.String(), "Milk,Dairy,10,₹50.00,₹500.00,2099-01-01")
}

func TestExportReport_XLSX(t *testing.T) {
	router, _ := newTestRouter(t)
	createItem(t, router, "Milk", "Dairy", 50)

	rec := doJSON(t, router, http.MethodGet, "/api/report/export?format=xlsx", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestExportReport_UnknownFormat(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/report/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSnapshot_HTTPRoundTrip(t *testing.T) {
	// GIVEN: A populated registry
	// WHEN: Exporting the snapshot and importing it into a second server
	// THEN: Totals and date sets match on the other side

	routerA, _ := newTestRouter(t)
	createItem(t, routerA, "Milk", "Dairy", 50)
	addStock(t, routerA, "Milk", 3, "2099-01-01")

	export := doJSON(t, routerA, http.MethodGet, "/api/snapshot", nil)
	require.Equal(t, http.StatusOK, export.Code)

	routerB, regB := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/snapshot", bytes.NewReader(export.Body.Bytes()))
	rec := httptest.NewRecorder()
	routerB.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	details, ok := regB.GetItemDetails("Milk")
	require.True(t, ok)
	assert.Equal(t, 3, details.Quantity)
	milk, _ := regB.Item("Milk")
	assert.Len(t, milk.Batches(), 3, "unit batches after import")
}

// brokenResponseWriter fails every body write, like a client that hung
// up mid-download.
type brokenResponseWriter struct {
	header http.Header
}

func (b *brokenResponseWriter) Header() http.Header        { return b.header }
func (b *brokenResponseWriter) Write([]byte) (int, error)  { return 0, errors.New("connection reset") }
func (b *brokenResponseWriter) WriteHeader(statusCode int) {}

func TestExportSnapshot_WriteFailureIsLogged(t *testing.T) {
	// GIVEN: A client connection that drops during the download
	// WHEN: Exporting the snapshot
	// THEN: The handler logs the failure instead of dropping it silently

	reg := inventory.NewRegistry()
	require.True(t, reg.AddItem("Milk", "Dairy", decimal.NewFromInt(50)))
	h := api.NewHandler(reg, nil)

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	h.ExportSnapshot(&brokenResponseWriter{header: http.Header{}}, req)

	assert.Contains(t, logs.String(), "snapshot export failed")
}

func TestImportSnapshot_Malformed(t *testing.T) {
	router, reg := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/snapshot", strings.NewReader("{bad"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, reg.Items())
}

func TestRootIndex(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf("%q", "inventory-engine"))
}
