/*
Package sqlite persists registry state to SQLite.

PURPOSE:
  Durable storage between process runs. Unlike the JSON snapshot
  contract (which flattens batches to unit quantities), this store
  preserves exact batch groupings, the quantity counter as-is, and
  each item's creation date.

SEMANTICS:
  Save() replaces the entire persisted state inside one SQL transaction:
  either the new state lands completely or the previous state remains.
  Load() rebuilds items into a registry without creating undo records -
  loading is not an undoable user action.

NOT PERSISTED:
  The undo stack. Undo is an in-session concept; after a restart there
  is nothing to undo.

WAL MODE:
  The database is opened with WAL journaling for better crash recovery.
  A single mutex serializes Save/Load; the registry itself is the
  concurrency boundary for reads.

SEE ALSO:
  - inventory/registry.go: RestoreItem, the load path
  - snapshot/: the lossy JSON interchange format
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/inventory-engine/inventory"
)

// Store persists registries to a SQLite database.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		name TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		price TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		date_added TEXT NOT NULL
	);

	-- Batches keep their ledger position so equal-expiry insertion
	-- order survives a round trip.
	CREATE TABLE IF NOT EXISTS batches (
		item_name TEXT NOT NULL REFERENCES items(name) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		expiry TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		PRIMARY KEY (item_name, position)
	);

	CREATE INDEX IF NOT EXISTS idx_batches_expiry ON batches(expiry);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save replaces the persisted state with the registry's current state,
// all-or-nothing.
func (s *Store) Save(ctx context.Context, reg *inventory.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM batches`); err != nil {
		return fmt.Errorf("clear batches: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}

	for _, detail := range reg.Items() {
		item, ok := reg.Item(detail.Name)
		if !ok {
			continue
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO items (name, category, price, quantity, date_added)
			 VALUES (?, ?, ?, ?, ?)`,
			item.Name, item.Category, item.Price.String(), item.Quantity, item.DateAdded.String())
		if err != nil {
			return fmt.Errorf("insert item %q: %w", item.Name, err)
		}

		for pos, batch := range item.Batches() {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO batches (item_name, position, expiry, quantity)
				 VALUES (?, ?, ?, ?)`,
				item.Name, pos, batch.Expiry.String(), batch.Quantity)
			if err != nil {
				return fmt.Errorf("insert batch for %q: %w", item.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load rebuilds persisted items into reg. Loaded items carry no undo
// records. Items already present in reg with the same name are replaced.
func (s *Store) Load(ctx context.Context, reg *inventory.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, category, price, quantity, date_added FROM items ORDER BY name`)
	if err != nil {
		return fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	type itemRow struct {
		name, category, price, dateAdded string
		quantity                         int
	}
	var items []itemRow
	for rows.Next() {
		var ir itemRow
		if err := rows.Scan(&ir.name, &ir.category, &ir.price, &ir.quantity, &ir.dateAdded); err != nil {
			return fmt.Errorf("scan item: %w", err)
		}
		items = append(items, ir)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate items: %w", err)
	}

	for _, ir := range items {
		price, err := decimal.NewFromString(ir.price)
		if err != nil {
			return fmt.Errorf("item %q: bad price %q: %w", ir.name, ir.price, err)
		}
		dateAdded, err := inventory.ParseDate(ir.dateAdded)
		if err != nil {
			return fmt.Errorf("item %q: %w", ir.name, err)
		}
		batches, err := s.loadBatches(ctx, ir.name)
		if err != nil {
			return err
		}
		reg.RestoreItem(ir.name, ir.category, price, ir.quantity, dateAdded, batches)
	}
	return nil
}

func (s *Store) loadBatches(ctx context.Context, itemName string) ([]inventory.Batch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT expiry, quantity FROM batches WHERE item_name = ? ORDER BY position`, itemName)
	if err != nil {
		return nil, fmt.Errorf("query batches for %q: %w", itemName, err)
	}
	defer rows.Close()

	var batches []inventory.Batch
	for rows.Next() {
		var expiryText string
		var quantity int
		if err := rows.Scan(&expiryText, &quantity); err != nil {
			return nil, fmt.Errorf("scan batch for %q: %w", itemName, err)
		}
		expiry, err := inventory.ParseDate(expiryText)
		if err != nil {
			return nil, fmt.Errorf("batch for %q: %w", itemName, err)
		}
		batches = append(batches, inventory.Batch{Expiry: expiry, Quantity: quantity})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches for %q: %w", itemName, err)
	}
	return batches, nil
}
