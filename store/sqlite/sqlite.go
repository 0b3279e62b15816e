/*
Package sqlite provides a SQLite-backed supply snapshot store.

PURPOSE:
  Persists the supply-side picture the promise engine computes over: stock
  bins, incoming purchase orders, and warehouse classification/hierarchy.
  It implements supply.Provider, so the API server can answer promise
  requests straight from the snapshot. It also records applied promises -
  the local trace of write-backs to external order records.

KEY TABLES:
  bins                Current stock per item/warehouse
  purchase_orders     Incoming supply with expected dates
  warehouses          Name -> type classification overrides
  warehouse_children  Group membership, ordered
  applied_promises    Promise-to-order write-back records

STORAGE CONVENTIONS:
  Quantities are stored as TEXT and parsed with decimal to avoid float
  drift. Dates are stored as TEXT in YYYY-MM-DD form.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, and SQLite WAL mode so readers do
  not block each other.

USAGE:
  store, err := sqlite.New("./data/promise.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := promise.NewEngine(store, classifier, rules)

SEE ALSO:
  - supply/provider.go: the Provider interface this store implements
  - supply/csv.go:      the CSV seed source for demo data
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/promise-engine/promise"
	"github.com/warp/promise-engine/supply"
)

// Store is a SQLite-backed supply snapshot and write-back record store.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store at the given database path. Use ":memory:" for an
// in-memory database.
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
	-- Current stock per item and warehouse
	CREATE TABLE IF NOT EXISTS bins (
		item_code TEXT NOT NULL,
		warehouse TEXT NOT NULL,
		actual_qty TEXT NOT NULL DEFAULT '0',
		reserved_qty TEXT NOT NULL DEFAULT '0',
		available_qty TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (item_code, warehouse)
	);

	-- Incoming supply with confirmed expected dates
	CREATE TABLE IF NOT EXISTS purchase_orders (
		po_id TEXT PRIMARY KEY,
		item_code TEXT NOT NULL,
		qty TEXT NOT NULL,
		expected_date TEXT NOT NULL,
		warehouse TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_purchase_orders_item_date
		ON purchase_orders(item_code, expected_date);

	-- Warehouse classification overrides and hierarchy
	CREATE TABLE IF NOT EXISTS warehouses (
		name TEXT PRIMARY KEY,
		wh_type TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS warehouse_children (
		group_name TEXT NOT NULL,
		child_name TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (group_name, child_name)
	);

	-- Local record of promises written back to order documents
	CREATE TABLE IF NOT EXISTS applied_promises (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		promise_date TEXT NOT NULL,
		confidence TEXT NOT NULL,
		comment TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_applied_promises_order
		ON applied_promises(order_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SUPPLY PROVIDER IMPLEMENTATION
// =============================================================================

// CurrentQuantity implements supply.Provider.
func (s *Store) CurrentQuantity(ctx context.Context, itemCode, warehouse string) (supply.StockLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var actual, reserved, available string
	err := s.db.QueryRowContext(ctx, `
		SELECT actual_qty, reserved_qty, available_qty FROM bins
		WHERE item_code = ? COLLATE NOCASE AND warehouse = ? COLLATE NOCASE`,
		itemCode, warehouse,
	).Scan(&actual, &reserved, &available)
	if err == sql.ErrNoRows {
		return supply.StockLevel{}, fmt.Errorf("%w: no bin for %s in %s", supply.ErrNotFound, itemCode, warehouse)
	}
	if err != nil {
		return supply.StockLevel{}, fmt.Errorf("%w: %v", supply.ErrTransient, err)
	}

	return supply.StockLevel{
		ActualQty:    parseQty(actual),
		ReservedQty:  parseQty(reserved),
		AvailableQty: parseQty(available),
	}, nil
}

// FutureSupply implements supply.Provider.
func (s *Store) FutureSupply(ctx context.Context, itemCode string) ([]supply.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT po_id, item_code, qty, expected_date, COALESCE(warehouse, '')
		FROM purchase_orders
		WHERE item_code = ? COLLATE NOCASE
		ORDER BY expected_date ASC, po_id ASC`, itemCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", supply.ErrTransient, err)
	}
	defer rows.Close()

	var receipts []supply.Receipt
	for rows.Next() {
		var poID, item, qty, expected, warehouse string
		if err := rows.Scan(&poID, &item, &qty, &expected, &warehouse); err != nil {
			return nil, fmt.Errorf("%w: %v", supply.ErrTransient, err)
		}
		date, err := time.Parse("2006-01-02", expected)
		if err != nil {
			continue // no confirmed date, not promisable
		}
		receipts = append(receipts, supply.Receipt{
			DocumentID:   poID,
			ItemCode:     item,
			Qty:          parseQty(qty),
			ExpectedDate: date,
			Warehouse:    warehouse,
		})
	}
	return receipts, rows.Err()
}

// =============================================================================
// SNAPSHOT MAINTENANCE
// =============================================================================

// UpsertBin writes the stock level for an item in a warehouse.
func (s *Store) UpsertBin(ctx context.Context, itemCode, warehouse string, level supply.StockLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bins (item_code, warehouse, actual_qty, reserved_qty, available_qty)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (item_code, warehouse) DO UPDATE SET
			actual_qty = excluded.actual_qty,
			reserved_qty = excluded.reserved_qty,
			available_qty = excluded.available_qty`,
		itemCode, warehouse,
		level.ActualQty.String(), level.ReservedQty.String(), level.AvailableQty.String())
	return err
}

// UpsertPurchaseOrder writes one incoming receipt.
func (s *Store) UpsertPurchaseOrder(ctx context.Context, r supply.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO purchase_orders (po_id, item_code, qty, expected_date, warehouse)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (po_id) DO UPDATE SET
			item_code = excluded.item_code,
			qty = excluded.qty,
			expected_date = excluded.expected_date,
			warehouse = excluded.warehouse`,
		r.DocumentID, r.ItemCode, r.Qty.String(), r.ExpectedDate.Format("2006-01-02"), r.Warehouse)
	return err
}

// ReplaceSupplyData wipes and reloads bins and purchase orders in one
// transaction. Used by the demo-data loader.
func (s *Store) ReplaceSupplyData(ctx context.Context, stocks []supply.StockRow, receipts []supply.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bins`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM purchase_orders`); err != nil {
		return err
	}
	for _, row := range stocks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bins (item_code, warehouse, actual_qty, reserved_qty, available_qty)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (item_code, warehouse) DO UPDATE SET
				actual_qty = excluded.actual_qty,
				reserved_qty = excluded.reserved_qty,
				available_qty = excluded.available_qty`,
			row.ItemCode, row.Warehouse,
			row.Level.ActualQty.String(), row.Level.ReservedQty.String(), row.Level.AvailableQty.String()); err != nil {
			return err
		}
	}
	for _, r := range receipts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO purchase_orders (po_id, item_code, qty, expected_date, warehouse)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (po_id) DO UPDATE SET qty = excluded.qty,
				expected_date = excluded.expected_date`,
			r.DocumentID, r.ItemCode, r.Qty.String(), r.ExpectedDate.Format("2006-01-02"), r.Warehouse); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// BinsForItem returns every stock bin recorded for an item.
func (s *Store) BinsForItem(ctx context.Context, itemCode string) ([]supply.StockRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT item_code, warehouse, actual_qty, reserved_qty, available_qty
		FROM bins
		WHERE item_code = ? COLLATE NOCASE
		ORDER BY warehouse ASC`, itemCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []supply.StockRow
	for rows.Next() {
		var row supply.StockRow
		var actual, reserved, available string
		if err := rows.Scan(&row.ItemCode, &row.Warehouse, &actual, &reserved, &available); err != nil {
			return nil, err
		}
		row.Level = supply.StockLevel{
			ActualQty:    parseQty(actual),
			ReservedQty:  parseQty(reserved),
			AvailableQty: parseQty(available),
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ListItems returns the distinct item codes present in the snapshot.
func (s *Store) ListItems(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT item_code FROM bins
		UNION
		SELECT item_code FROM purchase_orders
		ORDER BY item_code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		items = append(items, code)
	}
	return items, rows.Err()
}

// =============================================================================
// WAREHOUSE CONFIGURATION
// =============================================================================

// UpsertWarehouse stores a classification override and, for groups, the
// ordered child list.
func (s *Store) UpsertWarehouse(ctx context.Context, name string, whType promise.WarehouseType, children []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO warehouses (name, wh_type) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET wh_type = excluded.wh_type`,
		name, string(whType)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM warehouse_children WHERE group_name = ?`, name); err != nil {
		return err
	}
	for i, child := range children {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO warehouse_children (group_name, child_name, position)
			VALUES (?, ?, ?)`, name, child, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ClassifierConfig returns the stored classification overrides and hierarchy,
// in the shape promise.NewClassifier accepts.
func (s *Store) ClassifierConfig(ctx context.Context) (map[string]promise.WarehouseType, map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	classifications := make(map[string]promise.WarehouseType)
	rows, err := s.db.QueryContext(ctx, `SELECT name, wh_type FROM warehouses`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name, whType string
		if err := rows.Scan(&name, &whType); err != nil {
			return nil, nil, err
		}
		classifications[name] = promise.WarehouseType(whType)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	hierarchy := make(map[string][]string)
	childRows, err := s.db.QueryContext(ctx, `
		SELECT group_name, child_name FROM warehouse_children
		ORDER BY group_name, position ASC`)
	if err != nil {
		return nil, nil, err
	}
	defer childRows.Close()
	for childRows.Next() {
		var group, child string
		if err := childRows.Scan(&group, &child); err != nil {
			return nil, nil, err
		}
		hierarchy[group] = append(hierarchy[group], child)
	}
	return classifications, hierarchy, childRows.Err()
}

// =============================================================================
// APPLIED PROMISES (write-back records)
// =============================================================================

// AppliedPromise records one promise written back to an order document.
type AppliedPromise struct {
	ID          string
	OrderID     string
	PromiseDate time.Time
	Confidence  promise.Confidence
	Comment     string
	CreatedAt   time.Time
}

// RecordAppliedPromise persists a write-back record.
func (s *Store) RecordAppliedPromise(ctx context.Context, ap AppliedPromise) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applied_promises (id, order_id, promise_date, confidence, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ap.ID, ap.OrderID,
		ap.PromiseDate.Format("2006-01-02"), string(ap.Confidence),
		ap.Comment, ap.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

// AppliedPromises returns the write-back records for one order, newest first.
func (s *Store) AppliedPromises(ctx context.Context, orderID string) ([]AppliedPromise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, promise_date, confidence, COALESCE(comment, ''), created_at
		FROM applied_promises
		WHERE order_id = ?
		ORDER BY created_at DESC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AppliedPromise
	for rows.Next() {
		var ap AppliedPromise
		var promiseDate, createdAt string
		if err := rows.Scan(&ap.ID, &ap.OrderID, &promiseDate, &ap.Confidence, &ap.Comment, &createdAt); err != nil {
			return nil, err
		}
		if ap.PromiseDate, err = time.Parse("2006-01-02", promiseDate); err != nil {
			return nil, fmt.Errorf("corrupt promise_date for %s: %w", ap.ID, err)
		}
		if ap.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("corrupt created_at for %s: %w", ap.ID, err)
		}
		records = append(records, ap)
	}
	return records, rows.Err()
}

func parseQty(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
