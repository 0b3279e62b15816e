/*
csv.go - CSV-backed demo supply provider

PURPOSE:
  Loads stock levels and purchase orders from CSV files and serves them as a
  Provider. Used for demos and local development when no live supply system
  is reachable, and as the seed source for the snapshot store.

FILE FORMATS (header row required, extra columns ignored):
  stock CSV:            item_code, warehouse, actual_qty, reserved_qty, projected_qty
  purchase orders CSV:  po_id, item_code, qty, expected_date (YYYY-MM-DD), warehouse

  Rows with an unparseable quantity fall back to zero; purchase orders
  without a parseable expected date are skipped, since a receipt without a
  confirmed date cannot be promised against.
*/
package supply

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StockRow is one loaded stock record, exposed for snapshot seeding.
type StockRow struct {
	ItemCode  string
	Warehouse string
	Level     StockLevel
}

// CSVProvider serves supply data loaded from CSV files. Read-only after
// construction, safe for concurrent use.
type CSVProvider struct {
	stock    map[string]StockLevel // key: item|warehouse, normalized
	rows     []StockRow
	receipts map[string][]Receipt // key: item code
}

// NewCSVProvider loads the given stock and purchase-order files. Either path
// may be empty to skip that section.
func NewCSVProvider(stockPath, poPath string) (*CSVProvider, error) {
	p := &CSVProvider{
		stock:    make(map[string]StockLevel),
		receipts: make(map[string][]Receipt),
	}
	if stockPath != "" {
		if err := p.loadStock(stockPath); err != nil {
			return nil, fmt.Errorf("loading stock data: %w", err)
		}
	}
	if poPath != "" {
		if err := p.loadPurchaseOrders(poPath); err != nil {
			return nil, fmt.Errorf("loading purchase orders: %w", err)
		}
	}
	for _, rs := range p.receipts {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].ExpectedDate.Before(rs[j].ExpectedDate) })
	}
	return p, nil
}

// CurrentQuantity implements Provider.
func (p *CSVProvider) CurrentQuantity(ctx context.Context, itemCode, warehouse string) (StockLevel, error) {
	if err := ctx.Err(); err != nil {
		return StockLevel{}, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	level, ok := p.stock[stockKey(itemCode, warehouse)]
	if !ok {
		return StockLevel{}, fmt.Errorf("%w: no bin for %s in %s", ErrNotFound, itemCode, warehouse)
	}
	return level, nil
}

// FutureSupply implements Provider.
func (p *CSVProvider) FutureSupply(ctx context.Context, itemCode string) ([]Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return p.receipts[strings.ToLower(strings.TrimSpace(itemCode))], nil
}

// StockRows returns every loaded stock record, for snapshot seeding.
func (p *CSVProvider) StockRows() []StockRow { return p.rows }

// Receipts returns every loaded purchase-order receipt, for snapshot seeding.
func (p *CSVProvider) Receipts() []Receipt {
	var all []Receipt
	for _, rs := range p.receipts {
		all = append(all, rs...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].ExpectedDate.Equal(all[j].ExpectedDate) {
			return all[i].ExpectedDate.Before(all[j].ExpectedDate)
		}
		return all[i].DocumentID < all[j].DocumentID
	})
	return all
}

func (p *CSVProvider) loadStock(path string) error {
	return readCSV(path, func(row map[string]string) {
		item := strings.TrimSpace(row["item_code"])
		warehouse := strings.TrimSpace(row["warehouse"])
		if item == "" || warehouse == "" {
			return
		}
		level := StockLevel{
			ActualQty:    parseQty(row["actual_qty"]),
			ReservedQty:  parseQty(row["reserved_qty"]),
			AvailableQty: parseQty(row["projected_qty"]),
		}
		if level.AvailableQty.IsZero() && !level.ActualQty.IsZero() {
			level.AvailableQty = level.ActualQty.Sub(level.ReservedQty)
		}
		p.stock[stockKey(item, warehouse)] = level
		p.rows = append(p.rows, StockRow{ItemCode: item, Warehouse: warehouse, Level: level})
	})
}

func (p *CSVProvider) loadPurchaseOrders(path string) error {
	return readCSV(path, func(row map[string]string) {
		item := strings.TrimSpace(row["item_code"])
		poID := strings.TrimSpace(row["po_id"])
		if item == "" || poID == "" {
			return
		}
		expected, err := time.Parse("2006-01-02", strings.TrimSpace(row["expected_date"]))
		if err != nil {
			// No confirmed date, no promisable supply.
			return
		}
		key := strings.ToLower(item)
		p.receipts[key] = append(p.receipts[key], Receipt{
			DocumentID:   poID,
			ItemCode:     item,
			Qty:          parseQty(row["qty"]),
			ExpectedDate: expected,
			Warehouse:    strings.TrimSpace(row["warehouse"]),
		})
	})
}

func readCSV(path string, handle func(row map[string]string)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		row := make(map[string]string, len(header))
		for i, field := range record {
			if i < len(header) {
				row[header[i]] = field
			}
		}
		handle(row)
	}
}

func parseQty(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func stockKey(itemCode, warehouse string) string {
	return strings.ToLower(strings.TrimSpace(itemCode)) + "|" + strings.ToLower(strings.TrimSpace(warehouse))
}
