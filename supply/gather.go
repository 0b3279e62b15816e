/*
gather.go - Parallel per-item snapshot collection

PURPOSE:
  Collects each item's stock and future-supply data from a Provider. Items
  are independent, so fetches run concurrently with a join barrier before
  returning. One item's failure never blocks or fails another item: the
  failure is recorded on that item's snapshot and allocation proceeds with
  whatever was retrievable.
*/
package supply

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Query names one item and the leaf warehouses to read stock from.
type Query struct {
	ItemCode   string
	Warehouses []string
}

// WarehouseStock pairs a warehouse with its retrieved stock level.
type WarehouseStock struct {
	Warehouse string
	Level     StockLevel
}

// Failure records one unretrievable read within a snapshot.
type Failure struct {
	// What was being read: "stock" or "future_supply".
	Scope     string
	Warehouse string // stock reads only
	Err       error
}

// Snapshot is everything retrievable about one item's supply.
type Snapshot struct {
	ItemCode string
	Stocks   []WarehouseStock
	Receipts []Receipt
	Failures []Failure
}

// Degraded reports whether any read within the snapshot failed.
func (s Snapshot) Degraded() bool { return len(s.Failures) > 0 }

// TotalAvailable sums retrievable available quantity across warehouses.
func (s Snapshot) TotalAvailable() decimal.Decimal {
	total := decimal.Zero
	for _, ws := range s.Stocks {
		total = total.Add(ws.Level.AvailableQty)
	}
	return total
}

// Gather fetches a snapshot per query, one goroutine per item, and joins
// before returning. Results are positionally aligned with queries. Context
// cancellation surfaces as transient failures on the unfinished items.
func Gather(ctx context.Context, p Provider, queries []Query) []Snapshot {
	snapshots := make([]Snapshot, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q Query) {
			defer wg.Done()
			snapshots[i] = fetchOne(ctx, p, q)
		}(i, q)
	}
	wg.Wait()

	return snapshots
}

func fetchOne(ctx context.Context, p Provider, q Query) Snapshot {
	snap := Snapshot{ItemCode: q.ItemCode}

	for _, wh := range q.Warehouses {
		level, err := p.CurrentQuantity(ctx, q.ItemCode, wh)
		switch {
		case err == nil:
			snap.Stocks = append(snap.Stocks, WarehouseStock{Warehouse: wh, Level: level})
		case IsNotFound(err):
			// No bin record means zero stock, not a degraded read.
		default:
			snap.Failures = append(snap.Failures, Failure{Scope: "stock", Warehouse: wh, Err: err})
		}
	}

	receipts, err := p.FutureSupply(ctx, q.ItemCode)
	switch {
	case err == nil:
		snap.Receipts = receipts
	case IsNotFound(err):
		// No receipts on record.
	default:
		snap.Failures = append(snap.Failures, Failure{Scope: "future_supply", Err: err})
	}

	return snap
}
