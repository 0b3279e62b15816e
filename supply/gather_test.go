package supply_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/promise-engine/supply"
)

func level(n int64) supply.StockLevel {
	return supply.StockLevel{ActualQty: decimal.NewFromInt(n), AvailableQty: decimal.NewFromInt(n)}
}

func TestGather_SnapshotsAlignWithQueries(t *testing.T) {
	// GIVEN: Two items with stock and receipts in a memory provider
	// WHEN: Gathering snapshots for both
	// THEN: Each snapshot sits at its query's index with its own data

	provider := supply.NewMemoryProvider()
	provider.SetStock("ITEM-A", "Stores - WH", level(30))
	provider.SetStock("ITEM-B", "Stores - WH", level(5))
	provider.AddReceipt(supply.Receipt{
		DocumentID:   "PO-001",
		ItemCode:     "ITEM-B",
		Qty:          decimal.NewFromInt(10),
		ExpectedDate: time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC),
	})

	snaps := supply.Gather(context.Background(), provider, []supply.Query{
		{ItemCode: "ITEM-A", Warehouses: []string{"Stores - WH"}},
		{ItemCode: "ITEM-B", Warehouses: []string{"Stores - WH"}},
	})

	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snaps))
	}
	if snaps[0].ItemCode != "ITEM-A" || snaps[1].ItemCode != "ITEM-B" {
		t.Fatalf("snapshots out of order: %s, %s", snaps[0].ItemCode, snaps[1].ItemCode)
	}
	if !snaps[0].TotalAvailable().Equal(decimal.NewFromInt(30)) {
		t.Errorf("ITEM-A available = %s, want 30", snaps[0].TotalAvailable())
	}
	if len(snaps[0].Receipts) != 0 {
		t.Errorf("ITEM-A got %d receipts, want 0", len(snaps[0].Receipts))
	}
	if len(snaps[1].Receipts) != 1 {
		t.Errorf("ITEM-B got %d receipts, want 1", len(snaps[1].Receipts))
	}
}

func TestGather_MissingBinIsZeroNotDegraded(t *testing.T) {
	// A warehouse with no bin record means zero stock there, not a failed read.

	provider := supply.NewMemoryProvider()
	provider.SetStock("ITEM-A", "Stores - WH", level(30))

	snaps := supply.Gather(context.Background(), provider, []supply.Query{
		{ItemCode: "ITEM-A", Warehouses: []string{"Stores - WH", "Finished Goods - WH"}},
	})

	snap := snaps[0]
	if snap.Degraded() {
		t.Errorf("missing bin flagged as degraded: %v", snap.Failures)
	}
	if len(snap.Stocks) != 1 {
		t.Errorf("got %d stock records, want 1", len(snap.Stocks))
	}
}

func TestGather_FailureIsolatedToItsItem(t *testing.T) {
	// GIVEN: One item whose stock read is denied, another that reads fine
	// WHEN: Gathering both
	// THEN: Only the denied item's snapshot is degraded

	provider := supply.NewMemoryProvider()
	provider.SetStock("ITEM-A", "Stores - WH", level(30))
	provider.FailStock("ITEM-B", "Stores - WH", supply.ErrAccessDenied)

	snaps := supply.Gather(context.Background(), provider, []supply.Query{
		{ItemCode: "ITEM-A", Warehouses: []string{"Stores - WH"}},
		{ItemCode: "ITEM-B", Warehouses: []string{"Stores - WH"}},
	})

	if snaps[0].Degraded() {
		t.Errorf("healthy item degraded: %v", snaps[0].Failures)
	}
	if !snaps[1].Degraded() {
		t.Fatal("denied item not degraded")
	}
	f := snaps[1].Failures[0]
	if f.Scope != "stock" || f.Warehouse != "Stores - WH" {
		t.Errorf("failure = %+v, want a stock failure for Stores - WH", f)
	}
	if !supply.IsAccessDenied(f.Err) {
		t.Errorf("failure error %v is not access-denied", f.Err)
	}
}

func TestGather_FutureSupplyFailureRecorded(t *testing.T) {
	provider := supply.NewMemoryProvider()
	provider.SetStock("ITEM-A", "Stores - WH", level(30))
	provider.FailFutureSupply("ITEM-A", supply.ErrTransient)

	snaps := supply.Gather(context.Background(), provider, []supply.Query{
		{ItemCode: "ITEM-A", Warehouses: []string{"Stores - WH"}},
	})

	snap := snaps[0]
	if !snap.Degraded() {
		t.Fatal("expected a degraded snapshot")
	}
	if snap.Failures[0].Scope != "future_supply" {
		t.Errorf("failure scope = %q, want future_supply", snap.Failures[0].Scope)
	}
	// The stock side of the snapshot stays usable.
	if !snap.TotalAvailable().Equal(decimal.NewFromInt(30)) {
		t.Errorf("available = %s, want 30", snap.TotalAvailable())
	}
}

func TestGather_NoQueries(t *testing.T) {
	snaps := supply.Gather(context.Background(), supply.NewMemoryProvider(), nil)
	if len(snaps) != 0 {
		t.Errorf("got %d snapshots for no queries, want 0", len(snaps))
	}
}
