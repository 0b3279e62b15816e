package promise

import (
	"testing"
	"time"
)

func stockEntry(n int64, day time.Time) AllocationEntry {
	return AllocationEntry{
		Source: SupplySource{Kind: SourceStock, Qty: qty(n), Available: day, Warehouse: "Stores - WH"},
		Qty:    qty(n),
	}
}

func poEntry(n int64, day time.Time) AllocationEntry {
	return AllocationEntry{
		Source: SupplySource{Kind: SourcePurchaseOrder, Qty: qty(n), Available: day, DocumentID: "PO-001"},
		Qty:    qty(n),
	}
}

func TestConfidence_AllStockIsHigh(t *testing.T) {
	// GIVEN: Every allocated unit comes from on-hand stock
	// WHEN: Scoring confidence
	// THEN: HIGH

	cal := testCalendar(t)
	today := time.Date(2026, time.January, 28, 0, 0, 0, 0, time.UTC)
	plans := []ItemPlan{{
		Line:       DemandLine{ItemCode: "ITEM-001", Qty: qty(10)},
		Allocation: []AllocationEntry{stockEntry(10, today)},
	}}

	if got := scoreConfidence(plans, cal, today); got != ConfidenceHigh {
		t.Errorf("confidence = %s, want HIGH", got)
	}
}

func TestConfidence_NearPOIsMedium(t *testing.T) {
	// GIVEN: Part of the demand is covered by a PO six days out
	// WHEN: Scoring confidence
	// THEN: MEDIUM; a receipt inside the seven-day window is trusted but not
	//       as firm as stock

	cal := testCalendar(t)
	today := time.Date(2026, time.January, 28, 0, 0, 0, 0, time.UTC)
	plans := []ItemPlan{{
		Line: DemandLine{ItemCode: "ITEM-001", Qty: qty(50)},
		Allocation: []AllocationEntry{
			stockEntry(30, today),
			poEntry(20, today.AddDate(0, 0, 6)),
		},
	}}

	if got := scoreConfidence(plans, cal, today); got != ConfidenceMedium {
		t.Errorf("confidence = %s, want MEDIUM", got)
	}
}

func TestConfidence_FarPOIsLow(t *testing.T) {
	cal := testCalendar(t)
	today := time.Date(2026, time.January, 28, 0, 0, 0, 0, time.UTC)
	plans := []ItemPlan{{
		Line:       DemandLine{ItemCode: "ITEM-001", Qty: qty(20)},
		Allocation: []AllocationEntry{poEntry(20, today.AddDate(0, 0, 8))},
	}}

	if got := scoreConfidence(plans, cal, today); got != ConfidenceLow {
		t.Errorf("confidence = %s, want LOW", got)
	}
}

func TestConfidence_WindowBoundaryIsMedium(t *testing.T) {
	// A PO exactly seven days out sits on the window edge and still counts
	// as near.
	cal := testCalendar(t)
	today := time.Date(2026, time.January, 28, 0, 0, 0, 0, time.UTC)
	plans := []ItemPlan{{
		Line:       DemandLine{ItemCode: "ITEM-001", Qty: qty(20)},
		Allocation: []AllocationEntry{poEntry(20, today.AddDate(0, 0, 7))},
	}}

	if got := scoreConfidence(plans, cal, today); got != ConfidenceMedium {
		t.Errorf("confidence = %s, want MEDIUM", got)
	}
}

func TestConfidence_ShortageIsLow(t *testing.T) {
	cal := testCalendar(t)
	today := time.Date(2026, time.January, 28, 0, 0, 0, 0, time.UTC)
	plans := []ItemPlan{{
		Line:       DemandLine{ItemCode: "ITEM-001", Qty: qty(20)},
		Allocation: []AllocationEntry{stockEntry(10, today)},
		Shortage:   qty(10),
	}}

	if got := scoreConfidence(plans, cal, today); got != ConfidenceLow {
		t.Errorf("confidence = %s, want LOW", got)
	}
}

func TestConfidence_DegradedItemIsLow(t *testing.T) {
	// One degraded item drags the whole order down even when another item is
	// fully covered from stock.
	cal := testCalendar(t)
	today := time.Date(2026, time.January, 28, 0, 0, 0, 0, time.UTC)
	plans := []ItemPlan{
		{
			Line:       DemandLine{ItemCode: "ITEM-001", Qty: qty(10)},
			Allocation: []AllocationEntry{stockEntry(10, today)},
		},
		{
			Line:           DemandLine{ItemCode: "ITEM-002", Qty: qty(5)},
			AccessDegraded: true,
		},
	}

	if got := scoreConfidence(plans, cal, today); got != ConfidenceLow {
		t.Errorf("confidence = %s, want LOW", got)
	}
}
