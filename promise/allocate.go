/*
allocate.go - Per-item fulfillment allocation

PURPOSE:
  Turns one item's supply snapshot into an ordered allocation plan. Candidate
  sources are dated by warehouse class (sellable stock today, processing
  stock after the processing lead time, purchase orders at their expected
  date), sorted earliest first, and consumed greedily until the demand is
  met or sources run out. Whatever cannot be covered becomes shortage.

TIE-BREAKING:
  Sources available on the same date are consumed in priority order:
  sellable stock, then stock needing processing, then purchase orders.

DEGRADED DATA:
  When part of the snapshot was unretrievable the plan is flagged
  access-degraded and allocation proceeds over the retrievable remainder.
  A failed read never becomes a synthetic zero-quantity source.
*/
package promise

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/promise-engine/supply"
)

// Consumption priority for same-date sources. Lower wins.
const (
	prioritySellable = iota
	priorityNeedsProcessing
	priorityPurchaseOrder
)

type candidate struct {
	source   SupplySource
	priority int
}

// buildCandidates converts a snapshot into dated candidate sources.
// IN_TRANSIT and NOT_AVAILABLE stock produce nothing; in-transit quantity only
// ever arrives through a backing purchase order in the receipts.
func buildCandidates(snap supply.Snapshot, classifier *Classifier, cal *Calendar, rules Rules, today time.Time) []candidate {
	var candidates []candidate

	processingDate := cal.AddWorkingDays(today, rules.ProcessingLeadTimeDays)

	for _, ws := range snap.Stocks {
		if !ws.Level.AvailableQty.IsPositive() {
			continue
		}
		switch classifier.Classify(ws.Warehouse) {
		case WarehouseSellable:
			candidates = append(candidates, candidate{
				source: SupplySource{
					Kind:      SourceStock,
					Qty:       ws.Level.AvailableQty,
					Available: today,
					Warehouse: ws.Warehouse,
				},
				priority: prioritySellable,
			})
		case WarehouseNeedsProcessing:
			candidates = append(candidates, candidate{
				source: SupplySource{
					Kind:      SourceStock,
					Qty:       ws.Level.AvailableQty,
					Available: processingDate,
					Warehouse: ws.Warehouse,
				},
				priority: priorityNeedsProcessing,
			})
		}
	}

	for _, r := range snap.Receipts {
		if !r.Qty.IsPositive() {
			continue
		}
		expected := cal.Date(r.ExpectedDate)
		if expected.Before(today) {
			// Overdue documents have no trustworthy arrival date.
			continue
		}
		candidates = append(candidates, candidate{
			source: SupplySource{
				Kind:         SourcePurchaseOrder,
				Qty:          r.Qty,
				Available:    expected,
				Warehouse:    r.Warehouse,
				DocumentID:   r.DocumentID,
				ExpectedDate: expected,
			},
			priority: priorityPurchaseOrder,
		})
	}

	return candidates
}

// allocate greedily consumes candidates earliest-first for one demand line.
func allocate(line DemandLine, candidates []candidate, snap supply.Snapshot) ItemPlan {
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].source.Available, candidates[j].source.Available
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return candidates[i].priority < candidates[j].priority
	})

	plan := ItemPlan{Line: line, Shortage: decimal.Zero}
	remaining := line.Qty

	for _, c := range candidates {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, c.source.Qty)
		plan.Allocation = append(plan.Allocation, AllocationEntry{Source: c.source, Qty: take})
		remaining = remaining.Sub(take)
	}

	if remaining.IsPositive() {
		plan.Shortage = remaining
	}

	if snap.Degraded() {
		plan.AccessDegraded = true
		for _, f := range snap.Failures {
			plan.DegradedCauses = append(plan.DegradedCauses, describeFailure(line.ItemCode, f))
		}
	}

	return plan
}

func describeFailure(itemCode string, f supply.Failure) string {
	var what string
	switch f.Scope {
	case "stock":
		what = fmt.Sprintf("stock in %s", f.Warehouse)
	default:
		what = "incoming purchase orders"
	}
	switch {
	case supply.IsAccessDenied(f.Err):
		return fmt.Sprintf("Item %s: access denied reading %s", itemCode, what)
	case supply.IsTransient(f.Err):
		return fmt.Sprintf("Item %s: could not read %s (temporary failure)", itemCode, what)
	default:
		return fmt.Sprintf("Item %s: could not read %s: %v", itemCode, what, f.Err)
	}
}
