/*
Package promise implements the order promise calculation engine.

PURPOSE:
  Given requested items and quantities, a snapshot of current stock and
  incoming supply, and a set of business calendar rules, the engine computes
  the earliest date by which the whole order can be made available, rates the
  reliability of that date, and explains how it arrived at it.

KEY CONCEPTS IN THIS FILE (types.go):
  - DemandLine: One requested item/quantity in an order
  - SupplySource: A dated quantity of supply (stock now, or a future receipt)
  - ItemPlan: How one demand line is covered, source by source
  - Promise: The overall result (date, confidence, plan, explanations)
  - Rules: Business calendar and policy knobs for one calculation

DESIGN PRINCIPLES:
  1. Purity: the engine is a stateless function of (request, supply snapshot).
     Nothing here is persisted or shared between calls.
  2. Precision: quantities use decimal.Decimal, never float64.
  3. Explainability: every allocation and rule application leaves a trace
     that becomes part of the returned Promise.
  4. Outcomes, not exceptions: shortages and inaccessible supply data are
     first-class result states, never errors.

SEE ALSO:
  - warehouse.go: Warehouse classification and group expansion
  - calendar.go:  Business-day date arithmetic
  - allocate.go:  Per-item greedy allocation
  - engine.go:    The Calculate entry point
*/
package promise

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// WAREHOUSE CLASSIFICATION
// =============================================================================

// WarehouseType classifies what a warehouse's stock can do for a promise.
type WarehouseType string

const (
	// WarehouseSellable stock is ready to ship and counts as available today.
	WarehouseSellable WarehouseType = "SELLABLE"

	// WarehouseNeedsProcessing stock needs internal handling (picking, QA,
	// staging) before it can ship; it becomes available after the processing
	// lead time.
	WarehouseNeedsProcessing WarehouseType = "NEEDS_PROCESSING"

	// WarehouseInTransit stock is on the move. It never counts as available
	// now; only a backing purchase order with a confirmed date produces supply.
	WarehouseInTransit WarehouseType = "IN_TRANSIT"

	// WarehouseNotAvailable stock (WIP, rejected, scrap) can never satisfy
	// demand.
	WarehouseNotAvailable WarehouseType = "NOT_AVAILABLE"

	// WarehouseGroup is a logical container. It is never allocated against
	// directly and must be expanded to leaf warehouses first.
	WarehouseGroup WarehouseType = "GROUP"
)

// =============================================================================
// SUPPLY SOURCES
// =============================================================================

// SourceKind distinguishes physical stock from future receipts.
type SourceKind string

const (
	SourceStock         SourceKind = "STOCK"
	SourcePurchaseOrder SourceKind = "PURCHASE_ORDER"
)

// SupplySource is a dated quantity of an item that can cover demand.
type SupplySource struct {
	Kind      SourceKind
	Qty       decimal.Decimal
	Available time.Time // date the quantity becomes physically usable
	Warehouse string

	// Purchase-order sources only.
	DocumentID   string
	ExpectedDate time.Time // the originating document's expected date
}

// AllocationEntry records quantity drawn from one source for one demand line.
type AllocationEntry struct {
	Source SupplySource
	Qty    decimal.Decimal
}

// =============================================================================
// DEMAND AND PLANS
// =============================================================================

// DemandLine is one requested item in an order. Immutable once created.
type DemandLine struct {
	ItemCode  string
	Qty       decimal.Decimal
	Warehouse string // optional; empty means the configured default
}

// ItemPlan is the fulfillment plan for a single demand line.
type ItemPlan struct {
	Line       DemandLine
	Allocation []AllocationEntry

	// Shortage is requested minus allocated, never negative.
	Shortage decimal.Decimal

	// AccessDegraded is set when part of this item's supply data could not be
	// read (permission or transient failure). The allocation covers only what
	// was retrievable; the scorer and explainer consume this flag.
	AccessDegraded bool
	DegradedCauses []string
}

// Allocated returns the total quantity drawn across all entries.
func (p ItemPlan) Allocated() decimal.Decimal {
	total := decimal.Zero
	for _, e := range p.Allocation {
		total = total.Add(e.Qty)
	}
	return total
}

// LatestDate returns the latest availability date among consumed sources and
// whether any source was consumed at all.
func (p ItemPlan) LatestDate() (time.Time, bool) {
	var latest time.Time
	for _, e := range p.Allocation {
		if e.Source.Available.After(latest) {
			latest = e.Source.Available
		}
	}
	return latest, !latest.IsZero()
}

// =============================================================================
// RESULT
// =============================================================================

// Status is the overall business outcome of a calculation.
type Status string

const (
	StatusOK Status = "OK"

	// StatusCannotFulfill means some demand has residual shortage after
	// exhausting every retrievable source, or a strict desired date was missed.
	StatusCannotFulfill Status = "CANNOT_FULFILL"

	// StatusCannotPromiseReliably means coverage depends entirely on supply
	// data the engine could not access. A best-effort date may still be
	// surfaced, at LOW confidence.
	StatusCannotPromiseReliably Status = "CANNOT_PROMISE_RELIABLY"
)

// Confidence rates how reliable a promise date is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Option is a suggested action that could improve the promise.
type Option struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	DocumentID  string `json:"document_id,omitempty"`
}

// Suggested option types.
const (
	OptionAlternateWarehouse = "alternate_warehouse"
	OptionExpediteSupply     = "expedite_supply"
	OptionExtendDesiredDate  = "extend_desired_date"
)

// Promise is the computed result for one request.
type Promise struct {
	Status     Status
	Confidence Confidence

	// PromiseDate is the final, reconciled date. Nil when the order cannot be
	// fulfilled; may be a best-effort date under CANNOT_PROMISE_RELIABLY.
	PromiseDate *time.Time

	// RawPromiseDate is the date before desired-date reconciliation.
	RawPromiseDate *time.Time

	// Desired-date reconciliation echo.
	DesiredDate     *time.Time
	DesiredDateMode DesiredDateMode
	OnTime          *bool

	Plan     []ItemPlan
	Reasons  []string
	Blockers []string
	Options  []Option
}

// =============================================================================
// BUSINESS RULES
// =============================================================================

// DesiredDateMode governs how a customer's requested date constrains the
// final promise.
type DesiredDateMode string

const (
	// DesiredLatestAcceptable caps the promise at the desired date: earlier
	// delivery is fine, later is flagged as a risk.
	DesiredLatestAcceptable DesiredDateMode = "LATEST_ACCEPTABLE"

	// DesiredNoEarlyDelivery floors the promise at the desired date: goods
	// must not arrive before it.
	DesiredNoEarlyDelivery DesiredDateMode = "NO_EARLY_DELIVERY"

	// DesiredStrictFail rejects the whole order when the raw date misses the
	// desired date.
	DesiredStrictFail DesiredDateMode = "STRICT_FAIL"
)

// ClockTime is a time-of-day without a date, used for the daily cutoff.
type ClockTime struct {
	Hour   int
	Minute int
}

// Rules are the business-policy knobs for one calculation.
type Rules struct {
	// ExcludeWeekends skips the configured non-working weekdays when true.
	ExcludeWeekends bool

	// NonWorkingDays is the weekday set skipped when ExcludeWeekends is on.
	// Empty means the default Friday/Saturday weekend.
	NonWorkingDays []time.Weekday

	// Cutoff is the daily time-of-day after which "today" no longer counts as
	// the first possible fulfillment day.
	Cutoff ClockTime

	// Timezone is the IANA zone all date arithmetic is anchored to.
	Timezone string

	// LeadTimeBufferDays are working days added after raw fulfillment to
	// absorb handling and shipping uncertainty.
	LeadTimeBufferDays int

	// ProcessingLeadTimeDays are working days before stock in a
	// NEEDS_PROCESSING warehouse becomes usable.
	ProcessingLeadTimeDays int

	DesiredDateMode DesiredDateMode

	// DefaultWarehouse is used for demand lines that name no warehouse.
	DefaultWarehouse string
}

// DefaultRules returns the standard rule set: Friday/Saturday weekend
// excluded, 14:00 cutoff, UTC, one buffer day, one processing day.
func DefaultRules() Rules {
	return Rules{
		ExcludeWeekends:        true,
		Cutoff:                 ClockTime{Hour: 14},
		Timezone:               "UTC",
		LeadTimeBufferDays:     1,
		ProcessingLeadTimeDays: 1,
		DesiredDateMode:        DesiredLatestAcceptable,
		DefaultWarehouse:       "Stores - WH",
	}
}

// Request is the input to a promise calculation.
type Request struct {
	Customer    string
	Lines       []DemandLine
	DesiredDate *time.Time
	Rules       *Rules // nil means the engine's defaults
}
