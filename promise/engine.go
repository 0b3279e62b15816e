/*
engine.go - The promise calculation orchestrator

PURPOSE:
  Composes classification, supply gathering, allocation, calendar
  arithmetic, desired-date reconciliation, scoring, and explanation into a
  single Calculate entry point.

PIPELINE:
  1. Validate      malformed requests are rejected before any work
  2. Collect       per-item supply snapshots, fetched in parallel
  3. Allocate      greedy earliest-first allocation per item
  4. Aggregate     overall raw date = max item date, then buffer -> cutoff
                   -> working-day adjustment, in that fixed order
  5. Reconcile     apply the desired-date mode
  6. Score         HIGH / MEDIUM / LOW confidence
  7. Explain       reasons, blockers, options

CONCURRENCY:
  The engine holds no mutable state and performs no I/O beyond the supply
  provider calls; Calculate is safe to invoke from any number of goroutines.
  The caller's context is passed through to the provider; the engine itself
  never retries, sleeps, or blocks.
*/
package promise

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/promise-engine/supply"
)

// Engine computes promises from a supply provider and a rule set.
type Engine struct {
	provider   supply.Provider
	classifier *Classifier
	defaults   Rules
	now        func() time.Time
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithClock overrides the engine's notion of "now". Tests use this to pin
// calculations to a fixed instant.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds an engine. The classifier and default rules are injected
// explicitly; there is no process-wide default configuration.
func NewEngine(provider supply.Provider, classifier *Classifier, defaults Rules, opts ...EngineOption) *Engine {
	e := &Engine{
		provider:   provider,
		classifier: classifier,
		defaults:   defaults,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calculate computes the promise for one request. Business failure states
// (shortage, inaccessible supply, missed strict dates) come back as fields on
// the Promise; an error is returned only for structurally invalid requests or
// a cancelled context.
func (e *Engine) Calculate(ctx context.Context, req Request) (*Promise, error) {
	rules := e.defaults
	if req.Rules != nil {
		rules = *req.Rules
	}
	if rules.DesiredDateMode == "" {
		rules.DesiredDateMode = DesiredLatestAcceptable
	}

	cal, err := e.validate(req, rules)
	if err != nil {
		return nil, err
	}

	now := e.now()
	today := cal.Today(now)

	// COLLECTING: expand each line's target warehouse to stockable leaves and
	// gather snapshots in parallel. A failed fetch degrades its own item only.
	queries := make([]supply.Query, len(req.Lines))
	for i, line := range req.Lines {
		target := line.Warehouse
		if target == "" {
			target = rules.DefaultWarehouse
		}
		var stockable []string
		for _, leaf := range e.classifier.Expand(target) {
			switch e.classifier.Classify(leaf) {
			case WarehouseSellable, WarehouseNeedsProcessing:
				stockable = append(stockable, leaf)
			}
		}
		queries[i] = supply.Query{ItemCode: line.ItemCode, Warehouses: stockable}
	}

	snapshots := supply.Gather(ctx, e.provider, queries)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// ALLOCATING
	plans := make([]ItemPlan, len(req.Lines))
	for i, line := range req.Lines {
		candidates := buildCandidates(snapshots[i], e.classifier, cal, rules, today)
		plans[i] = allocate(line, candidates, snapshots[i])
	}

	// AGGREGATING
	fulfillable := true
	unreliable := true
	for _, plan := range plans {
		if !plan.Shortage.IsPositive() {
			continue
		}
		fulfillable = false
		// A short item only counts as "unverifiable" when its data was
		// degraded and nothing at all was retrievable for it.
		if !plan.AccessDegraded || len(plan.Allocation) > 0 {
			unreliable = false
		}
	}

	var desired *time.Time
	if req.DesiredDate != nil {
		d := cal.Date(*req.DesiredDate)
		desired = &d
	}

	result := &Promise{
		Plan:            plans,
		DesiredDate:     desired,
		DesiredDateMode: rules.DesiredDateMode,
	}

	var trace *ruleTrace
	var rec reconciliation

	switch {
	case fulfillable:
		raw, t := e.aggregate(plans, cal, rules, today, now)
		trace = t

		// RECONCILING
		rec = reconcileDesiredDate(&raw, desired, rules.DesiredDateMode, cal)
		result.RawPromiseDate = &raw
		if rec.rejected {
			result.Status = StatusCannotFulfill
		} else {
			result.Status = StatusOK
			result.PromiseDate = rec.adjusted
			result.OnTime = rec.onTime
		}

	case unreliable:
		// Coverage hinges entirely on data the engine could not read. Surface
		// a best-effort date when anything was allocated at all.
		result.Status = StatusCannotPromiseReliably
		if anyAllocation(plans) {
			raw, t := e.aggregate(plans, cal, rules, today, now)
			trace = t
			result.RawPromiseDate = &raw
			result.PromiseDate = &raw
		}

	default:
		result.Status = StatusCannotFulfill
	}

	// SCORING
	result.Confidence = scoreConfidence(plans, cal, today)
	if result.Status == StatusCannotPromiseReliably {
		result.Confidence = ConfidenceLow
	}

	// EXPLAINING
	result.Reasons = buildReasons(plans, trace)
	result.Blockers = buildBlockers(plans, rec, desired, cal, today)
	result.Options = buildOptions(plans, rec, cal, today)

	return result, nil
}

// aggregate rolls per-item plans up to the raw promise date: the latest
// consumed-source date across items, then buffer, cutoff, and working-day
// adjustment in that fixed order.
func (e *Engine) aggregate(plans []ItemPlan, cal *Calendar, rules Rules, today, now time.Time) (time.Time, *ruleTrace) {
	base := today
	for _, plan := range plans {
		if latest, ok := plan.LatestDate(); ok && latest.After(base) {
			base = latest
		}
	}

	trace := &ruleTrace{base: base, bufferDays: rules.LeadTimeBufferDays}

	buffered := cal.AddWorkingDays(base, rules.LeadTimeBufferDays)

	afterCutoff := cal.ApplyCutoff(buffered, now)
	trace.cutoffApplied = !afterCutoff.Equal(buffered)

	final := afterCutoff
	if rules.ExcludeWeekends {
		final = cal.AdjustToWorkingDay(afterCutoff)
		if !final.Equal(afterCutoff) {
			from := afterCutoff
			trace.weekendFrom = &from
		}
	}
	trace.final = final

	return final, trace
}

func anyAllocation(plans []ItemPlan) bool {
	for _, plan := range plans {
		if len(plan.Allocation) > 0 {
			return true
		}
	}
	return false
}

// validate rejects malformed requests before collection starts and builds
// the calendar for the effective rules.
func (e *Engine) validate(req Request, rules Rules) (*Calendar, error) {
	if len(req.Lines) == 0 {
		return nil, newValidationError("items", ErrEmptyDemand.Error(), ErrEmptyDemand)
	}
	for i, line := range req.Lines {
		if line.ItemCode == "" {
			return nil, newValidationError(fmt.Sprintf("items[%d].item_code", i), "item code is required", nil)
		}
		if !line.Qty.IsPositive() {
			return nil, newValidationError(fmt.Sprintf("items[%d].qty", i), ErrNonPositiveQuantity.Error(), ErrNonPositiveQuantity)
		}
	}
	switch rules.DesiredDateMode {
	case DesiredLatestAcceptable, DesiredNoEarlyDelivery, DesiredStrictFail:
	default:
		return nil, newValidationError("rules.desired_date_mode",
			fmt.Sprintf("unknown mode %q", rules.DesiredDateMode), ErrInvalidRules)
	}
	if rules.LeadTimeBufferDays < 0 || rules.ProcessingLeadTimeDays < 0 {
		return nil, newValidationError("rules", "lead times must not be negative", ErrInvalidRules)
	}

	cal, err := NewCalendar(rules)
	if err != nil {
		return nil, newValidationError("rules", err.Error(), err)
	}
	return cal, nil
}
