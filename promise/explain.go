/*
explain.go - Human-readable reasons, blockers, and options

PURPOSE:
  Renders the allocation plan and the calendar-rule trace into the three
  explanation lists on a Promise:

    Reasons   one line per consumed source, plus one line per calendar rule
              that moved the date (buffer, cutoff, non-working day)
    Blockers  shortages, inaccessible supply data, far-out purchase orders,
              and desired-date violations
    Options   concrete follow-ups derived from the blockers (check another
              warehouse, expedite supply, extend the desired date)
*/
package promise

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ruleTrace records which calendar rules moved the aggregate date, so the
// explanation can cite them.
type ruleTrace struct {
	bufferDays    int
	cutoffApplied bool
	weekendFrom   *time.Time // set when the date was moved off a non-working day
	base          time.Time
	final         time.Time
}

func buildReasons(plans []ItemPlan, trace *ruleTrace) []string {
	var reasons []string

	for _, plan := range plans {
		if len(plan.Allocation) == 0 {
			reasons = append(reasons, fmt.Sprintf("Item %s: no stock or incoming supply available", plan.Line.ItemCode))
			continue
		}
		for _, e := range plan.Allocation {
			switch e.Source.Kind {
			case SourcePurchaseOrder:
				reasons = append(reasons, fmt.Sprintf("Item %s: %s units from %s (arriving %s)",
					plan.Line.ItemCode, e.Qty.String(), e.Source.DocumentID, e.Source.Available.Format(dateLayout)))
			default:
				reasons = append(reasons, fmt.Sprintf("Item %s: %s units from stock in %s (available %s)",
					plan.Line.ItemCode, e.Qty.String(), e.Source.Warehouse, e.Source.Available.Format(dateLayout)))
			}
		}
	}

	if trace == nil {
		return reasons
	}
	if trace.bufferDays > 0 {
		reasons = append(reasons, fmt.Sprintf("Added %d working day(s) lead time buffer", trace.bufferDays))
	}
	if trace.cutoffApplied {
		reasons = append(reasons, "Order placed after daily cutoff; moved to the next day")
	}
	if trace.weekendFrom != nil {
		reasons = append(reasons, fmt.Sprintf("Moved off non-working day %s to %s",
			trace.weekendFrom.Format(dateLayout), trace.final.Format(dateLayout)))
	}
	return reasons
}

func buildBlockers(plans []ItemPlan, rec reconciliation, desired *time.Time, cal *Calendar, today time.Time) []string {
	var blockers []string

	for _, plan := range plans {
		if plan.Shortage.IsPositive() {
			blockers = append(blockers, fmt.Sprintf("Item %s: shortage of %s units",
				plan.Line.ItemCode, plan.Shortage.String()))
		}
		blockers = append(blockers, plan.DegradedCauses...)
		for _, e := range plan.Allocation {
			if e.Source.Kind != SourcePurchaseOrder {
				continue
			}
			daysOut := cal.DaysBetween(today, e.Source.Available)
			if daysOut > nearReceiptWindowDays {
				blockers = append(blockers, fmt.Sprintf("Item %s: %s arrives in %d days",
					plan.Line.ItemCode, e.Source.DocumentID, daysOut))
			}
		}
	}

	if desired != nil && rec.lateDays > 0 {
		if rec.rejected {
			blockers = append(blockers, fmt.Sprintf(
				"Earliest feasible date misses the desired date %s by %d day(s); order rejected",
				desired.Format(dateLayout), rec.lateDays))
		} else {
			blockers = append(blockers, fmt.Sprintf(
				"Earliest feasible date is %d day(s) after the desired date %s",
				rec.lateDays, desired.Format(dateLayout)))
		}
	}

	return blockers
}

func buildOptions(plans []ItemPlan, rec reconciliation, cal *Calendar, today time.Time) []Option {
	var options []Option

	for _, plan := range plans {
		if plan.Shortage.IsPositive() {
			options = append(options,
				Option{
					Type:        OptionAlternateWarehouse,
					Description: fmt.Sprintf("Check alternate warehouses for %s", plan.Line.ItemCode),
					Impact:      "Could close the shortage if stock exists elsewhere",
				},
				Option{
					Type:        OptionExpediteSupply,
					Description: fmt.Sprintf("Expedite or create supply for %s units of %s", plan.Shortage.String(), plan.Line.ItemCode),
					Impact:      "Required before the order can be fulfilled",
				})
		}
		for _, e := range plan.Allocation {
			if e.Source.Kind != SourcePurchaseOrder {
				continue
			}
			daysOut := cal.DaysBetween(today, e.Source.Available)
			if daysOut > nearReceiptWindowDays {
				options = append(options, Option{
					Type:        OptionExpediteSupply,
					Description: fmt.Sprintf("Expedite %s for %s", e.Source.DocumentID, plan.Line.ItemCode),
					Impact:      fmt.Sprintf("Could pull the promise date in by up to %d day(s)", daysOut-nearReceiptWindowDays),
					DocumentID:  e.Source.DocumentID,
				})
			}
		}
	}

	if rec.rejected {
		options = append(options, Option{
			Type:        OptionExtendDesiredDate,
			Description: fmt.Sprintf("Extend the desired date by %d day(s)", rec.lateDays),
			Impact:      "Order becomes fulfillable at the earliest feasible date",
		})
	}

	return options
}
