/*
confidence.go - Promise reliability scoring

PURPOSE:
  Rates how reliable the computed plan is, as a deterministic function of
  where the allocated quantity comes from and how far out it sits:

    HIGH    every allocated unit comes from stock and nothing is short
    MEDIUM  nothing is short and every consumed purchase order arrives
            within seven days of today
    LOW     any access-degraded item, any residual shortage, or any consumed
            purchase order more than seven days out
*/
package promise

import "time"

// nearReceiptWindowDays bounds how far out a purchase order may sit before it
// drags confidence down.
const nearReceiptWindowDays = 7

func scoreConfidence(plans []ItemPlan, cal *Calendar, today time.Time) Confidence {
	allFromStock := true

	for _, plan := range plans {
		if plan.AccessDegraded || plan.Shortage.IsPositive() {
			return ConfidenceLow
		}
		for _, e := range plan.Allocation {
			if e.Source.Kind != SourcePurchaseOrder {
				continue
			}
			allFromStock = false
			if cal.DaysBetween(today, e.Source.Available) > nearReceiptWindowDays {
				return ConfidenceLow
			}
		}
	}

	if allFromStock {
		return ConfidenceHigh
	}
	return ConfidenceMedium
}
