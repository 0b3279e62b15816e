/*
reconcile.go - Desired-date reconciliation

PURPOSE:
  Adjusts or validates the raw computed promise date against an optional
  customer desired date, under one of three modes:

    LATEST_ACCEPTABLE   promise = min(raw, desired); raw past desired is a
                        risk surfaced via blockers, not a rejection
    NO_EARLY_DELIVERY   promise = max(raw, desired); on time iff raw fits
    STRICT_FAIL         raw past desired rejects the whole order

  With no desired date the raw date passes through and on-time is undefined.
  With no raw date (nothing allocatable) reconciliation is skipped entirely.
*/
package promise

import "time"

// reconciliation is the outcome of applying a desired-date mode.
type reconciliation struct {
	// adjusted is the final promise date; nil when rejected or raw was nil.
	adjusted *time.Time
	onTime   *bool

	// rejected is set only by STRICT_FAIL when raw misses desired. Any single
	// violation rejects the whole order.
	rejected bool

	// lateDays is how many days raw overshoots desired (0 when it fits).
	lateDays int
}

func reconcileDesiredDate(raw, desired *time.Time, mode DesiredDateMode, cal *Calendar) reconciliation {
	if raw == nil {
		return reconciliation{}
	}
	if desired == nil {
		d := *raw
		return reconciliation{adjusted: &d}
	}

	rawDate := cal.Date(*raw)
	desiredDate := cal.Date(*desired)
	fits := !rawDate.After(desiredDate)

	lateDays := 0
	if !fits {
		lateDays = cal.DaysBetween(desiredDate, rawDate)
	}

	switch mode {
	case DesiredNoEarlyDelivery:
		adjusted := rawDate
		if rawDate.Before(desiredDate) {
			adjusted = desiredDate
		}
		onTime := !adjusted.After(desiredDate)
		return reconciliation{adjusted: &adjusted, onTime: &onTime, lateDays: lateDays}

	case DesiredStrictFail:
		if !fits {
			return reconciliation{rejected: true, lateDays: lateDays}
		}
		onTime := true
		return reconciliation{adjusted: &rawDate, onTime: &onTime}

	default: // LATEST_ACCEPTABLE
		adjusted := rawDate
		if desiredDate.Before(rawDate) {
			adjusted = desiredDate
		}
		// The cap makes adjusted <= desired hold by construction; a raw date
		// past the desired one is a risk surfaced through blockers instead.
		onTime := !adjusted.After(desiredDate)
		return reconciliation{adjusted: &adjusted, onTime: &onTime, lateDays: lateDays}
	}
}
