/*
calendar.go - Business-calendar date arithmetic

PURPOSE:
  Working-day predicate, date shifting, and the daily cutoff rule, all
  anchored to one IANA timezone. Dates are handled at day granularity:
  every time.Time passing through here is normalized to midnight in the
  calendar's zone, so equality and ordering behave like calendar dates.

OPERATIONS:
  IsWorkingDay      day not in the configured non-working weekday set
  NextWorkingDay    advance one day at a time until a working day
  AddWorkingDays    advance day by day, counting only working days
  ApplyCutoff       +1 day when "now" is past the cutoff and the date is today
  AdjustToWorkingDay  identity for working days, else NextWorkingDay
*/
package promise

import (
	"fmt"
	"time"
)

// Calendar performs timezone-aware business-day arithmetic.
type Calendar struct {
	loc        *time.Location
	nonWorking map[time.Weekday]bool
	exclude    bool
	cutoff     ClockTime
}

// NewCalendar builds a calendar from the rule set. The default non-working
// set is Friday/Saturday (Sunday-start workweek). Returns ErrInvalidRules
// when the timezone is unknown or the cutoff is out of range.
func NewCalendar(rules Rules) (*Calendar, error) {
	loc, err := time.LoadLocation(rules.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidRules, rules.Timezone)
	}
	if rules.Cutoff.Hour < 0 || rules.Cutoff.Hour > 23 || rules.Cutoff.Minute < 0 || rules.Cutoff.Minute > 59 {
		return nil, fmt.Errorf("%w: cutoff %02d:%02d out of range", ErrInvalidRules, rules.Cutoff.Hour, rules.Cutoff.Minute)
	}

	nonWorking := make(map[time.Weekday]bool)
	if len(rules.NonWorkingDays) == 0 {
		nonWorking[time.Friday] = true
		nonWorking[time.Saturday] = true
	} else {
		for _, wd := range rules.NonWorkingDays {
			nonWorking[wd] = true
		}
	}
	if len(nonWorking) >= 7 {
		return nil, fmt.Errorf("%w: every weekday is non-working", ErrInvalidRules)
	}

	return &Calendar{
		loc:        loc,
		nonWorking: nonWorking,
		exclude:    rules.ExcludeWeekends,
		cutoff:     rules.Cutoff,
	}, nil
}

// Date normalizes a time to midnight of its calendar day in the zone.
func (c *Calendar) Date(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// Today returns the calendar day containing now.
func (c *Calendar) Today(now time.Time) time.Time {
	return c.Date(now)
}

// IsWorkingDay reports whether the date falls outside the non-working set.
// When weekend exclusion is off, every day is a working day.
func (c *Calendar) IsWorkingDay(date time.Time) bool {
	if !c.exclude {
		return true
	}
	return !c.nonWorking[c.Date(date).Weekday()]
}

// NextWorkingDay returns the first working day strictly after date.
func (c *Calendar) NextWorkingDay(date time.Time) time.Time {
	d := c.Date(date).AddDate(0, 0, 1)
	for !c.IsWorkingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// AdjustToWorkingDay returns date itself when it is a working day, otherwise
// the next working day after it.
func (c *Calendar) AdjustToWorkingDay(date time.Time) time.Time {
	d := c.Date(date)
	if c.IsWorkingDay(d) {
		return d
	}
	return c.NextWorkingDay(d)
}

// AddWorkingDays advances one calendar day at a time, counting only working
// days toward n. AddWorkingDays(d, 0) is d unchanged.
func (c *Calendar) AddWorkingDays(date time.Time, n int) time.Time {
	d := c.Date(date)
	for remaining := n; remaining > 0; {
		d = d.AddDate(0, 0, 1)
		if c.IsWorkingDay(d) {
			remaining--
		}
	}
	return d
}

// ApplyCutoff pushes the date one calendar day when now's time-of-day is past
// the daily cutoff and the date under consideration is today in the
// calendar's zone. Dates already in the future are unaffected.
func (c *Calendar) ApplyCutoff(date time.Time, now time.Time) time.Time {
	d := c.Date(date)
	if !d.Equal(c.Today(now)) {
		return d
	}
	local := now.In(c.loc)
	afterCutoff := local.Hour() > c.cutoff.Hour ||
		(local.Hour() == c.cutoff.Hour && local.Minute() > c.cutoff.Minute)
	if afterCutoff {
		return d.AddDate(0, 0, 1)
	}
	return d
}

// DaysBetween returns the whole calendar days from one date to another.
// Both dates are re-anchored in UTC before subtracting: zone-local midnights
// are not 24h apart across a DST transition.
func (c *Calendar) DaysBetween(from, to time.Time) int {
	a := c.Date(from)
	b := c.Date(to)
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
