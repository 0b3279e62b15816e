package promise_test

import (
	"testing"
	"time"

	"github.com/warp/promise-engine/promise"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newCalendar(t *testing.T, rules promise.Rules) *promise.Calendar {
	t.Helper()
	cal, err := promise.NewCalendar(rules)
	if err != nil {
		t.Fatalf("NewCalendar failed: %v", err)
	}
	return cal
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// WORKING DAY TESTS
// =============================================================================

func TestIsWorkingDay_DefaultFridaySaturdayWeekend(t *testing.T) {
	// GIVEN: Default rules (Friday/Saturday non-working)
	// WHEN: Checking each day of a week
	// THEN: Friday and Saturday are non-working, the rest work

	cal := newCalendar(t, promise.DefaultRules())

	// 2026-01-25 is a Sunday.
	for d := 0; d < 7; d++ {
		day := date(2026, time.January, 25+d)
		working := cal.IsWorkingDay(day)
		wd := day.Weekday()
		wantWorking := wd != time.Friday && wd != time.Saturday
		if working != wantWorking {
			t.Errorf("IsWorkingDay(%s %s) = %v, want %v", day.Format("2006-01-02"), wd, working, wantWorking)
		}
	}
}

func TestIsWorkingDay_ExclusionDisabled(t *testing.T) {
	// GIVEN: Rules with weekend exclusion off
	// WHEN: Checking a Friday
	// THEN: It counts as a working day

	rules := promise.DefaultRules()
	rules.ExcludeWeekends = false
	cal := newCalendar(t, rules)

	friday := date(2026, time.January, 30)
	if !cal.IsWorkingDay(friday) {
		t.Error("Friday should be working when exclusion is disabled")
	}
}

func TestIsWorkingDay_CustomNonWorkingSet(t *testing.T) {
	rules := promise.DefaultRules()
	rules.NonWorkingDays = []time.Weekday{time.Saturday, time.Sunday}
	cal := newCalendar(t, rules)

	if cal.IsWorkingDay(date(2026, time.January, 25)) { // Sunday
		t.Error("Sunday should be non-working with a Sat/Sun set")
	}
	if !cal.IsWorkingDay(date(2026, time.January, 30)) { // Friday
		t.Error("Friday should be working with a Sat/Sun set")
	}
}

// =============================================================================
// DATE SHIFTING TESTS
// =============================================================================

func TestNextWorkingDay_SkipsWeekend(t *testing.T) {
	// GIVEN: Default Friday/Saturday weekend
	// WHEN: Asking for the next working day after Thursday
	// THEN: It is Sunday, two days later

	cal := newCalendar(t, promise.DefaultRules())

	thursday := date(2026, time.January, 29)
	got := cal.NextWorkingDay(thursday)
	want := date(2026, time.February, 1) // Sunday
	if !got.Equal(want) {
		t.Errorf("NextWorkingDay(Thursday) = %s, want %s", got, want)
	}
}

func TestAdjustToWorkingDay(t *testing.T) {
	cal := newCalendar(t, promise.DefaultRules())

	wednesday := date(2026, time.January, 28)
	if got := cal.AdjustToWorkingDay(wednesday); !got.Equal(wednesday) {
		t.Errorf("working day moved: %s", got)
	}

	friday := date(2026, time.January, 30)
	want := date(2026, time.February, 1) // Sunday
	if got := cal.AdjustToWorkingDay(friday); !got.Equal(want) {
		t.Errorf("AdjustToWorkingDay(Friday) = %s, want %s", got, want)
	}
}

func TestAddWorkingDays(t *testing.T) {
	// GIVEN: Default Friday/Saturday weekend
	// WHEN: Adding 3 working days to Wednesday 2026-01-28
	// THEN: Thu(1), skip Fri/Sat, Sun(2), Mon(3) -> 2026-02-02

	cal := newCalendar(t, promise.DefaultRules())

	got := cal.AddWorkingDays(date(2026, time.January, 28), 3)
	want := date(2026, time.February, 2)
	if !got.Equal(want) {
		t.Errorf("AddWorkingDays = %s, want %s", got, want)
	}

	same := date(2026, time.January, 28)
	if got := cal.AddWorkingDays(same, 0); !got.Equal(same) {
		t.Errorf("AddWorkingDays(date, 0) = %s, want unchanged", got)
	}
}

// =============================================================================
// CUTOFF TESTS
// =============================================================================

func TestApplyCutoff(t *testing.T) {
	cal := newCalendar(t, promise.DefaultRules()) // 14:00 cutoff, UTC

	today := date(2026, time.January, 28)

	// Before cutoff: today stays today.
	now := time.Date(2026, time.January, 28, 13, 59, 0, 0, time.UTC)
	if got := cal.ApplyCutoff(today, now); !got.Equal(today) {
		t.Errorf("before cutoff moved the date to %s", got)
	}

	// After cutoff: today slips one calendar day.
	now = time.Date(2026, time.January, 28, 15, 0, 0, 0, time.UTC)
	want := date(2026, time.January, 29)
	if got := cal.ApplyCutoff(today, now); !got.Equal(want) {
		t.Errorf("after cutoff = %s, want %s", got, want)
	}

	// Future dates are never pushed, even after cutoff.
	future := date(2026, time.February, 5)
	if got := cal.ApplyCutoff(future, now); !got.Equal(future) {
		t.Errorf("future date moved to %s", got)
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestNewCalendar_RejectsBadRules(t *testing.T) {
	bad := promise.DefaultRules()
	bad.Timezone = "Not/AZone"
	if _, err := promise.NewCalendar(bad); err == nil {
		t.Error("expected error for unknown timezone")
	}

	bad = promise.DefaultRules()
	bad.Cutoff = promise.ClockTime{Hour: 25}
	if _, err := promise.NewCalendar(bad); err == nil {
		t.Error("expected error for out-of-range cutoff")
	}

	bad = promise.DefaultRules()
	bad.NonWorkingDays = []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
	if _, err := promise.NewCalendar(bad); err == nil {
		t.Error("expected error when every weekday is non-working")
	}
}

func TestDaysBetween(t *testing.T) {
	cal := newCalendar(t, promise.DefaultRules())

	if got := cal.DaysBetween(date(2026, time.January, 28), date(2026, time.February, 4)); got != 7 {
		t.Errorf("DaysBetween = %d, want 7", got)
	}
}

func TestDaysBetween_AcrossDSTTransitions(t *testing.T) {
	// GIVEN: A calendar in a zone with DST transitions
	// WHEN: Spanning the spring-forward (23h) and fall-back (25h) days
	// THEN: Each calendar day still counts as exactly one day

	rules := promise.DefaultRules()
	rules.Timezone = "America/New_York"
	cal := newCalendar(t, rules)

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("loading zone: %v", err)
	}
	localDate := func(month time.Month, day int) time.Time {
		return time.Date(2026, month, day, 0, 0, 0, 0, loc)
	}

	// 2026-03-08 is the spring-forward day.
	if got := cal.DaysBetween(localDate(time.March, 8), localDate(time.March, 9)); got != 1 {
		t.Errorf("DaysBetween(Mar 8, Mar 9) = %d, want 1", got)
	}
	if got := cal.DaysBetween(localDate(time.March, 7), localDate(time.March, 14)); got != 7 {
		t.Errorf("DaysBetween(Mar 7, Mar 14) = %d, want 7", got)
	}

	// 2026-11-01 is the fall-back day.
	if got := cal.DaysBetween(localDate(time.November, 1), localDate(time.November, 2)); got != 1 {
		t.Errorf("DaysBetween(Nov 1, Nov 2) = %d, want 1", got)
	}
}
