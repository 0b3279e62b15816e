/*
Package factory provides JSON to Go business-rule conversion.

PURPOSE:
  Converts JSON rule definitions into promise.Rules values. This keeps
  business-policy configuration out of code - operations can tune cutoffs,
  buffers, and weekend handling per request or per deployment without a
  rebuild, and the API layer accepts the same shape inline on requests.

JSON SCHEMA:
  {
    "no_weekends": true,
    "non_working_days": ["friday", "saturday"],
    "cutoff_time": "14:00",
    "timezone": "UTC",
    "lead_time_buffer_days": 1,
    "processing_lead_time_days": 1,
    "desired_date_mode": "LATEST_ACCEPTABLE",
    "default_warehouse": "Stores - WH"
  }

KEY FEATURES:
  - Every field optional; omissions fall back to the standard defaults
  - Validates cutoff format, weekday names, and mode names
  - Never mutates the defaults it starts from

USAGE:
  f := factory.NewRulesFactory()
  rules, err := f.ParseRules(jsonString)

SEE ALSO:
  - promise/types.go: the Rules type and DefaultRules
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/warp/promise-engine/promise"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RulesJSON is the JSON representation of a business-rule set. Pointer fields
// distinguish "absent" from zero values.
type RulesJSON struct {
	NoWeekends             *bool    `json:"no_weekends,omitempty"`
	NonWorkingDays         []string `json:"non_working_days,omitempty"`
	CutoffTime             string   `json:"cutoff_time,omitempty"`
	Timezone               string   `json:"timezone,omitempty"`
	LeadTimeBufferDays     *int     `json:"lead_time_buffer_days,omitempty"`
	ProcessingLeadTimeDays *int     `json:"processing_lead_time_days,omitempty"`
	DesiredDateMode        string   `json:"desired_date_mode,omitempty"`
	DefaultWarehouse       string   `json:"default_warehouse,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

// RulesFactory converts JSON rule definitions into promise.Rules.
type RulesFactory struct {
	defaults promise.Rules
}

// NewRulesFactory creates a factory that fills omissions from DefaultRules.
func NewRulesFactory() *RulesFactory {
	return &RulesFactory{defaults: promise.DefaultRules()}
}

// NewRulesFactoryWithDefaults creates a factory with custom base defaults.
func NewRulesFactoryWithDefaults(defaults promise.Rules) *RulesFactory {
	return &RulesFactory{defaults: defaults}
}

// ParseRules converts a JSON document into a rule set.
func (f *RulesFactory) ParseRules(jsonStr string) (promise.Rules, error) {
	var rj RulesJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return promise.Rules{}, fmt.Errorf("invalid rules JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// FromJSON converts an already-decoded RulesJSON into a rule set, applying
// defaults and validating every provided field.
func (f *RulesFactory) FromJSON(rj RulesJSON) (promise.Rules, error) {
	rules := f.defaults

	if rj.NoWeekends != nil {
		rules.ExcludeWeekends = *rj.NoWeekends
	}
	if len(rj.NonWorkingDays) > 0 {
		days, err := parseWeekdays(rj.NonWorkingDays)
		if err != nil {
			return promise.Rules{}, err
		}
		rules.NonWorkingDays = days
	}
	if rj.CutoffTime != "" {
		cutoff, err := ParseCutoff(rj.CutoffTime)
		if err != nil {
			return promise.Rules{}, err
		}
		rules.Cutoff = cutoff
	}
	if rj.Timezone != "" {
		if _, err := time.LoadLocation(rj.Timezone); err != nil {
			return promise.Rules{}, fmt.Errorf("unknown timezone %q", rj.Timezone)
		}
		rules.Timezone = rj.Timezone
	}
	if rj.LeadTimeBufferDays != nil {
		if *rj.LeadTimeBufferDays < 0 {
			return promise.Rules{}, fmt.Errorf("lead_time_buffer_days must not be negative")
		}
		rules.LeadTimeBufferDays = *rj.LeadTimeBufferDays
	}
	if rj.ProcessingLeadTimeDays != nil {
		if *rj.ProcessingLeadTimeDays < 0 {
			return promise.Rules{}, fmt.Errorf("processing_lead_time_days must not be negative")
		}
		rules.ProcessingLeadTimeDays = *rj.ProcessingLeadTimeDays
	}
	if rj.DesiredDateMode != "" {
		mode := promise.DesiredDateMode(strings.ToUpper(rj.DesiredDateMode))
		switch mode {
		case promise.DesiredLatestAcceptable, promise.DesiredNoEarlyDelivery, promise.DesiredStrictFail:
			rules.DesiredDateMode = mode
		default:
			return promise.Rules{}, fmt.Errorf("unknown desired_date_mode %q", rj.DesiredDateMode)
		}
	}
	if rj.DefaultWarehouse != "" {
		rules.DefaultWarehouse = rj.DefaultWarehouse
	}

	return rules, nil
}

// ParseCutoff parses an "HH:MM" time-of-day.
func ParseCutoff(s string) (promise.ClockTime, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return promise.ClockTime{}, fmt.Errorf("cutoff_time %q is not HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return promise.ClockTime{}, fmt.Errorf("cutoff_time %q has an invalid hour", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return promise.ClockTime{}, fmt.Errorf("cutoff_time %q has an invalid minute", s)
	}
	return promise.ClockTime{Hour: hour, Minute: minute}, nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		days = append(days, wd)
	}
	return days, nil
}
