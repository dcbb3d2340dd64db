/*
calendar.go - Working-day counting and the week policy

PURPOSE:
  Converts a date range plus a half-day flag into the fractional day count
  a request consumes, and classifies individual days: ordinary working day,
  weekend-leave-eligible boundary day, or plain non-working day.

WEEK POLICY:
  The working week is injectable. Two definitions ship because the source
  submission surfaces disagree about which pair of days is the weekend:

    MonFriWeek - Monday through Friday working, Saturday/Sunday weekend
    SunThuWeek - Sunday through Thursday working, Friday/Saturday weekend

  MonFriWeek is the default. The discrepancy is a known ambiguity that
  needs product clarification; until then the policy is configuration,
  not a hardcoded assumption.

WEEKEND LEAVE:
  A request that touches either weekend boundary day is flagged as
  weekend leave and counts against a separate 2-per-half-year sub-quota
  (see ledger.go), independent of the leave type's allocation.

SEE ALSO:
  - period.go: semi-annual scoping of the weekend sub-quota
  - validate.go: rejects zero-working-day requests
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// WEEK POLICY - Injectable working-week definition
// =============================================================================

// WeekPolicy defines which days of the week are worked and which pair of
// non-working days counts as the weekend boundary.
type WeekPolicy interface {
	// IsWorkingDay reports whether the day is an ordinary working day.
	IsWorkingDay(d Date) bool

	// IsWeekendBoundary reports whether the day is one of the two
	// designated non-working boundary days.
	IsWeekendBoundary(d Date) bool

	// Name identifies the policy in configuration and logs.
	Name() string
}

// MonFriWeek is the classic Monday-Friday working week.
type MonFriWeek struct{}

func (MonFriWeek) IsWorkingDay(d Date) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func (MonFriWeek) IsWeekendBoundary(d Date) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (MonFriWeek) Name() string { return "mon_fri" }

// SunThuWeek is the Sunday-Thursday working week with a Friday/Saturday
// weekend.
type SunThuWeek struct{}

func (SunThuWeek) IsWorkingDay(d Date) bool {
	wd := d.Weekday()
	return wd != time.Friday && wd != time.Saturday
}

func (SunThuWeek) IsWeekendBoundary(d Date) bool {
	wd := d.Weekday()
	return wd == time.Friday || wd == time.Saturday
}

func (SunThuWeek) Name() string { return "sun_thu" }

// WeekPolicyByName resolves a configured policy name. Unknown names fall
// back to the default.
func WeekPolicyByName(name string) WeekPolicy {
	switch name {
	case "sun_thu":
		return SunThuWeek{}
	default:
		return MonFriWeek{}
	}
}

// =============================================================================
// CALCULATOR - Day counting over a week policy
// =============================================================================

type Calculator struct {
	Week WeekPolicy
}

func NewCalculator(week WeekPolicy) *Calculator {
	if week == nil {
		week = MonFriWeek{}
	}
	return &Calculator{Week: week}
}

// WorkingDaysBetween counts working days in [start, end] inclusive.
// An invalid range counts zero; the validator reports the ordering
// violation separately.
func (c *Calculator) WorkingDaysBetween(start, end Date) int {
	count := 0
	for _, d := range (DateRange{Start: start, End: end}).Days() {
		if c.Week.IsWorkingDay(d) {
			count++
		}
	}
	return count
}

// TotalDays computes the amount a request consumes. Half-day requests are
// always exactly 0.5, bypassing the working-day count entirely.
func (c *Calculator) TotalDays(start, end Date, halfDay bool) decimal.Decimal {
	if halfDay {
		return HalfDay
	}
	return WholeDays(c.WorkingDaysBetween(start, end))
}

// IsWeekendLeave reports whether any day of the inclusive range touches a
// weekend boundary day.
func (c *Calculator) IsWeekendLeave(start, end Date) bool {
	for _, d := range (DateRange{Start: start, End: end}).Days() {
		if c.Week.IsWeekendBoundary(d) {
			return true
		}
	}
	return false
}
