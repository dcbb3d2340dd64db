package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/leave-engine/leave"
)

// 2026-03-02 is a Monday; used as the anchor week throughout.
func date(y int, m time.Month, d int) leave.Date { return leave.NewDate(y, m, d) }

// =============================================================================
// WORKING DAY COUNTING
// =============================================================================

func TestCalculator_WorkingDaysBetween_FullWeek(t *testing.T) {
	// GIVEN: Monday through Friday
	// WHEN: Counting working days
	// THEN: All five days count

	cal := leave.NewCalculator(nil)
	n := cal.WorkingDaysBetween(date(2026, time.March, 2), date(2026, time.March, 6))
	assert.Equal(t, 5, n)
}

func TestCalculator_WorkingDaysBetween_SpanningWeekend(t *testing.T) {
	// GIVEN: Monday through the following Monday (8 calendar days)
	// WHEN: Counting working days
	// THEN: Saturday and Sunday are skipped

	cal := leave.NewCalculator(nil)
	n := cal.WorkingDaysBetween(date(2026, time.March, 2), date(2026, time.March, 9))
	assert.Equal(t, 6, n)
}

func TestCalculator_WorkingDaysBetween_WeekendOnly(t *testing.T) {
	// GIVEN: Saturday and Sunday only
	// WHEN: Counting working days
	// THEN: Zero

	cal := leave.NewCalculator(nil)
	n := cal.WorkingDaysBetween(date(2026, time.March, 7), date(2026, time.March, 8))
	assert.Equal(t, 0, n)
}

func TestCalculator_WorkingDaysBetween_InvalidRange(t *testing.T) {
	// GIVEN: End before start
	// WHEN: Counting working days
	// THEN: Zero, without panicking; the validator reports the ordering

	cal := leave.NewCalculator(nil)
	n := cal.WorkingDaysBetween(date(2026, time.March, 6), date(2026, time.March, 2))
	assert.Equal(t, 0, n)
}

// =============================================================================
// TOTAL DAYS
// =============================================================================

func TestCalculator_TotalDays_HalfDayIsExactlyHalf(t *testing.T) {
	// GIVEN: A half-day request
	// WHEN: Computing the consumed amount
	// THEN: Exactly 0.5, regardless of the day of the week

	cal := leave.NewCalculator(nil)
	amount := cal.TotalDays(date(2026, time.March, 2), date(2026, time.March, 2), true)
	assert.True(t, amount.Equal(leave.HalfDay), "got %s", amount)
}

func TestCalculator_TotalDays_FullDayUsesWorkingDayCount(t *testing.T) {
	cal := leave.NewCalculator(nil)
	amount := cal.TotalDays(date(2026, time.March, 2), date(2026, time.March, 6), false)
	assert.True(t, amount.Equal(leave.WholeDays(5)), "got %s", amount)
}

// =============================================================================
// WEEKEND LEAVE CLASSIFICATION
// =============================================================================

func TestCalculator_IsWeekendLeave(t *testing.T) {
	cal := leave.NewCalculator(nil)

	// Tuesday-Thursday never touches the boundary
	assert.False(t, cal.IsWeekendLeave(date(2026, time.March, 3), date(2026, time.March, 5)))

	// Friday-Monday spans Saturday and Sunday
	assert.True(t, cal.IsWeekendLeave(date(2026, time.March, 6), date(2026, time.March, 9)))

	// A single Saturday is weekend leave
	assert.True(t, cal.IsWeekendLeave(date(2026, time.March, 7), date(2026, time.March, 7)))
}

// =============================================================================
// WEEK POLICY VARIANTS
// =============================================================================

func TestSunThuWeek_FridaySaturdayWeekend(t *testing.T) {
	// GIVEN: The Sunday-Thursday working week
	// WHEN: Classifying days
	// THEN: Friday and Saturday are the boundary; Sunday is a working day

	week := leave.SunThuWeek{}
	assert.False(t, week.IsWorkingDay(date(2026, time.March, 6)), "Friday")
	assert.False(t, week.IsWorkingDay(date(2026, time.March, 7)), "Saturday")
	assert.True(t, week.IsWorkingDay(date(2026, time.March, 8)), "Sunday")
	assert.True(t, week.IsWeekendBoundary(date(2026, time.March, 6)))
	assert.False(t, week.IsWeekendBoundary(date(2026, time.March, 8)))
}

func TestWeekPolicyByName(t *testing.T) {
	assert.Equal(t, "sun_thu", leave.WeekPolicyByName("sun_thu").Name())
	assert.Equal(t, "mon_fri", leave.WeekPolicyByName("mon_fri").Name())
	// Unknown names fall back to the default
	assert.Equal(t, "mon_fri", leave.WeekPolicyByName("four_day_utopia").Name())
}
