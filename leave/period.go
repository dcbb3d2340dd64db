package leave

import "time"

// =============================================================================
// PERIOD - Semi-annual quota scoping
// =============================================================================

// PeriodKey identifies the half-year window a request debits.
// Half is 1 for Jan-Jun, 2 for Jul-Dec; derived solely from the start
// date's month. Pure and total: every date maps to exactly one period.
type PeriodKey struct {
	Year int
	Half int
}

// ResolvePeriod maps a date to its semi-annual period.
func ResolvePeriod(d Date) PeriodKey {
	half := 1
	if d.Month() >= time.July {
		half = 2
	}
	return PeriodKey{Year: d.Year(), Half: half}
}

// Range returns the calendar window the period covers.
func (p PeriodKey) Range() DateRange {
	if p.Half == 2 {
		return DateRange{
			Start: NewDate(p.Year, time.July, 1),
			End:   NewDate(p.Year, time.December, 31),
		}
	}
	return DateRange{
		Start: NewDate(p.Year, time.January, 1),
		End:   NewDate(p.Year, time.June, 30),
	}
}
