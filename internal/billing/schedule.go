// Package billing computes subscription billing dates.
//
// All functions are pure: the reference time is a parameter, never the
// system clock, so results are deterministic under test.
package billing

import (
	"time"

	"subtrack/internal/core"
)

// NextPaymentDate returns the next occurrence of a subscription's billing
// day strictly after now, as a calendar date in core.DateFormat.
//
// Monthly cycles place the candidate on billingDay of the current month and
// advance by one calendar month (not 30 days) when that day has already
// passed. Yearly cycles place it on (billingMonth, billingDay) of the
// current year and advance by one calendar year. billingMonth is ignored
// for monthly cycles.
//
// A billing day beyond the target month's length clamps to the month's last
// day; it must never roll over into the following month. Out-of-range
// inputs are clamped so the function stays total.
func NextPaymentDate(billingDay, billingMonth int, cycle core.BillingCycle, now time.Time) string {
	billingDay = clampInt(billingDay, 1, 31)
	billingMonth = clampInt(billingMonth, 1, 12)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var candidate time.Time
	switch cycle {
	case core.Yearly:
		candidate = clampedDate(today.Year(), time.Month(billingMonth), billingDay)
		if !candidate.After(today) {
			candidate = clampedDate(today.Year()+1, time.Month(billingMonth), billingDay)
		}
	default:
		candidate = clampedDate(today.Year(), today.Month(), billingDay)
		if !candidate.After(today) {
			candidate = clampedDate(today.Year(), today.Month()+1, billingDay)
		}
	}
	return candidate.Format(core.DateFormat)
}

// StartDate derives the stored start date for a newly created or edited
// subscription. It is defined as the first upcoming charge, so it always
// equals NextPaymentDate for the same inputs.
func StartDate(billingDay, billingMonth int, cycle core.BillingCycle, now time.Time) string {
	return NextPaymentDate(billingDay, billingMonth, cycle, now)
}

// DayOf extracts the day-of-month from a stored date string, defaulting to
// now's day when the input is empty or malformed.
func DayOf(date string, now time.Time) int {
	if t, err := core.ParseDate(date); err == nil {
		return t.Day()
	}
	return now.Day()
}

// MonthOf extracts the month number from a stored date string, defaulting
// to now's month when the input is empty or malformed.
func MonthOf(date string, now time.Time) int {
	if t, err := core.ParseDate(date); err == nil {
		return int(t.Month())
	}
	return int(now.Month())
}

// clampedDate builds a date with the day clamped to the month's length.
// month may be out of the 1-12 range; time.Date normalizes it into the
// adjacent year, which is how the one-month advance past December works.
func clampedDate(year int, month time.Month, day int) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
