package billing

import (
	"testing"
	"time"

	"subtrack/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextPaymentDate_Monthly(t *testing.T) {
	tests := []struct {
		name       string
		billingDay int
		now        time.Time
		want       string
	}{
		{
			name:       "billing day later this month",
			billingDay: 20,
			now:        date(2025, time.March, 10),
			want:       "2025-03-20",
		},
		{
			name:       "billing day already passed - next month",
			billingDay: 5,
			now:        date(2025, time.March, 10),
			want:       "2025-04-05",
		},
		{
			name:       "billing day is today - advance a full month",
			billingDay: 10,
			now:        date(2025, time.March, 10),
			want:       "2025-04-10",
		},
		{
			name:       "day 31 inside non-leap February clamps to the 28th",
			billingDay: 31,
			now:        date(2025, time.February, 10),
			want:       "2025-02-28",
		},
		{
			name:       "day 31 inside leap February clamps to the 29th",
			billingDay: 31,
			now:        date(2024, time.February, 10),
			want:       "2024-02-29",
		},
		{
			name:       "day 31 advancing into a 30-day month clamps",
			billingDay: 31,
			now:        date(2025, time.March, 31),
			want:       "2025-04-30",
		},
		{
			name:       "advance across year boundary",
			billingDay: 15,
			now:        date(2025, time.December, 20),
			want:       "2026-01-15",
		},
		{
			name:       "day 31 advancing from December clamps to January 31",
			billingDay: 31,
			now:        date(2025, time.December, 31),
			want:       "2026-01-31",
		},
		{
			name:       "out-of-range day clamps into the valid range",
			billingDay: 99,
			now:        date(2025, time.June, 10),
			want:       "2025-06-30",
		},
		{
			name:       "zero day clamps to the 1st",
			billingDay: 0,
			now:        date(2025, time.June, 10),
			want:       "2025-07-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextPaymentDate(tt.billingDay, 1, core.Monthly, tt.now)
			if got != tt.want {
				t.Errorf("NextPaymentDate(%d, monthly) at %s = %s, want %s",
					tt.billingDay, tt.now.Format(core.DateFormat), got, tt.want)
			}
		})
	}
}

func TestNextPaymentDate_Yearly(t *testing.T) {
	tests := []struct {
		name         string
		billingDay   int
		billingMonth int
		now          time.Time
		want         string
	}{
		{
			name:         "target month ahead this year",
			billingDay:   15,
			billingMonth: 9,
			now:          date(2025, time.March, 10),
			want:         "2025-09-15",
		},
		{
			name:         "target month already passed - next year",
			billingDay:   15,
			billingMonth: 2,
			now:          date(2025, time.March, 10),
			want:         "2026-02-15",
		},
		{
			name:         "target date is today - advance a full year",
			billingDay:   10,
			billingMonth: 3,
			now:          date(2025, time.March, 10),
			want:         "2026-03-10",
		},
		{
			name:         "Feb 29 in a non-leap year clamps to the 28th",
			billingDay:   29,
			billingMonth: 2,
			now:          date(2025, time.January, 10),
			want:         "2025-02-28",
		},
		{
			name:         "Feb 29 advancing into a leap year keeps the 29th",
			billingDay:   29,
			billingMonth: 2,
			now:          date(2027, time.June, 1),
			want:         "2028-02-29",
		},
		{
			name:         "out-of-range month clamps to December",
			billingDay:   10,
			billingMonth: 15,
			now:          date(2025, time.March, 1),
			want:         "2025-12-10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextPaymentDate(tt.billingDay, tt.billingMonth, core.Yearly, tt.now)
			if got != tt.want {
				t.Errorf("NextPaymentDate(%d, %d, yearly) at %s = %s, want %s",
					tt.billingDay, tt.billingMonth, tt.now.Format(core.DateFormat), got, tt.want)
			}
		})
	}
}

// The returned date must always be strictly after the reference date,
// whatever the inputs.
func TestNextPaymentDate_StrictlyFuture(t *testing.T) {
	cycles := []core.BillingCycle{core.Monthly, core.Yearly}
	for _, cycle := range cycles {
		for day := 1; day <= 31; day++ {
			for month := 1; month <= 12; month++ {
				now := date(2025, time.February, 28)
				got := NextPaymentDate(day, month, cycle, now)
				result, err := core.ParseDate(got)
				if err != nil {
					t.Fatalf("NextPaymentDate(%d, %d, %s) returned unparseable %q", day, month, cycle, got)
				}
				if !result.After(now) {
					t.Errorf("NextPaymentDate(%d, %d, %s) = %s, not after %s",
						day, month, cycle, got, now.Format(core.DateFormat))
				}
			}
		}
	}
}

func TestStartDate_MatchesNextPaymentDate(t *testing.T) {
	now := date(2025, time.July, 14)
	for _, cycle := range []core.BillingCycle{core.Monthly, core.Yearly} {
		start := StartDate(28, 4, cycle, now)
		next := NextPaymentDate(28, 4, cycle, now)
		if start != next {
			t.Errorf("StartDate = %s, NextPaymentDate = %s; must be identical for %s", start, next, cycle)
		}
	}
}

func TestDayOf(t *testing.T) {
	now := date(2025, time.May, 17)

	if got := DayOf("2025-03-09", now); got != 9 {
		t.Errorf("DayOf valid date = %d, want 9", got)
	}
	if got := DayOf("", now); got != 17 {
		t.Errorf("DayOf empty = %d, want current day 17", got)
	}
	if got := DayOf("not-a-date", now); got != 17 {
		t.Errorf("DayOf malformed = %d, want current day 17", got)
	}
}

func TestMonthOf(t *testing.T) {
	now := date(2025, time.May, 17)

	if got := MonthOf("2025-03-09", now); got != 3 {
		t.Errorf("MonthOf valid date = %d, want 3", got)
	}
	if got := MonthOf("", now); got != 5 {
		t.Errorf("MonthOf empty = %d, want current month 5", got)
	}
	if got := MonthOf("garbage", now); got != 5 {
		t.Errorf("MonthOf malformed = %d, want current month 5", got)
	}
}
