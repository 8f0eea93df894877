package insights

import (
	"fmt"
	"math"
)

type Severity string

const (
	SeverityGood    Severity = "good"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Insight classifies a month's subscription burden against income and
// month-over-month movement.
type Insight struct {
	Severity        Severity `json:"severity"`
	PercentOfIncome float64  `json:"percent_of_income"`
	MonthOverMonth  float64  `json:"month_over_month"`
	Message         string   `json:"message"`
}

// PercentOfIncome returns total as a percentage of income, or 0 when income
// is non-positive or either value is non-finite.
func PercentOfIncome(total, income float64) float64 {
	if income <= 0 || math.IsNaN(income) || math.IsInf(income, 0) {
		return 0
	}
	if total < 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return 0
	}
	return total / income * 100
}

// MonthOverMonthChange returns the percentage change from previous to
// current, or 0 when previous is non-positive.
func MonthOverMonthChange(current, previous float64) float64 {
	if previous <= 0 || math.IsNaN(previous) || math.IsInf(previous, 0) {
		return 0
	}
	if math.IsNaN(current) || math.IsInf(current, 0) {
		return 0
	}
	return (current - previous) / previous * 100
}

// Generate classifies the current month's subscription total. The severity
// boundaries are fixed: strictly above 40% of income is danger, 25% up to
// and including 40% is warning, anything below is good. Trend commentary
// treats a month-over-month rise above 15% as notable, anything smaller as
// slight.
func Generate(currentTotal, previousTotal, monthlyIncome float64) Insight {
	pct := PercentOfIncome(currentTotal, monthlyIncome)
	mom := MonthOverMonthChange(currentTotal, previousTotal)

	var severity Severity
	var msg string
	switch {
	case pct > 40:
		severity = SeverityDanger
		msg = fmt.Sprintf("Subscriptions take %.1f%% of your monthly income, well beyond a comfortable share.", pct)
	case pct >= 25:
		severity = SeverityWarning
		msg = fmt.Sprintf("Subscriptions take %.1f%% of your monthly income, a sizable share worth reviewing.", pct)
	default:
		severity = SeverityGood
		msg = fmt.Sprintf("Subscriptions take %.1f%% of your monthly income, comfortably within budget.", pct)
	}

	switch {
	case mom > 15:
		msg += fmt.Sprintf(" That's a notable increase of %.1f%% over last month.", mom)
	case mom > 0:
		msg += fmt.Sprintf(" That's a slight increase of %.1f%% over last month.", mom)
	case mom < 0:
		msg += fmt.Sprintf(" Spending is down %.1f%% from last month.", -mom)
	default:
		msg += " Spending is unchanged from last month."
	}

	return Insight{
		Severity:        severity,
		PercentOfIncome: pct,
		MonthOverMonth:  mom,
		Message:         msg,
	}
}
