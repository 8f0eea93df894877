// Package insights reduces subscriptions and transactions into
// monthly-equivalent totals, category buckets and a qualitative spending
// insight. Every function is total: malformed numbers and dates clamp or
// default instead of propagating NaN into displayed figures.
package insights

import (
	"math"
	"sort"
	"time"

	"subtrack/internal/core"
	"subtrack/internal/currency"
)

// SubscriptionsBucket is the synthetic category under which the aggregate
// subscription total appears in a spending distribution.
const SubscriptionsBucket = "Subscriptions"

// Converter converts an amount between two currency codes. The zero value
// is not usable; see StaticConverter.
type Converter func(amount float64, from, to currency.Code) float64

// StaticConverter converts through the built-in USD-based rate table.
func StaticConverter(amount float64, from, to currency.Code) float64 {
	return currency.ConvertStatic(amount, from, to, currency.StaticTable())
}

// MonthlyEquivalent normalizes a subscription's price to a per-month figure:
// a yearly price divided by twelve, a monthly price unchanged. Negative and
// non-finite prices count as zero so one bad record cannot poison a total.
func MonthlyEquivalent(s core.Subscription) float64 {
	if s.Price < 0 || math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
		return 0
	}
	if s.BillingCycle == core.Yearly {
		return s.Price / 12
	}
	return s.Price
}

// TotalMonthlyCost sums the monthly-equivalent price of every subscription,
// converted from each record's own currency into display.
func TotalMonthlyCost(subs []core.Subscription, display currency.Code, convert Converter) float64 {
	if convert == nil {
		convert = StaticConverter
	}
	var total float64
	for _, s := range subs {
		total += convert(MonthlyEquivalent(s), s.Currency, display)
	}
	return total
}

// ActiveInMonth reports whether a subscription counts toward the month
// containing monthRef: its start date must fall on or before that month's
// last day. Records with no (or an unparseable) start date are always
// active.
func ActiveInMonth(s core.Subscription, monthRef time.Time) bool {
	start, err := core.ParseDate(s.StartDate)
	if err != nil {
		return true
	}
	monthEnd := time.Date(monthRef.Year(), monthRef.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return !start.After(monthEnd)
}

// Bucket is one category's total within a spending distribution.
type Bucket struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// SpendingDistribution buckets the reference month's expense transactions by
// category and appends the aggregate subscription total as one synthetic
// Subscriptions bucket. Buckets with a non-positive total are omitted.
// Results are ordered largest first for display.
func SpendingDistribution(txs []core.Transaction, subscriptionTotal float64, monthRef time.Time) []Bucket {
	byCategory := make(map[string]float64)
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		d, err := core.ParseDate(t.Date)
		if err != nil {
			continue
		}
		if d.Year() != monthRef.Year() || d.Month() != monthRef.Month() {
			continue
		}
		if t.Amount <= 0 || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
			continue
		}
		byCategory[t.Category] += t.Amount
	}
	if subscriptionTotal > 0 {
		byCategory[SubscriptionsBucket] += subscriptionTotal
	}

	buckets := make([]Bucket, 0, len(byCategory))
	for cat, total := range byCategory {
		if total <= 0 {
			continue
		}
		buckets = append(buckets, Bucket{Category: cat, Total: total})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Total != buckets[j].Total {
			return buckets[i].Total > buckets[j].Total
		}
		return buckets[i].Category < buckets[j].Category
	})
	return buckets
}

// MonthlyIncome sums the reference month's income transactions.
func MonthlyIncome(txs []core.Transaction, monthRef time.Time) float64 {
	var total float64
	for _, t := range txs {
		if t.Type != core.Income {
			continue
		}
		d, err := core.ParseDate(t.Date)
		if err != nil {
			continue
		}
		if d.Year() != monthRef.Year() || d.Month() != monthRef.Month() {
			continue
		}
		if t.Amount > 0 && !math.IsNaN(t.Amount) && !math.IsInf(t.Amount, 0) {
			total += t.Amount
		}
	}
	return total
}
