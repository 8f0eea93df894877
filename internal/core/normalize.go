package core

import (
	"fmt"
	"strconv"
	"time"
)

// Push-event payloads arrive as loosely shaped JSON objects whose producers
// use either snake_case or camelCase field names. Normalization happens here,
// once, at the boundary; everything past this point works with the canonical
// types only.

func NormalizeSubscription(raw map[string]any) Subscription {
	return Subscription{
		ID:              rawString(raw, "id"),
		UserID:          rawString(raw, "user_id", "userId"),
		Name:            rawString(raw, "name"),
		Price:           rawNumber(raw, "price"),
		Currency:        rawString(raw, "currency"),
		BillingCycle:    BillingCycle(rawString(raw, "billing_cycle", "billingCycle")),
		Category:        rawString(raw, "category"),
		StartDate:       rawDate(raw, "start_date", "startDate"),
		NextPaymentDate: rawDate(raw, "next_payment_date", "nextPaymentDate"),
	}
}

func NormalizeTransaction(raw map[string]any) Transaction {
	return Transaction{
		ID:          rawString(raw, "id"),
		UserID:      rawString(raw, "user_id", "userId"),
		Type:        TransactionType(rawString(raw, "type")),
		Amount:      rawNumber(raw, "amount"),
		Category:    rawString(raw, "category"),
		Date:        rawDate(raw, "date"),
		Description: rawString(raw, "description"),
	}
}

func NormalizeBudget(raw map[string]any) Budget {
	return Budget{
		ID:          rawString(raw, "id"),
		UserID:      rawString(raw, "user_id", "userId"),
		Category:    rawString(raw, "category"),
		LimitAmount: rawNumber(raw, "limit_amount", "limitAmount"),
	}
}

// rawString returns the first present key's value as a string. Numeric
// identifiers are stringified rather than dropped.
func rawString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			return s
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		default:
			return fmt.Sprintf("%v", s)
		}
	}
	return ""
}

func rawNumber(raw map[string]any, keys ...string) float64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// rawDate truncates timestamp-shaped values to the calendar date.
func rawDate(raw map[string]any, keys ...string) string {
	s := rawString(raw, keys...)
	if s == "" {
		return ""
	}
	if len(s) > len(DateFormat) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.Format(DateFormat)
		}
		return s[:len(DateFormat)]
	}
	return s
}
