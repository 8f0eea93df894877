// Package currency converts and formats monetary amounts across currencies.
//
// Conversion goes through an implicit pivot: amount / rate(from) * rate(to),
// with all rates in a table expressed against that table's base currency.
// The package is deliberately fail-soft. Currency display is not critical,
// so unresolvable codes degrade to identity rather than erroring.
package currency

type (
	// Code is an ISO 4217 currency code, e.g. "USD".
	Code = string

	// RateTable maps currency codes to rates relative to Base. The base is an
	// explicit field so tables with different bases (the built-in USD table,
	// the live EUR feed) cannot be conflated.
	RateTable struct {
		Base  Code            `json:"base"`
		Rates map[Code]float64 `json:"rates"`
	}
)

// StaticTable returns the built-in USD-based fallback table used when no
// live rates are available. Rates are indicative, not market data.
func StaticTable() RateTable {
	return RateTable{
		Base: "USD",
		Rates: map[Code]float64{
			"USD": 1,
			"EUR": 0.92,
			"GBP": 0.79,
			"JPY": 151.0,
			"CAD": 1.36,
			"AUD": 1.52,
			"CHF": 0.88,
			"CNY": 7.24,
			"INR": 83.3,
			"BRL": 5.04,
			"MXN": 17.1,
			"KRW": 1338.0,
			"TRY": 32.4,
			"PLN": 3.98,
			"SEK": 10.47,
			"NOK": 10.62,
			"RUB": 92.5,
		},
	}
}

// ConvertStatic converts amount between two codes using table. A code equal
// to the target code is an exact identity (no arithmetic is applied, so
// totals round-trip without drift). Codes absent from the table default to
// rate 1 — an accepted approximation, not an error.
func ConvertStatic(amount float64, from, to Code, table RateTable) float64 {
	if from == to {
		return amount
	}
	return amount / rateOrOne(table, from) * rateOrOne(table, to)
}

// ConvertDynamic converts amount using a dynamically supplied table (EUR
// base for the live feed). The table's base currency resolves to rate 1 even
// when it is absent as a key. When either code cannot be resolved, the pair
// falls back to the static table if both codes exist there; otherwise the
// amount is returned unconverted.
func ConvertDynamic(amount float64, from, to Code, dynamic RateTable) float64 {
	if from == to {
		return amount
	}
	fromRate, fromOK := dynamic.lookup(from)
	toRate, toOK := dynamic.lookup(to)
	if fromOK && toOK {
		return amount / fromRate * toRate
	}
	static := StaticTable()
	if _, ok := static.Rates[from]; !ok {
		return amount
	}
	if _, ok := static.Rates[to]; !ok {
		return amount
	}
	return ConvertStatic(amount, from, to, static)
}

// lookup resolves a code against the table. The base currency is always
// resolvable; any other code must be present with a positive rate.
func (t RateTable) lookup(code Code) (float64, bool) {
	if r, ok := t.Rates[code]; ok && r > 0 {
		return r, true
	}
	if code == t.Base {
		return 1, true
	}
	return 0, false
}

func rateOrOne(t RateTable, code Code) float64 {
	if r, ok := t.Rates[code]; ok && r > 0 {
		return r
	}
	return 1
}
