package currency

import "github.com/shopspring/decimal"

var symbols = map[Code]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "CA$",
	"AUD": "A$",
	"CHF": "CHF ",
	"CNY": "CN¥",
	"INR": "₹",
	"BRL": "R$",
	"MXN": "MX$",
	"KRW": "₩",
	"TRY": "₺",
	"PLN": "zł",
	"SEK": "kr ",
	"NOK": "kr ",
	"RUB": "₽",
}

// JPY is the only supported currency without a minor unit.
var zeroDecimal = map[Code]bool{
	"JPY": true,
}

// Symbol returns the display glyph for a code, "$" when unknown.
func Symbol(code Code) string {
	if s, ok := symbols[code]; ok {
		return s
	}
	return "$"
}

// Format renders an amount with its currency symbol, using two decimal
// places, or none for zero-decimal currencies. Decimal rounding is half-up
// so displayed totals match what a sum of displayed rows would show.
func Format(amount float64, code Code) string {
	places := int32(2)
	if zeroDecimal[code] {
		places = 0
	}
	return Symbol(code) + decimal.NewFromFloat(amount).StringFixed(places)
}
