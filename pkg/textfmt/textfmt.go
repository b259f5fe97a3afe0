// Package textfmt formats numbers for chat replies.
package textfmt

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// printer is created per call; message.Printer is not safe for concurrent use.
func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// Int formats n with thousands separators: 12345678 -> "12,345,678"
func Int(n int64) string {
	return printer().Sprintf("%d", n)
}

// sigDigits is the number of significant digits kept below one unit
const sigDigits = 4

// USD formats a dollar amount. Amounts below $1 keep 4 significant digits.
//
//	94800      -> "$94,800.00"
//	0.1234     -> "$0.1234"
//	0.00001234 -> "$0.00001234"
func USD(d decimal.Decimal) string {
	if d.IsZero() || d.Abs().GreaterThanOrEqual(one) {
		return "$" + printer().Sprintf("%.2f", d.Round(2).InexactFloat64())
	}
	return "$" + d.StringFixed(fractionPlaces(d))
}

// fractionPlaces returns the decimal places that keep sigDigits significant
// digits of a value in (-1, 1)
func fractionPlaces(d decimal.Decimal) int32 {
	abs := d.Abs()
	var k int32 = 1
	for k < 18 && abs.Shift(k).LessThan(one) {
		k++
	}
	return k - 1 + sigDigits
}

// KRW formats a won amount. Cheap coins keep their decimals.
//
//	136520000 -> "₩136,520,000"
//	12.34     -> "₩12.34"
//	0.001234  -> "₩0.0012"
func KRW(d decimal.Decimal) string {
	p := printer()
	switch {
	case d.Abs().GreaterThanOrEqual(hundred):
		return "₩" + p.Sprintf("%d", d.Round(0).IntPart())
	case d.Abs().GreaterThanOrEqual(one):
		return "₩" + p.Sprintf("%.2f", d.Round(2).InexactFloat64())
	default:
		return "₩" + d.StringFixed(4)
	}
}

// SignedPercent formats a percentage with an explicit sign: 0.357 -> "+0.36%"
func SignedPercent(d decimal.Decimal) string {
	rounded := d.Round(2)
	if rounded.Sign() >= 0 {
		return "+" + rounded.StringFixed(2) + "%"
	}
	return rounded.StringFixed(2) + "%"
}
