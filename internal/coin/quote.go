package coin

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/finbot/internal/market"
)

var hundred = decimal.NewFromInt(100)

// PriceQuote is the result of one provider call, in the venue's native currency
type PriceQuote struct {
	Venue         market.Venue
	Price         decimal.NullDecimal
	ChangePercent decimal.NullDecimal
	Err           error
}

// OK reports whether the venue returned a price
func (q PriceQuote) OK() bool {
	return q.Err == nil && q.Price.Valid
}

// AggregatedQuote is the fully assembled reply for one coin query
type AggregatedQuote struct {
	Query       string // token as typed
	Symbol      string
	DisplayName string
	NotFound    bool

	Global   PriceQuote
	Domestic []PriceQuote // configured venue order
	Rate     ExchangeRate
	Premium  decimal.NullDecimal // percent, 2 decimals

	Errors []string // diagnostics, rendered after the content
}

// Premium computes the kimchi premium in percent:
//
//	((domestic - global*rate) / (global*rate)) * 100
//
// rounded to 2 decimals. It is invalid when either price is missing.
func Premium(global, domestic decimal.NullDecimal, usdkrw decimal.Decimal) decimal.NullDecimal {
	if !global.Valid || !domestic.Valid {
		return decimal.NullDecimal{}
	}

	reference := global.Decimal.Mul(usdkrw)
	if !reference.IsPositive() {
		return decimal.NullDecimal{}
	}

	premium := domestic.Decimal.Sub(reference).Div(reference).Mul(hundred).Round(2)
	return decimal.NewNullDecimal(premium)
}
