package market

import (
	"context"

	"github.com/shopspring/decimal"
)

// Venue identifies a price-quoting source
type Venue string

const (
	VenueBinance Venue = "binance"
	VenueUpbit   Venue = "upbit"
	VenueBithumb Venue = "bithumb"
	VenueCoinone Venue = "coinone"
)

var venueNames = map[Venue]string{
	VenueBinance: "바이낸스",
	VenueUpbit:   "업비트",
	VenueBithumb: "빗썸",
	VenueCoinone: "코인원",
}

// DisplayName returns the Korean label used in chat replies
func (v Venue) DisplayName() string {
	if name, ok := venueNames[v]; ok {
		return name
	}
	return string(v)
}

// Ticker is the last traded price of a symbol on one venue, in the venue's
// native currency (USD for the global venue, KRW for domestic venues).
type Ticker struct {
	Price         decimal.Decimal
	ChangePercent decimal.NullDecimal // 24h, absent when the venue does not report it
}

// PriceProvider fetches a ticker from a single venue.
// Implementations must not convert currencies.
type PriceProvider interface {
	Venue() Venue
	Ticker(ctx context.Context, symbol string) (Ticker, error)
}

// RateSource returns the live USD/KRW rate
type RateSource interface {
	USDKRW(ctx context.Context) (decimal.Decimal, error)
}

// Listing is one entry of a domestic exchange's market list
type Listing struct {
	Symbol        string // BTC
	QuoteCurrency string // KRW, BTC, USDT
	KoreanName    string // 비트코인
	EnglishName   string // Bitcoin
}

// ListingSource returns all markets of a domestic exchange
type ListingSource interface {
	Listings(ctx context.Context) ([]Listing, error)
}
