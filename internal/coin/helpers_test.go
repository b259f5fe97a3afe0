package coin

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wonny/finbot/internal/market"
	"github.com/wonny/finbot/pkg/config"
	"github.com/wonny/finbot/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error"})
}

var testListings = []market.Listing{
	{Symbol: "BTC", QuoteCurrency: "KRW", KoreanName: "비트코인", EnglishName: "Bitcoin"},
	{Symbol: "ETH", QuoteCurrency: "KRW", KoreanName: "이더리움", EnglishName: "Ethereum"},
	{Symbol: "XRP", QuoteCurrency: "KRW", KoreanName: "리플", EnglishName: "Ripple"},
}

type fakeListingSource struct {
	mu       sync.Mutex
	calls    int
	listings []market.Listing
	err      error
}

func (f *fakeListingSource) Listings(context.Context) ([]market.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.listings, f.err
}

func (f *fakeListingSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeListingSource) Set(listings []market.Listing, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings = listings
	f.err = err
}

type fakeRateSource struct {
	rate decimal.Decimal
	err  error
}

func (f fakeRateSource) USDKRW(context.Context) (decimal.Decimal, error) {
	return f.rate, f.err
}

// fakeProvider prices every symbol from a table; unknown symbols are not listed
type fakeProvider struct {
	venue  market.Venue
	prices map[string]string
}

func (f fakeProvider) Venue() market.Venue { return f.venue }

func (f fakeProvider) Ticker(_ context.Context, symbol string) (market.Ticker, error) {
	price, ok := f.prices[symbol]
	if !ok {
		return market.Ticker{}, market.NotListed(symbol, "")
	}
	return market.Ticker{Price: decimal.RequireFromString(price)}, nil
}

func loadedResolver(listings []market.Listing) *Resolver {
	r := NewResolver(&fakeListingSource{listings: listings}, testLogger())
	if err := r.Refresh(context.Background()); err != nil {
		panic(err)
	}
	return r
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}
