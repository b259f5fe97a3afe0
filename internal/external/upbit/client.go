package upbit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/finbot/internal/market"
	"github.com/wonny/finbot/pkg/httputil"
	"github.com/wonny/finbot/pkg/logger"
)

// Client handles communication with the Upbit public API
// ⭐ SSOT: Upbit API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Upbit client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("venue", market.VenueUpbit),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Venue implements market.PriceProvider
func (c *Client) Venue() market.Venue {
	return market.VenueUpbit
}

type marketItem struct {
	Market      string `json:"market"` // KRW-BTC
	KoreanName  string `json:"korean_name"`
	EnglishName string `json:"english_name"`
}

type tickerItem struct {
	Market           string          `json:"market"`
	TradePrice       decimal.Decimal `json:"trade_price"`
	SignedChangeRate decimal.Decimal `json:"signed_change_rate"` // 0.0123 == +1.23%
}

// Listings fetches every market traded on Upbit
func (c *Client) Listings(ctx context.Context) ([]market.Listing, error) {
	var items []marketItem
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/v1/market/all?isDetails=false", &items); err != nil {
		return nil, fmt.Errorf("fetch market list: %w", market.Classify(err))
	}

	listings := make([]market.Listing, 0, len(items))
	for _, item := range items {
		quote, symbol, ok := strings.Cut(item.Market, "-")
		if !ok || symbol == "" {
			continue
		}
		listings = append(listings, market.Listing{
			Symbol:        strings.ToUpper(symbol),
			QuoteCurrency: strings.ToUpper(quote),
			KoreanName:    item.KoreanName,
			EnglishName:   item.EnglishName,
		})
	}

	c.logger.WithField("count", len(listings)).Debug("Fetched market list")
	return listings, nil
}

// Ticker fetches the KRW price of symbol.
// Coins listed only against BTC are priced through KRW-BTC.
func (c *Client) Ticker(ctx context.Context, symbol string) (market.Ticker, error) {
	items, err := c.tickers(ctx, "KRW-"+symbol)
	if err == nil {
		item := items[0]
		return market.Ticker{
			Price:         item.TradePrice,
			ChangePercent: decimal.NewNullDecimal(item.SignedChangeRate.Shift(2)),
		}, nil
	}
	if !errors.Is(err, market.ErrSymbolNotListed) {
		return market.Ticker{}, err
	}

	return c.tickerViaBTC(ctx, symbol)
}

// tickerViaBTC converts a BTC-market price into KRW
func (c *Client) tickerViaBTC(ctx context.Context, symbol string) (market.Ticker, error) {
	items, err := c.tickers(ctx, "BTC-"+symbol, "KRW-BTC")
	if err != nil {
		return market.Ticker{}, err
	}

	var inBTC, btcKRW decimal.NullDecimal
	for _, item := range items {
		switch item.Market {
		case "BTC-" + symbol:
			inBTC = decimal.NewNullDecimal(item.TradePrice)
		case "KRW-BTC":
			btcKRW = decimal.NewNullDecimal(item.TradePrice)
		}
	}
	if !inBTC.Valid || !btcKRW.Valid {
		return market.Ticker{}, market.NotListed(symbol, "no KRW or BTC market")
	}

	c.logger.WithField("symbol", symbol).Debug("Priced via BTC market")
	return market.Ticker{Price: inBTC.Decimal.Mul(btcKRW.Decimal)}, nil
}

func (c *Client) tickers(ctx context.Context, markets ...string) ([]tickerItem, error) {
	endpoint := fmt.Sprintf("%s/v1/ticker?markets=%s", c.baseURL, url.QueryEscape(strings.Join(markets, ",")))

	var items []tickerItem
	err := c.httpClient.GetJSON(ctx, endpoint, &items)

	var statusErr *httputil.StatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
		// {"error":{"name":"404","message":"Code not found"}}
		return nil, market.NotListed(markets[0], "Code not found")
	case err != nil:
		return nil, market.Classify(err)
	case len(items) == 0:
		return nil, market.NotListed(markets[0], "empty ticker")
	}

	return items, nil
}
