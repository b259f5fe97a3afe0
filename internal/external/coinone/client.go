package coinone

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/finbot/internal/market"
	"github.com/wonny/finbot/pkg/httputil"
	"github.com/wonny/finbot/pkg/logger"
)

// Coinone answers unknown currencies with one of these error codes.
// Any other non-success result (rate limit, maintenance, ...) is an outage.
var notListedCodes = map[string]bool{
	"107": true, // Parameter value is wrong
	"108": true, // Unknown cryptocurrency
}

// Client handles communication with the Coinone public API (v2)
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Coinone client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("venue", market.VenueCoinone),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Venue implements market.PriceProvider
func (c *Client) Venue() market.Venue {
	return market.VenueCoinone
}

type tickerResponse struct {
	Result    string       `json:"result"`
	ErrorCode string       `json:"error_code"`
	ErrorMsg  string       `json:"error_msg"`
	Tickers   []tickerItem `json:"tickers"`
}

type tickerItem struct {
	TargetCurrency string          `json:"target_currency"`
	Last           decimal.Decimal `json:"last"`
	YesterdayLast  decimal.Decimal `json:"yesterday_last"`
}

// Ticker fetches the KRW price of symbol
func (c *Client) Ticker(ctx context.Context, symbol string) (market.Ticker, error) {
	endpoint := fmt.Sprintf("%s/public/v2/ticker_new/KRW/%s", c.baseURL, url.PathEscape(symbol))

	body, err := c.httpClient.GetBody(ctx, endpoint)

	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) && len(statusErr.Body) > 0 && statusErr.StatusCode < 500 {
		body, err = statusErr.Body, nil
	}
	if err != nil {
		return market.Ticker{}, market.Classify(err)
	}

	return parseTicker(symbol, body)
}

func parseTicker(symbol string, body []byte) (market.Ticker, error) {
	var resp tickerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return market.Ticker{}, fmt.Errorf("%w: decode ticker: %v", market.ErrProviderUnavailable, err)
	}

	if resp.Result != "success" {
		detail := strings.TrimSpace(resp.ErrorCode + " " + resp.ErrorMsg)
		if notListedCodes[resp.ErrorCode] {
			return market.Ticker{}, market.NotListed(symbol, detail)
		}
		return market.Ticker{}, fmt.Errorf("%w: result %s %s", market.ErrProviderUnavailable, resp.Result, detail)
	}
	if len(resp.Tickers) == 0 || resp.Tickers[0].Last.IsZero() {
		return market.Ticker{}, market.NotListed(symbol, "empty ticker")
	}

	item := resp.Tickers[0]
	ticker := market.Ticker{Price: item.Last}

	if !item.YesterdayLast.IsZero() {
		change := item.Last.Sub(item.YesterdayLast).Div(item.YesterdayLast).Shift(2)
		ticker.ChangePercent = decimal.NewNullDecimal(change)
	}

	return ticker, nil
}
