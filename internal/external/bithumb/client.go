package bithumb

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

const statusOK = "0000"

// Bithumb answers unknown currencies with one of these status codes
var notListedStatus = map[string]bool{
	"5500": true, // Invalid Parameter
	"5600": true, // 거래 진행중인 내역이 존재하지 않습니다
}

// Client handles communication with the Bithumb public API
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Bithumb client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("venue", market.VenueBithumb),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Venue implements market.PriceProvider
func (c *Client) Venue() market.Venue {
	return market.VenueBithumb
}

type tickerResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type tickerData struct {
	ClosingPrice   decimal.Decimal     `json:"closing_price"`
	FluctateRate24 decimal.NullDecimal `json:"fluctate_rate_24H"`
}

// Ticker fetches the KRW price of symbol
func (c *Client) Ticker(ctx context.Context, symbol string) (market.Ticker, error) {
	endpoint := fmt.Sprintf("%s/public/ticker/%s_KRW", c.baseURL, url.PathEscape(symbol))

	body, err := c.httpClient.GetBody(ctx, endpoint)

	// Bithumb reports errors in the body, sometimes with a 4xx status.
	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) && len(statusErr.Body) > 0 {
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

	if resp.Status != statusOK {
		if notListedStatus[resp.Status] {
			return market.Ticker{}, market.NotListed(symbol, resp.Message)
		}
		return market.Ticker{}, fmt.Errorf("%w: status %s %s", market.ErrProviderUnavailable, resp.Status, resp.Message)
	}

	var data tickerData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return market.Ticker{}, fmt.Errorf("%w: decode ticker data: %v", market.ErrProviderUnavailable, err)
	}

	if data.ClosingPrice.IsZero() {
		return market.Ticker{}, market.NotListed(symbol, "zero closing price")
	}

	return market.Ticker{
		Price:         data.ClosingPrice,
		ChangePercent: data.FluctateRate24,
	}, nil
}
