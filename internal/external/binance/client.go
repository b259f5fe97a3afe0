package binance

import (
	"context"
	"encoding/json"
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

// codeInvalidSymbol is returned with HTTP 400 for unknown pairs
const codeInvalidSymbol = -1121

// quoteAsset is the stablecoin used as the USD reference
const quoteAsset = "USDT"

// Client handles communication with the Binance spot API.
// It is the global reference venue; prices are in USD(T).
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Binance client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("venue", market.VenueBinance),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Venue implements market.PriceProvider
func (c *Client) Venue() market.Venue {
	return market.VenueBinance
}

type ticker24h struct {
	Symbol             string          `json:"symbol"`
	LastPrice          decimal.Decimal `json:"lastPrice"`
	PriceChangePercent decimal.Decimal `json:"priceChangePercent"`
}

type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Ticker fetches the 24h ticker of <symbol>USDT
func (c *Client) Ticker(ctx context.Context, symbol string) (market.Ticker, error) {
	pair := symbol + quoteAsset
	endpoint := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", c.baseURL, url.QueryEscape(pair))

	var resp ticker24h
	err := c.httpClient.GetJSON(ctx, endpoint, &resp)

	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest {
		var apiErr apiError
		if json.Unmarshal(statusErr.Body, &apiErr) == nil && apiErr.Code == codeInvalidSymbol {
			return market.Ticker{}, market.NotListed(pair, apiErr.Msg)
		}
	}
	if err != nil {
		return market.Ticker{}, market.Classify(err)
	}

	if resp.LastPrice.IsZero() {
		return market.Ticker{}, market.NotListed(pair, "zero last price")
	}

	return market.Ticker{
		Price:         resp.LastPrice,
		ChangePercent: decimal.NewNullDecimal(resp.PriceChangePercent),
	}, nil
}
