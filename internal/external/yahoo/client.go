package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"github.com/wonny/finbot/internal/market"
	"github.com/wonny/finbot/pkg/httputil"
	"github.com/wonny/finbot/pkg/logger"
)

// ErrTickerNotFound is returned when Yahoo has no quote for the ticker
var ErrTickerNotFound = errors.New("ticker not found")

// StockQuote is the current quote of a US stock
type StockQuote struct {
	Symbol        string
	Name          string
	Currency      string
	Price         decimal.Decimal
	ChangePercent decimal.NullDecimal
	Volume        int64
}

// QuoteFunc fetches a raw Yahoo quote; quote.Get in production
type QuoteFunc func(symbol string) (*finance.Quote, error)

// Client fetches US stock quotes through piquette/finance-go.
// When the v7 quote call fails (Yahoo answers 401 without a cookie/crumb)
// it falls back to the v8 chart endpoint, which needs neither.
type Client struct {
	getQuote QuoteFunc
	logger   *logger.Logger
	timeout  time.Duration

	chartHTTP *httputil.Client
	chartURL  string
}

// NewClient creates a Yahoo Finance client.
// finance-go keeps a package level HTTP client, so the timeout is applied there.
func NewClient(log *logger.Logger, timeout time.Duration) *Client {
	finance.SetHTTPClient(&http.Client{Timeout: timeout})
	return NewClientWithQuoteFunc(log, timeout, quote.Get)
}

// WithChartFallback enables the v8 chart endpoint at baseURL as a fallback
func (c *Client) WithChartFallback(httpClient *httputil.Client, baseURL string) *Client {
	c.chartHTTP = httpClient
	c.chartURL = strings.TrimRight(baseURL, "/")
	return c
}

// NewClientWithQuoteFunc creates a client backed by fn
func NewClientWithQuoteFunc(log *logger.Logger, timeout time.Duration, fn QuoteFunc) *Client {
	return &Client{
		getQuote: fn,
		logger:   log.WithField("upstream", "yahoo"),
		timeout:  timeout,
	}
}

type result struct {
	q   *finance.Quote
	err error
}

// FetchQuote returns the regular-market quote of ticker
func (c *Client) FetchQuote(ctx context.Context, ticker string) (*StockQuote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrTickerNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// finance-go has no context support; bound the wait from here.
	done := make(chan result, 1)
	go func() {
		q, err := c.getQuote(ticker)
		done <- result{q: q, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch quote %s: %w", ticker, market.Classify(ctx.Err()))
	case res = <-done:
	}

	if res.err != nil {
		if c.chartHTTP == nil {
			return nil, fmt.Errorf("fetch quote %s: %w", ticker, market.Classify(res.err))
		}
		c.logger.WithError(res.err).WithField("ticker", ticker).Debug("Quote endpoint failed, trying chart")
		return c.fetchChart(ctx, ticker)
	}
	if res.q == nil || res.q.RegularMarketPrice == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	q := res.q
	name := q.ShortName
	if name == "" {
		name = q.Symbol
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"price":  q.RegularMarketPrice,
	}).Debug("Fetched US stock quote")

	return &StockQuote{
		Symbol:        q.Symbol,
		Name:          name,
		Currency:      q.CurrencyID,
		Price:         decimal.NewFromFloat(q.RegularMarketPrice),
		ChangePercent: decimal.NewNullDecimal(decimal.NewFromFloat(q.RegularMarketChangePercent)),
		Volume:        int64(q.RegularMarketVolume),
	}, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta chartMeta `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartMeta struct {
	Symbol             string          `json:"symbol"`
	ShortName          string          `json:"shortName"`
	Currency           string          `json:"currency"`
	RegularMarketPrice decimal.Decimal `json:"regularMarketPrice"`
	ChartPreviousClose decimal.Decimal `json:"chartPreviousClose"`
	RegularMarketVol   int64           `json:"regularMarketVolume"`
}

// fetchChart reads the quote from /v8/finance/chart/{ticker} meta
func (c *Client) fetchChart(ctx context.Context, ticker string) (*StockQuote, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d", c.chartURL, url.PathEscape(ticker))

	var resp chartResponse
	err := c.chartHTTP.GetJSON(ctx, endpoint, &resp)

	var statusErr *httputil.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch chart %s: %w", ticker, market.Classify(err))
	}
	if resp.Chart.Error != nil || len(resp.Chart.Result) == 0 || resp.Chart.Result[0].Meta.RegularMarketPrice.IsZero() {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	meta := resp.Chart.Result[0].Meta
	name := meta.ShortName
	if name == "" {
		name = meta.Symbol
	}

	// 전일 종가 기준 등락률
	var change decimal.NullDecimal
	if meta.ChartPreviousClose.IsPositive() {
		change = decimal.NewNullDecimal(meta.RegularMarketPrice.Sub(meta.ChartPreviousClose).
			Div(meta.ChartPreviousClose).Mul(decimal.NewFromInt(100)).Round(2))
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"price":  meta.RegularMarketPrice.String(),
	}).Debug("Fetched US stock quote from chart")

	return &StockQuote{
		Symbol:        meta.Symbol,
		Name:          name,
		Currency:      meta.Currency,
		Price:         meta.RegularMarketPrice,
		ChangePercent: change,
		Volume:        meta.RegularMarketVol,
	}, nil
}
