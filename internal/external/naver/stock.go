package naver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/wonny/finbot/internal/market"
)

// ErrStockNotFound is returned when the search has no exact match
var ErrStockNotFound = errors.New("stock not found")

// StockQuote is the current quote of a Korean stock
type StockQuote struct {
	Code          string
	Name          string
	Price         int64
	ChangePercent decimal.NullDecimal
	Volume        int64
}

type searchResponse struct {
	StockList []searchItem `json:"stockList"`
}

type searchItem struct {
	ItemCode  string `json:"itemCode"`
	StockName string `json:"stockName"`
}

// FetchStockQuote looks a stock up by exact name (or 6-digit code) and
// scrapes its current quote from the item page.
func (c *Client) FetchStockQuote(ctx context.Context, query string) (*StockQuote, error) {
	item, err := c.searchStock(ctx, query)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/item/main.naver?code=%s", c.endpoints.Finance, url.QueryEscape(item.ItemCode))
	body, err := c.httpClient.GetBody(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch item page: %w", market.Classify(err))
	}

	quote, err := parseItemPage(body)
	if err != nil {
		return nil, err
	}
	quote.Code = item.ItemCode
	quote.Name = item.StockName

	c.logger.WithFields(map[string]interface{}{
		"stock_code": quote.Code,
		"price":      quote.Price,
	}).Debug("Fetched stock quote")

	return quote, nil
}

// searchStock resolves a name to an item code
func (c *Client) searchStock(ctx context.Context, query string) (*searchItem, error) {
	endpoint := fmt.Sprintf("%s/api/search/searchList?keyword=%s", c.endpoints.Mobile, url.QueryEscape(query))

	var resp searchResponse
	if err := c.httpClient.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("search stock: %w", market.Classify(err))
	}

	for i := range resp.StockList {
		item := resp.StockList[i]
		if item.StockName == query || item.ItemCode == query {
			return &item, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrStockNotFound, query)
}

// parseItemPage extracts price, change rate and volume from finance.naver.com/item/main
func parseItemPage(html []byte) (*StockQuote, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parse item page: %v", market.ErrProviderUnavailable, err)
	}

	price, ok := parseNum(doc.Find("p.no_today span.blind").First().Text())
	if !ok {
		return nil, fmt.Errorf("%w: price missing in item page", market.ErrProviderUnavailable)
	}

	quote := &StockQuote{Price: price}

	// p.no_exday: em[0] = 전일대비, em[1] = 등락률
	if rateEm := doc.Find("p.no_exday em").Eq(1); rateEm.Length() > 0 {
		text := strings.TrimSpace(rateEm.Find("span.blind").First().Text())
		if rate, err := decimal.NewFromString(strings.ReplaceAll(text, ",", "")); err == nil {
			if rateEm.HasClass("no_down") {
				rate = rate.Abs().Neg()
			}
			quote.ChangePercent = decimal.NewNullDecimal(rate)
		}
	}

	// table.no_info 첫 행: 전일 | 고가 | 거래량
	volumeCell := doc.Find("table.no_info tr").First().Find("td").Eq(2)
	if volume, ok := parseNum(volumeCell.Find("span.blind").First().Text()); ok {
		quote.Volume = volume
	}

	return quote, nil
}
