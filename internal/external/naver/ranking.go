package naver

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/wonny/finbot/internal/market"
)

// RankingCategory represents the type of ranking
type RankingCategory string

const (
	RankingMarketCap RankingCategory = "marketValue" // 시가총액
	RankingUpper     RankingCategory = "up"          // 상승률
	RankingLower     RankingCategory = "down"        // 하락률
)

// Markets
const (
	MarketKOSPI  = "KOSPI"
	MarketKOSDAQ = "KOSDAQ"
)

// maxPageSize is the largest page the mobile API serves
const maxPageSize = 100

// RankingItem represents a single ranking row
type RankingItem struct {
	Rank        int
	StockCode   string
	StockName   string
	ClosePrice  int64
	ChangeRatio decimal.NullDecimal
}

// Mobile API response (m.stock.naver.com)
type mobileAPIResponse struct {
	Stocks []mobileStockItem `json:"stocks"`
}

type mobileStockItem struct {
	ItemCode          string `json:"itemCode"`
	StockName         string `json:"stockName"`
	ClosePrice        string `json:"closePrice"`        // "72,300"
	FluctuationsRatio string `json:"fluctuationsRatio"` // "-1.23"
}

// GetRanking fetches the top size stocks of a category from the Naver mobile API
// market: "KOSPI" or "KOSDAQ"
func (c *Client) GetRanking(ctx context.Context, category RankingCategory, marketName string, size int) ([]RankingItem, error) {
	if size <= 0 || size > maxPageSize {
		size = maxPageSize
	}

	endpoint := fmt.Sprintf("%s/api/stocks/%s/%s?page=1&pageSize=%s",
		c.endpoints.Mobile, category, url.PathEscape(marketName), strconv.Itoa(size))

	var apiResp mobileAPIResponse
	if err := c.httpClient.GetJSON(ctx, endpoint, &apiResp); err != nil {
		return nil, fmt.Errorf("fetch ranking: %w", market.Classify(err))
	}

	items := make([]RankingItem, 0, len(apiResp.Stocks))
	for i, stock := range apiResp.Stocks {
		if i >= size {
			break
		}
		price, _ := parseNum(stock.ClosePrice)

		item := RankingItem{
			Rank:       i + 1,
			StockCode:  stock.ItemCode,
			StockName:  stock.StockName,
			ClosePrice: price,
		}
		if ratio, err := decimal.NewFromString(stock.FluctuationsRatio); err == nil {
			item.ChangeRatio = decimal.NewNullDecimal(ratio)
		}
		items = append(items, item)
	}

	c.logger.WithFields(map[string]interface{}{
		"category": category,
		"market":   marketName,
		"count":    len(items),
	}).Debug("Fetched ranking from Naver Mobile API")

	return items, nil
}
