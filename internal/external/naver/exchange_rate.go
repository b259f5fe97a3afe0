package naver

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/finbot/internal/market"
)

// 환율 계산기 응답: country[0] = 1 USD, country[1] = KRW 환산값
type fxResponse struct {
	Country []struct {
		Value        string `json:"value"`
		CurrencyUnit string `json:"currencyUnit"`
	} `json:"country"`
}

// USDKRW fetches the current USD/KRW rate from the Naver FX calculator.
// It implements market.RateSource.
func (c *Client) USDKRW(ctx context.Context) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("key", "calculator")
	params.Set("pkid", "141")
	params.Set("q", "환율")
	params.Set("where", "m")
	params.Set("u1", "keb")
	params.Set("u2", "1")
	params.Set("u3", "USD")
	params.Set("u4", "KRW")

	endpoint := fmt.Sprintf("%s/p/csearch/content/qapirender.nhn?%s", c.endpoints.FX, params.Encode())

	var resp fxResponse
	if err := c.httpClient.GetJSON(ctx, endpoint, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("fetch exchange rate: %w", market.Classify(err))
	}

	if len(resp.Country) < 2 {
		return decimal.Zero, fmt.Errorf("%w: exchange rate missing in response", market.ErrProviderUnavailable)
	}

	rate, err := decimal.NewFromString(strings.ReplaceAll(resp.Country[1].Value, ",", ""))
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: invalid exchange rate %q", market.ErrProviderUnavailable, resp.Country[1].Value)
	}

	return rate, nil
}
