package coin

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/finbot/internal/market"
	"github.com/wonny/finbot/pkg/logger"
)

// Aggregator assembles a coin quote from one global venue, the domestic
// venues and the USD/KRW rate.
// ⭐ SSOT: 코인 시세 조합 + 김치 프리미엄 계산은 여기서만
type Aggregator struct {
	resolver *Resolver
	global   market.PriceProvider
	domestic []market.PriceProvider // first one is the premium reference
	rates    *RateProvider
	logger   *logger.Logger
}

// NewAggregator creates an aggregator. domestic order is the render order.
func NewAggregator(
	resolver *Resolver,
	global market.PriceProvider,
	domestic []market.PriceProvider,
	rates *RateProvider,
	log *logger.Logger,
) *Aggregator {
	return &Aggregator{
		resolver: resolver,
		global:   global,
		domestic: domestic,
		rates:    rates,
		logger:   log.WithField("component", "coin_aggregator"),
	}
}

// GetCoinQuote resolves token and queries every source concurrently.
// Failures are recorded on the quote; nothing is returned as an error.
func (a *Aggregator) GetCoinQuote(ctx context.Context, token string) AggregatedQuote {
	quote := AggregatedQuote{Query: token}

	res, err := a.resolver.Resolve(ctx, token)
	if err != nil {
		quote.NotFound = true
		a.logger.WithField("token", token).Debug("Coin not found")
		return quote
	}
	quote.Symbol = res.Symbol
	quote.DisplayName = res.DisplayName

	quote.Domestic = make([]PriceQuote, len(a.domestic))

	// goroutines never return errors so siblings are never cancelled
	var g errgroup.Group

	g.Go(func() error {
		quote.Rate = a.fetchRate(ctx)
		return nil
	})
	g.Go(func() error {
		quote.Global = a.fetch(ctx, a.global, res.Symbol)
		return nil
	})
	for i, p := range a.domestic {
		i, p := i, p
		g.Go(func() error {
			quote.Domestic[i] = a.fetch(ctx, p, res.Symbol)
			return nil
		})
	}
	_ = g.Wait()

	if len(quote.Domestic) > 0 {
		quote.Premium = Premium(quote.Global.Price, quote.Domestic[0].Price, quote.Rate.USDKRW)
	}
	quote.Errors = collectErrors(quote)

	a.logger.WithFields(map[string]interface{}{
		"symbol":   quote.Symbol,
		"failures": len(quote.Errors),
	}).Debug("Coin quote assembled")

	return quote
}

// fetch calls one provider and never panics
func (a *Aggregator) fetch(ctx context.Context, p market.PriceProvider, symbol string) (q PriceQuote) {
	q.Venue = p.Venue()

	defer func() {
		if r := recover(); r != nil {
			q = PriceQuote{
				Venue: p.Venue(),
				Err:   &market.FetchError{Venue: p.Venue(), Err: fmt.Errorf("%w: panic: %v", market.ErrProviderUnavailable, r)},
			}
		}
	}()

	ticker, err := p.Ticker(ctx, symbol)
	if err != nil {
		q.Err = &market.FetchError{Venue: q.Venue, Err: market.Classify(err)}
		a.logger.WithError(err).
			WithFields(map[string]interface{}{"venue": string(q.Venue), "symbol": symbol}).
			Warn("Price lookup failed")
		return q
	}

	q.Price = decimal.NewNullDecimal(ticker.Price)
	q.ChangePercent = ticker.ChangePercent
	return q
}

func (a *Aggregator) fetchRate(ctx context.Context) (rate ExchangeRate) {
	defer func() {
		if r := recover(); r != nil {
			rate = ExchangeRate{
				USDKRW: a.rates.Fallback(),
				Err:    fmt.Errorf("%w: panic: %v", market.ErrProviderUnavailable, r),
			}
		}
	}()
	return a.rates.USDKRW(ctx)
}

// collectErrors lists failures in render order: global, domestic, rate
func collectErrors(q AggregatedQuote) []string {
	var out []string

	if q.Global.Err != nil {
		out = append(out, fmt.Sprintf("%s: %s", q.Global.Venue.DisplayName(), describe(q.Global.Err)))
	}
	for _, d := range q.Domestic {
		if d.Err != nil {
			out = append(out, fmt.Sprintf("%s: %s", d.Venue.DisplayName(), describe(d.Err)))
		}
	}
	if q.Rate.Err != nil {
		out = append(out, fmt.Sprintf("환율: %s, 기준 환율 %s원 적용", describe(q.Rate.Err), formatRate(q.Rate.USDKRW)))
	}

	return out
}

// describe converts a failure into a short Korean reason
func describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSymbolNotFound):
		return "코인을 찾을 수 없음"
	case errors.Is(err, market.ErrSymbolNotListed):
		return "상장되지 않음"
	case errors.Is(err, market.ErrProviderTimeout):
		return "응답 시간 초과"
	case errors.Is(err, context.Canceled):
		return "요청 취소"
	case errors.Is(err, market.ErrProviderUnavailable):
		return "서버 응답 오류"
	default:
		return "알 수 없는 오류"
	}
}
