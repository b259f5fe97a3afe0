package coin

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/finbot/internal/market"
	"github.com/wonny/finbot/pkg/logger"
)

// maxRateTimeout caps the exchange-rate lookup
const maxRateTimeout = 5 * time.Second

// ExchangeRate is a USD/KRW rate. A non-nil Err means the live lookup failed
// and USDKRW holds the configured fallback.
type ExchangeRate struct {
	USDKRW decimal.Decimal
	Err    error
}

// IsFallback reports whether the fallback rate was substituted
func (r ExchangeRate) IsFallback() bool {
	return r.Err != nil
}

// RateProvider returns a USD/KRW rate that is always usable
type RateProvider struct {
	source   market.RateSource
	fallback decimal.Decimal
	timeout  time.Duration
	logger   *logger.Logger
}

// NewRateProvider creates a rate provider.
// timeout is clamped to (0, 5s].
func NewRateProvider(source market.RateSource, fallback float64, timeout time.Duration, log *logger.Logger) *RateProvider {
	if timeout <= 0 || timeout > maxRateTimeout {
		timeout = maxRateTimeout
	}
	return &RateProvider{
		source:   source,
		fallback: decimal.NewFromFloat(fallback),
		timeout:  timeout,
		logger:   log.WithField("component", "rate_provider"),
	}
}

// Fallback returns the configured fallback rate
func (p *RateProvider) Fallback() decimal.Decimal {
	return p.fallback
}

// USDKRW fetches the live rate, substituting the fallback on any failure.
// It never returns a Go error.
func (p *RateProvider) USDKRW(ctx context.Context) ExchangeRate {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rate, err := p.source.USDKRW(ctx)
	if err == nil && !rate.IsPositive() {
		err = fmt.Errorf("%w: non-positive rate %s", market.ErrProviderUnavailable, rate)
	}
	if err != nil {
		err = market.Classify(err)
		p.logger.WithError(err).
			WithField("fallback", p.fallback.String()).
			Warn("USD/KRW lookup failed, using fallback")
		return ExchangeRate{USDKRW: p.fallback, Err: err}
	}

	return ExchangeRate{USDKRW: rate}
}
