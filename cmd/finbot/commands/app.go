package commands

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/finbot/internal/bot"
	"github.com/wonny/finbot/internal/coin"
	"github.com/wonny/finbot/internal/external/binance"
	"github.com/wonny/finbot/internal/external/bithumb"
	"github.com/wonny/finbot/internal/external/coinone"
	"github.com/wonny/finbot/internal/external/naver"
	"github.com/wonny/finbot/internal/external/upbit"
	"github.com/wonny/finbot/internal/external/yahoo"
	"github.com/wonny/finbot/internal/market"
	"github.com/wonny/finbot/internal/stock"
	"github.com/wonny/finbot/pkg/config"
	"github.com/wonny/finbot/pkg/httputil"
	"github.com/wonny/finbot/pkg/logger"
	"github.com/wonny/finbot/pkg/redis"
)

// app holds the wired services shared by serve and ask
type app struct {
	redis      *redis.Client
	resolver   *coin.Resolver
	dispatcher *bot.Dispatcher
}

// loadConfig loads config and applies global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newApp wires upstream clients, the coin aggregator and the dispatcher.
// The symbol table is loaded best-effort; a failure leaves it empty.
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	limiter := redis.NewRateLimiter(redisClient, "finbot")

	// one HTTP client per upstream: own timeout, own limiters
	newHTTP := func(name string, timeout time.Duration) *httputil.Client {
		limit := redis.LimitFor(name)
		perSecond := rate.Limit(float64(limit.Limit) / limit.Window.Seconds())
		return httputil.NewWithTimeout(cfg, log, timeout).
			Named(name).
			WithLimiter(rate.NewLimiter(perSecond, limit.Limit)).
			WithRateLimiter(limiter, limit)
	}

	upbitClient := upbit.NewClient(newHTTP("upbit", cfg.Upstream.Timeout), log, cfg.Upstream.UpbitURL)
	bithumbClient := bithumb.NewClient(newHTTP("bithumb", cfg.Upstream.Timeout), log, cfg.Upstream.BithumbURL)
	coinoneClient := coinone.NewClient(newHTTP("coinone", cfg.Upstream.Timeout), log, cfg.Upstream.CoinoneURL)
	binanceClient := binance.NewClient(newHTTP("binance", cfg.Upstream.Timeout), log, cfg.Upstream.BinanceURL)

	naverClient := naver.NewClient(newHTTP("naver", cfg.Upstream.Timeout), log, naver.Endpoints{
		Finance: cfg.Upstream.NaverFinanceURL,
		Mobile:  cfg.Upstream.NaverMobileURL,
		FX:      cfg.Upstream.NaverFXURL,
	})
	yahooClient := yahoo.NewClient(log, cfg.Upstream.Timeout).
		WithChartFallback(newHTTP("yahoo", cfg.Upstream.Timeout), cfg.Upstream.YahooChartURL)

	resolver := coin.NewResolver(upbitClient, log)
	if err := resolver.Refresh(ctx); err != nil {
		log.WithError(err).Warn("Initial symbol table load failed, continuing with empty table")
	}

	rates := coin.NewRateProvider(naverClient, cfg.Coin.FallbackUSDKRW, cfg.Upstream.RateTimeout, log)

	// 업비트가 김치 프리미엄 기준 거래소
	aggregator := coin.NewAggregator(
		resolver,
		binanceClient,
		[]market.PriceProvider{upbitClient, bithumbClient, coinoneClient},
		rates,
		log,
	)

	stocks := stock.NewService(naverClient, naverClient, yahooClient, cfg.Stock.RankingSize, log)

	return &app{
		redis:      redisClient,
		resolver:   resolver,
		dispatcher: bot.NewDispatcher(aggregator, stocks, log),
	}, nil
}

// Close releases external connections
func (a *app) Close() error {
	return a.redis.Close()
}
