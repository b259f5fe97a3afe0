package coin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/wonny/finbot/internal/market"
)

type testVenues struct {
	global  *MockPriceProvider
	upbit   *MockPriceProvider
	bithumb *MockPriceProvider
	coinone *MockPriceProvider
}

func newTestAggregator(t *testing.T, rate fakeRateSource) (*Aggregator, testVenues) {
	t.Helper()
	ctrl := gomock.NewController(t)

	v := testVenues{
		global:  NewMockPriceProvider(ctrl),
		upbit:   NewMockPriceProvider(ctrl),
		bithumb: NewMockPriceProvider(ctrl),
		coinone: NewMockPriceProvider(ctrl),
	}
	v.global.EXPECT().Venue().Return(market.VenueBinance).AnyTimes()
	v.upbit.EXPECT().Venue().Return(market.VenueUpbit).AnyTimes()
	v.bithumb.EXPECT().Venue().Return(market.VenueBithumb).AnyTimes()
	v.coinone.EXPECT().Venue().Return(market.VenueCoinone).AnyTimes()

	agg := NewAggregator(
		loadedResolver(testListings),
		v.global,
		[]market.PriceProvider{v.upbit, v.bithumb, v.coinone},
		NewRateProvider(rate, 1400.0, time.Second, testLogger()),
		testLogger(),
	)
	return agg, v
}

func ticker(price string) market.Ticker {
	return market.Ticker{Price: dec(price)}
}

func TestGetCoinQuote_AllSourcesUp(t *testing.T) {
	agg, v := newTestAggregator(t, fakeRateSource{rate: dec("1400")})

	v.global.EXPECT().Ticker(gomock.Any(), "BTC").Return(market.Ticker{
		Price:         dec("100"),
		ChangePercent: nullDec("1.5"),
	}, nil)
	v.upbit.EXPECT().Ticker(gomock.Any(), "BTC").Return(ticker("140500"), nil)
	v.bithumb.EXPECT().Ticker(gomock.Any(), "BTC").Return(ticker("140400"), nil)
	v.coinone.EXPECT().Ticker(gomock.Any(), "BTC").Return(ticker("140300"), nil)

	q := agg.GetCoinQuote(context.Background(), "비트코인")

	assert.False(t, q.NotFound)
	assert.Equal(t, "BTC", q.Symbol)
	assert.Equal(t, "비트코인", q.DisplayName)
	assert.True(t, q.Global.OK())
	require.Len(t, q.Domestic, 3)
	assert.Equal(t, market.VenueUpbit, q.Domestic[0].Venue)
	assert.Equal(t, market.VenueBithumb, q.Domestic[1].Venue)
	assert.Equal(t, market.VenueCoinone, q.Domestic[2].Venue)
	assert.False(t, q.Rate.IsFallback())

	require.True(t, q.Premium.Valid)
	assert.True(t, strings.HasSuffix(Render(q), "🧮 김치 프리미엄 → +0.36%"))
	assert.Empty(t, q.Errors)
}

func TestGetCoinQuote_NotFound(t *testing.T) {
	// no Ticker expectations: gomock fails the test on any provider call
	agg, _ := newTestAggregator(t, fakeRateSource{rate: dec("1400")})

	q := agg.GetCoinQuote(context.Background(), "없는코인")

	assert.True(t, q.NotFound)
	assert.Equal(t, "없는코인", q.Query)
	assert.Contains(t, Render(q), "'없는코인' 코인을 찾을 수 없습니다")
}

func TestGetCoinQuote_GlobalFailure(t *testing.T) {
	agg, v := newTestAggregator(t, fakeRateSource{rate: dec("1400")})

	v.global.EXPECT().Ticker(gomock.Any(), "ETH").Return(market.Ticker{}, context.DeadlineExceeded)
	v.upbit.EXPECT().Ticker(gomock.Any(), "ETH").Return(ticker("5000000"), nil)
	v.bithumb.EXPECT().Ticker(gomock.Any(), "ETH").Return(ticker("5001000"), nil)
	v.coinone.EXPECT().Ticker(gomock.Any(), "ETH").Return(ticker("5002000"), nil)

	q := agg.GetCoinQuote(context.Background(), "eth")

	assert.False(t, q.Global.OK())
	assert.ErrorIs(t, q.Global.Err, market.ErrProviderTimeout)

	var fetchErr *market.FetchError
	require.ErrorAs(t, q.Global.Err, &fetchErr)
	assert.Equal(t, market.VenueBinance, fetchErr.Venue)

	assert.False(t, q.Premium.Valid)
	assert.Equal(t, []string{"바이낸스: 응답 시간 초과"}, q.Errors)

	text := Render(q)
	assert.Contains(t, text, "- 업비트 → ₩5,000,000")
	assert.Contains(t, text, "🧮 김치 프리미엄 → 계산 불가")
	assert.NotContains(t, text, "0.00%")
	assert.Contains(t, text, "⚠️ 접속 실패\n- 바이낸스: 응답 시간 초과")
}

func TestGetCoinQuote_PrimaryDomesticFailure(t *testing.T) {
	agg, v := newTestAggregator(t, fakeRateSource{rate: dec("1400")})

	v.global.EXPECT().Ticker(gomock.Any(), "XRP").Return(ticker("0.5"), nil)
	v.upbit.EXPECT().Ticker(gomock.Any(), "XRP").Return(market.Ticker{}, market.NotListed("XRP", ""))
	v.bithumb.EXPECT().Ticker(gomock.Any(), "XRP").Return(ticker("705"), nil)
	v.coinone.EXPECT().Ticker(gomock.Any(), "XRP").Return(market.Ticker{}, errors.New("503 Service Unavailable"))

	q := agg.GetCoinQuote(context.Background(), "리플")

	// premium is computed against the first domestic venue only
	assert.False(t, q.Premium.Valid)
	assert.Equal(t, []string{
		"업비트: 상장되지 않음",
		"코인원: 서버 응답 오류",
	}, q.Errors)
}

func TestGetCoinQuote_RateFallback(t *testing.T) {
	agg, v := newTestAggregator(t, fakeRateSource{err: errors.New("naver down")})

	v.global.EXPECT().Ticker(gomock.Any(), "BTC").Return(ticker("100"), nil)
	v.upbit.EXPECT().Ticker(gomock.Any(), "BTC").Return(ticker("140500"), nil)
	v.bithumb.EXPECT().Ticker(gomock.Any(), "BTC").Return(ticker("140500"), nil)
	v.coinone.EXPECT().Ticker(gomock.Any(), "BTC").Return(ticker("140500"), nil)

	q := agg.GetCoinQuote(context.Background(), "BTC")

	assert.True(t, q.Rate.IsFallback())
	assert.Equal(t, "1400", q.Rate.USDKRW.String())
	require.True(t, q.Premium.Valid)
	assert.Equal(t, "0.36", q.Premium.Decimal.String())
	assert.Equal(t, []string{"환율: 서버 응답 오류, 기준 환율 1,400원 적용"}, q.Errors)
}

func TestGetCoinQuote_ProviderPanic(t *testing.T) {
	agg, v := newTestAggregator(t, fakeRateSource{rate: dec("1400")})

	v.global.EXPECT().Ticker(gomock.Any(), "BTC").DoAndReturn(func(context.Context, string) (market.Ticker, error) {
		panic("nil map")
	})
	v.upbit.EXPECT().Ticker(gomock.Any(), "BTC").Return(ticker("140500"), nil)
	v.bithumb.EXPECT().Ticker(gomock.Any(), "BTC").Return(ticker("140500"), nil)
	v.coinone.EXPECT().Ticker(gomock.Any(), "BTC").Return(ticker("140500"), nil)

	q := agg.GetCoinQuote(context.Background(), "BTC")

	assert.ErrorIs(t, q.Global.Err, market.ErrProviderUnavailable)
	assert.True(t, q.Domestic[0].OK())
}

func TestGetCoinQuote_RunsConcurrently(t *testing.T) {
	agg, v := newTestAggregator(t, fakeRateSource{rate: dec("1400")})

	// every call blocks until all four providers have started
	var started sync.WaitGroup
	started.Add(4)
	slow := func(price string) func(context.Context, string) (market.Ticker, error) {
		return func(context.Context, string) (market.Ticker, error) {
			started.Done()
			started.Wait()
			return ticker(price), nil
		}
	}

	v.global.EXPECT().Ticker(gomock.Any(), "BTC").DoAndReturn(slow("100"))
	v.upbit.EXPECT().Ticker(gomock.Any(), "BTC").DoAndReturn(slow("140500"))
	v.bithumb.EXPECT().Ticker(gomock.Any(), "BTC").DoAndReturn(slow("140500"))
	v.coinone.EXPECT().Ticker(gomock.Any(), "BTC").DoAndReturn(slow("140500"))

	done := make(chan AggregatedQuote, 1)
	go func() { done <- agg.GetCoinQuote(context.Background(), "BTC") }()

	select {
	case q := <-done:
		assert.Empty(t, q.Errors)
	case <-time.After(3 * time.Second):
		t.Fatal("providers were called sequentially")
	}
}

func TestGetCoinQuote_ConcurrentRequestsDoNotInterfere(t *testing.T) {
	global := fakeProvider{venue: market.VenueBinance, prices: map[string]string{}}
	upbit := fakeProvider{venue: market.VenueUpbit, prices: map[string]string{}}

	symbols := []string{"BTC", "ETH", "XRP", "SOL", "ADA", "DOGE"}
	for i, s := range symbols {
		global.prices[s] = fmt.Sprintf("%d", (i+1)*100)
		upbit.prices[s] = fmt.Sprintf("%d", (i+1)*140000)
	}

	agg := NewAggregator(
		loadedResolver(testListings),
		global,
		[]market.PriceProvider{upbit},
		NewRateProvider(fakeRateSource{rate: dec("1400")}, 1400, time.Second, testLogger()),
		testLogger(),
	)

	var wg sync.WaitGroup
	for round := 0; round < 20; round++ {
		for i, s := range symbols {
			i, s := i, s
			wg.Add(1)
			go func() {
				defer wg.Done()

				q := agg.GetCoinQuote(context.Background(), s)

				assert.Equal(t, s, q.Symbol)
				assert.True(t, decimal.NewFromInt(int64((i+1)*100)).Equal(q.Global.Price.Decimal))
				assert.True(t, decimal.NewFromInt(int64((i+1)*140000)).Equal(q.Domestic[0].Price.Decimal))
				if assert.True(t, q.Premium.Valid) {
					assert.True(t, q.Premium.Decimal.IsZero())
				}
			}()
		}
	}
	wg.Wait()
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&market.FetchError{Venue: market.VenueUpbit, Err: market.ErrProviderTimeout}, "응답 시간 초과"},
		{market.NotListed("FOO", "5500"), "상장되지 않음"},
		{fmt.Errorf("%w: 502", market.ErrProviderUnavailable), "서버 응답 오류"},
		{fmt.Errorf("%w: x", ErrSymbolNotFound), "코인을 찾을 수 없음"},
		{context.Canceled, "요청 취소"},
		{errors.New("??"), "알 수 없는 오류"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.err))
		})
	}
}
