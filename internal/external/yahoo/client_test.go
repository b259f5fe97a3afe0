package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finbot/internal/market"
	"github.com/wonny/finbot/pkg/config"
	"github.com/wonny/finbot/pkg/httputil"
	"github.com/wonny/finbot/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error"})
}

func TestFetchQuote(t *testing.T) {
	client := NewClientWithQuoteFunc(testLogger(), time.Second, func(symbol string) (*finance.Quote, error) {
		assert.Equal(t, "TSLA", symbol)
		return &finance.Quote{
			Symbol:                     "TSLA",
			ShortName:                  "Tesla, Inc.",
			CurrencyID:                 "USD",
			RegularMarketPrice:         251.05,
			RegularMarketChangePercent: -1.5,
			RegularMarketVolume:        98765432,
		}, nil
	})

	q, err := client.FetchQuote(context.Background(), " tsla ")
	require.NoError(t, err)

	assert.Equal(t, "Tesla, Inc.", q.Name)
	assert.Equal(t, "251.05", q.Price.String())
	assert.Equal(t, "-1.5", q.ChangePercent.Decimal.String())
	assert.Equal(t, int64(98765432), q.Volume)
}

func TestFetchQuote_NotFound(t *testing.T) {
	client := NewClientWithQuoteFunc(testLogger(), time.Second, func(string) (*finance.Quote, error) {
		return nil, nil
	})

	_, err := client.FetchQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrTickerNotFound)
}

func TestFetchQuote_UpstreamError(t *testing.T) {
	client := NewClientWithQuoteFunc(testLogger(), time.Second, func(string) (*finance.Quote, error) {
		return nil, errors.New("remote-error: 401")
	})

	_, err := client.FetchQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, market.ErrProviderUnavailable)
}

func TestFetchQuote_Timeout(t *testing.T) {
	client := NewClientWithQuoteFunc(testLogger(), 20*time.Millisecond, func(string) (*finance.Quote, error) {
		time.Sleep(200 * time.Millisecond)
		return &finance.Quote{RegularMarketPrice: 1}, nil
	})

	_, err := client.FetchQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, market.ErrProviderTimeout)
}

// crumbRejected mimics finance-go's error when Yahoo refuses v7 without a crumb
func crumbRejected(string) (*finance.Quote, error) {
	return nil, errors.New("remote-error: 401 Unauthorized")
}

func newChartClient(t *testing.T, quoteFn QuoteFunc, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{Env: "development", LogLevel: "error"}
	log := logger.New(cfg)
	return NewClientWithQuoteFunc(log, time.Second, quoteFn).
		WithChartFallback(httputil.NewWithTimeout(cfg, log, time.Second), server.URL)
}

func TestFetchQuote_ChartFallback(t *testing.T) {
	client := newChartClient(t, crumbRejected, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/TSLA", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		w.Write([]byte(`{"chart":{"result":[{"meta":{"currency":"USD","symbol":"TSLA","shortName":"Tesla, Inc.",` +
			`"regularMarketPrice":251.05,"chartPreviousClose":250.0,"regularMarketVolume":98765432}}],"error":null}}`))
	})

	q, err := client.FetchQuote(context.Background(), "tsla")
	require.NoError(t, err)

	assert.Equal(t, "TSLA", q.Symbol)
	assert.Equal(t, "Tesla, Inc.", q.Name)
	assert.Equal(t, "USD", q.Currency)
	assert.Equal(t, "251.05", q.Price.String())
	require.True(t, q.ChangePercent.Valid)
	assert.Equal(t, "0.42", q.ChangePercent.Decimal.String())
	assert.Equal(t, int64(98765432), q.Volume)
}

func TestFetchQuote_ChartFallbackErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "unknown ticker",
			status:  http.StatusNotFound,
			body:    `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`,
			wantErr: ErrTickerNotFound,
		},
		{
			name:    "empty result",
			status:  http.StatusOK,
			body:    `{"chart":{"result":[],"error":null}}`,
			wantErr: ErrTickerNotFound,
		},
		{
			name:    "server error",
			status:  http.StatusBadGateway,
			body:    `bad gateway`,
			wantErr: market.ErrProviderUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newChartClient(t, crumbRejected, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.FetchQuote(context.Background(), "NOPE")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetchQuote_ChartNotUsedOnSuccess(t *testing.T) {
	client := newChartClient(t, func(string) (*finance.Quote, error) {
		return &finance.Quote{Symbol: "AAPL", RegularMarketPrice: 190}, nil
	}, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected chart request %s", r.URL.Path)
	})

	q, err := client.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "190", q.Price.String())
}
