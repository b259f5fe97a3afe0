package market

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/finbot/pkg/httputil"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", fmt.Errorf("HTTP request failed: %w", context.DeadlineExceeded), ErrProviderTimeout},
		{"client timeout", &url.Error{Op: "Get", URL: "http://x", Err: timeoutErr{}}, ErrProviderTimeout},
		{"status", &httputil.StatusError{StatusCode: 503, URL: "http://x"}, ErrProviderUnavailable},
		{"malformed", fmt.Errorf("%w: eof", httputil.ErrMalformedBody), ErrProviderUnavailable},
		{"refused", errors.New("connection refused"), ErrProviderUnavailable},
		{"already classified", NotListed("XYZ", "Code not found"), ErrSymbolNotListed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.ErrorIs(t, got, tt.want)
		})
	}

	assert.NoError(t, Classify(nil))
}

func TestFetchError(t *testing.T) {
	err := &FetchError{Venue: VenueUpbit, Err: NotListed("XYZ", "")}

	assert.ErrorIs(t, err, ErrSymbolNotListed)
	assert.Equal(t, "upbit: symbol not listed: XYZ", err.Error())
}

func TestVenueDisplayName(t *testing.T) {
	assert.Equal(t, "업비트", VenueUpbit.DisplayName())
	assert.Equal(t, "바이낸스", VenueBinance.DisplayName())
	assert.Equal(t, "kraken", Venue("kraken").DisplayName())
}
