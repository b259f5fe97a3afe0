package market

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Failure classes of an upstream call. All of them are recoverable and end up
// as text in the chat reply.
var (
	ErrProviderTimeout     = errors.New("provider timeout")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrSymbolNotListed     = errors.New("symbol not listed")
)

// FetchError ties a classified failure to the venue that produced it
type FetchError struct {
	Venue Venue
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Venue, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Classify maps a raw client error onto the failure taxonomy.
// Errors already carrying a class are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrProviderTimeout) ||
		errors.Is(err, ErrProviderUnavailable) ||
		errors.Is(err, ErrSymbolNotListed) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrProviderTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrProviderTimeout, err)
	}

	// non-2xx, malformed body, connection refused, ...
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}

// NotListed wraps a venue message as ErrSymbolNotListed
func NotListed(symbol, detail string) error {
	if detail == "" {
		return fmt.Errorf("%w: %s", ErrSymbolNotListed, symbol)
	}
	return fmt.Errorf("%w: %s (%s)", ErrSymbolNotListed, symbol, detail)
}
