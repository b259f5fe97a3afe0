package coin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/wonny/finbot/internal/market"
	"github.com/wonny/finbot/pkg/logger"
)

// ErrSymbolNotFound is returned when a localized name is not in the table
var ErrSymbolNotFound = errors.New("coin not found")

// Resolution is the outcome of resolving a user token
type Resolution struct {
	Symbol      string // canonical uppercase ticker
	DisplayName string // localized name when known, otherwise the symbol
}

// Resolver maps user tokens to canonical symbols.
// The table pointer is swapped wholesale on refresh; readers never lock.
// ⭐ SSOT: 코인 이름 → 심볼 변환은 여기서만
type Resolver struct {
	source market.ListingSource
	logger *logger.Logger

	table       atomic.Pointer[SymbolTable]
	lazyReloads atomic.Bool // set once the one-time lazy reload has been spent
}

// NewResolver creates a resolver with an empty table; call Refresh to populate it
func NewResolver(source market.ListingSource, log *logger.Logger) *Resolver {
	r := &Resolver{
		source: source,
		logger: log.WithField("component", "symbol_resolver"),
	}
	r.table.Store(NewSymbolTable(nil))
	return r
}

// Table returns the current table snapshot
func (r *Resolver) Table() *SymbolTable {
	return r.table.Load()
}

// Refresh rebuilds the table from the listing source.
// On failure, or when the source returns nothing, the previous table is kept.
func (r *Resolver) Refresh(ctx context.Context) error {
	listings, err := r.source.Listings(ctx)
	if err != nil {
		return fmt.Errorf("refresh symbol table: %w", err)
	}
	if len(listings) == 0 {
		return fmt.Errorf("refresh symbol table: empty market list")
	}

	table := NewSymbolTable(listings)
	r.table.Store(table)

	r.logger.WithField("symbols", table.Len()).Info("Symbol table refreshed")
	return nil
}

// Resolve maps a token to a canonical symbol.
//   - ASCII tokens are tickers already and never fail.
//   - Other tokens (Korean names) need an exact display-name match.
func (r *Resolver) Resolve(ctx context.Context, token string) (Resolution, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Resolution{}, fmt.Errorf("%w: empty token", ErrSymbolNotFound)
	}

	if isASCII(token) {
		symbol := strings.ToUpper(token)
		res := Resolution{Symbol: symbol, DisplayName: symbol}
		if entry, ok := r.Table().LookupSymbol(symbol); ok && entry.DisplayName != "" {
			res.DisplayName = entry.DisplayName
		}
		return res, nil
	}

	table := r.Table()
	if table.Len() == 0 {
		table = r.lazyReload(ctx)
	}

	entry, ok := table.LookupName(token)
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, token)
	}

	return Resolution{Symbol: entry.Symbol, DisplayName: entry.DisplayName}, nil
}

// lazyReload refreshes an empty table at most once per resolver lifetime.
// Later empties wait for the scheduled refresh.
func (r *Resolver) lazyReload(ctx context.Context) *SymbolTable {
	if !r.lazyReloads.CompareAndSwap(false, true) {
		return r.Table()
	}

	if err := r.Refresh(ctx); err != nil {
		r.logger.WithError(err).Warn("Lazy symbol table reload failed")
	}
	return r.Table()
}

func isASCII(s string) bool {
	for _, ch := range s {
		if ch > unicode.MaxASCII {
			return false
		}
	}
	return true
}
