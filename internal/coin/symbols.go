package coin

import (
	"strings"

	"github.com/wonny/finbot/internal/market"
)

// homeCurrency is the quote currency whose listings win name conflicts
const homeCurrency = "KRW"

// SymbolEntry maps a display name to a canonical ticker symbol
type SymbolEntry struct {
	DisplayName   string // 비트코인
	EnglishName   string // Bitcoin
	Symbol        string // BTC
	QuoteCurrency string // KRW, BTC, USDT
}

// SymbolTable is an immutable name <-> symbol lookup built from an exchange
// market list. It is safe for concurrent use.
type SymbolTable struct {
	byName   map[string]SymbolEntry // exact display name
	bySymbol map[string]SymbolEntry // uppercase symbol
}

// NewSymbolTable builds a table from listings.
// Home-currency (KRW) listings take precedence over BTC/USDT listings of the
// same name; within one currency the first listing wins.
func NewSymbolTable(listings []market.Listing) *SymbolTable {
	t := &SymbolTable{
		byName:   make(map[string]SymbolEntry, len(listings)),
		bySymbol: make(map[string]SymbolEntry, len(listings)),
	}

	for _, l := range listings {
		if l.Symbol == "" {
			continue
		}
		entry := SymbolEntry{
			DisplayName:   strings.TrimSpace(l.KoreanName),
			EnglishName:   strings.TrimSpace(l.EnglishName),
			Symbol:        strings.ToUpper(l.Symbol),
			QuoteCurrency: strings.ToUpper(l.QuoteCurrency),
		}

		if entry.DisplayName != "" {
			t.byName[entry.DisplayName] = pick(t.byName[entry.DisplayName], entry)
		}
		t.bySymbol[entry.Symbol] = pick(t.bySymbol[entry.Symbol], entry)
	}

	return t
}

// pick keeps cur unless next is a home-currency listing replacing a foreign one
func pick(cur, next SymbolEntry) SymbolEntry {
	if cur.Symbol == "" {
		return next
	}
	if cur.QuoteCurrency != homeCurrency && next.QuoteCurrency == homeCurrency {
		return next
	}
	return cur
}

// Len returns the number of distinct symbols
func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.bySymbol)
}

// LookupName returns the entry for an exact display name
func (t *SymbolTable) LookupName(name string) (SymbolEntry, bool) {
	if t == nil {
		return SymbolEntry{}, false
	}
	entry, ok := t.byName[name]
	return entry, ok
}

// LookupSymbol returns the entry for a symbol, case-insensitively
func (t *SymbolTable) LookupSymbol(symbol string) (SymbolEntry, bool) {
	if t == nil {
		return SymbolEntry{}, false
	}
	entry, ok := t.bySymbol[strings.ToUpper(symbol)]
	return entry, ok
}
