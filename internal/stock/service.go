// Package stock formats Korean and US stock replies.
// Every failure is turned into reply text; nothing is returned as an error.
package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/finbot/internal/external/naver"
	"github.com/wonny/finbot/internal/external/yahoo"
	"github.com/wonny/finbot/internal/market"
	"github.com/wonny/finbot/pkg/logger"
	"github.com/wonny/finbot/pkg/textfmt"
)

// KoreanQuoteSource looks up a Korean stock by name or code
type KoreanQuoteSource interface {
	FetchStockQuote(ctx context.Context, query string) (*naver.StockQuote, error)
}

// RankingSource returns a market ranking
type RankingSource interface {
	GetRanking(ctx context.Context, category naver.RankingCategory, marketName string, size int) ([]naver.RankingItem, error)
}

// USQuoteSource looks up a US stock by ticker
type USQuoteSource interface {
	FetchQuote(ctx context.Context, ticker string) (*yahoo.StockQuote, error)
}

// Service answers stock commands
type Service struct {
	korean      KoreanQuoteSource
	ranking     RankingSource
	us          USQuoteSource
	rankingSize int
	logger      *logger.Logger
}

// NewService creates a stock service
func NewService(korean KoreanQuoteSource, ranking RankingSource, us USQuoteSource, rankingSize int, log *logger.Logger) *Service {
	return &Service{
		korean:      korean,
		ranking:     ranking,
		us:          us,
		rankingSize: rankingSize,
		logger:      log.WithField("component", "stock_service"),
	}
}

// KoreanQuote answers "@삼성전자"
func (s *Service) KoreanQuote(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "[알림] 종목명을 입력해주세요. 예) @삼성전자"
	}

	q, err := s.korean.FetchStockQuote(ctx, query)
	if err != nil {
		s.logger.WithError(err).WithField("query", query).Warn("Korean stock lookup failed")
		if errors.Is(err, naver.ErrStockNotFound) {
			return fmt.Sprintf("[오류] '%s' 종목을 찾을 수 없습니다.", query)
		}
		return fmt.Sprintf("한국 주식 정보를 가져올 수 없습니다. (%s)", reason(err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] 주식 시세\n", q.Name)
	fmt.Fprintf(&b, "💰 현재 가격 → ₩%s%s\n", textfmt.Int(q.Price), changeSuffix(q.ChangePercent))
	fmt.Fprintf(&b, "📊 거래량 → %s주", textfmt.Int(q.Volume))
	return b.String()
}

// USQuote answers "#TSLA"
func (s *Service) USQuote(ctx context.Context, ticker string) string {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return "[알림] 티커를 입력해주세요. 예) #TSLA"
	}

	q, err := s.us.FetchQuote(ctx, ticker)
	if err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Warn("US stock lookup failed")
		if errors.Is(err, yahoo.ErrTickerNotFound) {
			return fmt.Sprintf("[오류] '%s' 종목을 찾을 수 없습니다.", strings.ToUpper(ticker))
		}
		return fmt.Sprintf("미국 주식 정보를 가져올 수 없습니다. (%s)", reason(err))
	}

	var b strings.Builder
	if q.Name != "" && q.Name != q.Symbol {
		fmt.Fprintf(&b, "[%s] %s 주식 시세\n", q.Symbol, q.Name)
	} else {
		fmt.Fprintf(&b, "[%s] 주식 시세\n", q.Symbol)
	}
	fmt.Fprintf(&b, "💰 현재 가격 → %s%s\n", formatForeign(q.Price, q.Currency), changeSuffix(q.ChangePercent))
	fmt.Fprintf(&b, "📊 거래량 → %s", textfmt.Int(q.Volume))
	return b.String()
}

// KoreanRanking answers "/한국주식 TOP30" with the KOSPI market-cap ranking
func (s *Service) KoreanRanking(ctx context.Context) string {
	items, err := s.ranking.GetRanking(ctx, naver.RankingMarketCap, naver.MarketKOSPI, s.rankingSize)
	if err != nil {
		s.logger.WithError(err).Warn("Korean ranking lookup failed")
		return fmt.Sprintf("한국 주식 순위를 가져올 수 없습니다. (%s)", reason(err))
	}
	if len(items) == 0 {
		return "한국 주식 순위를 가져올 수 없습니다. (데이터 없음)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📈 한국주식 시가총액 TOP%d (%s)\n", s.rankingSize, naver.MarketKOSPI)
	for _, item := range items {
		fmt.Fprintf(&b, "\n%d. %s ₩%s%s", item.Rank, item.StockName, textfmt.Int(item.ClosePrice), changeSuffix(item.ChangeRatio))
	}
	return b.String()
}

// formatForeign prints USD with "$" and any other currency with its code: "2,850.50 JPY"
func formatForeign(price decimal.Decimal, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == "USD" {
		return textfmt.USD(price)
	}
	return strings.TrimPrefix(textfmt.USD(price), "$") + " " + currency
}

func changeSuffix(change decimal.NullDecimal) string {
	if !change.Valid {
		return ""
	}
	return fmt.Sprintf(" (%s)", textfmt.SignedPercent(change.Decimal))
}

func reason(err error) string {
	switch {
	case errors.Is(err, market.ErrProviderTimeout):
		return "응답 시간 초과"
	case errors.Is(err, market.ErrProviderUnavailable):
		return "서버 응답 오류"
	default:
		return "알 수 없는 오류"
	}
}
