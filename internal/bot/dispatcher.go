// Package bot routes chat utterances to the quote services.
package bot

import (
	"context"
	"strings"

	"github.com/wonny/finbot/internal/coin"
	"github.com/wonny/finbot/pkg/logger"
)

// Fixed replies
const (
	TextUnsupported = "[알림] 지원하지 않는 명령어입니다.\n/명령어 로 사용 가능한 명령어를 확인하세요."
	TextChart       = "[차트 분석 기능 준비 중]"
	TextInternal    = "[오류] 요청을 처리하지 못했습니다. 잠시 후 다시 시도해주세요."
)

// HelpText lists every command
const HelpText = "📌 사용 가능한 명령어 목록\n\n" +
	"✔️ 코인 시세: !BTC / !비트코인\n" +
	"✔️ 한국 주식: @삼성전자\n" +
	"✔️ 미국 주식: #TSLA\n" +
	"✔️ 한국 주식 TOP30: /한국주식 TOP30\n" +
	"✔️ 미국 주식 TOP30: /미국주식 TOP30\n" +
	"✔️ 코인 차트: !차트 BTC\n" +
	"✔️ 한국 차트: @차트 삼성전자\n" +
	"✔️ 미국 차트: #차트 TSLA\n" +
	"✔️ 네이버 검색: /네이버 키워드\n" +
	"✔️ 구글 검색: /구글 키워드\n" +
	"✔️ 경제 일정: /일정"

// CoinQuoter answers coin queries
type CoinQuoter interface {
	GetCoinQuote(ctx context.Context, token string) coin.AggregatedQuote
}

// StockAnswerer answers stock queries
type StockAnswerer interface {
	KoreanQuote(ctx context.Context, query string) string
	USQuote(ctx context.Context, ticker string) string
	KoreanRanking(ctx context.Context) string
}

// Dispatcher maps an utterance to a reply text
// ⭐ SSOT: 명령어 라우팅은 여기서만
type Dispatcher struct {
	coins  CoinQuoter
	stocks StockAnswerer
	logger *logger.Logger
}

// NewDispatcher creates a dispatcher
func NewDispatcher(coins CoinQuoter, stocks StockAnswerer, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		coins:  coins,
		stocks: stocks,
		logger: log.WithField("component", "dispatcher"),
	}
}

// Handle returns the reply for utterance. It always returns text.
func (d *Dispatcher) Handle(ctx context.Context, utterance string) (reply string) {
	utterance = strings.TrimSpace(utterance)

	defer func() {
		if r := recover(); r != nil {
			d.logger.WithFields(map[string]interface{}{
				"panic":     r,
				"utterance": utterance,
			}).Error("Panic while handling utterance")
			reply = TextInternal
		}
	}()

	switch {
	case isChart(utterance):
		return TextChart

	case strings.HasPrefix(utterance, "!"):
		token := strings.TrimSpace(strings.TrimPrefix(utterance, "!"))
		if token == "" {
			return "[알림] 코인 심볼이나 이름을 입력해주세요. 예) !BTC"
		}
		return coin.Render(d.coins.GetCoinQuote(ctx, token))

	case strings.HasPrefix(utterance, "@"):
		return d.stocks.KoreanQuote(ctx, strings.TrimPrefix(utterance, "@"))

	case strings.HasPrefix(utterance, "#"):
		return d.stocks.USQuote(ctx, strings.TrimPrefix(utterance, "#"))

	case strings.HasPrefix(utterance, "/"):
		return d.handleSlash(ctx, utterance)
	}

	return TextUnsupported
}

func (d *Dispatcher) handleSlash(ctx context.Context, utterance string) string {
	fields := strings.Fields(utterance)
	command := fields[0]
	arg := strings.ToUpper(strings.Join(fields[1:], " "))

	switch command {
	case "/명령어":
		return HelpText
	case "/한국주식":
		if arg == "" || arg == "TOP30" {
			return d.stocks.KoreanRanking(ctx)
		}
	case "/미국주식":
		if arg == "" || arg == "TOP30" {
			return "[미국주식 TOP30 기능 준비 중]"
		}
	case "/일정":
		return "[경제 일정 기능 준비 중]"
	case "/네이버":
		return "[네이버 검색 기능 준비 중]"
	case "/구글":
		return "[구글 검색 기능 준비 중]"
	}

	return TextUnsupported
}

func isChart(utterance string) bool {
	for _, prefix := range []string{"!차트", "@차트", "#차트"} {
		if strings.HasPrefix(utterance, prefix) {
			return true
		}
	}
	return false
}
