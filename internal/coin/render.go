package coin

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/finbot/pkg/textfmt"
)

// Render formats a quote as chat text.
// Section order is fixed: header, global, domestic venues, premium, diagnostics.
func Render(q AggregatedQuote) string {
	if q.NotFound {
		return fmt.Sprintf("[오류] '%s' 코인을 찾을 수 없습니다.\n\n심볼(예: !BTC) 또는 업비트 한글명(예: !비트코인)으로 입력해주세요.", strings.TrimSpace(q.Query))
	}

	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s 시세\n\n", q.Symbol, q.DisplayName)

	b.WriteString("💰 글로벌 가격 → ")
	if q.Global.OK() {
		b.WriteString(textfmt.USD(q.Global.Price.Decimal))
		b.WriteString(changeSuffix(q.Global.ChangePercent))
	} else {
		b.WriteString(failureText(q.Global))
	}
	b.WriteString("\n\n")

	b.WriteString("🇰🇷 국내 거래소 가격\n")
	for _, d := range q.Domestic {
		fmt.Fprintf(&b, "- %s → ", d.Venue.DisplayName())
		if d.OK() {
			b.WriteString(textfmt.KRW(d.Price.Decimal))
			b.WriteString(changeSuffix(d.ChangePercent))
		} else {
			b.WriteString(failureText(d))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("🧮 김치 프리미엄 → ")
	if q.Premium.Valid {
		b.WriteString(textfmt.SignedPercent(q.Premium.Decimal))
	} else {
		b.WriteString("계산 불가")
	}

	if len(q.Errors) > 0 {
		b.WriteString("\n\n⚠️ 접속 실패\n")
		for i, e := range q.Errors {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("- ")
			b.WriteString(e)
		}
	}

	return b.String()
}

func changeSuffix(change decimal.NullDecimal) string {
	if !change.Valid {
		return ""
	}
	return fmt.Sprintf(" (%s)", textfmt.SignedPercent(change.Decimal))
}

func failureText(q PriceQuote) string {
	if q.Err == nil {
		return "조회 실패"
	}
	return fmt.Sprintf("조회 실패 (%s)", describe(q.Err))
}

// formatRate prints a rate without the currency sign: 1400 -> "1,400"
func formatRate(rate decimal.Decimal) string {
	return textfmt.Int(rate.Round(0).IntPart())
}
