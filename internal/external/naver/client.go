package naver

import (
	"strconv"
	"strings"

	"github.com/wonny/finbot/pkg/httputil"
	"github.com/wonny/finbot/pkg/logger"
)

// Endpoints holds the Naver hosts used by the client
type Endpoints struct {
	Finance string // https://finance.naver.com (HTML)
	Mobile  string // https://m.stock.naver.com (JSON)
	FX      string // https://search.naver.com (환율 계산기)
}

// Client handles communication with Naver Finance
// ⭐ SSOT: Naver Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	endpoints  Endpoints
}

// NewClient creates a new Naver Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger, endpoints Endpoints) *Client {
	endpoints.Finance = strings.TrimRight(endpoints.Finance, "/")
	endpoints.Mobile = strings.TrimRight(endpoints.Mobile, "/")
	endpoints.FX = strings.TrimRight(endpoints.FX, "/")

	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("upstream", "naver"),
		endpoints:  endpoints,
	}
}

// parseNum parses Naver's comma separated numbers ("72,300", "+1,200")
func parseNum(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	if s == "" || s == "-" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
