package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// maxUpstreamTimeout bounds every outbound call. Upstreams that take longer
// are treated as failed.
const maxUpstreamTimeout = 7 * time.Second

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Redis (공유 레이트 리밋용, 기본 비활성)
	Redis RedisConfig

	// External APIs
	Upstream UpstreamConfig

	// Coin quote
	Coin CoinConfig

	// Korean/US stock
	Stock StockConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// UpstreamConfig holds base URLs and timeouts of third-party APIs
type UpstreamConfig struct {
	UpbitURL        string
	BithumbURL      string
	CoinoneURL      string
	BinanceURL      string
	NaverFinanceURL string // finance.naver.com (HTML)
	NaverMobileURL  string // m.stock.naver.com (JSON)
	NaverFXURL      string // search.naver.com 환율 계산기
	YahooChartURL   string // query1.finance.yahoo.com (v8 chart, quote 실패 시)

	Timeout     time.Duration // 거래소 / 주식 API
	RateTimeout time.Duration // 환율 API (≤5s)
}

// CoinConfig holds coin quote settings
type CoinConfig struct {
	FallbackUSDKRW        float64 // 환율 조회 실패 시 사용
	SymbolRefreshSchedule string  // cron (with seconds)
}

// StockConfig holds stock quote settings
type StockConfig struct {
	RankingSize int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External APIs
		Upstream: UpstreamConfig{
			UpbitURL:        getEnv("UPBIT_BASE_URL", "https://api.upbit.com"),
			BithumbURL:      getEnv("BITHUMB_BASE_URL", "https://api.bithumb.com"),
			CoinoneURL:      getEnv("COINONE_BASE_URL", "https://api.coinone.co.kr"),
			BinanceURL:      getEnv("BINANCE_BASE_URL", "https://api.binance.com"),
			NaverFinanceURL: getEnv("NAVER_FINANCE_URL", "https://finance.naver.com"),
			NaverMobileURL:  getEnv("NAVER_MOBILE_URL", "https://m.stock.naver.com"),
			NaverFXURL:      getEnv("NAVER_FX_URL", "https://search.naver.com"),
			YahooChartURL:   getEnv("YAHOO_CHART_URL", "https://query1.finance.yahoo.com"),
			Timeout:         getEnvAsDuration("UPSTREAM_TIMEOUT", "5s"),
			RateTimeout:     getEnvAsDuration("RATE_TIMEOUT", "5s"),
		},

		Coin: CoinConfig{
			FallbackUSDKRW:        getEnvAsFloat("FALLBACK_USD_KRW", 1400.0),
			SymbolRefreshSchedule: getEnv("SYMBOL_REFRESH_SCHEDULE", "0 */30 * * * *"),
		},

		Stock: StockConfig{
			RankingSize: getEnvAsInt("RANKING_SIZE", 30),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are sane
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Coin.FallbackUSDKRW <= 0 {
		return fmt.Errorf("FALLBACK_USD_KRW must be positive")
	}

	if c.Upstream.Timeout <= 0 || c.Upstream.Timeout > maxUpstreamTimeout {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be in (0, %s]", maxUpstreamTimeout)
	}

	if c.Upstream.RateTimeout <= 0 || c.Upstream.RateTimeout > 5*time.Second {
		return fmt.Errorf("RATE_TIMEOUT must be in (0, 5s]")
	}

	if c.Stock.RankingSize <= 0 {
		return fmt.Errorf("RANKING_SIZE must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
