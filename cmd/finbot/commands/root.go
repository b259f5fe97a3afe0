package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "finbot",
	Short: "finbot - 카카오톡 금융 시세 챗봇",
	Long: `finbot

코인 / 한국주식 / 미국주식 시세를 카카오톡 스킬 서버로 제공합니다.

Usage:
  go run ./cmd/finbot [command]

Examples:
  go run ./cmd/finbot serve
  go run ./cmd/finbot serve --port 5000
  go run ./cmd/finbot ask "!BTC"
  go run ./cmd/finbot ask "@삼성전자"`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug 로그 출력")
}
