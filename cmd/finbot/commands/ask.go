package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/finbot/pkg/logger"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <utterance>",
	Short: "명령어 1회 실행",
	Long: `웹훅 없이 명령어 하나를 처리하고 응답 텍스트를 출력합니다.

Example:
  go run ./cmd/finbot ask "!BTC"
  go run ./cmd/finbot ask "!비트코인"
  go run ./cmd/finbot ask "#TSLA"
  go run ./cmd/finbot ask "/명령어"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// stdout carries only the reply
	log := logger.NewWithWriter(cfg, os.Stderr)

	ctx := context.Background()
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	reply := a.dispatcher.Handle(ctx, strings.Join(args, " "))
	fmt.Fprintln(cmd.OutOrStdout(), reply)

	return nil
}
