package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/finbot/internal/api"
	"github.com/wonny/finbot/internal/api/handlers"
	"github.com/wonny/finbot/internal/scheduler"
	"github.com/wonny/finbot/internal/scheduler/jobs"
	"github.com/wonny/finbot/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "카카오 스킬 서버 시작",
	Long: `카카오톡 스킬 웹훅 서버를 시작합니다.

이 명령어는:
- 업비트 마켓 목록으로 코인 심볼 테이블 로드
- 심볼 테이블 주기 갱신 스케줄러 시작
- HTTP 서버 시작 (graceful shutdown)

Endpoints:
  POST /webhook  - 카카오 스킬 요청
  GET  /health   - Health check + 스케줄러 상태

Example:
  go run ./cmd/finbot serve
  go run ./cmd/finbot serve --port 5000`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "서버 포트 (기본: PORT 환경변수)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing finbot server")

	// 3. Wire services (symbol table loaded here)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	// 4. Scheduler
	sched := scheduler.New(log)
	refreshJob := jobs.NewSymbolRefreshJob(a.resolver, cfg.Coin.SymbolRefreshSchedule, log)
	if err := sched.AddJob(refreshJob); err != nil {
		return fmt.Errorf("add symbol refresh job: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// 5. Router + server
	router := api.NewRouter(
		handlers.NewWebhookHandler(a.dispatcher, log),
		handlers.NewHealthHandler(sched, func() int { return a.resolver.Table().Len() }),
		log,
	)
	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("finbot server started")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("  POST /webhook")
	fmt.Println("  GET  /health")
	fmt.Println("\nPress Ctrl+C to stop")

	// 6. Wait for interrupt signal or server failure
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
