package jobs

import (
	"context"

	"github.com/wonny/finbot/pkg/logger"
)

// SymbolRefresher rebuilds the coin symbol table
type SymbolRefresher interface {
	Refresh(ctx context.Context) error
}

// SymbolRefreshJob reloads the exchange market list so that newly listed
// coins become resolvable by name
// ⭐ SSOT: 심볼 테이블 갱신 스케줄은 이 Job에서만
type SymbolRefreshJob struct {
	refresher SymbolRefresher
	schedule  string
	logger    *logger.Logger
}

// NewSymbolRefreshJob creates a new symbol refresh job
func NewSymbolRefreshJob(refresher SymbolRefresher, schedule string, log *logger.Logger) *SymbolRefreshJob {
	return &SymbolRefreshJob{
		refresher: refresher,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *SymbolRefreshJob) Name() string {
	return "symbol_refresh"
}

// Schedule returns the cron schedule (default every 30 minutes)
func (j *SymbolRefreshJob) Schedule() string {
	return j.schedule
}

// Run executes the symbol refresh
func (j *SymbolRefreshJob) Run(ctx context.Context) error {
	j.logger.Debug("Refreshing coin symbol table")
	return j.refresher.Refresh(ctx)
}
