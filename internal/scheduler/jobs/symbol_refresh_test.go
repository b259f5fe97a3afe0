package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/finbot/pkg/config"
	"github.com/wonny/finbot/pkg/logger"
)

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) Refresh(context.Context) error {
	f.calls++
	return f.err
}

func TestSymbolRefreshJob(t *testing.T) {
	log := logger.New(&config.Config{Env: "development", LogLevel: "error"})
	refresher := &fakeRefresher{}
	job := NewSymbolRefreshJob(refresher, "0 */30 * * * *", log)

	assert.Equal(t, "symbol_refresh", job.Name())
	assert.Equal(t, "0 */30 * * * *", job.Schedule())

	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, refresher.calls)

	refresher.err = errors.New("upbit down")
	assert.EqualError(t, job.Run(context.Background()), "upbit down")
	assert.Equal(t, 2, refresher.calls)
}
