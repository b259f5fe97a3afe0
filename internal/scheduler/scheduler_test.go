package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finbot/pkg/config"
	"github.com/wonny/finbot/pkg/logger"
)

type testJob struct {
	name     string
	schedule string
	err      error
	runs     int
	deadline bool
}

func (j *testJob) Name() string     { return j.name }
func (j *testJob) Schedule() string { return j.schedule }
func (j *testJob) Run(ctx context.Context) error {
	j.runs++
	_, j.deadline = ctx.Deadline()
	return j.err
}

func newTestScheduler() *Scheduler {
	return New(logger.New(&config.Config{Env: "development", LogLevel: "error"}))
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&testJob{name: "a", schedule: "0 */30 * * * *"}))
	assert.ElementsMatch(t, []string{"a"}, s.GetAllJobs())

	err := s.AddJob(&testJob{name: "a", schedule: "0 */30 * * * *"})
	assert.Error(t, err)

	err = s.AddJob(&testJob{name: "bad", schedule: "not a cron"})
	assert.Error(t, err)
	assert.ElementsMatch(t, []string{"a"}, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&testJob{name: "a", schedule: "@every 1h"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))
}

func TestRunJob_RecordsHistoryWithoutRetry(t *testing.T) {
	s := newTestScheduler()
	job := &testJob{name: "refresh", schedule: "@every 1h", err: errors.New("down")}
	require.NoError(t, s.AddJob(job))

	err := s.RunJob(context.Background(), "refresh")
	assert.EqualError(t, err, "down")
	assert.Equal(t, 1, job.runs)
	assert.True(t, job.deadline)

	job.err = nil
	require.NoError(t, s.RunJob(context.Background(), "refresh"))

	st := s.GetJobStats()["refresh"]
	assert.Equal(t, "@every 1h", st.Schedule)
	assert.Equal(t, 2, st.TotalRuns)
	assert.Equal(t, 1, st.SuccessCount)
	assert.Equal(t, 1, st.FailureCount)
	assert.InDelta(t, 0.5, st.SuccessRate, 0.0001)
	assert.NotNil(t, st.LastRun)
	assert.NotNil(t, st.LastSuccess)
	assert.NotNil(t, st.LastFailure)
	assert.Empty(t, st.LastError)

	assert.Error(t, s.RunJob(context.Background(), "missing"))
}

func TestGetJobStats_NextRun(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&testJob{name: "a", schedule: "@every 1h"}))

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return s.GetJobStats()["a"].NextRun != nil
	}, time.Second, 10*time.Millisecond)
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	_, ok := h.Last()
	assert.False(t, ok)
	assert.Equal(t, 0.0, h.SuccessRate())

	for i := 0; i < maxHistory+10; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}
	assert.Len(t, h.Results, maxHistory)
	assert.Equal(t, maxHistory/2, h.FailureCount())

	last, ok := h.Last()
	require.True(t, ok)
	assert.False(t, last.Success)

	_, ok = h.LastWhere(true)
	assert.True(t, ok)
}
