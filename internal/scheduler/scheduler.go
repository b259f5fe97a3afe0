package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/finbot/pkg/logger"
)

// defaultJobTimeout bounds a single job run
const defaultJobTimeout = 30 * time.Second

type entry struct {
	job     Job
	id      cron.EntryID
	history *JobHistory
}

// Scheduler manages scheduled jobs
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron       *cron.Cron
	logger     *logger.Logger
	entries    map[string]*entry
	jobTimeout time.Duration
	mu         sync.RWMutex
}

// New creates a new scheduler. Overlapping runs of the same job are skipped.
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger:     log.WithField("component", "scheduler"),
		entries:    make(map[string]*entry),
		jobTimeout: defaultJobTimeout,
	}
}

// WithJobTimeout overrides the per-run timeout
func (s *Scheduler) WithJobTimeout(d time.Duration) *Scheduler {
	if d > 0 {
		s.jobTimeout = d
	}
	return s
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobName := job.Name()
	if _, exists := s.entries[jobName]; exists {
		return fmt.Errorf("job %s already exists", jobName)
	}

	id, err := s.cron.AddFunc(job.Schedule(), func() {
		_ = s.runJob(context.Background(), job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", jobName, err)
	}

	s.entries[jobName] = &entry{job: job, id: id, history: &JobHistory{}}

	s.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// RemoveJob unschedules a job and drops its history
func (s *Scheduler) RemoveJob(jobName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[jobName]
	if !exists {
		return fmt.Errorf("job %s not found", jobName)
	}

	s.cron.Remove(e.id)
	delete(s.entries, jobName)
	s.logger.WithField("job", jobName).Info("Job removed from scheduler")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunJob runs a job immediately and waits for it to finish
func (s *Scheduler) RunJob(ctx context.Context, jobName string) error {
	s.mu.RLock()
	e, exists := s.entries[jobName]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", jobName)
	}

	return s.runJob(ctx, e.job)
}

// runJob executes a job once and records the result
func (s *Scheduler) runJob(ctx context.Context, job Job) error {
	jobName := job.Name()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	err := job.Run(ctx)
	duration := time.Since(start)

	result := JobResult{
		JobName:   jobName,
		StartTime: start,
		Duration:  duration,
		Success:   err == nil,
	}
	if err != nil {
		result.Error = err.Error()
	}

	s.mu.Lock()
	if e, exists := s.entries[jobName]; exists {
		e.history.AddResult(result)
	}
	s.mu.Unlock()

	log := s.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"duration": duration,
	})
	if err != nil {
		log.WithError(err).Error("Job failed")
		return err
	}
	log.Debug("Job completed")

	return nil
}

// GetAllJobs returns all registered job names
func (s *Scheduler) GetAllJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]string, 0, len(s.entries))
	for jobName := range s.entries {
		jobs = append(jobs, jobName)
	}
	return jobs
}

// GetJobStats returns statistics for all jobs
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats, len(s.entries))
	for jobName, e := range s.entries {
		h := e.history
		st := JobStats{
			JobName:      jobName,
			Schedule:     e.job.Schedule(),
			TotalRuns:    len(h.Results),
			FailureCount: h.FailureCount(),
			SuccessRate:  h.SuccessRate(),
		}
		st.SuccessCount = st.TotalRuns - st.FailureCount

		if last, ok := h.Last(); ok {
			st.LastRun = timePtr(last.StartTime)
			st.LastError = last.Error
		}
		if r, ok := h.LastWhere(true); ok {
			st.LastSuccess = timePtr(r.StartTime)
		}
		if r, ok := h.LastWhere(false); ok {
			st.LastFailure = timePtr(r.StartTime)
		}
		if next := s.cron.Entry(e.id).Next; !next.IsZero() {
			st.NextRun = timePtr(next)
		}

		stats[jobName] = st
	}

	return stats
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// JobStats represents statistics for a job
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	NextRun      *time.Time `json:"next_run,omitempty"`
}
