// Package scheduler refreshes dashboard panels on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jora/internal/common"
	"github.com/ternarybob/jora/internal/interfaces"
)

type jobEntry struct {
	name      string
	schedule  string
	handler   func(ctx context.Context) error
	cronID    cron.EntryID
	lastRun   *time.Time
	isRunning bool
	runs      int
	lastError string
}

// Service implements interfaces.SchedulerService. A job never overlaps with
// itself: a tick that arrives while the previous run is in progress is skipped.
type Service struct {
	cron    *cron.Cron
	logger  arbor.ILogger
	jobMu   sync.Mutex // protects jobs and running
	jobs    map[string]*jobEntry
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

var _ interfaces.SchedulerService = (*Service)(nil)

// NewService creates a new scheduler service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		cron:   cron.New(),
		logger: logger,
		jobs:   make(map[string]*jobEntry),
	}
}

// RegisterJob registers a named job on a cron schedule ("*/5 * * * *", "@every 1m")
func (s *Service) RegisterJob(name string, schedule string, handler func(ctx context.Context) error) error {
	if err := common.ValidateSchedule(schedule); err != nil {
		return fmt.Errorf("invalid schedule for %s: %w", name, err)
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if s.running {
		return fmt.Errorf("cannot register job %s: scheduler already started", name)
	}
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	entry := &jobEntry{
		name:     name,
		schedule: schedule,
		handler:  handler,
	}

	cronID, err := s.cron.AddFunc(schedule, func() {
		s.trigger(name)
	})
	if err != nil {
		return fmt.Errorf("failed to add job to cron: %w", err)
	}

	entry.cronID = cronID
	s.jobs[name] = entry

	s.logger.Debug().
		Str("job_name", name).
		Str("schedule", schedule).
		Msg("Job registered")

	return nil
}

// Start runs each registered job immediately and then on its schedule.
// Scheduling stops when ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.jobMu.Lock()
	if s.running {
		s.jobMu.Unlock()
		return fmt.Errorf("scheduler already started")
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	s.jobMu.Unlock()

	sort.Strings(names)
	for _, name := range names {
		s.trigger(name)
	}

	s.cron.Start()

	go func() {
		<-s.ctx.Done()
		s.Stop()
	}()

	s.logger.Info().Int("jobs", len(names)).Msg("Scheduler started")
	return nil
}

// Stop halts scheduling and waits for in-flight jobs
func (s *Service) Stop() {
	s.jobMu.Lock()
	if !s.running {
		s.jobMu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.jobMu.Unlock()

	cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()

	s.logger.Info().Msg("Scheduler stopped")
}

// IsRunning returns true if scheduler is active
func (s *Service) IsRunning() bool {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	return s.running
}

// GetJobStatus returns the status of a specific job
func (s *Service) GetJobStatus(name string) (*interfaces.JobStatus, error) {
	s.jobMu.Lock()
	entry, exists := s.jobs[name]
	if !exists {
		s.jobMu.Unlock()
		return nil, fmt.Errorf("job %s not found", name)
	}
	status := &interfaces.JobStatus{
		Name:      entry.name,
		Schedule:  entry.schedule,
		LastRun:   entry.lastRun,
		IsRunning: entry.isRunning,
		Runs:      entry.runs,
		LastError: entry.lastError,
	}
	cronID := entry.cronID
	s.jobMu.Unlock()

	if next := s.cron.Entry(cronID).Next; !next.IsZero() {
		status.NextRun = &next
	}
	return status, nil
}

// trigger starts a run of the job unless one is already in progress
func (s *Service) trigger(name string) {
	s.jobMu.Lock()
	entry, exists := s.jobs[name]
	if !exists || !s.running {
		s.jobMu.Unlock()
		return
	}
	if entry.isRunning {
		s.jobMu.Unlock()
		s.logger.Debug().Str("job_name", name).Msg("Previous run still in progress, skipping")
		return
	}
	entry.isRunning = true
	ctx := s.ctx
	handler := entry.handler
	s.wg.Add(1)
	s.jobMu.Unlock()

	go s.execute(ctx, entry, handler)
}

// execute runs one job with panic recovery and status tracking
func (s *Service) execute(ctx context.Context, entry *jobEntry, handler func(ctx context.Context) error) {
	defer s.wg.Done()

	start := time.Now()
	var err error

	func() {
		defer func() {
			if r := recover(); r != nil {
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				err = fmt.Errorf("panic: %v", r)
				s.logger.Error().
					Str("job_name", entry.name).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(buf[:n])).
					Msg("Recovered from panic in job")
			}
		}()
		err = handler(ctx)
	}()

	finished := time.Now()

	s.jobMu.Lock()
	entry.isRunning = false
	entry.lastRun = &finished
	entry.runs++
	if err != nil {
		entry.lastError = err.Error()
	} else {
		entry.lastError = ""
	}
	s.jobMu.Unlock()

	if err != nil {
		s.logger.Warn().
			Str("job_name", entry.name).
			Err(err).
			Dur("duration", finished.Sub(start)).
			Msg("Job failed")
		return
	}
	s.logger.Debug().
		Str("job_name", entry.name).
		Dur("duration", finished.Sub(start)).
		Msg("Job completed")
}
