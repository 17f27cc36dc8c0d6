package interfaces

import (
	"context"
	"time"
)

// JobStatus represents the current status of a refresh job
type JobStatus struct {
	Name      string
	Schedule  string
	LastRun   *time.Time
	NextRun   *time.Time
	IsRunning bool
	Runs      int
	LastError string
}

// SchedulerService runs named refresh jobs on cron schedules
type SchedulerService interface {
	// RegisterJob registers a job; it must be called before Start
	RegisterJob(name string, schedule string, handler func(ctx context.Context) error) error

	// Start runs every job once, then on schedule until ctx is cancelled or Stop is called
	Start(ctx context.Context) error

	// Stop halts scheduling and waits for running jobs to finish
	Stop()

	// IsRunning returns true if scheduler is active
	IsRunning() bool

	// GetJobStatus returns the status of a specific job
	GetJobStatus(name string) (*JobStatus, error)
}
