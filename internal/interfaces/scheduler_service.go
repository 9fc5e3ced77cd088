package interfaces

import "time"

// JobStatus represents the current status of a scheduled job
type JobStatus struct {
	Name        string
	Schedule    string
	Description string
	LastRun     *time.Time
	NextRun     *time.Time
	IsRunning   bool
	LastError   string
}

// SchedulerService manages cron-based background jobs
type SchedulerService interface {
	// RegisterJob registers a job under a unique name. Must be called
	// before Start.
	RegisterJob(name, schedule, description string, handler func() error) error

	// Start begins executing registered jobs on their schedules
	Start() error

	// Stop stops the scheduler and waits for running jobs to finish
	Stop() error

	// IsRunning returns true if the scheduler is active
	IsRunning() bool

	// GetJobStatus returns the status of a specific job
	GetJobStatus(name string) (*JobStatus, error)

	// GetAllJobStatuses returns all job statuses
	GetAllJobStatuses() map[string]*JobStatus
}
