// Package cron runs periodic maintenance jobs: conversation retention
// and rate limiter housekeeping.
package cron

import "context"

// Job is a named unit of periodic work.
type Job interface {
	// Name identifies the job in logs and metrics. It must be unique
	// within a Scheduler.
	Name() string

	// Schedule is a 5-field cron expression or a descriptor ("@daily").
	Schedule() string

	// Run does one pass. ctx is cancelled when the scheduler stops.
	Run(ctx context.Context) error
}
