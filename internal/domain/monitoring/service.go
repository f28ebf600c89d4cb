package monitoring

import "context"

// Service is the checkout monitor: a scheduled reconciliation pass over
// today's open sessions that reminds, escalates, or leaves records for the
// auto-clockout job.
type Service interface {
	// Run executes one monitor pass. Idempotent per day: outcomes already
	// recorded for an employee-day are not re-notified.
	Run(ctx context.Context) (RunResult, error)

	// Summary returns the day's aggregate outcome counts, nil when none
	Summary(ctx context.Context, date string) (*SummaryResponse, error)
}
