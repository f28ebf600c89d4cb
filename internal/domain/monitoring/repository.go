package monitoring

import "context"

// LogRepository persists monitoring outcomes.
type LogRepository interface {
	// RecordOutcome appends a log entry unless the same (employee, date,
	// outcome) was already recorded. Returns true when a new entry was
	// written, false on dedupe; notifications fire only on true.
	RecordOutcome(ctx context.Context, employeeID string, date string, outcome string) (bool, error)

	// BumpSummary increments the day's aggregate counter for an outcome
	BumpSummary(ctx context.Context, date string, outcome string) error

	// GetSummary reads the day's aggregate, nil when no outcomes yet
	GetSummary(ctx context.Context, date string) (*DailySummary, error)
}
