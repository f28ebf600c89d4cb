package monitoring

import "time"

const (
	OutcomeReminded       = "reminded"
	OutcomeEscalated      = "escalated"
	OutcomeAutoClockedOut = "auto_clocked_out"
)

// LogEntry records one monitoring outcome for an employee-day. The
// (employee, date, outcome) triple is unique, which is what makes re-running
// the monitor idempotent.
type LogEntry struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Outcome    string
	CreatedAt  time.Time
}

// DailySummary aggregates outcomes per calendar day for reporting.
type DailySummary struct {
	Date                time.Time
	RemindedCount       int
	EscalatedCount      int
	AutoClockedOutCount int
	UpdatedAt           time.Time
}

// Settings drive the checkout monitor and are externally configurable.
type Settings struct {
	ExpectedCheckout    string         // HH:MM local, e.g. "18:00"
	EscalationThreshold time.Duration  // elapsed past expected checkout before managers are notified
	NotifyRoleGroups    []string       // role groups receiving escalations
	Weekdays            []time.Weekday // days on which the monitor acts
}

// AppliesOn reports whether the monitor acts on the given weekday.
func (s Settings) AppliesOn(day time.Weekday) bool {
	for _, d := range s.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}
