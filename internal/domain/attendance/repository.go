package attendance

import (
	"context"
	"time"
)

// CloseParams describes the single permitted mutation of an open session.
// TotalHours is computed inside the conditional update from the row's own
// check_in_time, so racing closers cannot disagree with the stored value.
type CloseParams struct {
	EmployeeID        string
	Date              string // YYYY-MM-DD, company timezone
	CheckOutTime      time.Time
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	CheckOutLabel     *string
	AutoClosed        bool
}

// AttendanceRepository defines data access for attendance records.
//
// The two mutation methods are the sole enforcement of the state machine's
// invariants and must be atomic at the database boundary:
//
//   - Create relies on the partial unique index over open sessions and
//     returns ErrAlreadyCheckedIn when the insert is rejected. Callers never
//     pre-check for an existing row.
//   - Close is a single conditional update guarded by status = 'checked_in';
//     when no row is affected it returns ErrNoActiveCheckIn. Exactly one of
//     any number of racing closers wins.
type AttendanceRepository interface {
	// Create inserts a new checked-in record
	Create(ctx context.Context, att Attendance) (Attendance, error)

	// Close transitions the open session for (employee, date) to checked-out
	Close(ctx context.Context, params CloseParams) (Attendance, error)

	// GetByEmployeeAndDate retrieves the record for a specific day, nil when absent
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*Attendance, error)

	// ListOpenByDate lists open sessions for one calendar day (checkout monitor)
	ListOpenByDate(ctx context.Context, date string) ([]Attendance, error)

	// ListOpenBefore lists open sessions dated strictly before date (auto-clockout)
	ListOpenBefore(ctx context.Context, date string) ([]Attendance, error)

	// History retrieves an employee's records with pagination
	History(ctx context.Context, employeeID string, filter HistoryFilter) ([]Attendance, int64, error)

	// ListByEmployeeAndRange retrieves records for reporting, oldest first
	ListByEmployeeAndRange(ctx context.Context, employeeID string, startDate, endDate *string) ([]Attendance, error)
}
