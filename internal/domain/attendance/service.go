package attendance

import (
	"context"
	"time"
)

// AttendanceService is the state machine over daily sessions:
// NoRecord -> CheckedIn -> CheckedOut, terminal per date.
//
// Admin variants act on behalf of a target employee: the caller's own
// geofence is not validated, but the Sunday working-day restriction and the
// lateness computation apply exactly as they do for self-service.
type AttendanceService interface {
	// CheckIn processes a self-service check-in with geofence validation
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut processes a self-service check-out
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// AdminCheckIn records a check-in on behalf of a target employee
	AdminCheckIn(ctx context.Context, req AdminCheckInRequest) (AttendanceResponse, error)

	// AdminCheckOut records a check-out on behalf of a target employee
	AdminCheckOut(ctx context.Context, req AdminCheckOutRequest) (AttendanceResponse, error)

	// CurrentStatus returns today's record for the caller, nil when absent
	CurrentStatus(ctx context.Context) (*AttendanceResponse, error)

	// History returns the caller's paginated records
	History(ctx context.Context, filter HistoryFilter) (HistoryResponse, error)

	// Report returns flattened records with derived location status (privileged)
	Report(ctx context.Context, filter ReportFilter) ([]ReportRow, error)

	// AutoClockout force-closes sessions left open before the cutoff's day.
	// Invoked by the scheduler; failures are isolated per record.
	AutoClockout(ctx context.Context, cutoff time.Time) (AutoClockoutResult, error)
}
