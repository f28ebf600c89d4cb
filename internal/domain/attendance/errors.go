package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Check-in / check-out conflicts: the normal outcome for the loser of a
	// racing mutation, not an exceptional condition.
	ErrAlreadyCheckedIn = errors.New("you have already checked in today")
	ErrNoActiveCheckIn  = errors.New("you have no active check-in today")

	ErrSundayBlocked = errors.New("attendance actions are not available on Sunday")

	ErrAttendanceNotFound = errors.New("attendance record not found")
)

// GeofenceViolationError carries the diagnostic payload so clients can show
// how far outside the fence the employee was.
type GeofenceViolationError struct {
	Distance   float64
	MaxAllowed float64
}

func (e *GeofenceViolationError) Error() string {
	return fmt.Sprintf("you are outside the allowed radius: %.0fm away, max %.0fm", e.Distance, e.MaxAllowed)
}
