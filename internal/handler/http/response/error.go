package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/domain/employee"
	"github.com/workpulse/attendance-backend-go/internal/domain/user"
	"github.com/workpulse/attendance-backend-go/internal/pkg/cron"
	"github.com/workpulse/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Geofence rejections carry the measured and allowed distances.
	var geofenceErr *attendance.GeofenceViolationError
	if errors.As(err, &geofenceErr) {
		ForbiddenWithDetails(w, geofenceErr.Error(), map[string]string{
			"distance_meters":    fmt.Sprintf("%.0f", geofenceErr.Distance),
			"max_allowed_meters": fmt.Sprintf("%.0f", geofenceErr.MaxAllowed),
		})
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in today")
	case errors.Is(err, attendance.ErrNoActiveCheckIn):
		Conflict(w, "No active check-in to close")
	case errors.Is(err, attendance.ErrSundayBlocked):
		Forbidden(w, "Attendance operations are not available on Sundays")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Authorization errors
	case errors.Is(err, user.ErrSelfServiceNotAllowed):
		Forbidden(w, "This role cannot perform attendance self-service")
	case errors.Is(err, user.ErrPermissionRequired):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, user.ErrUnknownRole):
		Forbidden(w, "Unknown role")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Scheduler errors
	case errors.Is(err, cron.ErrJobNotFound):
		NotFound(w, "Job not found")
	case errors.Is(err, cron.ErrJobAlreadyRunning):
		Conflict(w, "Job is already running")
	case errors.Is(err, cron.ErrJobDisabled):
		Conflict(w, "Job is disabled")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
