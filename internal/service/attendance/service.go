package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/domain/employee"
	"github.com/workpulse/attendance-backend-go/internal/domain/geofence"
	"github.com/workpulse/attendance-backend-go/internal/domain/monitoring"
	"github.com/workpulse/attendance-backend-go/internal/domain/notification"
	"github.com/workpulse/attendance-backend-go/internal/domain/user"
)

// onsiteRadiusMeters is the fixed threshold separating onsite from remote in
// reports.
const onsiteRadiusMeters = 100

// Policy carries the attendance rules that vary per deployment.
type Policy struct {
	Office        geofence.Point
	Timezone      *time.Location
	ExpectedStart string // HH:MM local, e.g. "08:35"
}

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	directory  employee.Directory
	monitorLog monitoring.LogRepository
	notifier   notification.Notifier
	policy     Policy

	clock func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	directory employee.Directory,
	monitorLog monitoring.LogRepository,
	notifier notification.Notifier,
	policy Policy,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		directory:            directory,
		monitorLog:           monitorLog,
		notifier:             notifier,
		policy:               policy,
		clock:                time.Now,
	}
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

func claimsFromContext(ctx context.Context) (employeeID string, role user.Role, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", "", fmt.Errorf("employee_id claim is missing or invalid")
	}

	roleStr, ok := claims["role"].(string)
	if !ok {
		return "", "", fmt.Errorf("role claim is missing or invalid")
	}
	role, ok = user.ParseRole(roleStr)
	if !ok {
		return "", "", user.ErrUnknownRole
	}

	return employeeID, role, nil
}

// expectedStartAt places the configured expected start time on the given day.
func (a *AttendanceServiceImpl) expectedStartAt(dayLocal time.Time) time.Time {
	start, err := time.Parse("15:04", a.policy.ExpectedStart)
	if err != nil {
		start, _ = time.Parse("15:04", "08:35")
	}
	return time.Date(
		dayLocal.Year(), dayLocal.Month(), dayLocal.Day(),
		start.Hour(), start.Minute(), 0, 0,
		a.policy.Timezone,
	)
}

// lateness computes the late flag and whole minutes past the expected start.
func (a *AttendanceServiceImpl) lateness(nowLocal time.Time) (bool, int) {
	expected := a.expectedStartAt(nowLocal)
	if !nowLocal.After(expected) {
		return false, 0
	}
	return true, int(math.Floor(nowLocal.Sub(expected).Minutes()))
}

// checkIn is the single check-in transition. Self-service validates the
// reported location against the geofence; on-behalf-of calls skip that (the
// caller is not physically the employee) but everything else, including the
// Sunday block and lateness, is identical.
func (a *AttendanceServiceImpl) checkIn(ctx context.Context, employeeID string, loc geofence.Point, label string, selfService bool) (attendance.AttendanceResponse, error) {
	nowUTC := a.clock().UTC()
	nowLocal := nowUTC.In(a.policy.Timezone)

	if nowLocal.Weekday() == time.Sunday {
		return attendance.AttendanceResponse{}, attendance.ErrSundayBlocked
	}

	distance := geofence.Distance(loc, a.policy.Office)
	if selfService {
		decision := geofence.Validate(loc, a.policy.Office, nowLocal.Weekday())
		if !decision.Allowed {
			maxAllowed := 0.0
			if decision.MaxAllowed != nil {
				maxAllowed = *decision.MaxAllowed
			}
			return attendance.AttendanceResponse{}, &attendance.GeofenceViolationError{
				Distance:   decision.Distance,
				MaxAllowed: maxAllowed,
			}
		}
		distance = decision.Distance
	}

	isLate, minutesLate := a.lateness(nowLocal)

	var labelPtr *string
	if label != "" {
		labelPtr = &label
	}

	data := attendance.Attendance{
		EmployeeID: employeeID,

		// Date is the working day in the company timezone, not UTC midnight.
		Date: time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, a.policy.Timezone),

		Status:      attendance.StatusCheckedIn,
		CheckInTime: nowUTC,

		CheckInLatitude:    loc.Latitude,
		CheckInLongitude:   loc.Longitude,
		CheckInLabel:       labelPtr,
		DistanceFromOffice: distance,

		IsLate:      isLate,
		MinutesLate: minutesLate,
	}

	// No existence pre-check: the insert itself is the invariant. A unique
	// violation comes back as ErrAlreadyCheckedIn.
	created, err := a.AttendanceRepository.Create(ctx, data)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return mapAttendanceToResponse(created), nil
}

// checkOut is the single check-out transition. The repository's conditional
// close decides the winner under races; losers surface ErrNoActiveCheckIn.
func (a *AttendanceServiceImpl) checkOut(ctx context.Context, employeeID string, loc geofence.Point, label string, selfService bool) (attendance.AttendanceResponse, error) {
	nowUTC := a.clock().UTC()
	nowLocal := nowUTC.In(a.policy.Timezone)

	if nowLocal.Weekday() == time.Sunday {
		return attendance.AttendanceResponse{}, attendance.ErrSundayBlocked
	}

	if selfService {
		decision := geofence.Validate(loc, a.policy.Office, nowLocal.Weekday())
		if !decision.Allowed {
			maxAllowed := 0.0
			if decision.MaxAllowed != nil {
				maxAllowed = *decision.MaxAllowed
			}
			return attendance.AttendanceResponse{}, &attendance.GeofenceViolationError{
				Distance:   decision.Distance,
				MaxAllowed: maxAllowed,
			}
		}
	}

	var labelPtr *string
	if label != "" {
		labelPtr = &label
	}

	closed, err := a.AttendanceRepository.Close(ctx, attendance.CloseParams{
		EmployeeID:        employeeID,
		Date:              nowLocal.Format("2006-01-02"),
		CheckOutTime:      nowUTC,
		CheckOutLatitude:  &loc.Latitude,
		CheckOutLongitude: &loc.Longitude,
		CheckOutLabel:     labelPtr,
		AutoClosed:        false,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrNoActiveCheckIn) {
			return attendance.AttendanceResponse{}, attendance.ErrNoActiveCheckIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to close attendance record: %w", err)
	}

	return mapAttendanceToResponse(closed), nil
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	employeeID, role, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if !user.HasPermission(role, user.PermissionAttendanceCheckSelf) {
		return attendance.AttendanceResponse{}, user.ErrSelfServiceNotAllowed
	}

	loc := geofence.Point{Latitude: req.Latitude, Longitude: req.Longitude}
	return a.checkIn(ctx, employeeID, loc, req.Label, true)
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	employeeID, role, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if !user.HasPermission(role, user.PermissionAttendanceCheckSelf) {
		return attendance.AttendanceResponse{}, user.ErrSelfServiceNotAllowed
	}

	loc := geofence.Point{Latitude: req.Latitude, Longitude: req.Longitude}
	return a.checkOut(ctx, employeeID, loc, req.Label, true)
}

// AdminCheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) AdminCheckIn(ctx context.Context, req attendance.AdminCheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	_, role, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if !user.HasPermission(role, user.PermissionAttendanceManage) {
		return attendance.AttendanceResponse{}, user.ErrPermissionRequired
	}

	if _, err := a.directory.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.AttendanceResponse{}, employee.ErrEmployeeNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to resolve target employee: %w", err)
	}

	loc := geofence.Point{Latitude: req.Latitude, Longitude: req.Longitude}
	return a.checkIn(ctx, req.EmployeeID, loc, req.Label, false)
}

// AdminCheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) AdminCheckOut(ctx context.Context, req attendance.AdminCheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	_, role, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if !user.HasPermission(role, user.PermissionAttendanceManage) {
		return attendance.AttendanceResponse{}, user.ErrPermissionRequired
	}

	if _, err := a.directory.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.AttendanceResponse{}, employee.ErrEmployeeNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to resolve target employee: %w", err)
	}

	loc := geofence.Point{Latitude: req.Latitude, Longitude: req.Longitude}
	return a.checkOut(ctx, req.EmployeeID, loc, req.Label, false)
}

// CurrentStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CurrentStatus(ctx context.Context) (*attendance.AttendanceResponse, error) {
	employeeID, _, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	today := a.clock().In(a.policy.Timezone).Format("2006-01-02")
	att, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if att == nil {
		return nil, nil
	}

	resp := mapAttendanceToResponse(*att)
	return &resp, nil
}

// History implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) History(ctx context.Context, filter attendance.HistoryFilter) (attendance.HistoryResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.HistoryResponse{}, err
	}

	employeeID, _, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.HistoryResponse{}, err
	}

	attendances, total, err := a.AttendanceRepository.History(ctx, employeeID, filter)
	if err != nil {
		return attendance.HistoryResponse{}, fmt.Errorf("failed to get attendance history: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, mapAttendanceToResponse(att))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.HistoryResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// Report implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Report(ctx context.Context, filter attendance.ReportFilter) ([]attendance.ReportRow, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	emp, err := a.directory.GetByID(ctx, filter.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to resolve employee for report: %w", err)
	}

	attendances, err := a.AttendanceRepository.ListByEmployeeAndRange(ctx, filter.EmployeeID, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances for report: %w", err)
	}

	rows := make([]attendance.ReportRow, 0, len(attendances))
	for _, att := range attendances {
		resp := mapAttendanceToResponse(att)
		resp.EmployeeName = &emp.FullName

		locationStatus := "remote"
		if att.DistanceFromOffice <= onsiteRadiusMeters {
			locationStatus = "onsite"
		}

		rows = append(rows, attendance.ReportRow{
			AttendanceResponse: resp,
			LocationStatus:     locationStatus,
		})
	}

	return rows, nil
}

// AutoClockout implements attendance.AttendanceService.
// Force-closes every session left open on a day before the cutoff's day.
// Each record is processed independently: an infrastructure failure is
// logged and counted, the pass continues. A session closed by a racing
// actor between the scan and the close is skipped, not re-closed.
func (a *AttendanceServiceImpl) AutoClockout(ctx context.Context, cutoff time.Time) (attendance.AutoClockoutResult, error) {
	today := cutoff.In(a.policy.Timezone).Format("2006-01-02")

	stale, err := a.AttendanceRepository.ListOpenBefore(ctx, today)
	if err != nil {
		return attendance.AutoClockoutResult{}, fmt.Errorf("failed to list stale open sessions: %w", err)
	}

	result := attendance.AutoClockoutResult{}
	for _, session := range stale {
		result.Processed++

		_, err := a.AttendanceRepository.Close(ctx, attendance.CloseParams{
			EmployeeID:   session.EmployeeID,
			Date:         session.Date.Format("2006-01-02"),
			CheckOutTime: cutoff.UTC(),
			AutoClosed:   true,
		})
		if err != nil {
			if errors.Is(err, attendance.ErrNoActiveCheckIn) {
				// Already closed by the employee or an admin. Nothing to do.
				result.Succeeded++
				continue
			}
			result.Failed++
			slog.Error("Auto-clockout: failed to close session",
				"employee_id", session.EmployeeID,
				"date", session.Date.Format("2006-01-02"),
				"error", err)
			continue
		}

		result.Succeeded++
		a.recordAutoClose(ctx, session)
	}

	slog.Info("Auto-clockout pass completed",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed)

	return result, nil
}

// recordAutoClose logs the monitoring outcome and notifies the employee.
// Both are best effort: the session is already closed and counted.
func (a *AttendanceServiceImpl) recordAutoClose(ctx context.Context, session attendance.Attendance) {
	date := session.Date.Format("2006-01-02")

	if a.monitorLog != nil {
		inserted, err := a.monitorLog.RecordOutcome(ctx, session.EmployeeID, date, monitoring.OutcomeAutoClockedOut)
		if err != nil {
			slog.Error("Auto-clockout: failed to record outcome",
				"employee_id", session.EmployeeID, "date", date, "error", err)
			return
		}
		if !inserted {
			return
		}
		if err := a.monitorLog.BumpSummary(ctx, date, monitoring.OutcomeAutoClockedOut); err != nil {
			slog.Error("Auto-clockout: failed to bump summary", "date", date, "error", err)
		}
	}

	if a.notifier != nil {
		_ = a.notifier.Send(ctx, notification.Message{
			RecipientID: session.EmployeeID,
			Title:       "Attendance Auto-Closed",
			Body:        fmt.Sprintf("Your attendance for %s was automatically closed", date),
			Data: map[string]interface{}{
				"attendance_id": session.ID,
				"date":          date,
			},
		})
	}
}

// mapAttendanceToResponse converts an Attendance entity to AttendanceResponse
func mapAttendanceToResponse(att attendance.Attendance) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:                 att.ID,
		EmployeeID:         att.EmployeeID,
		EmployeeName:       att.EmployeeName,
		Date:               att.Date.Format("2006-01-02"),
		Status:             att.Status,
		CheckInTime:        att.CheckInTime.Format("2006-01-02 15:04:05"),
		CheckOutTime:       timePtrToString(att.CheckOutTime),
		CheckInLatitude:    att.CheckInLatitude,
		CheckInLongitude:   att.CheckInLongitude,
		CheckInLabel:       att.CheckInLabel,
		CheckOutLatitude:   att.CheckOutLatitude,
		CheckOutLongitude:  att.CheckOutLongitude,
		CheckOutLabel:      att.CheckOutLabel,
		DistanceFromOffice: att.DistanceFromOffice,
		IsLate:             att.IsLate,
		MinutesLate:        att.MinutesLate,
		TotalHours:         att.TotalHours,
		AutoClosed:         att.AutoClosed,
		CreatedAt:          att.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:          att.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
