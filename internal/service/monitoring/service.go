package monitoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/domain/employee"
	"github.com/workpulse/attendance-backend-go/internal/domain/monitoring"
	"github.com/workpulse/attendance-backend-go/internal/domain/notification"
	"github.com/workpulse/attendance-backend-go/internal/pkg/validator"
)

type MonitorServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	logRepo        monitoring.LogRepository
	directory      employee.Directory
	notifier       notification.Notifier
	settings       monitoring.Settings
	timezone       *time.Location

	clock func() time.Time
}

func NewMonitorService(
	attendanceRepo attendance.AttendanceRepository,
	logRepo monitoring.LogRepository,
	directory employee.Directory,
	notifier notification.Notifier,
	settings monitoring.Settings,
	timezone *time.Location,
) *MonitorServiceImpl {
	return &MonitorServiceImpl{
		attendanceRepo: attendanceRepo,
		logRepo:        logRepo,
		directory:      directory,
		notifier:       notifier,
		settings:       settings,
		timezone:       timezone,
		clock:          time.Now,
	}
}

// expectedCheckoutAt places the configured expected checkout on the given day.
func (m *MonitorServiceImpl) expectedCheckoutAt(dayLocal time.Time) time.Time {
	checkout, err := time.Parse("15:04", m.settings.ExpectedCheckout)
	if err != nil {
		checkout, _ = time.Parse("15:04", "18:00")
	}
	return time.Date(
		dayLocal.Year(), dayLocal.Month(), dayLocal.Day(),
		checkout.Hour(), checkout.Minute(), 0, 0,
		m.timezone,
	)
}

// Run implements monitoring.Service.
// Scans today's open sessions and classifies each by how far past the
// expected checkout the pass runs: reminded (just past, employee notified),
// escalated (past the escalation threshold, managers notified too), or
// deferred to the auto-clockout job. Failures are isolated per record.
func (m *MonitorServiceImpl) Run(ctx context.Context) (monitoring.RunResult, error) {
	nowLocal := m.clock().In(m.timezone)

	result := monitoring.RunResult{}

	if !m.settings.AppliesOn(nowLocal.Weekday()) {
		slog.Info("Checkout monitor: not applicable today", "weekday", nowLocal.Weekday().String())
		return result, nil
	}

	today := nowLocal.Format("2006-01-02")
	elapsed := nowLocal.Sub(m.expectedCheckoutAt(nowLocal))

	open, err := m.attendanceRepo.ListOpenByDate(ctx, today)
	if err != nil {
		return result, fmt.Errorf("failed to list open sessions: %w", err)
	}

	for _, session := range open {
		result.Processed++

		var outcome string
		switch {
		case elapsed <= 0:
			// Not yet past the expected checkout; nothing to flag.
			result.Deferred++
			continue
		case elapsed < m.settings.EscalationThreshold:
			outcome = monitoring.OutcomeReminded
		default:
			outcome = monitoring.OutcomeEscalated
		}

		inserted, err := m.logRepo.RecordOutcome(ctx, session.EmployeeID, today, outcome)
		if err != nil {
			result.Failed++
			slog.Error("Checkout monitor: failed to record outcome",
				"employee_id", session.EmployeeID, "outcome", outcome, "error", err)
			continue
		}
		if !inserted {
			// Outcome already handled on a previous pass; do not re-notify.
			result.Deferred++
			continue
		}

		if err := m.logRepo.BumpSummary(ctx, today, outcome); err != nil {
			slog.Error("Checkout monitor: failed to bump summary", "date", today, "error", err)
		}

		m.notify(ctx, session, outcome, today)

		switch outcome {
		case monitoring.OutcomeReminded:
			result.Reminded++
		case monitoring.OutcomeEscalated:
			result.Escalated++
		}
	}

	slog.Info("Checkout monitor pass completed",
		"processed", result.Processed,
		"reminded", result.Reminded,
		"escalated", result.Escalated,
		"deferred", result.Deferred,
		"failed", result.Failed)

	return result, nil
}

func (m *MonitorServiceImpl) notify(ctx context.Context, session attendance.Attendance, outcome string, date string) {
	if m.notifier == nil {
		return
	}

	_ = m.notifier.Send(ctx, notification.Message{
		RecipientID: session.EmployeeID,
		Title:       "Checkout Reminder",
		Body:        fmt.Sprintf("You have not checked out for %s yet", date),
		Data: map[string]interface{}{
			"attendance_id": session.ID,
			"date":          date,
			"outcome":       outcome,
		},
	})

	if outcome != monitoring.OutcomeEscalated {
		return
	}

	data := map[string]interface{}{
		"employee_id":   session.EmployeeID,
		"attendance_id": session.ID,
		"date":          date,
	}

	for _, group := range m.settings.NotifyRoleGroups {
		// Managers are resolved through the directory; any other group is
		// left to the delivery transport to fan out.
		if group != "manager" {
			_ = m.notifier.Send(ctx, notification.Message{
				RoleGroup: group,
				Title:     "Employee Missed Checkout",
				Body:      fmt.Sprintf("Employee %s has not checked out for %s", session.EmployeeID, date),
				Data:      data,
			})
			continue
		}

		managers, err := m.directory.GetManagers(ctx)
		if err != nil {
			slog.Error("Checkout monitor: failed to resolve managers", "error", err)
			continue
		}
		for _, manager := range managers {
			_ = m.notifier.Send(ctx, notification.Message{
				RecipientID: manager.ID,
				Title:       "Employee Missed Checkout",
				Body:        fmt.Sprintf("Employee %s has not checked out for %s", session.EmployeeID, date),
				Data:        data,
			})
		}
	}
}

// Summary implements monitoring.Service.
func (m *MonitorServiceImpl) Summary(ctx context.Context, date string) (*monitoring.SummaryResponse, error) {
	if _, ok := validator.IsValidDate(date); !ok {
		return nil, validator.ValidationErrors{{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		}}
	}

	summary, err := m.logRepo.GetSummary(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get monitoring summary: %w", err)
	}
	if summary == nil {
		return nil, nil
	}

	return &monitoring.SummaryResponse{
		Date:                summary.Date.Format("2006-01-02"),
		RemindedCount:       summary.RemindedCount,
		EscalatedCount:      summary.EscalatedCount,
		AutoClockedOutCount: summary.AutoClockedOutCount,
	}, nil
}
