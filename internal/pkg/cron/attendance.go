package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/domain/monitoring"
)

const (
	JobCheckoutMonitor = "checkout_monitor"
	JobAutoClockout    = "auto_clockout"
)

// AttendanceJobs bundles the scheduled attendance maintenance work.
type AttendanceJobs struct {
	attendanceSvc attendance.AttendanceService
	monitorSvc    monitoring.Service
}

func NewAttendanceJobs(attendanceSvc attendance.AttendanceService, monitorSvc monitoring.Service) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		monitorSvc:    monitorSvc,
	}
}

// RegisterJobs adds both jobs to the scheduler under their configured
// cron expressions.
func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, checkoutMonitorSpec, autoClockoutSpec string) error {
	if err := scheduler.AddJob(JobCheckoutMonitor, checkoutMonitorSpec, j.RunCheckoutMonitor); err != nil {
		return err
	}
	return scheduler.AddJob(JobAutoClockout, autoClockoutSpec, j.RunAutoClockout)
}

// RunCheckoutMonitor executes one checkout monitor pass.
func (j *AttendanceJobs) RunCheckoutMonitor(ctx context.Context) error {
	slog.Info("Cron: Starting checkout monitor job")

	result, err := j.monitorSvc.Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("Cron: Checkout monitor finished",
		"processed", result.Processed,
		"reminded", result.Reminded,
		"escalated", result.Escalated,
		"deferred", result.Deferred,
		"failed", result.Failed)
	return nil
}

// RunAutoClockout force-closes sessions left open on previous days.
func (j *AttendanceJobs) RunAutoClockout(ctx context.Context) error {
	slog.Info("Cron: Starting auto-clockout job")

	result, err := j.attendanceSvc.AutoClockout(ctx, time.Now())
	if err != nil {
		return err
	}

	slog.Info("Cron: Auto-clockout finished",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed)
	return nil
}
