package monitoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/domain/employee"
	"github.com/workpulse/attendance-backend-go/internal/domain/monitoring"
	"github.com/workpulse/attendance-backend-go/internal/domain/notification"
)

var testTimezone = time.FixedZone("WIB", 7*60*60)

type fakeAttendanceRepo struct {
	open    []attendance.Attendance
	listErr error
}

func (f *fakeAttendanceRepo) ListOpenByDate(_ context.Context, _ string) ([]attendance.Attendance, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.open, nil
}

func (f *fakeAttendanceRepo) Create(_ context.Context, _ attendance.Attendance) (attendance.Attendance, error) {
	panic("not used")
}

func (f *fakeAttendanceRepo) Close(_ context.Context, _ attendance.CloseParams) (attendance.Attendance, error) {
	panic("not used")
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(_ context.Context, _, _ string) (*attendance.Attendance, error) {
	panic("not used")
}

func (f *fakeAttendanceRepo) ListOpenBefore(_ context.Context, _ string) ([]attendance.Attendance, error) {
	panic("not used")
}

func (f *fakeAttendanceRepo) History(_ context.Context, _ string, _ attendance.HistoryFilter) ([]attendance.Attendance, int64, error) {
	panic("not used")
}

func (f *fakeAttendanceRepo) ListByEmployeeAndRange(_ context.Context, _ string, _, _ *string) ([]attendance.Attendance, error) {
	panic("not used")
}

type fakeLogRepo struct {
	mu       sync.Mutex
	outcomes map[string]bool
	bumps    map[string]int
	summary  *monitoring.DailySummary

	recordErrs map[string]error // employeeID -> forced RecordOutcome failure
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{
		outcomes:   make(map[string]bool),
		bumps:      make(map[string]int),
		recordErrs: make(map[string]error),
	}
}

func (f *fakeLogRepo) RecordOutcome(_ context.Context, employeeID, date, outcome string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.recordErrs[employeeID]; ok {
		return false, err
	}

	key := employeeID + "|" + date + "|" + outcome
	if f.outcomes[key] {
		return false, nil
	}
	f.outcomes[key] = true
	return true, nil
}

func (f *fakeLogRepo) BumpSummary(_ context.Context, date, outcome string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bumps[date+"|"+outcome]++
	return nil
}

func (f *fakeLogRepo) GetSummary(_ context.Context, _ string) (*monitoring.DailySummary, error) {
	return f.summary, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (f *fakeNotifier) Send(_ context.Context, msg notification.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

type fakeDirectory struct {
	managers []employee.Employee
}

func (f *fakeDirectory) GetByID(_ context.Context, id string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeDirectory) GetManagers(_ context.Context) ([]employee.Employee, error) {
	return f.managers, nil
}

func defaultSettings() monitoring.Settings {
	return monitoring.Settings{
		ExpectedCheckout:    "18:00",
		EscalationThreshold: 90 * time.Minute,
		NotifyRoleGroups:    []string{"manager"},
		Weekdays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday,
			time.Thursday, time.Friday, time.Saturday,
		},
	}
}

func openSessions(ids ...string) []attendance.Attendance {
	out := make([]attendance.Attendance, 0, len(ids))
	for i, id := range ids {
		out = append(out, attendance.Attendance{
			ID:         fmt.Sprintf("att-%d", i+1),
			EmployeeID: id,
			Date:       time.Date(2025, 3, 4, 0, 0, 0, 0, testTimezone),
			Status:     attendance.StatusCheckedIn,
		})
	}
	return out
}

func newTestMonitor(repo *fakeAttendanceRepo, logRepo *fakeLogRepo, notifier *fakeNotifier, at time.Time) *MonitorServiceImpl {
	directory := &fakeDirectory{managers: []employee.Employee{
		{ID: "mgr-1", FullName: "Dewi Lestari", Active: true},
	}}
	svc := NewMonitorService(repo, logRepo, directory, notifier, defaultSettings(), testTimezone)
	svc.clock = func() time.Time { return at }
	return svc
}

func TestRun_RemindsJustPastExpectedCheckout(t *testing.T) {
	t.Parallel()

	repo := &fakeAttendanceRepo{open: openSessions("emp-1", "emp-2")}
	logRepo := newFakeLogRepo()
	notifier := &fakeNotifier{}

	// Tuesday 18:30, half an hour past the expected 18:00.
	svc := newTestMonitor(repo, logRepo, notifier, time.Date(2025, 3, 4, 18, 30, 0, 0, testTimezone))

	result, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Reminded)
	assert.Equal(t, 0, result.Escalated)
	assert.Equal(t, 0, result.Failed)

	assert.True(t, logRepo.outcomes["emp-1|2025-03-04|reminded"])
	assert.True(t, logRepo.outcomes["emp-2|2025-03-04|reminded"])
	assert.Equal(t, 2, logRepo.bumps["2025-03-04|reminded"])

	// Reminders go to the employees only, no manager fan-out.
	require.Len(t, notifier.messages, 2)
	for _, msg := range notifier.messages {
		assert.NotEmpty(t, msg.RecipientID)
		assert.Empty(t, msg.RoleGroup)
	}
}

func TestRun_EscalatesPastThreshold(t *testing.T) {
	t.Parallel()

	repo := &fakeAttendanceRepo{open: openSessions("emp-1")}
	logRepo := newFakeLogRepo()
	notifier := &fakeNotifier{}

	// 20:00 is two hours past expected checkout, beyond the 90m threshold.
	svc := newTestMonitor(repo, logRepo, notifier, time.Date(2025, 3, 4, 20, 0, 0, 0, testTimezone))

	result, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Escalated)
	assert.Equal(t, 0, result.Reminded)
	assert.True(t, logRepo.outcomes["emp-1|2025-03-04|escalated"])

	// Employee notification plus one per resolved manager.
	require.Len(t, notifier.messages, 2)
	assert.Equal(t, "emp-1", notifier.messages[0].RecipientID)
	assert.Equal(t, "mgr-1", notifier.messages[1].RecipientID)
}

func TestRun_DefersBeforeExpectedCheckout(t *testing.T) {
	t.Parallel()

	repo := &fakeAttendanceRepo{open: openSessions("emp-1")}
	logRepo := newFakeLogRepo()
	notifier := &fakeNotifier{}

	svc := newTestMonitor(repo, logRepo, notifier, time.Date(2025, 3, 4, 17, 0, 0, 0, testTimezone))

	result, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Deferred)
	assert.Empty(t, notifier.messages)
	assert.Empty(t, logRepo.outcomes)
}

func TestRun_SkipsNonWorkingDays(t *testing.T) {
	t.Parallel()

	repo := &fakeAttendanceRepo{open: openSessions("emp-1")}
	logRepo := newFakeLogRepo()
	notifier := &fakeNotifier{}

	// Sunday is not in the configured weekdays.
	svc := newTestMonitor(repo, logRepo, notifier, time.Date(2025, 3, 2, 19, 0, 0, 0, testTimezone))

	result, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Empty(t, notifier.messages)
}

func TestRun_SecondPassDoesNotRenotify(t *testing.T) {
	t.Parallel()

	repo := &fakeAttendanceRepo{open: openSessions("emp-1")}
	logRepo := newFakeLogRepo()
	notifier := &fakeNotifier{}

	svc := newTestMonitor(repo, logRepo, notifier, time.Date(2025, 3, 4, 18, 30, 0, 0, testTimezone))

	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Reminded)
	assert.Equal(t, 1, result.Deferred)
	assert.Len(t, notifier.messages, 1)
	assert.Equal(t, 1, logRepo.bumps["2025-03-04|reminded"])
}

func TestRun_LaterPassEscalatesAfterReminder(t *testing.T) {
	t.Parallel()

	repo := &fakeAttendanceRepo{open: openSessions("emp-1")}
	logRepo := newFakeLogRepo()
	notifier := &fakeNotifier{}

	svc := newTestMonitor(repo, logRepo, notifier, time.Date(2025, 3, 4, 18, 30, 0, 0, testTimezone))
	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	// Re-triggered manually past the threshold; the reminder does not block
	// the distinct escalated outcome.
	svc.clock = func() time.Time { return time.Date(2025, 3, 4, 20, 0, 0, 0, testTimezone) }
	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Escalated)
	assert.True(t, logRepo.outcomes["emp-1|2025-03-04|reminded"])
	assert.True(t, logRepo.outcomes["emp-1|2025-03-04|escalated"])
}

func TestRun_FailureIsolation(t *testing.T) {
	t.Parallel()

	repo := &fakeAttendanceRepo{open: openSessions("emp-1", "emp-2", "emp-3")}
	logRepo := newFakeLogRepo()
	logRepo.recordErrs["emp-2"] = errors.New("connection reset")
	notifier := &fakeNotifier{}

	svc := newTestMonitor(repo, logRepo, notifier, time.Date(2025, 3, 4, 18, 30, 0, 0, testTimezone))

	result, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Reminded)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, notifier.messages, 2)
}

func TestRun_ListFailureAborts(t *testing.T) {
	t.Parallel()

	repo := &fakeAttendanceRepo{listErr: errors.New("database unreachable")}
	svc := newTestMonitor(repo, newFakeLogRepo(), &fakeNotifier{}, time.Date(2025, 3, 4, 18, 30, 0, 0, testTimezone))

	_, err := svc.Run(context.Background())
	assert.Error(t, err)
}

func TestSummary_ReturnsAggregates(t *testing.T) {
	t.Parallel()

	logRepo := newFakeLogRepo()
	logRepo.summary = &monitoring.DailySummary{
		Date:                time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		RemindedCount:       3,
		EscalatedCount:      1,
		AutoClockedOutCount: 2,
	}

	svc := newTestMonitor(&fakeAttendanceRepo{}, logRepo, &fakeNotifier{}, time.Now())

	resp, err := svc.Summary(context.Background(), "2025-03-04")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "2025-03-04", resp.Date)
	assert.Equal(t, 3, resp.RemindedCount)
	assert.Equal(t, 1, resp.EscalatedCount)
	assert.Equal(t, 2, resp.AutoClockedOutCount)
}

func TestSummary_NilWhenNoOutcomes(t *testing.T) {
	t.Parallel()

	svc := newTestMonitor(&fakeAttendanceRepo{}, newFakeLogRepo(), &fakeNotifier{}, time.Now())

	resp, err := svc.Summary(context.Background(), "2025-03-04")
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestSummary_RejectsMalformedDate(t *testing.T) {
	t.Parallel()

	svc := newTestMonitor(&fakeAttendanceRepo{}, newFakeLogRepo(), &fakeNotifier{}, time.Now())

	_, err := svc.Summary(context.Background(), "04-03-2025")
	assert.Error(t, err)
}
