package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrJobAlreadyRunning = errors.New("job is already running")
	ErrJobDisabled       = errors.New("job is disabled")
)

// JobStatus is the externally visible state of one registered job.
type JobStatus struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	Enabled   bool       `json:"enabled"`
	Running   bool       `json:"running"`
	RunCount  int        `json:"run_count"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	LastError *string    `json:"last_error,omitempty"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
}

// job is a registered handler plus its scheduling state. All fields are
// guarded by the scheduler's mutex; running doubles as the single-flight
// latch for both scheduled and manual executions.
type job struct {
	name     string
	spec     string
	schedule cron.Schedule
	fn       func(ctx context.Context) error

	enabled   bool
	running   bool
	runCount  int
	lastRunAt *time.Time
	lastErr   *string
	nextRunAt time.Time
}

// Scheduler runs named jobs on standard cron expressions. A constructed
// instance owns all of its state, so tests can run isolated schedulers
// side by side.
type Scheduler struct {
	mu     sync.Mutex
	jobs   map[string]*job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	tickInterval time.Duration
	now          func() time.Time
}

// NewScheduler creates a new cron scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:         make(map[string]*job),
		ctx:          ctx,
		cancel:       cancel,
		tickInterval: 15 * time.Second,
		now:          time.Now,
	}
}

// AddJob registers a job under a unique name with a standard cron expression.
func (s *Scheduler) AddJob(name string, spec string, fn func(ctx context.Context) error) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q for job %s: %w", spec, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s is already registered", name)
	}

	s.jobs[name] = &job{
		name:      name,
		spec:      spec,
		schedule:  schedule,
		fn:        fn,
		enabled:   true,
		nextRunAt: schedule.Next(s.now()),
	}

	slog.Info("Cron job registered", "name", name, "schedule", spec)
	return nil
}

// Start begins the scheduling loop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.loop()

	s.mu.Lock()
	count := len(s.jobs)
	s.mu.Unlock()
	slog.Info("Cron scheduler started", "job_count", count)
}

// Stop gracefully stops the scheduler and waits for in-flight jobs.
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.fireDue()
		}
	}
}

// fireDue launches every enabled job whose next run time has passed. A job
// still running from a previous fire is skipped, not queued; its next run
// time advances regardless so a slow run cannot pile up executions.
func (s *Scheduler) fireDue() {
	now := s.now()

	s.mu.Lock()
	var due []*job
	for _, j := range s.jobs {
		if !now.Before(j.nextRunAt) {
			j.nextRunAt = j.schedule.Next(now)
			if j.enabled && !j.running {
				j.running = true
				due = append(due, j)
			}
		}
	}
	s.mu.Unlock()

	for _, j := range due {
		s.wg.Add(1)
		go func(j *job) {
			defer s.wg.Done()
			s.execute(s.ctx, j)
		}(j)
	}
}

// execute runs a job whose running latch is already held and releases it.
func (s *Scheduler) execute(ctx context.Context, j *job) error {
	start := s.now()
	slog.Debug("Cron job starting", "name", j.name)

	err := j.fn(ctx)

	s.mu.Lock()
	j.running = false
	j.runCount++
	j.lastRunAt = &start
	if err != nil {
		msg := err.Error()
		j.lastErr = &msg
	} else {
		j.lastErr = nil
	}
	s.mu.Unlock()

	if err != nil {
		slog.Error("Cron job failed", "name", j.name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", j.name, "duration", time.Since(start))
	}
	return err
}

// Trigger runs a job immediately and synchronously, outside its schedule.
// Disabled jobs must be re-enabled first; a job already in flight is not
// run twice.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return ErrJobNotFound
	}
	if !j.enabled {
		s.mu.Unlock()
		return ErrJobDisabled
	}
	if j.running {
		s.mu.Unlock()
		return ErrJobAlreadyRunning
	}
	j.running = true
	s.mu.Unlock()

	slog.Info("Cron job triggered manually", "name", name)
	return s.execute(ctx, j)
}

// Enable marks a job eligible for scheduled and manual runs.
func (s *Scheduler) Enable(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return ErrJobNotFound
	}
	j.enabled = true
	j.nextRunAt = j.schedule.Next(s.now())

	slog.Info("Cron job enabled", "name", name)
	return nil
}

// Disable stops future runs of a job. An execution already in flight
// finishes normally.
func (s *Scheduler) Disable(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return ErrJobNotFound
	}
	j.enabled = false

	slog.Info("Cron job disabled", "name", name)
	return nil
}

// UpdateSchedule replaces a job's cron expression at runtime.
func (s *Scheduler) UpdateSchedule(name string, spec string) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return ErrJobNotFound
	}
	j.spec = spec
	j.schedule = schedule
	j.nextRunAt = schedule.Next(s.now())

	slog.Info("Cron job rescheduled", "name", name, "schedule", spec)
	return nil
}

// Status returns the state of one job.
func (s *Scheduler) Status(name string) (JobStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return JobStatus{}, ErrJobNotFound
	}
	return s.statusLocked(j), nil
}

// List returns the state of every registered job, sorted by name.
func (s *Scheduler) List() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		statuses = append(statuses, s.statusLocked(j))
	}
	sort.Slice(statuses, func(i, k int) bool { return statuses[i].Name < statuses[k].Name })
	return statuses
}

func (s *Scheduler) statusLocked(j *job) JobStatus {
	status := JobStatus{
		Name:      j.name,
		Schedule:  j.spec,
		Enabled:   j.enabled,
		Running:   j.running,
		RunCount:  j.runCount,
		LastRunAt: j.lastRunAt,
		LastError: j.lastErr,
	}
	if j.enabled {
		next := j.nextRunAt
		status.NextRunAt = &next
	}
	return status
}
