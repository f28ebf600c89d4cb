package cron

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopJob(_ context.Context) error { return nil }

func TestAddJob_RejectsInvalidExpression(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	err := s.AddJob("bad", "not a cron spec", noopJob)
	assert.Error(t, err)
}

func TestAddJob_RejectsDuplicateName(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	require.NoError(t, s.AddJob("job", "30 18 * * *", noopJob))
	assert.Error(t, s.AddJob("job", "5 0 * * *", noopJob))
}

func TestTrigger_RunsJobSynchronously(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewScheduler()
	require.NoError(t, s.AddJob("job", "30 18 * * *", func(_ context.Context) error {
		runs.Add(1)
		return nil
	}))

	require.NoError(t, s.Trigger(context.Background(), "job"))
	assert.Equal(t, int32(1), runs.Load())

	status, err := s.Status("job")
	require.NoError(t, err)
	assert.Equal(t, 1, status.RunCount)
	assert.NotNil(t, status.LastRunAt)
	assert.Nil(t, status.LastError)
}

func TestTrigger_UnknownJob(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	assert.ErrorIs(t, s.Trigger(context.Background(), "ghost"), ErrJobNotFound)
}

func TestTrigger_PropagatesJobError(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	jobErr := errors.New("pass failed")
	require.NoError(t, s.AddJob("job", "30 18 * * *", func(_ context.Context) error {
		return jobErr
	}))

	err := s.Trigger(context.Background(), "job")
	assert.ErrorIs(t, err, jobErr)

	status, _ := s.Status("job")
	require.NotNil(t, status.LastError)
	assert.Equal(t, "pass failed", *status.LastError)
}

func TestTrigger_SingleFlight(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})

	s := NewScheduler()
	require.NoError(t, s.AddJob("job", "30 18 * * *", func(_ context.Context) error {
		close(started)
		<-release
		return nil
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.Trigger(context.Background(), "job")
	}()

	<-started
	err := s.Trigger(context.Background(), "job")
	assert.ErrorIs(t, err, ErrJobAlreadyRunning)

	status, _ := s.Status("job")
	assert.True(t, status.Running)

	close(release)
	wg.Wait()

	status, _ = s.Status("job")
	assert.False(t, status.Running)
}

func TestDisable_BlocksTriggerUntilReenabled(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewScheduler()
	require.NoError(t, s.AddJob("job", "30 18 * * *", func(_ context.Context) error {
		runs.Add(1)
		return nil
	}))

	require.NoError(t, s.Disable("job"))
	assert.ErrorIs(t, s.Trigger(context.Background(), "job"), ErrJobDisabled)
	assert.Equal(t, int32(0), runs.Load())

	status, _ := s.Status("job")
	assert.False(t, status.Enabled)
	assert.Nil(t, status.NextRunAt)

	require.NoError(t, s.Enable("job"))
	require.NoError(t, s.Trigger(context.Background(), "job"))
	assert.Equal(t, int32(1), runs.Load())
}

func TestUpdateSchedule_MovesNextRun(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	fixed := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.AddJob("job", "30 18 * * *", noopJob))

	status, _ := s.Status("job")
	require.NotNil(t, status.NextRunAt)
	assert.Equal(t, time.Date(2025, 3, 4, 18, 30, 0, 0, time.UTC), *status.NextRunAt)

	require.NoError(t, s.UpdateSchedule("job", "5 0 * * *"))

	status, _ = s.Status("job")
	assert.Equal(t, "5 0 * * *", status.Schedule)
	require.NotNil(t, status.NextRunAt)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 5, 0, 0, time.UTC), *status.NextRunAt)
}

func TestUpdateSchedule_RejectsInvalidExpression(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	require.NoError(t, s.AddJob("job", "30 18 * * *", noopJob))
	assert.Error(t, s.UpdateSchedule("job", "every day at noon"))
}

func TestList_SortedByName(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	require.NoError(t, s.AddJob("checkout_monitor", "30 18 * * *", noopJob))
	require.NoError(t, s.AddJob("auto_clockout", "5 0 * * *", noopJob))

	statuses := s.List()
	require.Len(t, statuses, 2)
	assert.Equal(t, "auto_clockout", statuses[0].Name)
	assert.Equal(t, "checkout_monitor", statuses[1].Name)
}

func TestScheduler_FiresDueJobs(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	now := time.Date(2025, 3, 4, 18, 29, 59, 0, time.UTC)

	var runs atomic.Int32
	s := NewScheduler()
	s.tickInterval = 5 * time.Millisecond
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	require.NoError(t, s.AddJob("job", "30 18 * * *", func(_ context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start()
	defer s.Stop()

	// Not yet due.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())

	mu.Lock()
	now = now.Add(2 * time.Second) // past 18:30
	mu.Unlock()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	// The next run is tomorrow; no double fire.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_DisabledJobDoesNotFire(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	now := time.Date(2025, 3, 4, 18, 29, 59, 0, time.UTC)

	var runs atomic.Int32
	s := NewScheduler()
	s.tickInterval = 5 * time.Millisecond
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	require.NoError(t, s.AddJob("job", "30 18 * * *", func(_ context.Context) error {
		runs.Add(1)
		return nil
	}))
	require.NoError(t, s.Disable("job"))

	s.Start()
	defer s.Stop()

	mu.Lock()
	now = now.Add(2 * time.Second)
	mu.Unlock()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}
