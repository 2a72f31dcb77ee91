package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTask struct {
	name       string
	delay      time.Duration
	runs       atomic.Int64
	inFlight   atomic.Int64
	maxInFlight atomic.Int64
}

func (t *countingTask) Run(ctx context.Context) error {
	current := t.inFlight.Add(1)
	defer t.inFlight.Add(-1)
	for {
		max := t.maxInFlight.Load()
		if current <= max || t.maxInFlight.CompareAndSwap(max, current) {
			break
		}
	}
	if t.delay > 0 {
		time.Sleep(t.delay)
	}
	t.runs.Add(1)
	return nil
}

func (t *countingTask) Name() string { return t.name }

func TestIntervalNext(t *testing.T) {
	now := time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC)
	next := Interval{Every: 5 * time.Minute}.Next(now)
	assert.Equal(t, now.Add(5*time.Minute), next)
}

func TestDailyAtNextSameDay(t *testing.T) {
	now := time.Date(2026, time.August, 31, 8, 0, 0, 0, time.UTC)
	next := DailyAt{Hour: 9}.Next(now)
	assert.Equal(t, time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC), next)
}

func TestDailyAtNextRollsOver(t *testing.T) {
	now := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)
	next := DailyAt{Hour: 9}.Next(now)
	assert.Equal(t, time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC), next)
}

func TestDailyAtHonorsLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	require.NoError(t, err)

	// 11:00 UTC is 08:00 in Buenos Aires (UTC-3): a 09:00 local trigger is
	// still ahead today.
	now := time.Date(2026, time.August, 31, 11, 0, 0, 0, time.UTC)
	next := DailyAt{Hour: 9, Location: loc}.Next(now)
	assert.Equal(t, time.Date(2026, time.August, 31, 9, 0, 0, 0, loc), next)
	assert.Equal(t, time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC), next.UTC())
}

func TestSchedulerRequiresTasks(t *testing.T) {
	s := New(Options{}, zerolog.Nop())
	require.Error(t, s.Run(context.Background()))
}

func TestSchedulerFiresRepeatedly(t *testing.T) {
	task := &countingTask{name: "fast"}
	s := New(Options{}, zerolog.Nop())
	s.Add(Interval{Every: 10 * time.Millisecond}, task)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, task.runs.Load(), int64(2))
}

func TestSchedulerNeverOverlapsOneTask(t *testing.T) {
	task := &countingTask{name: "slow", delay: 30 * time.Millisecond}
	s := New(Options{}, zerolog.Nop())
	s.Add(Interval{Every: 5 * time.Millisecond}, task)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_ = s.Run(ctx)
	assert.GreaterOrEqual(t, task.runs.Load(), int64(2))
	assert.Equal(t, int64(1), task.maxInFlight.Load())
}

func TestSchedulerDrivesFamiliesIndependently(t *testing.T) {
	slow := &countingTask{name: "slow", delay: 150 * time.Millisecond}
	fast := &countingTask{name: "fast"}
	s := New(Options{}, zerolog.Nop())
	s.Add(Interval{Every: 10 * time.Millisecond}, slow)
	s.Add(Interval{Every: 10 * time.Millisecond}, fast)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	_ = s.Run(ctx)
	// The slow family must not hold back the fast one.
	assert.GreaterOrEqual(t, fast.runs.Load(), int64(5))
}

func TestSchedulerStartupDelay(t *testing.T) {
	task := &countingTask{name: "delayed"}
	s := New(Options{StartupDelay: 500 * time.Millisecond}, zerolog.Nop())
	s.Add(Interval{Every: 10 * time.Millisecond}, task)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, task.runs.Load())
}
