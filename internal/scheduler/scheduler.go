package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Task is one schedulable monitoring unit.
type Task interface {
	Run(ctx context.Context) error
	Name() string
}

// Trigger computes successive firing instants for one task.
type Trigger interface {
	Next(now time.Time) time.Time
}

// Interval fires every fixed duration, counted from the previous firing.
type Interval struct {
	Every time.Duration
}

// Next implements Trigger.
func (i Interval) Next(now time.Time) time.Time {
	return now.Add(i.Every)
}

// DailyAt fires once per day at a wall-clock time in a named location.
type DailyAt struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// Next implements Trigger. It returns today's instant when that is still
// ahead in the configured location, otherwise tomorrow's.
func (d DailyAt) Next(now time.Time) time.Time {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.Hour, d.Minute, 0, 0, loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Options tune scheduler behaviour.
type Options struct {
	StartupDelay time.Duration
}

type entry struct {
	trigger Trigger
	task    Task
}

// Scheduler drives registered tasks on independent timelines: one goroutine
// per task, so a slow fetch in one family never delays another family's
// cadence. Within a task, invocations are strictly sequential because the
// next timer is armed only after Run returns.
type Scheduler struct {
	opts    Options
	logger  zerolog.Logger
	entries []entry
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Add registers a task under a trigger. Not safe to call after Run.
func (s *Scheduler) Add(trigger Trigger, task Task) {
	s.entries = append(s.entries, entry{trigger: trigger, task: task})
}

// Run blocks until ctx is cancelled, then waits for in-flight tasks.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.entries) == 0 {
		return errors.New("no tasks registered")
	}

	if s.opts.StartupDelay > 0 {
		timer := time.NewTimer(s.opts.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	var wg sync.WaitGroup
	for _, e := range s.entries {
		wg.Add(1)
		go func(e entry) {
			defer wg.Done()
			s.runEntry(ctx, e)
		}(e)
	}
	wg.Wait()
	return ctx.Err()
}

func (s *Scheduler) runEntry(ctx context.Context, e entry) {
	logger := s.logger.With().Str("task", e.task.Name()).Logger()

	next := e.trigger.Next(time.Now())
	for {
		timer := time.NewTimer(time.Until(next))
		logger.Debug().Time("next_fire", next).Msg("waiting for next fire")

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			timer.Stop()
		}

		logger.Info().Time("fire", next).Msg("executing scheduled task")
		if err := e.task.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("task execution failed")
		}

		next = e.trigger.Next(time.Now())
	}
}
