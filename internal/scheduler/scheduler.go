package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Task is one unit of work in a cycle, e.g. a single saved search.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler owns the batch loop: each cycle runs every task sequentially,
// then the after-cycle hook, and repeats on an interval.
type Scheduler struct {
	tasks      []Task
	interval   time.Duration
	gap        time.Duration // pause between tasks within a cycle
	afterCycle func(ctx context.Context)
	logger     *slog.Logger
}

// NewScheduler creates a scheduler over tasks. gap is the pause between
// consecutive tasks in a cycle.
func NewScheduler(tasks []Task, interval, gap time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		tasks:    tasks,
		interval: interval,
		gap:      gap,
		logger:   logger,
	}
}

// SetAfterCycle installs fn to run once every task in a cycle has finished.
func (s *Scheduler) SetAfterCycle(fn func(ctx context.Context)) {
	s.afterCycle = fn
}

// Run starts the loop. It runs one immediate cycle, then ticks on the
// configured interval. It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"tasks", len(s.tasks),
	)

	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs a single cycle. A failing task is logged and the cycle moves on.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for i, t := range s.tasks {
		if ctx.Err() != nil {
			return
		}

		if err := t.Run(ctx); err != nil {
			s.logger.Error("task failed",
				"task", t.Name,
				"error", err,
			)
		}

		// Pause between tasks to be polite, except after the last one.
		if i < len(s.tasks)-1 && s.gap > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.gap):
			}
		}
	}

	if s.afterCycle != nil && ctx.Err() == nil {
		s.afterCycle(ctx)
	}
}
