package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Task is one unit of periodic housekeeping
type Task func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	task     Task
}

// Scheduler runs housekeeping tasks at fixed intervals until stopped
type Scheduler struct {
	jobs    []job
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	started bool
}

// New creates an empty scheduler
func New() *Scheduler {
	return &Scheduler{}
}

// Every registers task to run every interval. It must be called before Start.
func (s *Scheduler) Every(name string, interval time.Duration, task Task) error {
	if s.started {
		return fmt.Errorf("scheduler already started, cannot add task %s", name)
	}
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s for task %s", interval, name)
	}
	s.jobs = append(s.jobs, job{name: name, interval: interval, task: task})
	return nil
}

// Start launches every registered task. Tasks stop when ctx is done or Stop
// is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.started = true

	slog.Info("Starting scheduler", "tasks", len(s.jobs))
	for _, j := range s.jobs {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runInterval(ctx, j)
		}()
	}
}

// Stop cancels all tasks and waits for running ones to return
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	slog.Info("Stopping scheduler")
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) runInterval(ctx context.Context, j job) {
	slog.Info("Starting interval task", "task", j.name, "interval", j.interval)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			if err := j.task(ctx); err != nil {
				slog.Warn("Interval task failed", "task", j.name, "error", err)
				continue
			}
			slog.Debug("Interval task completed", "task", j.name, "duration_ms", time.Since(start).Milliseconds())
		case <-ctx.Done():
			return
		}
	}
}
