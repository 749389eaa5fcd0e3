package driver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Task is a named periodic job. Run receives the real time elapsed since the
// previous run of the same task.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context, elapsed time.Duration) error
}

type entry struct {
	task   Task
	cancel context.CancelFunc
}

// Scheduler runs every task on its own ticker until the task is cancelled or
// the scheduler stops.
type Scheduler struct {
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	ctx     context.Context
	wg      sync.WaitGroup
}

func NewScheduler(tasks []Task, opts ...SchedulerOpt) *Scheduler {
	s := &Scheduler{
		now:     time.Now,
		entries: make(map[string]*entry, len(tasks)),
	}

	for _, opt := range opts {
		opt(s)
	}

	for _, t := range tasks {
		s.entries[t.Name] = &entry{task: t}
	}

	return s
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	for _, e := range s.entries {
		s.launch(e)
	}
	s.mu.Unlock()

	<-ctx.Done()
	s.wg.Wait()
	return nil
}

// launch must be called with mu held.
func (s *Scheduler) launch(e *entry) {
	if e.task.Interval <= 0 {
		slog.WarnContext(s.ctx, "task has no interval, not scheduling", "task", e.task.Name)
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	e.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx, e.task)
	}()
}

func (s *Scheduler) loop(ctx context.Context, t Task) {
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	last := s.now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.now()
			elapsed := now.Sub(last)
			last = now

			if err := t.Run(ctx, elapsed); err != nil {
				slog.WarnContext(ctx, "scheduled task failed", "task", t.Name, "error", err)
			}
		}
	}
}

// Cancel stops the named task. It reports whether the task was scheduled.
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[name]
	if !ok {
		return false
	}
	if e.cancel != nil {
		e.cancel()
	}
	delete(s.entries, name)
	return true
}

// Tick runs the named task once with the given elapsed time, outside of its
// ticker.
func (s *Scheduler) Tick(ctx context.Context, name string, elapsed time.Duration) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return e.task.Run(ctx, elapsed)
}

// Names lists the scheduled tasks in sorted order.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for n := range s.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
