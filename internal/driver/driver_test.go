package driver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

// steppingClock advances by step on every read.
type steppingClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

func TestScheduler_Tick(t *testing.T) {
	tests := map[string]struct {
		name       string
		elapsed    time.Duration
		expElapsed time.Duration
		expErr     error
	}{
		"known task":   {name: "growth", elapsed: 1500 * time.Millisecond, expElapsed: 1500 * time.Millisecond},
		"zero elapsed": {name: "growth", elapsed: 0, expElapsed: 0},
		"unknown task": {name: "weather", elapsed: time.Second, expErr: ErrUnknownTask},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var got time.Duration
			s := NewScheduler([]Task{{
				Name:     "growth",
				Interval: time.Hour,
				Run: func(_ context.Context, elapsed time.Duration) error {
					got = elapsed
					return nil
				},
			}})

			err := s.Tick(context.Background(), tt.name, tt.elapsed)
			if tt.expErr != nil {
				if !errors.Is(err, tt.expErr) {
					t.Fatalf("expected %v, got %v", tt.expErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "elapsed", got, tt.expElapsed)
		})
	}
}

func TestScheduler_RunsTasksWithElapsedTime(t *testing.T) {
	clock := &steppingClock{t: time.Unix(0, 0), step: 250 * time.Millisecond}

	var runs atomic.Int32
	elapsed := make(chan time.Duration, 16)
	s := NewScheduler([]Task{{
		Name:     "clock",
		Interval: time.Millisecond,
		Run: func(_ context.Context, d time.Duration) error {
			if runs.Add(1) <= 3 {
				elapsed <- d
			}
			return nil
		},
	}}, WithClock(clock.Now))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	for i := 0; i < 3; i++ {
		select {
		case d := <-elapsed:
			testutil.AssertEqual(t, "elapsed", d, 250*time.Millisecond)
		case <-time.After(2 * time.Second):
			t.Fatal("task did not run")
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestScheduler_Cancel(t *testing.T) {
	var fast, slow atomic.Int32
	s := NewScheduler([]Task{
		{Name: "hazard", Interval: time.Millisecond, Run: func(context.Context, time.Duration) error { fast.Add(1); return nil }},
		{Name: "autosave", Interval: time.Millisecond, Run: func(context.Context, time.Duration) error { slow.Add(1); return nil }},
	})

	testutil.AssertEqual(t, "cancel unknown", s.Cancel("weather"), false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	deadline := time.After(2 * time.Second)
	for fast.Load() == 0 || slow.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("tasks did not start")
		case <-time.After(time.Millisecond):
		}
	}

	testutil.AssertEqual(t, "cancel autosave", s.Cancel("autosave"), true)
	testutil.AssertEqual(t, "names", len(s.Names()), 1)
	testutil.AssertEqual(t, "remaining", s.Names()[0], "hazard")

	// allow a tick already in flight to land
	time.Sleep(10 * time.Millisecond)
	stopped := slow.Load()
	before := fast.Load()
	time.Sleep(20 * time.Millisecond)

	testutil.AssertEqual(t, "autosave runs after cancel", slow.Load(), stopped)
	if fast.Load() <= before {
		t.Error("hazard task stopped running")
	}

	err := s.Tick(context.Background(), "autosave", time.Second)
	if !errors.Is(err, ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask after cancel, got %v", err)
	}

	cancel()
	<-done
}

func TestScheduler_TaskErrorKeepsRunning(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler([]Task{{
		Name:     "respawn",
		Interval: time.Millisecond,
		Run: func(context.Context, time.Duration) error {
			runs.Add(1)
			return errors.New("room stopped")
		},
	}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("task stopped after an error")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
