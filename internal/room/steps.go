package room

import (
	"context"
	"log/slog"
	"time"

	"github.com/pixil98/go-farm/internal/driver"
	"github.com/pixil98/go-farm/internal/storage"
)

const (
	TaskClock    = "clock"
	TaskGrowth   = "growth"
	TaskHazard   = "hazard"
	TaskRespawn  = "respawn"
	TaskNPC      = "npc"
	TaskSessions = "sessions"
	TaskAutosave = "autosave"
)

type stepFunc func(c *Controller, ctx context.Context, elapsed time.Duration)

var steps = map[string]stepFunc{
	TaskClock: func(c *Controller, _ context.Context, elapsed time.Duration) {
		c.rules.AdvanceClock(c.rs, elapsed)
	},
	TaskGrowth: func(c *Controller, _ context.Context, elapsed time.Duration) {
		c.rules.Grow(c.rs, elapsed)
	},
	TaskHazard: func(c *Controller, _ context.Context, elapsed time.Duration) {
		c.rules.SpreadHazards(c.rs, elapsed, c.rng)
	},
	TaskRespawn: func(c *Controller, _ context.Context, elapsed time.Duration) {
		c.rules.Respawn(c.rs, elapsed)
	},
	TaskNPC: func(c *Controller, _ context.Context, _ time.Duration) {
		c.rules.Patrol(c.rs)
	},
	TaskSessions: func(c *Controller, ctx context.Context, _ time.Duration) {
		c.sweepSessions(ctx)
	},
	TaskAutosave: func(c *Controller, ctx context.Context, _ time.Duration) {
		c.autosave(ctx)
	},
}

// Tasks returns the periodic room tasks. Each run posts a tick to the
// controller loop; the scheduler never touches room state itself.
func (c *Controller) Tasks() []driver.Task {
	intervals := map[string]time.Duration{
		TaskClock:    c.intervals.Clock,
		TaskGrowth:   c.intervals.Growth,
		TaskHazard:   c.intervals.Hazard,
		TaskRespawn:  c.intervals.Respawn,
		TaskNPC:      c.intervals.NPC,
		TaskSessions: c.intervals.Sessions,
		TaskAutosave: c.intervals.Autosave,
	}

	tasks := make([]driver.Task, 0, len(intervals))
	for name, interval := range intervals {
		tasks = append(tasks, driver.Task{
			Name:     name,
			Interval: interval,
			Run: func(ctx context.Context, elapsed time.Duration) error {
				return c.Tick(ctx, name, elapsed)
			},
		})
	}
	return tasks
}

// Tick queues one run of the named step with the given elapsed time.
func (c *Controller) Tick(ctx context.Context, task string, elapsed time.Duration) error {
	return c.post(ctx, message{kind: msgTick, task: task, elapsed: elapsed})
}

func (c *Controller) step(ctx context.Context, task string, elapsed time.Duration) {
	f, ok := steps[task]
	if !ok {
		slog.WarnContext(ctx, "unknown room task", "task", task)
		return
	}
	f(c, ctx, elapsed)
	c.publish(ctx)
}

func (c *Controller) autosave(ctx context.Context) {
	if c.saver == nil {
		return
	}
	if !c.saver.TrySave(ctx, storage.FromState(c.rs)) {
		slog.DebugContext(ctx, "autosave skipped, previous save still running")
	}
}
