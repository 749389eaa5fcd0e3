package room

import (
	"math/rand"
	"time"

	"github.com/pixil98/go-farm/internal/storage"
)

type ControllerOpt func(*Controller)

func WithPersister(p storage.Persister) ControllerOpt {
	return func(c *Controller) {
		c.persister = p
	}
}

func WithBroadcaster(b Broadcaster) ControllerOpt {
	return func(c *Controller) {
		c.out = b
	}
}

func WithGrantSink(g GrantSink) ControllerOpt {
	return func(c *Controller) {
		c.grants = g
	}
}

// WithRand sets the random source used by hazard steps.
func WithRand(r *rand.Rand) ControllerOpt {
	return func(c *Controller) {
		c.rng = r
	}
}

// WithClock replaces the time source used for heartbeat bookkeeping.
func WithClock(now func() time.Time) ControllerOpt {
	return func(c *Controller) {
		c.now = now
	}
}

func WithInboxSize(n int) ControllerOpt {
	return func(c *Controller) {
		c.inboxSize = n
	}
}
