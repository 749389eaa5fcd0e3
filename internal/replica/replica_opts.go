package replica

import (
	"math/rand"
	"time"

	"github.com/pixil98/go-farm/internal/state"
)

type ReplicaOpt func(*Replica)

// WithSnapTolerance sets how far the prediction may drift from the server
// before it is corrected.
func WithSnapTolerance(d float64) ReplicaOpt {
	return func(r *Replica) {
		r.snapTolerance = d
	}
}

func WithRenderDelay(d time.Duration) ReplicaOpt {
	return func(r *Replica) {
		r.renderDelay = d
	}
}

func WithOutboxLimit(n int) ReplicaOpt {
	return func(r *Replica) {
		r.outboxLimit = n
	}
}

func WithClock(now func() time.Time) ReplicaOpt {
	return func(r *Replica) {
		r.now = now
	}
}

func WithRand(rng *rand.Rand) ReplicaOpt {
	return func(r *Replica) {
		r.rng = rng
	}
}

// WithLayout lets the replica start a room of its own when it loses the
// server before the first sync.
func WithLayout(l state.Layout) ReplicaOpt {
	return func(r *Replica) {
		r.layout = &l
	}
}
