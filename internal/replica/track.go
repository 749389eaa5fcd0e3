package replica

import (
	"time"

	"github.com/pixil98/go-farm/internal/state"
)

type sample struct {
	pos state.Point
	at  time.Time
}

// track keeps the last two authoritative samples of a remote entity.
type track struct {
	prev, last sample
}

func newTrack(p state.Point, at time.Time) *track {
	s := sample{pos: p, at: at}
	return &track{prev: s, last: s}
}

func (t *track) push(p state.Point, at time.Time) {
	t.prev = t.last
	t.last = sample{pos: p, at: at}
}

// at interpolates linearly between the two samples, clamped to the segment.
func (t *track) at(when time.Time) state.Point {
	span := t.last.at.Sub(t.prev.at)
	if span <= 0 || !when.Before(t.last.at) {
		return t.last.pos
	}
	if !when.After(t.prev.at) {
		return t.prev.pos
	}

	f := float64(when.Sub(t.prev.at)) / float64(span)
	return state.Point{
		X: t.prev.pos.X + (t.last.pos.X-t.prev.pos.X)*f,
		Y: t.prev.pos.Y + (t.last.pos.Y-t.prev.pos.Y)*f,
	}
}
