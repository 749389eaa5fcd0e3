package bot

import (
	"context"
	"math/rand"
	"time"

	"github.com/pixil98/go-farm/internal/protocol"
	"github.com/pixil98/go-farm/internal/replica"
	"github.com/pixil98/go-farm/internal/state"
	"github.com/pixil98/go-farm/internal/tuning"
)

const (
	DefaultSpeed    = 120.0
	DefaultInterval = 100 * time.Millisecond

	// Lamps are wanted between dusk and dawn, in game minutes.
	dusk = 18 * 60
	dawn = 6 * 60
)

var DefaultCrops = []string{"carrot", "wheat", "pumpkin"}

// Bot plays a replica the way an idle player would: it walks from plot to
// plot and does whatever each one needs next. Between plots it picks up
// seeds, shakes trees and minds the lamps.
type Bot struct {
	r     *replica.Replica
	rng   *rand.Rand
	speed float64
	crops []string

	interval time.Duration
	target   int
}

func New(r *replica.Replica, opts ...BotOpt) *Bot {
	b := &Bot{
		r:        r,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		speed:    DefaultSpeed,
		crops:    DefaultCrops,
		interval: DefaultInterval,
		target:   -1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bot) Start(ctx context.Context) error {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			b.Step(now.Sub(last))
			last = now
		}
	}
}

// Step advances the bot by elapsed real time. While the replica is the
// authority the room simulation is advanced too.
func (b *Bot) Step(elapsed time.Duration) {
	b.r.Step(elapsed)

	v, ok := b.r.View()
	if !ok {
		return
	}
	self, ok := b.r.Self()
	if !ok {
		return
	}

	if b.target < 0 || b.target >= len(v.Plots) {
		if in, ok := b.errand(v); ok {
			b.r.Act(in)
		}
		b.target = b.pick(v)
		if b.target < 0 {
			return
		}
	}

	dest := tuning.PlotPosition(b.target)
	pos := self.Position()
	dist := pos.Distance(dest)
	stride := b.speed * elapsed.Seconds()

	if dist <= stride {
		b.r.Move(dest.X, dest.Y, 0, 0)
		if in, ok := Chore(v.Plots[b.target], b.crop()); ok {
			b.r.Act(in)
		}
		b.target = -1
		return
	}

	dx, dy := (dest.X-pos.X)/dist, (dest.Y-pos.Y)/dist
	b.r.Move(pos.X+dx*stride, pos.Y+dy*stride, dx*b.speed, dy*b.speed)
}

// pick chooses a random plot that has work to do, or -1.
func (b *Bot) pick(v state.View) int {
	var open []int
	for _, p := range v.Plots {
		if _, ok := Chore(p, ""); ok {
			open = append(open, p.Index)
		}
	}
	if len(open) == 0 {
		return -1
	}
	return open[b.rng.Intn(len(open))]
}

// errand finds one thing outside the plots worth doing.
func (b *Bot) errand(v state.View) (protocol.Intent, bool) {
	night := IsNight(v.Clock.GameTime)
	for _, l := range v.Lamps {
		if l.Lit != night {
			return protocol.Target(protocol.IntentToggleLamppost, l.Index), true
		}
	}
	for _, pk := range v.Pickups {
		if !pk.Collected {
			return protocol.Target(protocol.IntentCollectSeed, pk.Index), true
		}
	}
	for _, t := range v.Trees {
		if t.HasFruit {
			return protocol.Target(protocol.IntentHarvestFruit, t.Index), true
		}
	}
	return protocol.Intent{}, false
}

func (b *Bot) crop() string {
	if len(b.crops) == 0 {
		return DefaultCrops[0]
	}
	return b.crops[b.rng.Intn(len(b.crops))]
}

// Chore is the intent that moves a plot along its life cycle, if any.
// Plots that are simply growing need nothing.
func Chore(p state.Plot, crop string) (protocol.Intent, bool) {
	switch {
	case p.State == state.PlotDead || p.Hazard != state.HazardNone:
		return protocol.Target(protocol.IntentRemoveHazard, p.Index), true
	case p.State == state.PlotGrass:
		return protocol.Target(protocol.IntentHoePlot, p.Index), true
	case p.State == state.PlotTilled:
		return protocol.Plant(p.Index, crop), true
	case p.State.Growing() && !p.Watered:
		return protocol.Target(protocol.IntentWaterPlot, p.Index), true
	case p.State == state.PlotReady:
		return protocol.Target(protocol.IntentHarvestCrop, p.Index), true
	}
	return protocol.Intent{}, false
}

func IsNight(gameTime float64) bool {
	t := state.WrapGameTime(gameTime)
	return t >= dusk || t < dawn
}
