package sim

import (
	"math"
	"math/rand"
	"time"

	"github.com/pixil98/go-farm/internal/state"
)

// AdvanceClock moves the day clock forward by elapsed real time scaled by
// the clock's time speed.
func (r *Rules) AdvanceClock(rs *state.RoomState, elapsed time.Duration) {
	c := rs.Clock()
	if elapsed <= 0 || c.TimeSpeed == 0 {
		return
	}
	c.GameTime += c.TimeSpeed * elapsed.Seconds()
	rs.SetClock(c)
}

// Grow advances every healthy planted or growing plot. A plot moves at most
// one stage per call, so a single large step cannot skip the growing stage.
func (r *Rules) Grow(rs *state.RoomState, elapsed time.Duration) {
	ms := elapsed.Milliseconds()
	if ms <= 0 {
		return
	}

	for i := 0; i < rs.PlotCount(); i++ {
		p, _ := rs.Plot(i)
		if !p.State.Growing() || p.Hazard != state.HazardNone {
			continue
		}

		p.GrowthTimer += r.growthStep(p, ms)

		if p.Watered && p.GrowthTimer-p.LastWateredTime >= r.params.WaterDuration.Milliseconds() {
			p.Watered = false
		}

		switch {
		case p.State == state.PlotPlanted && p.GrowthTimer >= r.params.GrowingAfter.Milliseconds():
			p.State = state.PlotGrowing
		case p.State == state.PlotGrowing && p.GrowthTimer >= r.params.ReadyAfter.Milliseconds():
			p.State = state.PlotReady
			p.Watered = false
		}

		rs.SetPlot(p)
	}
}

// growthStep is how far ms of real time moves the plot's growth timer. Water
// that runs out partway through the step only speeds up the part before it
// ran out.
func (r *Rules) growthStep(p state.Plot, ms int64) int64 {
	if !p.Watered {
		return ms
	}
	mult := r.params.WateredMultiplier
	left := r.params.WaterDuration.Milliseconds() - (p.GrowthTimer - p.LastWateredTime)
	if left <= 0 {
		return ms
	}

	fast := int64(float64(ms) * mult)
	if fast <= left {
		return fast
	}
	wetMs := int64(float64(left) / mult)
	return left + (ms - wetMs)
}

// SpreadHazards rolls for new hazards on healthy growing plots and ages the
// hazards already present. A hazard left alone for HazardDeadAfter kills the crop.
func (r *Rules) SpreadHazards(rs *state.RoomState, elapsed time.Duration, rng *rand.Rand) {
	ms := elapsed.Milliseconds()
	if ms <= 0 {
		return
	}

	for i := 0; i < rs.PlotCount(); i++ {
		p, _ := rs.Plot(i)
		if !p.State.Growing() {
			continue
		}

		if p.Hazard == state.HazardNone {
			if rng.Float64() >= r.params.HazardChance {
				continue
			}
			p.Hazard = state.HazardWeeds
			if rng.Intn(2) == 1 {
				p.Hazard = state.HazardBugs
			}
			p.HazardTimer = 0
			rs.SetPlot(p)
			continue
		}

		p.HazardTimer += ms
		if p.HazardTimer >= r.params.HazardDeadAfter.Milliseconds() {
			p.State = state.PlotDead
			p.Crop = ""
			p.GrowthTimer = 0
			p.Watered = false
			p.Hazard = state.HazardNone
			p.HazardTimer = 0
		}
		rs.SetPlot(p)
	}
}

// Respawn counts down collected seed pickups and harvested trees.
func (r *Rules) Respawn(rs *state.RoomState, elapsed time.Duration) {
	ms := elapsed.Milliseconds()
	if ms <= 0 {
		return
	}

	for i := 0; i < rs.PickupCount(); i++ {
		pk, _ := rs.Pickup(i)
		if !pk.Collected {
			continue
		}
		pk.RespawnTimer -= ms
		if pk.RespawnTimer <= 0 {
			pk.Collected = false
			pk.RespawnTimer = 0
		}
		rs.SetPickup(pk)
	}

	for i := 0; i < rs.TreeCount(); i++ {
		t, _ := rs.Tree(i)
		if t.HasFruit {
			continue
		}
		t.FruitTimer -= ms
		if t.FruitTimer <= 0 {
			t.HasFruit = true
			t.FruitTimer = 0
		}
		rs.SetTree(t)
	}
}

// Patrol places every NPC according to the time of day. The result depends
// only on the clock, so every replica computes the same positions.
func (r *Rules) Patrol(rs *state.RoomState) {
	now := rs.Clock().GameTime
	for i := 0; i < rs.NPCCount(); i++ {
		n, _ := rs.NPC(i)
		pos, behavior := r.npcPose(n, now)
		if pos == n.Position() && behavior == n.Behavior {
			continue
		}
		n.X, n.Y, n.Behavior = pos.X, pos.Y, behavior
		rs.SetNPC(n)
	}
}

func (r *Rules) npcPose(n state.NPC, gameTime float64) (state.Point, state.Behavior) {
	p := r.params
	switch {
	case gameTime >= p.PatrolStart && gameTime < p.PatrolEnd:
		if len(n.Route) == 0 {
			return n.Home, state.BehaviorIdle
		}
		return routePoint(n.Route, gameTime-p.PatrolStart, p.SegmentTime), state.BehaviorPatrol
	case gameTime >= p.PatrolEnd && gameTime < p.IdleUntil:
		if len(n.Route) == 0 {
			return n.Home, state.BehaviorIdle
		}
		return routePoint(n.Route, p.PatrolEnd-p.PatrolStart, p.SegmentTime), state.BehaviorIdle
	default:
		return n.Home, state.BehaviorHome
	}
}

// routePoint walks a closed route for the given number of minutes.
func routePoint(route []state.Point, minutes, segment float64) state.Point {
	if len(route) == 1 || segment <= 0 {
		return route[0]
	}
	seg := minutes / segment
	whole := math.Floor(seg)
	alpha := seg - whole
	i := int(whole) % len(route)
	from, to := route[i], route[(i+1)%len(route)]
	return state.Point{
		X: from.X + (to.X-from.X)*alpha,
		Y: from.Y + (to.Y-from.Y)*alpha,
	}
}
