package storage

import (
	"fmt"

	"github.com/pixil98/go-farm/internal/state"
)

// Snapshot is the durable subset of a room. Players, lamps and NPCs are
// rebuilt on startup and are never written.
type Snapshot struct {
	FarmPlots   []PlotRecord   `json:"farmPlots"`
	SeedPickups []PickupRecord `json:"seedPickups"`
	FruitTrees  []TreeRecord   `json:"fruitTrees"`
	GameTime    float64        `json:"gameTime"`
	LastSaved   int64          `json:"lastSaved"`
}

type PlotRecord struct {
	Index           int             `json:"index"`
	State           state.PlotState `json:"state"`
	Crop            string          `json:"crop"`
	GrowthTimer     int64           `json:"growthTimer"`
	Watered         bool            `json:"isWatered,omitempty"`
	LastWateredTime int64           `json:"lastWateredTime,omitempty"`
	Hazard          state.Hazard    `json:"hazard,omitempty"`
	HazardTimer     int64           `json:"hazardTimer,omitempty"`
}

type PickupRecord struct {
	Index        int   `json:"index"`
	Collected    bool  `json:"isCollected"`
	RespawnTimer int64 `json:"respawnTimer"`
}

type TreeRecord struct {
	Index      int   `json:"index"`
	HasFruit   bool  `json:"hasFruit"`
	FruitTimer int64 `json:"fruitTimer"`
}

// FromState captures the durable fields of rs.
func FromState(rs *state.RoomState) *Snapshot {
	s := &Snapshot{GameTime: rs.Clock().GameTime}

	for i := 0; i < rs.PlotCount(); i++ {
		p, _ := rs.Plot(i)
		s.FarmPlots = append(s.FarmPlots, PlotRecord{
			Index:           p.Index,
			State:           p.State,
			Crop:            p.Crop,
			GrowthTimer:     p.GrowthTimer,
			Watered:         p.Watered,
			LastWateredTime: p.LastWateredTime,
			Hazard:          p.Hazard,
			HazardTimer:     p.HazardTimer,
		})
	}
	for i := 0; i < rs.PickupCount(); i++ {
		pk, _ := rs.Pickup(i)
		s.SeedPickups = append(s.SeedPickups, PickupRecord{
			Index:        pk.Index,
			Collected:    pk.Collected,
			RespawnTimer: pk.RespawnTimer,
		})
	}
	for i := 0; i < rs.TreeCount(); i++ {
		t, _ := rs.Tree(i)
		s.FruitTrees = append(s.FruitTrees, TreeRecord{
			Index:      t.Index,
			HasFruit:   t.HasFruit,
			FruitTimer: t.FruitTimer,
		})
	}

	return s
}

// ApplyTo overlays the snapshot onto a room built from the current layout.
// Records for indices the layout no longer has are skipped. The room is
// validated afterwards and the error reports any broken invariant.
func (s *Snapshot) ApplyTo(rs *state.RoomState) error {
	for _, r := range s.FarmPlots {
		p, ok := rs.Plot(r.Index)
		if !ok {
			continue
		}
		p.State = r.State
		p.Crop = r.Crop
		p.GrowthTimer = r.GrowthTimer
		p.Watered = r.Watered
		p.LastWateredTime = r.LastWateredTime
		p.Hazard = r.Hazard
		if p.Hazard == "" {
			p.Hazard = state.HazardNone
		}
		p.HazardTimer = r.HazardTimer
		rs.SetPlot(p)
	}
	for _, r := range s.SeedPickups {
		pk, ok := rs.Pickup(r.Index)
		if !ok {
			continue
		}
		pk.Collected = r.Collected
		pk.RespawnTimer = r.RespawnTimer
		rs.SetPickup(pk)
	}
	for _, r := range s.FruitTrees {
		t, ok := rs.Tree(r.Index)
		if !ok {
			continue
		}
		t.HasFruit = r.HasFruit
		t.FruitTimer = r.FruitTimer
		rs.SetTree(t)
	}

	c := rs.Clock()
	c.GameTime = s.GameTime
	rs.SetClock(c)

	if err := rs.Validate(); err != nil {
		return fmt.Errorf("validating restored room: %w", err)
	}
	return nil
}
