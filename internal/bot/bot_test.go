package bot

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/pixil98/go-farm/internal/protocol"
	"github.com/pixil98/go-farm/internal/replica"
	"github.com/pixil98/go-farm/internal/sim"
	"github.com/pixil98/go-farm/internal/state"
	"github.com/pixil98/go-farm/internal/tuning"
	"github.com/pixil98/go-testutil"
)

func TestChore(t *testing.T) {
	tests := map[string]struct {
		plot   state.Plot
		exp    protocol.Intent
		expHas bool
	}{
		"grass is hoed": {
			plot:   state.Plot{Index: 1, State: state.PlotGrass, Hazard: state.HazardNone},
			exp:    protocol.Target(protocol.IntentHoePlot, 1),
			expHas: true,
		},
		"tilled is planted": {
			plot:   state.Plot{Index: 2, State: state.PlotTilled, Hazard: state.HazardNone},
			exp:    protocol.Plant(2, "wheat"),
			expHas: true,
		},
		"dry seedling is watered": {
			plot:   state.Plot{Index: 3, State: state.PlotPlanted, Crop: "wheat", Hazard: state.HazardNone},
			exp:    protocol.Target(protocol.IntentWaterPlot, 3),
			expHas: true,
		},
		"watered crop is left alone": {
			plot: state.Plot{Index: 3, State: state.PlotGrowing, Crop: "wheat", Watered: true, Hazard: state.HazardNone},
		},
		"hazard comes first": {
			plot:   state.Plot{Index: 4, State: state.PlotGrowing, Crop: "wheat", Hazard: state.HazardWeeds},
			exp:    protocol.Target(protocol.IntentRemoveHazard, 4),
			expHas: true,
		},
		"dead is cleared": {
			plot:   state.Plot{Index: 5, State: state.PlotDead, Crop: "wheat", Hazard: state.HazardNone},
			exp:    protocol.Target(protocol.IntentRemoveHazard, 5),
			expHas: true,
		},
		"ready is harvested": {
			plot:   state.Plot{Index: 6, State: state.PlotReady, Crop: "wheat", Hazard: state.HazardNone},
			exp:    protocol.Target(protocol.IntentHarvestCrop, 6),
			expHas: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := Chore(tt.plot, "wheat")
			testutil.AssertEqual(t, "has chore", ok, tt.expHas)
			if ok && !reflect.DeepEqual(got, tt.exp) {
				t.Errorf("got %+v, want %+v", got, tt.exp)
			}
		})
	}
}

func TestIsNight(t *testing.T) {
	tests := map[string]struct {
		gameTime float64
		exp      bool
	}{
		"morning":      {gameTime: 480, exp: false},
		"dusk":         {gameTime: 1080, exp: true},
		"midnight":     {gameTime: 0, exp: true},
		"before dawn":  {gameTime: 359, exp: true},
		"dawn":         {gameTime: 360, exp: false},
		"next evening": {gameTime: 1440 + 1200, exp: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "night", IsNight(tt.gameTime), tt.exp)
		})
	}
}

func localReplica() *replica.Replica {
	params := sim.DefaultParams()
	params.HazardChance = 0
	r := replica.New(sim.NewRules(params), replica.Identity{Name: "Bot"},
		replica.WithLayout(tuning.Default().Layout()),
		replica.WithRand(rand.New(rand.NewSource(1))),
	)
	r.Disconnected()
	return r
}

func TestBot_TendsFarm(t *testing.T) {
	r := localReplica()
	b := New(r, WithSpeed(1e6), WithRand(rand.New(rand.NewSource(7))))

	for i := 0; i < 200; i++ {
		b.Step(time.Millisecond)
	}

	v, ok := r.View()
	if !ok {
		t.Fatal("expected a local room")
	}
	for _, p := range v.Plots {
		testutil.AssertEqual(t, "plot state", p.State, state.PlotPlanted)
		testutil.AssertEqual(t, "watered", p.Watered, true)
	}
	for _, pk := range v.Pickups {
		testutil.AssertEqual(t, "collected", pk.Collected, true)
	}
	for _, tr := range v.Trees {
		testutil.AssertEqual(t, "picked", tr.HasFruit, false)
	}
}

func TestBot_Walks(t *testing.T) {
	r := localReplica()
	b := New(r, WithSpeed(100), WithRand(rand.New(rand.NewSource(3))))

	start, _ := r.Self()
	b.Step(100 * time.Millisecond)
	moved, _ := r.Self()

	testutil.AssertEqual(t, "has target", b.target >= 0, true)
	d := start.Position().Distance(moved.Position())
	if d < 9.99 || d > 10.01 {
		t.Errorf("expected a 10px stride, moved %v", d)
	}
}

func TestBot_WaitsForSync(t *testing.T) {
	r := replica.New(sim.NewRules(sim.DefaultParams()), replica.Identity{Name: "Bot"})
	b := New(r)

	b.Step(time.Second)

	_, ok := r.View()
	testutil.AssertEqual(t, "no room", ok, false)
	testutil.AssertEqual(t, "no target", b.target, -1)
}
