package state

import (
	"reflect"
	"testing"

	"github.com/pixil98/go-testutil"
)

func testLayout() Layout {
	return Layout{
		Plots: 3,
		Pickups: []Pickup{
			{X: 10, Y: 10, SeedType: "carrot"},
			{X: 20, Y: 10, SeedType: "wheat"},
		},
		Trees: []Tree{{X: 5, Y: 5, Fruit: "apple"}},
		Lamps: []Lamp{{X: 1, Y: 1}},
		NPCs: []NPC{
			{ID: "miller", Home: Point{X: 50, Y: 50}, Route: []Point{{X: 0, Y: 0}, {X: 10, Y: 0}}},
		},
		Spawn: Point{X: 100, Y: 100},
		Clock: Clock{GameTime: 480, TimeSpeed: 1},
	}
}

func TestNew(t *testing.T) {
	rs := New(testLayout())

	testutil.AssertEqual(t, "plot count", rs.PlotCount(), 3)
	for i := 0; i < rs.PlotCount(); i++ {
		p, ok := rs.Plot(i)
		testutil.AssertEqual(t, "plot exists", ok, true)
		testutil.AssertEqual(t, "plot index", p.Index, i)
		testutil.AssertEqual(t, "plot state", p.State, PlotGrass)
		testutil.AssertEqual(t, "plot hazard", p.Hazard, HazardNone)
	}

	tree, _ := rs.Tree(0)
	testutil.AssertEqual(t, "tree has fruit", tree.HasFruit, true)

	npc, _ := rs.NPC(0)
	testutil.AssertEqual(t, "npc at home", npc.Position(), Point{X: 50, Y: 50})
	testutil.AssertEqual(t, "npc behavior", npc.Behavior, BehaviorHome)

	testutil.AssertEqual(t, "version", rs.Version(), uint64(0))
	if err := rs.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestRoomState_FlushOrdersChanges(t *testing.T) {
	rs := New(testLayout())

	rs.PutPlayer(Player{ID: "a", Name: "Ann"})
	rs.SetPlot(Plot{Index: 1, State: PlotTilled, Hazard: HazardNone})
	rs.PutPlayer(Player{ID: "a", Name: "Ann", X: 3})
	rs.RemovePlayer("a")

	changes := rs.Flush()
	kinds := make([]ChangeKind, len(changes))
	for i, c := range changes {
		kinds[i] = c.Kind
	}
	expKinds := []ChangeKind{ChangePlayerJoined, ChangePlot, ChangePlayer, ChangePlayerLeft}
	if !reflect.DeepEqual(kinds, expKinds) {
		t.Errorf("kinds: got %v, want %v", kinds, expKinds)
	}
	testutil.AssertEqual(t, "version", rs.Version(), uint64(1))

	if again := rs.Flush(); again != nil {
		t.Errorf("expected no changes after flush, got %d", len(again))
	}
	testutil.AssertEqual(t, "version unchanged on empty flush", rs.Version(), uint64(1))
}

func TestRoomState_OutOfRange(t *testing.T) {
	rs := New(testLayout())

	tests := map[string]func() bool{
		"plot negative":  func() bool { return rs.SetPlot(Plot{Index: -1}) },
		"plot too large": func() bool { return rs.SetPlot(Plot{Index: 3}) },
		"pickup":         func() bool { return rs.SetPickup(Pickup{Index: 9}) },
		"tree":           func() bool { return rs.SetTree(Tree{Index: 1}) },
		"lamp":           func() bool { return rs.SetLamp(Lamp{Index: 4}) },
		"npc":            func() bool { return rs.SetNPC(NPC{ID: "nobody"}) },
		"remove missing": func() bool { return rs.RemovePlayer("ghost") },
	}

	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "applied", fn(), false)
		})
	}
	testutil.AssertEqual(t, "no changes recorded", len(rs.Flush()), 0)
}

func TestRoomState_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate func(rs *RoomState)
		expErr string
	}{
		"fresh room": {
			mutate: func(rs *RoomState) {},
		},
		"crop on grass": {
			mutate: func(rs *RoomState) { rs.plots[0].Crop = "carrot" },
			expErr: "inconsistent with state",
		},
		"planted without crop": {
			mutate: func(rs *RoomState) { rs.plots[1].State = PlotPlanted },
			expErr: "inconsistent with state",
		},
		"duplicate index": {
			mutate: func(rs *RoomState) { rs.plots[2].Index = 0 },
			expErr: "has index 0",
		},
		"collectible with countdown": {
			mutate: func(rs *RoomState) { rs.pickups[0].RespawnTimer = 100 },
			expErr: "respawn timer",
		},
		"unknown hazard": {
			mutate: func(rs *RoomState) { rs.plots[0].Hazard = "frogs" },
			expErr: "unknown hazard",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rs := New(testLayout())
			tt.mutate(rs)
			err := rs.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestRoomState_ViewRoundTrip(t *testing.T) {
	rs := New(testLayout())
	rs.PutPlayer(Player{ID: "b", Name: "Bo", Class: ClassRanger})
	rs.PutPlayer(Player{ID: "a", Name: "Al", Class: ClassFarmer})
	rs.SetPlot(Plot{Index: 2, State: PlotPlanted, Crop: "carrot", Hazard: HazardNone})
	rs.Flush()

	v := rs.View()
	testutil.AssertEqual(t, "first player", v.Players[0].ID, "a")
	testutil.AssertEqual(t, "second player", v.Players[1].ID, "b")

	clone := FromView(v)
	if !reflect.DeepEqual(clone.View(), v) {
		t.Errorf("clone view differs:\n got %+v\nwant %+v", clone.View(), v)
	}

	// Mutating the clone must not leak into the original.
	clone.SetPlot(Plot{Index: 2, State: PlotGrowing, Crop: "carrot", Hazard: HazardNone})
	orig, _ := rs.Plot(2)
	testutil.AssertEqual(t, "original untouched", orig.State, PlotPlanted)
}

func TestChange_Apply(t *testing.T) {
	src := New(testLayout())
	dst := src.Clone()

	src.PutPlayer(Player{ID: "a", Name: "Al", X: 4})
	src.SetLamp(Lamp{Index: 0, X: 1, Y: 1, Lit: true})
	src.SetClock(Clock{GameTime: 1500, TimeSpeed: 2})
	src.RemovePlayer("a")
	src.PutPlayer(Player{ID: "c", Name: "Cy"})

	for _, c := range src.Flush() {
		c.Apply(dst)
	}
	dst.Flush()

	got := dst.View()
	want := src.View()
	got.Version, want.Version = 0, 0
	if !reflect.DeepEqual(got, want) {
		t.Errorf("replayed view differs:\n got %+v\nwant %+v", got, want)
	}
	testutil.AssertEqual(t, "clock wrapped", dst.Clock().GameTime, 60.0)
}

func TestValidTransition(t *testing.T) {
	tests := map[string]struct {
		from, to PlotState
		exp      bool
	}{
		"hoe":              {PlotGrass, PlotTilled, true},
		"plant":            {PlotTilled, PlotPlanted, true},
		"sprout":           {PlotPlanted, PlotGrowing, true},
		"ripen":            {PlotGrowing, PlotReady, true},
		"harvest":          {PlotReady, PlotGrass, true},
		"wither planted":   {PlotPlanted, PlotDead, true},
		"wither growing":   {PlotGrowing, PlotDead, true},
		"clear dead":       {PlotDead, PlotGrass, true},
		"same":             {PlotGrowing, PlotGrowing, true},
		"grass to ready":   {PlotGrass, PlotReady, false},
		"planted to ready": {PlotPlanted, PlotReady, false},
		"tilled to grass":  {PlotTilled, PlotGrass, false},
		"ready to dead":    {PlotReady, PlotDead, false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "valid", ValidTransition(tt.from, tt.to), tt.exp)
		})
	}
}
