package state

// Layout describes the fixed furniture of a room: how many of each entity
// exist and where they sit. It never changes for the lifetime of a room.
type Layout struct {
	Plots   int
	Pickups []Pickup
	Trees   []Tree
	Lamps   []Lamp
	NPCs    []NPC
	Spawn   Point
	Clock   Clock
}

// New builds a fresh room from the layout: every plot grass, every pickup
// available, every tree in fruit and every lamp dark.
func New(l Layout) *RoomState {
	rs := &RoomState{
		players: map[string]*Player{},
		plots:   make([]Plot, l.Plots),
		pickups: make([]Pickup, len(l.Pickups)),
		trees:   make([]Tree, len(l.Trees)),
		lamps:   make([]Lamp, len(l.Lamps)),
		npcs:    make([]NPC, len(l.NPCs)),
		spawn:   l.Spawn,
		clock:   l.Clock,
	}
	rs.clock.GameTime = WrapGameTime(rs.clock.GameTime)

	for i := range rs.plots {
		rs.plots[i] = Plot{Index: i, State: PlotGrass, Hazard: HazardNone}
	}
	for i, p := range l.Pickups {
		p.Index = i
		p.Collected = false
		p.RespawnTimer = 0
		rs.pickups[i] = p
	}
	for i, t := range l.Trees {
		t.Index = i
		t.HasFruit = true
		t.FruitTimer = 0
		rs.trees[i] = t
	}
	for i, lp := range l.Lamps {
		lp.Index = i
		lp.Lit = false
		rs.lamps[i] = lp
	}
	for i, n := range l.NPCs {
		n = n.clone()
		n.X, n.Y = n.Home.X, n.Home.Y
		n.Behavior = BehaviorHome
		rs.npcs[i] = n
	}

	return rs
}
