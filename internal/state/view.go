package state

// View is a self-contained, serializable copy of a whole room. It is what a
// client receives as its full sync.
type View struct {
	Version uint64   `json:"version"`
	Spawn   Point    `json:"spawn"`
	Clock   Clock    `json:"clock"`
	Players []Player `json:"players"`
	Plots   []Plot   `json:"plots"`
	Pickups []Pickup `json:"pickups"`
	Trees   []Tree   `json:"trees"`
	Lamps   []Lamp   `json:"lamps"`
	NPCs    []NPC    `json:"npcs"`
}

// View copies the room into a View. Players are ordered by id.
func (rs *RoomState) View() View {
	v := View{
		Version: rs.version,
		Spawn:   rs.spawn,
		Clock:   rs.clock,
		Players: make([]Player, 0, len(rs.players)),
		Plots:   append([]Plot(nil), rs.plots...),
		Pickups: append([]Pickup(nil), rs.pickups...),
		Trees:   append([]Tree(nil), rs.trees...),
		Lamps:   append([]Lamp(nil), rs.lamps...),
		NPCs:    make([]NPC, len(rs.npcs)),
	}
	for _, id := range rs.PlayerIDs() {
		v.Players = append(v.Players, *rs.players[id])
	}
	for i, n := range rs.npcs {
		v.NPCs[i] = n.clone()
	}
	return v
}

// FromView rebuilds a room from a View. The result has no pending changes.
func FromView(v View) *RoomState {
	rs := &RoomState{
		version: v.Version,
		players: make(map[string]*Player, len(v.Players)),
		plots:   append([]Plot(nil), v.Plots...),
		pickups: append([]Pickup(nil), v.Pickups...),
		trees:   append([]Tree(nil), v.Trees...),
		lamps:   append([]Lamp(nil), v.Lamps...),
		npcs:    make([]NPC, len(v.NPCs)),
		spawn:   v.Spawn,
		clock:   v.Clock,
	}
	for _, p := range v.Players {
		p := p
		rs.players[p.ID] = &p
	}
	for i, n := range v.NPCs {
		rs.npcs[i] = n.clone()
	}
	return rs
}

// Clone returns a deep copy of the room without its pending changes.
func (rs *RoomState) Clone() *RoomState {
	return FromView(rs.View())
}
