package state

type ChangeKind string

const (
	ChangePlayerJoined ChangeKind = "playerJoined"
	ChangePlayer       ChangeKind = "player"
	ChangePlayerLeft   ChangeKind = "playerLeft"
	ChangePlot         ChangeKind = "plot"
	ChangePickup       ChangeKind = "pickup"
	ChangeTree         ChangeKind = "tree"
	ChangeLamp         ChangeKind = "lamp"
	ChangeNPC          ChangeKind = "npc"
	ChangeClock        ChangeKind = "clock"
)

// Change is a single entity mutation. Exactly one payload is set, matching Kind;
// ChangePlayerLeft carries only the player ID.
type Change struct {
	Kind   ChangeKind `json:"kind"`
	ID     string     `json:"id,omitempty"`
	Player *Player    `json:"player,omitempty"`
	Plot   *Plot      `json:"plot,omitempty"`
	Pickup *Pickup    `json:"pickup,omitempty"`
	Tree   *Tree      `json:"tree,omitempty"`
	Lamp   *Lamp      `json:"lamp,omitempty"`
	NPC    *NPC       `json:"npc,omitempty"`
	Clock  *Clock     `json:"clock,omitempty"`
}

// Apply writes the change into rs through its regular mutation surface.
// Changes referencing unknown indices are ignored.
func (c Change) Apply(rs *RoomState) {
	switch c.Kind {
	case ChangePlayerJoined, ChangePlayer:
		if c.Player != nil {
			rs.PutPlayer(*c.Player)
		}
	case ChangePlayerLeft:
		rs.RemovePlayer(c.ID)
	case ChangePlot:
		if c.Plot != nil {
			rs.SetPlot(*c.Plot)
		}
	case ChangePickup:
		if c.Pickup != nil {
			rs.SetPickup(*c.Pickup)
		}
	case ChangeTree:
		if c.Tree != nil {
			rs.SetTree(*c.Tree)
		}
	case ChangeLamp:
		if c.Lamp != nil {
			rs.SetLamp(*c.Lamp)
		}
	case ChangeNPC:
		if c.NPC != nil {
			rs.SetNPC(*c.NPC)
		}
	case ChangeClock:
		if c.Clock != nil {
			rs.SetClock(*c.Clock)
		}
	}
}
