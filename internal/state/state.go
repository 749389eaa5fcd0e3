package state

import (
	"fmt"
	"sort"

	"github.com/pixil98/go-errors"
)

// RoomState is the canonical data model of a room. It performs no locking:
// exactly one goroutine may own a RoomState at a time.
//
// Reads return copies. Every Set/Put/Remove call records a Change; Flush hands
// the recorded changes to the caller in mutation order and closes the step.
type RoomState struct {
	version uint64
	changes []Change

	players map[string]*Player
	plots   []Plot
	pickups []Pickup
	trees   []Tree
	lamps   []Lamp
	npcs    []NPC
	spawn   Point
	clock   Clock
}

// Version is the number of flushed steps that carried at least one change.
func (rs *RoomState) Version() uint64 {
	return rs.version
}

// Flush returns the pending changes and advances the version when there were any.
func (rs *RoomState) Flush() []Change {
	if len(rs.changes) == 0 {
		return nil
	}
	out := rs.changes
	rs.changes = nil
	rs.version++
	return out
}

// Discard drops pending changes without advancing the version.
func (rs *RoomState) Discard() {
	rs.changes = nil
}

func (rs *RoomState) record(c Change) {
	rs.changes = append(rs.changes, c)
}

/* Reads */

func (rs *RoomState) Spawn() Point { return rs.spawn }

func (rs *RoomState) Clock() Clock { return rs.clock }

func (rs *RoomState) PlotCount() int   { return len(rs.plots) }
func (rs *RoomState) PickupCount() int { return len(rs.pickups) }
func (rs *RoomState) TreeCount() int   { return len(rs.trees) }
func (rs *RoomState) LampCount() int   { return len(rs.lamps) }
func (rs *RoomState) NPCCount() int    { return len(rs.npcs) }
func (rs *RoomState) PlayerCount() int { return len(rs.players) }

func (rs *RoomState) Plot(i int) (Plot, bool) {
	if i < 0 || i >= len(rs.plots) {
		return Plot{}, false
	}
	return rs.plots[i], true
}

func (rs *RoomState) Pickup(i int) (Pickup, bool) {
	if i < 0 || i >= len(rs.pickups) {
		return Pickup{}, false
	}
	return rs.pickups[i], true
}

func (rs *RoomState) Tree(i int) (Tree, bool) {
	if i < 0 || i >= len(rs.trees) {
		return Tree{}, false
	}
	return rs.trees[i], true
}

func (rs *RoomState) Lamp(i int) (Lamp, bool) {
	if i < 0 || i >= len(rs.lamps) {
		return Lamp{}, false
	}
	return rs.lamps[i], true
}

func (rs *RoomState) NPC(i int) (NPC, bool) {
	if i < 0 || i >= len(rs.npcs) {
		return NPC{}, false
	}
	return rs.npcs[i].clone(), true
}

// Player returns the player with the given id.
func (rs *RoomState) Player(id string) (Player, bool) {
	p, ok := rs.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// PlayerIDs returns the ids of all players in sorted order.
func (rs *RoomState) PlayerIDs() []string {
	ids := make([]string, 0, len(rs.players))
	for id := range rs.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

/* Mutations */

// PutPlayer inserts or replaces a player.
func (rs *RoomState) PutPlayer(p Player) {
	kind := ChangePlayer
	if _, ok := rs.players[p.ID]; !ok {
		kind = ChangePlayerJoined
	}
	rs.players[p.ID] = &p
	rs.record(Change{Kind: kind, ID: p.ID, Player: &p})
}

// RemovePlayer deletes a player, reporting whether it existed.
func (rs *RoomState) RemovePlayer(id string) bool {
	if _, ok := rs.players[id]; !ok {
		return false
	}
	delete(rs.players, id)
	rs.record(Change{Kind: ChangePlayerLeft, ID: id})
	return true
}

func (rs *RoomState) SetPlot(p Plot) bool {
	if p.Index < 0 || p.Index >= len(rs.plots) {
		return false
	}
	rs.plots[p.Index] = p
	rs.record(Change{Kind: ChangePlot, Plot: &p})
	return true
}

func (rs *RoomState) SetPickup(p Pickup) bool {
	if p.Index < 0 || p.Index >= len(rs.pickups) {
		return false
	}
	rs.pickups[p.Index] = p
	rs.record(Change{Kind: ChangePickup, Pickup: &p})
	return true
}

func (rs *RoomState) SetTree(t Tree) bool {
	if t.Index < 0 || t.Index >= len(rs.trees) {
		return false
	}
	rs.trees[t.Index] = t
	rs.record(Change{Kind: ChangeTree, Tree: &t})
	return true
}

func (rs *RoomState) SetLamp(l Lamp) bool {
	if l.Index < 0 || l.Index >= len(rs.lamps) {
		return false
	}
	rs.lamps[l.Index] = l
	rs.record(Change{Kind: ChangeLamp, Lamp: &l})
	return true
}

// SetNPC replaces the NPC with the same ID.
func (rs *RoomState) SetNPC(n NPC) bool {
	for i := range rs.npcs {
		if rs.npcs[i].ID == n.ID {
			n = n.clone()
			rs.npcs[i] = n
			rs.record(Change{Kind: ChangeNPC, ID: n.ID, NPC: &n})
			return true
		}
	}
	return false
}

func (rs *RoomState) SetClock(c Clock) {
	c.GameTime = WrapGameTime(c.GameTime)
	rs.clock = c
	rs.record(Change{Kind: ChangeClock, Clock: &c})
}

// Validate checks the structural invariants of the room.
func (rs *RoomState) Validate() error {
	el := errors.NewErrorList()

	for i, p := range rs.plots {
		if p.Index != i {
			el.Add(fmt.Errorf("plot at position %d has index %d", i, p.Index))
		}
		if !p.State.Valid() {
			el.Add(fmt.Errorf("plot %d: unknown state %q", i, p.State))
		}
		if !p.Hazard.Valid() {
			el.Add(fmt.Errorf("plot %d: unknown hazard %q", i, p.Hazard))
		}
		if p.State.HasCrop() != (p.Crop != "") {
			el.Add(fmt.Errorf("plot %d: crop %q inconsistent with state %s", i, p.Crop, p.State))
		}
	}
	for i, p := range rs.pickups {
		if p.Index != i {
			el.Add(fmt.Errorf("pickup at position %d has index %d", i, p.Index))
		}
		if !p.Collected && p.RespawnTimer != 0 {
			el.Add(fmt.Errorf("pickup %d: respawn timer set while collectible", i))
		}
	}
	for i, t := range rs.trees {
		if t.Index != i {
			el.Add(fmt.Errorf("tree at position %d has index %d", i, t.Index))
		}
		if t.HasFruit && t.FruitTimer != 0 {
			el.Add(fmt.Errorf("tree %d: fruit timer set while in fruit", i))
		}
	}
	if rs.clock.GameTime < 0 || rs.clock.GameTime >= MinutesPerDay {
		el.Add(fmt.Errorf("game time %v out of range", rs.clock.GameTime))
	}

	return el.Err()
}
