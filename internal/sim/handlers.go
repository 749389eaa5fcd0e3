package sim

import (
	"github.com/pixil98/go-farm/internal/protocol"
	"github.com/pixil98/go-farm/internal/state"
)

func handleMove(_ *Rules, rs *state.RoomState, sessionID string, in protocol.Intent) (bool, *Grant) {
	if in.Move == nil {
		return false, nil
	}
	p, ok := rs.Player(sessionID)
	if !ok {
		return false, nil
	}
	p.X, p.Y, p.VX, p.VY = in.Move.X, in.Move.Y, in.Move.VX, in.Move.VY
	rs.PutPlayer(p)
	return true, nil
}

// targetPlot resolves the plot addressed by an index intent.
func targetPlot(rs *state.RoomState, in protocol.Intent) (state.Plot, bool) {
	idx, ok := in.Index()
	if !ok {
		return state.Plot{}, false
	}
	return rs.Plot(idx)
}

func handleHoePlot(_ *Rules, rs *state.RoomState, _ string, in protocol.Intent) (bool, *Grant) {
	p, ok := targetPlot(rs, in)
	if !ok || p.State != state.PlotGrass {
		return false, nil
	}
	p.State = state.PlotTilled
	return rs.SetPlot(p), nil
}

func handlePlantSeed(_ *Rules, rs *state.RoomState, _ string, in protocol.Intent) (bool, *Grant) {
	if in.Plant == nil || in.Plant.SeedType == "" {
		return false, nil
	}
	p, ok := targetPlot(rs, in)
	if !ok || p.State != state.PlotTilled {
		return false, nil
	}
	p.State = state.PlotPlanted
	p.Crop = in.Plant.SeedType
	p.GrowthTimer = 0
	p.Watered = false
	p.LastWateredTime = 0
	return rs.SetPlot(p), nil
}

func handleWaterPlot(_ *Rules, rs *state.RoomState, _ string, in protocol.Intent) (bool, *Grant) {
	p, ok := targetPlot(rs, in)
	if !ok || !p.State.Growing() || p.Watered {
		return false, nil
	}
	p.Watered = true
	p.LastWateredTime = p.GrowthTimer
	return rs.SetPlot(p), nil
}

func handleHarvestCrop(r *Rules, rs *state.RoomState, sessionID string, in protocol.Intent) (bool, *Grant) {
	p, ok := targetPlot(rs, in)
	if !ok || p.State != state.PlotReady {
		return false, nil
	}
	crop := p.Crop
	p.Reset()
	if !rs.SetPlot(p) {
		return false, nil
	}
	return true, &Grant{SessionID: sessionID, Kind: GrantCrop, Item: crop, Quantity: r.params.CropYield}
}

func handleRemoveHazard(_ *Rules, rs *state.RoomState, _ string, in protocol.Intent) (bool, *Grant) {
	p, ok := targetPlot(rs, in)
	if !ok {
		return false, nil
	}
	switch {
	case p.State == state.PlotDead:
		p.Reset()
	case p.Hazard != state.HazardNone:
		p.Hazard = state.HazardNone
		p.HazardTimer = 0
	default:
		return false, nil
	}
	return rs.SetPlot(p), nil
}

func handleCollectSeed(r *Rules, rs *state.RoomState, sessionID string, in protocol.Intent) (bool, *Grant) {
	idx, ok := in.Index()
	if !ok {
		return false, nil
	}
	pk, ok := rs.Pickup(idx)
	if !ok || pk.Collected {
		return false, nil
	}
	pk.Collected = true
	pk.RespawnTimer = r.params.SeedRespawn.Milliseconds()
	rs.SetPickup(pk)
	return true, &Grant{SessionID: sessionID, Kind: GrantSeed, Item: pk.SeedType, Quantity: 1}
}

func handleToggleLamppost(_ *Rules, rs *state.RoomState, _ string, in protocol.Intent) (bool, *Grant) {
	idx, ok := in.Index()
	if !ok {
		return false, nil
	}
	l, ok := rs.Lamp(idx)
	if !ok {
		return false, nil
	}
	l.Lit = !l.Lit
	return rs.SetLamp(l), nil
}

func handleHarvestFruit(r *Rules, rs *state.RoomState, sessionID string, in protocol.Intent) (bool, *Grant) {
	idx, ok := in.Index()
	if !ok {
		return false, nil
	}
	t, ok := rs.Tree(idx)
	if !ok || !t.HasFruit {
		return false, nil
	}
	t.HasFruit = false
	t.FruitTimer = r.params.FruitRegrow.Milliseconds()
	rs.SetTree(t)
	return true, &Grant{SessionID: sessionID, Kind: GrantFruit, Item: t.Fruit, Quantity: r.params.FruitYield}
}
