package tuning

import (
	"fmt"

	"github.com/pixil98/go-farm/internal/state"
)

var (
	seedTypes  = []string{"carrot", "wheat", "pumpkin"}
	fruitTypes = []string{"apple", "pear", "cherry", "plum"}
)

const (
	plotColumns = 5
	tileSize    = 48
)

// Layout places the room furniture. Positions are derived from the counts
// alone so that every process with the same tuning builds the same room.
func (t Tuning) Layout() state.Layout {
	l := state.Layout{
		Plots: t.Plots,
		Spawn: t.Spawn,
		Clock: state.Clock{GameTime: t.StartGameTime, TimeSpeed: t.TimeSpeed},
	}

	for i := 0; i < t.Pickups; i++ {
		l.Pickups = append(l.Pickups, state.Pickup{
			X:        160 + float64(i)*tileSize,
			Y:        96,
			SeedType: seedTypes[i%len(seedTypes)],
		})
	}

	for i := 0; i < t.Trees; i++ {
		l.Trees = append(l.Trees, state.Tree{
			X:     640 + float64(i%2)*2*tileSize,
			Y:     160 + float64(i/2)*2*tileSize,
			Fruit: fruitTypes[i%len(fruitTypes)],
		})
	}

	for i := 0; i < t.Lampposts; i++ {
		l.Lamps = append(l.Lamps, state.Lamp{
			X: 96 + float64(i)*2*tileSize,
			Y: 480,
		})
	}

	// One villager per row of plots walks the row and back.
	rows := (t.Plots + plotColumns - 1) / plotColumns
	for r := 0; r < rows; r++ {
		y := PlotPosition(r*plotColumns).Y + tileSize/2
		l.NPCs = append(l.NPCs, state.NPC{
			ID:   fmt.Sprintf("villager-%d", r+1),
			Home: state.Point{X: 64, Y: 400 + float64(r)*tileSize},
			Route: []state.Point{
				{X: PlotPosition(0).X, Y: y},
				{X: PlotPosition(plotColumns - 1).X, Y: y},
			},
		})
	}

	return l
}

// PlotPosition is the top-left corner of plot i on the farm grid.
func PlotPosition(i int) state.Point {
	return state.Point{
		X: 200 + float64(i%plotColumns)*tileSize,
		Y: 160 + float64(i/plotColumns)*tileSize,
	}
}
