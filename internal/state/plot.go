package state

type PlotState string

const (
	PlotGrass   PlotState = "grass"
	PlotTilled  PlotState = "tilled"
	PlotPlanted PlotState = "planted"
	PlotGrowing PlotState = "growing"
	PlotReady   PlotState = "ready"
	PlotDead    PlotState = "dead"
)

// HasCrop reports whether a plot in this state must carry a crop.
func (s PlotState) HasCrop() bool {
	switch s {
	case PlotPlanted, PlotGrowing, PlotReady:
		return true
	}
	return false
}

// Growing reports whether growth and hazard ticks apply to this state.
func (s PlotState) Growing() bool {
	return s == PlotPlanted || s == PlotGrowing
}

func (s PlotState) Valid() bool {
	switch s {
	case PlotGrass, PlotTilled, PlotPlanted, PlotGrowing, PlotReady, PlotDead:
		return true
	}
	return false
}

type Hazard string

const (
	HazardNone  Hazard = "none"
	HazardWeeds Hazard = "weeds"
	HazardBugs  Hazard = "bugs"
)

func (h Hazard) Valid() bool {
	switch h {
	case HazardNone, HazardWeeds, HazardBugs:
		return true
	}
	return false
}

// plotEdges lists every legal plot state transition.
var plotEdges = map[PlotState][]PlotState{
	PlotGrass:   {PlotTilled},
	PlotTilled:  {PlotPlanted},
	PlotPlanted: {PlotGrowing, PlotDead},
	PlotGrowing: {PlotReady, PlotDead},
	PlotReady:   {PlotGrass},
	PlotDead:    {PlotGrass},
}

// ValidTransition reports whether a plot may move from one state to another.
// Staying in the same state is always valid.
func ValidTransition(from, to PlotState) bool {
	if from == to {
		return true
	}
	for _, s := range plotEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}
