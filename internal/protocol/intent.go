package protocol

// IntentKind tags the variant carried by an Intent.
type IntentKind string

const (
	IntentMove           IntentKind = "move"
	IntentHoePlot        IntentKind = "hoePlot"
	IntentPlantSeed      IntentKind = "plantSeed"
	IntentWaterPlot      IntentKind = "waterPlot"
	IntentHarvestCrop    IntentKind = "harvestCrop"
	IntentRemoveHazard   IntentKind = "removeHazard"
	IntentCollectSeed    IntentKind = "collectSeed"
	IntentToggleLamppost IntentKind = "toggleLamppost"
	IntentHarvestFruit   IntentKind = "harvestFruit"
)

// IntentKinds lists every intent the room understands.
var IntentKinds = []IntentKind{
	IntentMove,
	IntentHoePlot,
	IntentPlantSeed,
	IntentWaterPlot,
	IntentHarvestCrop,
	IntentRemoveHazard,
	IntentCollectSeed,
	IntentToggleLamppost,
	IntentHarvestFruit,
}

type MoveIntent struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// TargetIntent addresses a fixed entity by index.
type TargetIntent struct {
	Index int `json:"index"`
}

type PlantIntent struct {
	Index    int    `json:"index"`
	SeedType string `json:"seedType"`
}

// Intent is a client request to mutate shared state. Exactly one payload is
// set: Move for IntentMove, Plant for IntentPlantSeed, Target for the rest.
type Intent struct {
	Kind   IntentKind
	Move   *MoveIntent
	Plant  *PlantIntent
	Target *TargetIntent
}

func Move(x, y, vx, vy float64) Intent {
	return Intent{Kind: IntentMove, Move: &MoveIntent{X: x, Y: y, VX: vx, VY: vy}}
}

func Plant(index int, seedType string) Intent {
	return Intent{Kind: IntentPlantSeed, Plant: &PlantIntent{Index: index, SeedType: seedType}}
}

// Target builds an index-only intent such as hoePlot or collectSeed.
func Target(kind IntentKind, index int) Intent {
	return Intent{Kind: kind, Target: &TargetIntent{Index: index}}
}

// Index returns the entity index addressed by the intent, if any.
func (i Intent) Index() (int, bool) {
	switch {
	case i.Plant != nil:
		return i.Plant.Index, true
	case i.Target != nil:
		return i.Target.Index, true
	}
	return 0, false
}
