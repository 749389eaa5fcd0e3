package sim

import (
	"github.com/pixil98/go-farm/internal/protocol"
	"github.com/pixil98/go-farm/internal/state"
)

type GrantKind string

const (
	GrantCrop  GrantKind = "crop"
	GrantSeed  GrantKind = "seed"
	GrantFruit GrantKind = "fruit"
)

// Grant is an item award owed to a player. The room does not keep inventories;
// grants are handed to whoever does.
type Grant struct {
	SessionID string    `json:"sessionId"`
	Kind      GrantKind `json:"kind"`
	Item      string    `json:"item"`
	Quantity  int       `json:"quantity"`
}

// handlerFunc applies one intent kind. It returns whether the state changed
// and any grant earned. It must not block.
type handlerFunc func(r *Rules, rs *state.RoomState, sessionID string, in protocol.Intent) (bool, *Grant)

var handlers = map[protocol.IntentKind]handlerFunc{
	protocol.IntentMove:           handleMove,
	protocol.IntentHoePlot:        handleHoePlot,
	protocol.IntentPlantSeed:      handlePlantSeed,
	protocol.IntentWaterPlot:      handleWaterPlot,
	protocol.IntentHarvestCrop:    handleHarvestCrop,
	protocol.IntentRemoveHazard:   handleRemoveHazard,
	protocol.IntentCollectSeed:    handleCollectSeed,
	protocol.IntentToggleLamppost: handleToggleLamppost,
	protocol.IntentHarvestFruit:   handleHarvestFruit,
}

// Rules holds the simulation parameters. The same Rules drive the server room
// and a client replica running on its own.
type Rules struct {
	params Params
}

func NewRules(p Params) *Rules {
	return &Rules{params: p}
}

func (r *Rules) Params() Params {
	return r.params
}

// Apply validates an intent against the current state and applies it. Intents
// whose preconditions do not hold leave the state untouched and report false.
func (r *Rules) Apply(rs *state.RoomState, sessionID string, in protocol.Intent) (bool, *Grant) {
	h, ok := handlers[in.Kind]
	if !ok {
		return false, nil
	}
	return h(r, rs, sessionID, in)
}
