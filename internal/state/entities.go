package state

import "math"

// Class is the cosmetic character class chosen at character creation.
type Class string

const (
	ClassFarmer   Class = "farmer"
	ClassRanger   Class = "ranger"
	ClassMerchant Class = "merchant"
	ClassTinker   Class = "tinker"
)

// Valid reports whether c is one of the known classes.
func (c Class) Valid() bool {
	switch c {
	case ClassFarmer, ClassRanger, ClassMerchant, ClassTinker:
		return true
	}
	return false
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the euclidean distance between two points.
func (p Point) Distance(o Point) float64 {
	return math.Hypot(o.X-p.X, o.Y-p.Y)
}

// Player is a connected participant. It lives exactly as long as its session.
type Player struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Class      Class   `json:"class"`
	Appearance string  `json:"appearance,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	VX         float64 `json:"vx"`
	VY         float64 `json:"vy"`
}

func (p Player) Position() Point {
	return Point{X: p.X, Y: p.Y}
}

// Plot is a single farmable tile. Timers are simulated milliseconds.
type Plot struct {
	Index           int       `json:"index"`
	State           PlotState `json:"state"`
	Crop            string    `json:"crop,omitempty"`
	GrowthTimer     int64     `json:"growthTimer"`
	Watered         bool      `json:"isWatered"`
	LastWateredTime int64     `json:"lastWateredTime"`
	Hazard          Hazard    `json:"hazard"`
	HazardTimer     int64     `json:"hazardTimer"`
}

// Reset returns the plot to untouched grass.
func (p *Plot) Reset() {
	*p = Plot{Index: p.Index, State: PlotGrass, Hazard: HazardNone}
}

// Pickup is a collectible seed bag that respawns after being taken.
type Pickup struct {
	Index        int     `json:"index"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	SeedType     string  `json:"seedType"`
	Collected    bool    `json:"isCollected"`
	RespawnTimer int64   `json:"respawnTimer"`
}

// Tree is a fruit tree whose fruit regrows after harvest.
type Tree struct {
	Index      int     `json:"index"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Fruit      string  `json:"fruit"`
	HasFruit   bool    `json:"hasFruit"`
	FruitTimer int64   `json:"fruitTimer"`
}

type Lamp struct {
	Index int     `json:"index"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Lit   bool    `json:"lit"`
}

type Behavior string

const (
	BehaviorIdle   Behavior = "idle"
	BehaviorPatrol Behavior = "patrol"
	BehaviorHome   Behavior = "home"
)

// NPC is a non-player character following a fixed daily routine.
type NPC struct {
	ID       string   `json:"id"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Behavior Behavior `json:"behavior"`
	Home     Point    `json:"home"`
	Route    []Point  `json:"route,omitempty"`
}

func (n NPC) Position() Point {
	return Point{X: n.X, Y: n.Y}
}

func (n NPC) clone() NPC {
	n.Route = append([]Point(nil), n.Route...)
	return n
}

const MinutesPerDay = 1440

// Clock is the shared day/night clock. GameTime is minutes into the day.
type Clock struct {
	GameTime  float64 `json:"gameTime"`
	TimeSpeed float64 `json:"timeSpeed"`
}

// WrapGameTime folds any minute value into [0, MinutesPerDay).
func WrapGameTime(t float64) float64 {
	t = math.Mod(t, MinutesPerDay)
	if t < 0 {
		t += MinutesPerDay
	}
	return t
}
