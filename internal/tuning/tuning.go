package tuning

import (
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-farm/internal/sim"
	"github.com/pixil98/go-farm/internal/state"
	"gopkg.in/yaml.v3"
)

// Tuning holds the game balance of a room. Every field has a default, so a
// tuning file only needs the values it changes.
type Tuning struct {
	Plots     int `yaml:"plots"`
	Pickups   int `yaml:"pickups"`
	Trees     int `yaml:"trees"`
	Lampposts int `yaml:"lampposts"`

	Spawn         state.Point `yaml:"spawn"`
	StartGameTime float64     `yaml:"start_game_time"`
	TimeSpeed     float64     `yaml:"time_speed"`

	Growth  Growth  `yaml:"growth"`
	Hazards Hazards `yaml:"hazards"`
	Respawn Respawn `yaml:"respawn"`
	Yields  Yields  `yaml:"yields"`
	Patrol  Patrol  `yaml:"patrol"`

	Intervals Intervals `yaml:"intervals"`

	HeartbeatTimeout time.Duration `yaml:"heartbeat_timeout"`
	DrainTimeout     time.Duration `yaml:"drain_timeout"`
}

type Growth struct {
	GrowingAfter      time.Duration `yaml:"growing_after"`
	ReadyAfter        time.Duration `yaml:"ready_after"`
	WaterDuration     time.Duration `yaml:"water_duration"`
	WateredMultiplier float64       `yaml:"watered_multiplier"`
}

type Hazards struct {
	Chance    float64       `yaml:"chance"`
	DeadAfter time.Duration `yaml:"dead_after"`
}

type Respawn struct {
	Seed  time.Duration `yaml:"seed"`
	Fruit time.Duration `yaml:"fruit"`
}

type Yields struct {
	Crop  int `yaml:"crop"`
	Fruit int `yaml:"fruit"`
}

// Patrol times are game minutes into the day.
type Patrol struct {
	Start       float64 `yaml:"start"`
	End         float64 `yaml:"end"`
	IdleUntil   float64 `yaml:"idle_until"`
	SegmentTime float64 `yaml:"segment_time"`
}

// Intervals are the real-time periods of the scheduled room tasks.
type Intervals struct {
	Clock    time.Duration `yaml:"clock"`
	Growth   time.Duration `yaml:"growth"`
	Hazard   time.Duration `yaml:"hazard"`
	Respawn  time.Duration `yaml:"respawn"`
	NPC      time.Duration `yaml:"npc"`
	Sessions time.Duration `yaml:"sessions"`
	Autosave time.Duration `yaml:"autosave"`
}

func Default() Tuning {
	p := sim.DefaultParams()
	return Tuning{
		Plots:         15,
		Pickups:       6,
		Trees:         4,
		Lampposts:     6,
		Spawn:         state.Point{X: 400, Y: 300},
		StartGameTime: 480,
		TimeSpeed:     1,
		Growth: Growth{
			GrowingAfter:      p.GrowingAfter,
			ReadyAfter:        p.ReadyAfter,
			WaterDuration:     p.WaterDuration,
			WateredMultiplier: p.WateredMultiplier,
		},
		Hazards: Hazards{
			Chance:    p.HazardChance,
			DeadAfter: p.HazardDeadAfter,
		},
		Respawn: Respawn{
			Seed:  p.SeedRespawn,
			Fruit: p.FruitRegrow,
		},
		Yields: Yields{
			Crop:  p.CropYield,
			Fruit: p.FruitYield,
		},
		Patrol: Patrol{
			Start:       p.PatrolStart,
			End:         p.PatrolEnd,
			IdleUntil:   p.IdleUntil,
			SegmentTime: p.SegmentTime,
		},
		Intervals: Intervals{
			Clock:    time.Second,
			Growth:   time.Second,
			Hazard:   5 * time.Second,
			Respawn:  time.Second,
			NPC:      time.Second,
			Sessions: time.Second,
			Autosave: 30 * time.Second,
		},
		HeartbeatTimeout: 10 * time.Second,
		DrainTimeout:     5 * time.Second,
	}
}

// Load reads a YAML tuning file over the defaults. An empty path yields the
// defaults unchanged.
func Load(path string) (Tuning, error) {
	t := Default()
	if path == "" {
		return t, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("reading tuning file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parsing tuning file %s: %w", path, err)
	}

	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("validating tuning file %s: %w", path, err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	el := errors.NewErrorList()

	if t.Plots < 1 {
		el.Add(fmt.Errorf("plots must be at least 1"))
	}
	if t.Pickups < 0 || t.Trees < 0 || t.Lampposts < 0 {
		el.Add(fmt.Errorf("entity counts must not be negative"))
	}
	if t.StartGameTime < 0 || t.StartGameTime >= state.MinutesPerDay {
		el.Add(fmt.Errorf("start_game_time must be in [0, %d)", state.MinutesPerDay))
	}
	if t.TimeSpeed < 0 {
		el.Add(fmt.Errorf("time_speed must not be negative"))
	}

	if t.Growth.GrowingAfter <= 0 {
		el.Add(fmt.Errorf("growth.growing_after must be positive"))
	}
	if t.Growth.ReadyAfter <= t.Growth.GrowingAfter {
		el.Add(fmt.Errorf("growth.ready_after must be later than growth.growing_after"))
	}
	if t.Growth.WaterDuration <= 0 {
		el.Add(fmt.Errorf("growth.water_duration must be positive"))
	}
	if t.Growth.WateredMultiplier < 1 {
		el.Add(fmt.Errorf("growth.watered_multiplier must be at least 1"))
	}
	if t.Hazards.Chance < 0 || t.Hazards.Chance > 1 {
		el.Add(fmt.Errorf("hazards.chance must be in [0, 1]"))
	}
	if t.Hazards.DeadAfter <= 0 {
		el.Add(fmt.Errorf("hazards.dead_after must be positive"))
	}
	if t.Yields.Crop < 0 || t.Yields.Fruit < 0 {
		el.Add(fmt.Errorf("yields must not be negative"))
	}
	if !(t.Patrol.Start <= t.Patrol.End && t.Patrol.End <= t.Patrol.IdleUntil) {
		el.Add(fmt.Errorf("patrol times must be ordered start <= end <= idle_until"))
	}
	if t.Patrol.SegmentTime <= 0 {
		el.Add(fmt.Errorf("patrol.segment_time must be positive"))
	}

	iv := map[string]time.Duration{
		"clock":    t.Intervals.Clock,
		"growth":   t.Intervals.Growth,
		"hazard":   t.Intervals.Hazard,
		"respawn":  t.Intervals.Respawn,
		"npc":      t.Intervals.NPC,
		"sessions": t.Intervals.Sessions,
		"autosave": t.Intervals.Autosave,
	}
	for name, d := range iv {
		if d <= 0 {
			el.Add(fmt.Errorf("intervals.%s must be positive", name))
		}
	}

	if t.HeartbeatTimeout <= 0 {
		el.Add(fmt.Errorf("heartbeat_timeout must be positive"))
	}
	if t.DrainTimeout <= 0 {
		el.Add(fmt.Errorf("drain_timeout must be positive"))
	}

	return el.Err()
}

// Params converts the tuning into simulation parameters.
func (t Tuning) Params() sim.Params {
	return sim.Params{
		GrowingAfter:      t.Growth.GrowingAfter,
		ReadyAfter:        t.Growth.ReadyAfter,
		WaterDuration:     t.Growth.WaterDuration,
		WateredMultiplier: t.Growth.WateredMultiplier,
		HazardChance:      t.Hazards.Chance,
		HazardDeadAfter:   t.Hazards.DeadAfter,
		SeedRespawn:       t.Respawn.Seed,
		FruitRegrow:       t.Respawn.Fruit,
		CropYield:         t.Yields.Crop,
		FruitYield:        t.Yields.Fruit,
		PatrolStart:       t.Patrol.Start,
		PatrolEnd:         t.Patrol.End,
		IdleUntil:         t.Patrol.IdleUntil,
		SegmentTime:       t.Patrol.SegmentTime,
	}
}
