package sim

import "time"

// Params are the balance knobs of the simulation.
type Params struct {
	// Growth stage thresholds, measured on the plot growth timer.
	GrowingAfter time.Duration
	ReadyAfter   time.Duration

	// WaterDuration is how much growth a single watering lasts for.
	WaterDuration     time.Duration
	WateredMultiplier float64

	// HazardChance is the probability per hazard step that a healthy
	// growing plot picks up weeds or bugs.
	HazardChance    float64
	HazardDeadAfter time.Duration

	SeedRespawn time.Duration
	FruitRegrow time.Duration

	CropYield  int
	FruitYield int

	// NPC routine in game minutes: patrol in [PatrolStart, PatrolEnd), stand
	// idle until IdleUntil, then go home. SegmentTime is the walk time between
	// two waypoints.
	PatrolStart float64
	PatrolEnd   float64
	IdleUntil   float64
	SegmentTime float64
}

func DefaultParams() Params {
	return Params{
		GrowingAfter:      30 * time.Second,
		ReadyAfter:        60 * time.Second,
		WaterDuration:     60 * time.Second,
		WateredMultiplier: 2,
		HazardChance:      0.02,
		HazardDeadAfter:   45 * time.Second,
		SeedRespawn:       30 * time.Second,
		FruitRegrow:       60 * time.Second,
		CropYield:         2,
		FruitYield:        1,
		PatrolStart:       360,
		PatrolEnd:         1140,
		IdleUntil:         1200,
		SegmentTime:       30,
	}
}
