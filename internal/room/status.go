package room

type Phase int32

const (
	PhaseInitializing Phase = iota
	PhaseRunning
	PhaseDraining
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	case PhaseStopped:
		return "stopped"
	}
	return "unknown"
}

// Status is a point-in-time summary of the room for operators.
type Status struct {
	Phase     string  `json:"phase"`
	Players   int     `json:"players"`
	GameTime  float64 `json:"gameTime"`
	Version   uint64  `json:"version"`
	LastSaved int64   `json:"lastSaved"`
}

// Status may be called from any goroutine.
func (c *Controller) Status() Status {
	return *c.status.Load()
}

func (c *Controller) updateStatus() {
	s := &Status{Phase: c.Phase().String()}
	if c.rs != nil {
		s.Players = c.rs.PlayerCount()
		s.GameTime = c.rs.Clock().GameTime
		s.Version = c.rs.Version()
	}
	if c.saver != nil {
		s.LastSaved = c.saver.LastSaved()
	}
	c.status.Store(s)
}
