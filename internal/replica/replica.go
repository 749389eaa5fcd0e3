package replica

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/pixil98/go-farm/internal/protocol"
	"github.com/pixil98/go-farm/internal/sim"
	"github.com/pixil98/go-farm/internal/state"
)

const (
	DefaultSnapTolerance = 24.0
	DefaultRenderDelay   = 100 * time.Millisecond
	DefaultOutboxLimit   = 32

	// localSessionID names the local player while no server session exists.
	localSessionID = "local"
)

type Mode int

const (
	RemoteAuthority Mode = iota
	LocalAuthority
)

func (m Mode) String() string {
	switch m {
	case RemoteAuthority:
		return "remote"
	case LocalAuthority:
		return "local"
	}
	return "unknown"
}

// Identity is the cosmetic state chosen at character creation. It survives
// every resync.
type Identity struct {
	Name       string
	Class      state.Class
	Appearance string
}

// Replica is one client's mirror of the room. It predicts the local player,
// interpolates everything else and is the only source of outgoing intents.
// All methods are safe for concurrent use.
type Replica struct {
	mu sync.Mutex

	rules    *sim.Rules
	identity Identity
	layout   *state.Layout
	rng      *rand.Rand
	now      func() time.Time

	snapTolerance float64
	renderDelay   time.Duration
	outboxLimit   int

	mode      Mode
	sessionID string
	version   uint64
	rs        *state.RoomState

	self    state.Player
	hasSelf bool
	tracks  map[string]*track

	pendingMove *protocol.Intent
	queue       []protocol.Intent
}

func New(rules *sim.Rules, id Identity, opts ...ReplicaOpt) *Replica {
	r := &Replica{
		rules:         rules,
		identity:      id,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		now:           time.Now,
		snapTolerance: DefaultSnapTolerance,
		renderDelay:   DefaultRenderDelay,
		outboxLimit:   DefaultOutboxLimit,
		tracks:        map[string]*track{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle feeds one server message into the replica.
func (r *Replica) Handle(msg protocol.ServerMessage) error {
	switch msg.Type {
	case protocol.TypeWelcome:
		r.Welcome(msg.SessionID)
	case protocol.TypeSync:
		if msg.State == nil {
			return fmt.Errorf("%w: sync without state", protocol.ErrMalformed)
		}
		r.Resync(*msg.State)
	case protocol.TypeDelta:
		return r.ApplyDelta(msg.Version, msg.Changes)
	default:
		return fmt.Errorf("%w: unknown message type %q", protocol.ErrMalformed, msg.Type)
	}
	return nil
}

// Welcome records the session the server assigned to this client.
func (r *Replica) Welcome(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionID = sessionID
}

// Resync replaces the mirror with the server's full state and returns the
// replica to remote authority. Anything done while local is discarded except
// the local player's cosmetics.
func (r *Replica) Resync(v state.View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rs = state.FromView(v)
	r.version = v.Version
	r.mode = RemoteAuthority
	r.pendingMove = nil
	r.queue = nil

	at := r.now()
	r.tracks = map[string]*track{}
	for _, p := range v.Players {
		if p.ID == r.sessionID {
			continue
		}
		r.tracks[p.ID] = newTrack(p.Position(), at)
	}
	for _, n := range v.NPCs {
		r.tracks[n.ID] = newTrack(n.Position(), at)
	}

	p, ok := r.rs.Player(r.sessionID)
	r.hasSelf = ok
	if ok {
		r.self = r.withIdentity(p)
		r.rs.PutPlayer(r.self)
	}
	r.rs.Discard()
}

// ApplyDelta applies one ordered batch of server changes. Batches at or below
// the current version are already reflected and are ignored; a batch that
// skips a version reports ErrVersionGap and the caller must resync. A batch
// that removes the local player is applied and reports ErrRemoved.
func (r *Replica) ApplyDelta(version uint64, changes []state.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rs == nil {
		return ErrNotSynced
	}
	if r.mode == LocalAuthority || version <= r.version {
		return nil
	}
	if version != r.version+1 {
		return fmt.Errorf("%w: have %d, got %d", ErrVersionGap, r.version, version)
	}

	at := r.now()
	removed := false
	for _, ch := range changes {
		r.applyChange(ch, at)
		if ch.Kind == state.ChangePlayerLeft && ch.ID == r.sessionID {
			removed = true
		}
	}
	r.rs.Discard()
	r.version = version

	if removed {
		return ErrRemoved
	}
	return nil
}

func (r *Replica) applyChange(ch state.Change, at time.Time) {
	switch {
	case (ch.Kind == state.ChangePlayer || ch.Kind == state.ChangePlayerJoined) && ch.Player != nil:
		if ch.Player.ID == r.sessionID {
			r.reconcile(*ch.Player)
			return
		}
		r.observe(ch.Player.ID, ch.Player.Position(), at)
	case ch.Kind == state.ChangePlayerLeft:
		// The prediction of the local player is kept for local play.
		delete(r.tracks, ch.ID)
	case ch.Kind == state.ChangeNPC && ch.NPC != nil:
		r.observe(ch.NPC.ID, ch.NPC.Position(), at)
	}
	ch.Apply(r.rs)
}

// reconcile checks an authoritative update for the local player against the
// prediction. Small drift keeps the prediction; anything larger snaps.
func (r *Replica) reconcile(auth state.Player) {
	auth = r.withIdentity(auth)
	if !r.hasSelf || r.self.Position().Distance(auth.Position()) > r.snapTolerance {
		r.self = auth
	} else {
		pos, vx, vy := r.self.Position(), r.self.VX, r.self.VY
		r.self = auth
		r.self.X, r.self.Y, r.self.VX, r.self.VY = pos.X, pos.Y, vx, vy
	}
	r.hasSelf = true
}

func (r *Replica) observe(id string, p state.Point, at time.Time) {
	tr, ok := r.tracks[id]
	if !ok {
		r.tracks[id] = newTrack(p, at)
		return
	}
	tr.push(p, at)
}

func (r *Replica) withIdentity(p state.Player) state.Player {
	if r.identity.Name != "" {
		p.Name = r.identity.Name
	}
	if r.identity.Class != "" {
		p.Class = r.identity.Class
	}
	if r.identity.Appearance != "" {
		p.Appearance = r.identity.Appearance
	}
	return p
}

// Move predicts the local player at the new position. While remote the
// intent replaces any unsent move.
func (r *Replica) Move(x, y, vx, vy float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.move(protocol.Move(x, y, vx, vy))
}

func (r *Replica) move(in protocol.Intent) {
	if r.hasSelf {
		r.self.X, r.self.Y, r.self.VX, r.self.VY = in.Move.X, in.Move.Y, in.Move.VX, in.Move.VY
	}

	if r.mode == LocalAuthority {
		r.applyLocal(in)
		return
	}
	r.pendingMove = &in
}

// Act submits a farming intent. While remote it is queued for sending and
// dropped when the outbox is full; while local it is applied to the mirror
// at once. Act reports whether the intent was accepted.
func (r *Replica) Act(in protocol.Intent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if in.Kind == protocol.IntentMove {
		if in.Move == nil {
			return false
		}
		r.move(in)
		return true
	}

	if r.mode == LocalAuthority {
		return r.applyLocal(in)
	}
	if len(r.queue) >= r.outboxLimit {
		return false
	}
	r.queue = append(r.queue, in)
	return true
}

func (r *Replica) applyLocal(in protocol.Intent) bool {
	if r.rs == nil {
		return false
	}
	ok, _ := r.rules.Apply(r.rs, r.selfID(), in)
	r.rs.Discard()
	return ok
}

// Outbox drains the intents waiting to be sent, oldest first. The latest move
// goes first so farming intents are sent from the current position. Nothing
// is kept for retry.
func (r *Replica) Outbox() []protocol.Intent {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode == LocalAuthority {
		return nil
	}

	var out []protocol.Intent
	if r.pendingMove != nil {
		out = append(out, *r.pendingMove)
		r.pendingMove = nil
	}
	out = append(out, r.queue...)
	r.queue = nil
	return out
}

// Disconnected promotes the replica to local authority. Unsent intents are
// dropped.
func (r *Replica) Disconnected() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mode = LocalAuthority
	r.pendingMove = nil
	r.queue = nil

	if r.rs == nil {
		if r.layout == nil {
			return
		}
		r.rs = state.New(*r.layout)
		r.rules.Patrol(r.rs)
	}

	if !r.hasSelf {
		spawn := r.rs.Spawn()
		r.self = r.withIdentity(state.Player{ID: r.selfID(), X: spawn.X, Y: spawn.Y})
		r.hasSelf = true
	}
	r.self.ID = r.selfID()
	r.rs.PutPlayer(r.self)
	r.rs.Discard()
}

func (r *Replica) selfID() string {
	if r.sessionID == "" {
		return localSessionID
	}
	return r.sessionID
}

// Step runs the room simulation on the mirror while the replica is the
// authority. It does nothing while remote.
func (r *Replica) Step(elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode != LocalAuthority || r.rs == nil {
		return
	}

	r.rules.AdvanceClock(r.rs, elapsed)
	r.rules.Grow(r.rs, elapsed)
	r.rules.SpreadHazards(r.rs, elapsed, r.rng)
	r.rules.Respawn(r.rs, elapsed)
	r.rules.Patrol(r.rs)

	at := r.now()
	for i := 0; i < r.rs.NPCCount(); i++ {
		n, _ := r.rs.NPC(i)
		r.observe(n.ID, n.Position(), at)
	}
	r.rs.Discard()
}

// RenderPosition is where the entity with the given id should be drawn at
// time now. The local player is drawn at its prediction; everyone else is
// interpolated between their last two samples.
func (r *Replica) RenderPosition(id string, now time.Time) (state.Point, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasSelf && id == r.self.ID {
		return r.self.Position(), true
	}
	tr, ok := r.tracks[id]
	if !ok {
		return state.Point{}, false
	}
	return tr.at(now.Add(-r.renderDelay)), true
}

func (r *Replica) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

func (r *Replica) Version() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

func (r *Replica) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

func (r *Replica) Identity() Identity {
	return r.identity
}

// Self returns the predicted local player.
func (r *Replica) Self() (state.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.self, r.hasSelf
}

// View copies the mirror for rendering. It reports false before the first sync.
func (r *Replica) View() (state.View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rs == nil {
		return state.View{}, false
	}
	return r.rs.View(), true
}
