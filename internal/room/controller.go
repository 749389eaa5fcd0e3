package room

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pixil98/go-farm/internal/protocol"
	"github.com/pixil98/go-farm/internal/sim"
	"github.com/pixil98/go-farm/internal/state"
	"github.com/pixil98/go-farm/internal/storage"
	"github.com/pixil98/go-farm/internal/tuning"
)

const DefaultInboxSize = 1024

// Broadcaster delivers server messages to every session of the room.
type Broadcaster interface {
	Broadcast(msg protocol.ServerMessage) error
}

// GrantSink receives item awards for the inventory collaborator.
type GrantSink interface {
	Grant(g sim.Grant) error
}

type msgKind int

const (
	msgIntent msgKind = iota
	msgJoin
	msgLeave
	msgTouch
	msgTick
	msgView
)

// message is one unit of work for the controller loop.
type message struct {
	kind      msgKind
	sessionID string
	intent    protocol.Intent
	join      JoinRequest
	task      string
	elapsed   time.Duration

	joined chan JoinResponse
	view   chan state.View
}

// Controller is the single writer of a room. Every intent, session event and
// simulation tick passes through one goroutine in arrival order, so the room
// state needs no locking.
type Controller struct {
	rules     *sim.Rules
	layout    state.Layout
	intervals tuning.Intervals

	heartbeatTimeout time.Duration
	drainTimeout     time.Duration

	persister storage.Persister
	saver     *storage.Saver
	out       Broadcaster
	grants    GrantSink
	rng       *rand.Rand
	now       func() time.Time
	inboxSize int

	inbox chan message
	done  chan struct{}

	phase  atomic.Int32
	status atomic.Pointer[Status]

	// owned by the loop goroutine
	rs       *state.RoomState
	lastSeen map[string]time.Time
	gone     map[string]chan struct{}
}

func NewController(t tuning.Tuning, opts ...ControllerOpt) *Controller {
	c := &Controller{
		rules:            sim.NewRules(t.Params()),
		layout:           t.Layout(),
		intervals:        t.Intervals,
		heartbeatTimeout: t.HeartbeatTimeout,
		drainTimeout:     t.DrainTimeout,
		out:              discard{},
		grants:           discard{},
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
		now:              time.Now,
		inboxSize:        DefaultInboxSize,
		done:             make(chan struct{}),
		lastSeen:         map[string]time.Time{},
		gone:             map[string]chan struct{}{},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.inbox = make(chan message, c.inboxSize)
	if c.persister != nil {
		c.saver = storage.NewSaver(c.persister)
	}
	c.status.Store(&Status{Phase: PhaseInitializing.String()})

	return c
}

func (c *Controller) Phase() Phase {
	return Phase(c.phase.Load())
}

func (c *Controller) setPhase(ctx context.Context, p Phase) {
	c.phase.Store(int32(p))
	slog.InfoContext(ctx, "room phase changed", "phase", p)
}

// Start loads the room, runs it until ctx is cancelled and then saves it one
// last time.
func (c *Controller) Start(ctx context.Context) error {
	defer close(c.done)

	c.setPhase(ctx, PhaseInitializing)
	c.rs = c.load(ctx)
	c.updateStatus()

	c.setPhase(ctx, PhaseRunning)
	c.updateStatus()
	c.run(ctx)

	c.setPhase(ctx, PhaseDraining)
	c.updateStatus()
	c.endSessions()
	c.drain(ctx)

	c.setPhase(ctx, PhaseStopped)
	c.updateStatus()
	return nil
}

// load builds a fresh room and overlays the saved snapshot, if any. Any load
// failure leaves the fresh room in place.
func (c *Controller) load(ctx context.Context) *state.RoomState {
	rs := state.New(c.layout)
	c.rules.Patrol(rs)
	rs.Discard()

	if c.persister == nil {
		return rs
	}

	snap, err := c.persister.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNoSnapshot):
		slog.InfoContext(ctx, "no saved room, starting fresh")
		return rs
	case err != nil:
		slog.WarnContext(ctx, "loading saved room failed, starting fresh", "error", err)
		return rs
	}

	if err := snap.ApplyTo(rs); err != nil {
		slog.WarnContext(ctx, "saved room is invalid, starting fresh", "error", err)
		rs = state.New(c.layout)
		c.rules.Patrol(rs)
		rs.Discard()
		return rs
	}
	c.rules.Patrol(rs)
	rs.Discard()

	slog.InfoContext(ctx, "room restored", "gameTime", rs.Clock().GameTime, "lastSaved", snap.LastSaved)
	return rs
}

func (c *Controller) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-c.inbox:
			c.handle(ctx, m)
			c.updateStatus()
		}
	}
}

func (c *Controller) handle(ctx context.Context, m message) {
	switch m.kind {
	case msgIntent:
		c.applyIntent(ctx, m.sessionID, m.intent)
	case msgJoin:
		m.joined <- c.join(ctx, m.join)
	case msgLeave:
		c.leave(ctx, m.sessionID, "left")
		c.publish(ctx)
	case msgTouch:
		if _, ok := c.lastSeen[m.sessionID]; ok {
			c.lastSeen[m.sessionID] = c.now()
		}
	case msgTick:
		c.step(ctx, m.task, m.elapsed)
	case msgView:
		m.view <- c.rs.View()
	}
}

// applyIntent is the single entry point for client intents.
func (c *Controller) applyIntent(ctx context.Context, sessionID string, in protocol.Intent) {
	if _, ok := c.lastSeen[sessionID]; !ok {
		slog.DebugContext(ctx, "intent from unknown session dropped", "session", sessionID, "kind", in.Kind)
		return
	}
	c.lastSeen[sessionID] = c.now()

	ok, grant := c.rules.Apply(c.rs, sessionID, in)
	if !ok {
		c.rs.Discard()
		slog.DebugContext(ctx, "intent rejected", "session", sessionID, "kind", in.Kind)
		return
	}
	c.publish(ctx)

	if grant != nil {
		if err := c.grants.Grant(*grant); err != nil {
			slog.WarnContext(ctx, "reporting grant failed", "session", sessionID, "item", grant.Item, "error", err)
		}
	}
}

// publish closes the current step and broadcasts its changes.
func (c *Controller) publish(ctx context.Context) {
	changes := c.rs.Flush()
	if len(changes) == 0 {
		return
	}
	if err := c.out.Broadcast(protocol.Delta(c.rs.Version(), changes)); err != nil {
		slog.WarnContext(ctx, "broadcasting delta failed", "version", c.rs.Version(), "error", err)
	}
}

func (c *Controller) drain(ctx context.Context) {
	if c.saver == nil {
		return
	}

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.drainTimeout)
	defer cancel()

	if err := c.saver.Flush(dctx, storage.FromState(c.rs)); err != nil {
		slog.WarnContext(ctx, "final save failed", "error", err, "timeout", c.drainTimeout)
		return
	}
	slog.InfoContext(ctx, "room saved")
}

// SavePending reports whether a save outlived the drain and is still
// running against the persister.
func (c *Controller) SavePending() bool {
	return c.saver != nil && c.saver.Pending()
}

// post queues a message, waiting for space.
func (c *Controller) post(ctx context.Context, m message) error {
	if c.Phase() > PhaseRunning {
		return ErrNotRunning
	}
	select {
	case c.inbox <- m:
		return nil
	case <-c.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// View returns a copy of the whole room as seen by the controller loop.
func (c *Controller) View(ctx context.Context) (state.View, error) {
	reply := make(chan state.View, 1)
	if err := c.post(ctx, message{kind: msgView, view: reply}); err != nil {
		return state.View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-c.done:
		return state.View{}, ErrNotRunning
	case <-ctx.Done():
		return state.View{}, ctx.Err()
	}
}

type discard struct{}

func (discard) Broadcast(protocol.ServerMessage) error { return nil }
func (discard) Grant(sim.Grant) error                  { return nil }
