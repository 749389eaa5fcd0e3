package client

import (
	"context"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-farm/internal/listener"
	"github.com/pixil98/go-farm/internal/protocol"
	"github.com/pixil98/go-farm/internal/replica"
	"github.com/pixil98/go-farm/internal/room"
	"github.com/pixil98/go-farm/internal/sim"
	"github.com/pixil98/go-farm/internal/state"
	"github.com/pixil98/go-farm/internal/tuning"
	"github.com/pixil98/go-testutil"
)

// hub fans room deltas out to sessions in process.
type hub struct {
	mu       sync.Mutex
	next     int
	handlers map[int]func([]byte)
}

func (h *hub) Broadcast(msg protocol.ServerMessage) error {
	data, err := protocol.EncodeServer(msg)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, f := range h.handlers {
		f(data)
	}
	return nil
}

func (h *hub) SubscribeDeltas(handler func(data []byte)) (func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.handlers == nil {
		h.handlers = map[int]func([]byte){}
	}
	id := h.next
	h.next++
	h.handlers[id] = handler
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.handlers, id)
	}, nil
}

type connEvents struct {
	mu     sync.Mutex
	events []bool
}

func (e *connEvents) record(connected bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, connected)
}

func (e *connEvents) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events)
}

func (e *connEvents) list() []bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]bool(nil), e.events...)
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type testServer struct {
	ctrl *room.Controller
	cm   *listener.ConnectionManager
	addr string
	url  string
	stop func()
}

func startServer(t *testing.T) *testServer {
	t.Helper()

	tu := tuning.Default()
	tu.Hazards.Chance = 0

	h := &hub{}
	ctrl := room.NewController(tu, room.WithBroadcaster(h))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ctrl.Start(ctx)
	}()
	eventually(t, "room running", func() bool { return ctrl.Phase() == room.PhaseRunning })

	s := &testServer{
		ctrl: ctrl,
		cm:   listener.NewConnectionManager(ctrl, h, tu.HeartbeatTimeout),
		addr: "127.0.0.1:0",
	}
	s.serve(t)

	t.Cleanup(func() {
		s.stop()
		cancel()
		<-done
	})
	return s
}

// serve starts the http side on the server's address, reusing the port of
// any earlier run.
func (s *testServer) serve(t *testing.T) {
	t.Helper()

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	s.addr = ln.Addr().String()
	s.url = "ws://" + s.addr + "/ws"

	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Handler: listener.NewWebsocketListener("", s.cm).Handler(ctx)}
	go func() { _ = srv.Serve(ln) }()

	s.stop = func() {
		cancel()
		_ = srv.Close()
	}
}

// restart drops every session and brings the http side back on the same port.
func (s *testServer) restart(t *testing.T) {
	t.Helper()
	s.stop()
	s.serve(t)
}

func startClient(t *testing.T, url string, r *replica.Replica, events *connEvents) {
	t.Helper()

	c := New(url, r,
		WithSendInterval(10*time.Millisecond),
		WithBackoff(10*time.Millisecond, 50*time.Millisecond),
		WithConnectionHook(events.record),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func newReplica() *replica.Replica {
	return replica.New(sim.NewRules(sim.DefaultParams()), replica.Identity{Name: "Ada", Class: state.ClassRanger})
}

func TestClient_RoundTrip(t *testing.T) {
	srv := startServer(t)
	r := newReplica()
	events := &connEvents{}
	startClient(t, srv.url, r, events)

	eventually(t, "connected", func() bool { return events.count() == 1 })

	self, ok := r.Self()
	testutil.AssertEqual(t, "joined", ok, true)
	testutil.AssertEqual(t, "name", self.Name, "Ada")

	r.Act(protocol.Target(protocol.IntentHoePlot, 0))
	r.Move(120, 80, 1, 0)

	eventually(t, "hoe reflected in replica", func() bool {
		v, _ := r.View()
		return v.Plots[0].State == state.PlotTilled
	})

	v, err := srv.ctrl.View(context.Background())
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	testutil.AssertEqual(t, "server plot", v.Plots[0].State, state.PlotTilled)
	testutil.AssertEqual(t, "replica version", r.Version() <= v.Version, true)

	eventually(t, "move reflected on server", func() bool {
		v, err := srv.ctrl.View(context.Background())
		if err != nil || len(v.Players) != 1 {
			return false
		}
		return v.Players[0].Position() == state.Point{X: 120, Y: 80}
	})
}

// Two clients see each other join and move.
func TestClient_SeesOtherPlayers(t *testing.T) {
	srv := startServer(t)

	a, b := newReplica(), newReplica()
	aEvents, bEvents := &connEvents{}, &connEvents{}
	startClient(t, srv.url, a, aEvents)
	eventually(t, "a connected", func() bool { return aEvents.count() == 1 })
	startClient(t, srv.url, b, bEvents)
	eventually(t, "b connected", func() bool { return bEvents.count() == 1 })

	eventually(t, "a sees b", func() bool {
		_, ok := a.RenderPosition(b.SessionID(), time.Now())
		return ok
	})

	b.Move(300, 300, 0, 0)
	eventually(t, "a sees b move", func() bool {
		p, _ := a.RenderPosition(b.SessionID(), time.Now().Add(time.Second))
		return p == state.Point{X: 300, Y: 300}
	})
}

// Losing the server switches the replica to local play; it rejoins and the
// server state wins once the connection is back.
func TestClient_Reconnect(t *testing.T) {
	srv := startServer(t)
	r := newReplica()
	events := &connEvents{}
	startClient(t, srv.url, r, events)

	eventually(t, "connected", func() bool { return events.count() == 1 })
	first := r.SessionID()

	srv.restart(t)

	eventually(t, "reconnected", func() bool { return events.count() == 3 })
	got := events.list()
	testutil.AssertEqual(t, "first event", got[0], true)
	testutil.AssertEqual(t, "lost", got[1], false)
	testutil.AssertEqual(t, "back", got[2], true)

	testutil.AssertEqual(t, "mode", r.Mode(), replica.RemoteAuthority)
	if r.SessionID() == first {
		t.Error("expected a new session after reconnecting")
	}
	self, _ := r.Self()
	testutil.AssertEqual(t, "name kept", self.Name, "Ada")
}
