package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-farm/internal/protocol"
	"github.com/pixil98/go-farm/internal/room"
	"github.com/pixil98/go-farm/internal/state"
)

const (
	DefaultOutboxSize   = 256
	DefaultWriteTimeout = 5 * time.Second

	handshakeTimeout = 5 * time.Second
)

// Room is the part of the room controller a session talks to.
type Room interface {
	Join(ctx context.Context, req room.JoinRequest) (room.JoinResponse, error)
	Submit(sessionID string, in protocol.Intent) error
	Touch(sessionID string) error
	Leave(sessionID string) error
	Status() room.Status
}

// DeltaSource delivers every encoded delta batch of the room in order.
type DeltaSource interface {
	SubscribeDeltas(handler func(data []byte)) (func(), error)
}

type ConnectionManager struct {
	room   Room
	deltas DeltaSource

	heartbeatTimeout time.Duration
	outboxSize       int
	writeTimeout     time.Duration
}

func NewConnectionManager(r Room, deltas DeltaSource, heartbeatTimeout time.Duration, opts ...ConnectionManagerOpt) *ConnectionManager {
	m := &ConnectionManager{
		room:             r,
		deltas:           deltas,
		heartbeatTimeout: heartbeatTimeout,
		outboxSize:       DefaultOutboxSize,
		writeTimeout:     DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn *websocket.Conn) {
	if err := m.runSession(ctx, conn); err != nil {
		slog.WarnContext(ctx, "player session", "error", err)
	}
}

func (m *ConnectionManager) runSession(ctx context.Context, conn *websocket.Conn) error {
	hello, err := m.readHello(conn)
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected hello"),
			time.Now().Add(time.Second))
		return fmt.Errorf("reading hello: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Subscribe before joining so no delta after the sync snapshot is missed.
	// Anything older than the snapshot is dropped by the client.
	out := newOutbox(m.outboxSize, func() {
		slog.WarnContext(ctx, "session outbox overflowed, disconnecting")
		cancel()
	})
	unsubscribe, err := m.deltas.SubscribeDeltas(out.push)
	if err != nil {
		return fmt.Errorf("subscribing to deltas: %w", err)
	}
	defer unsubscribe()

	resp, err := m.room.Join(ctx, room.JoinRequest{
		Name:       hello.Name,
		Class:      state.Class(hello.Class),
		Appearance: hello.Appearance,
	})
	if err != nil {
		return fmt.Errorf("joining room: %w", err)
	}
	defer func() {
		if err := m.room.Leave(resp.SessionID); err != nil {
			slog.DebugContext(ctx, "leave not queued, session will time out", "session", resp.SessionID, "error", err)
		}
	}()

	if err := m.write(conn, protocol.Welcome(resp.SessionID, m.heartbeatInterval().Milliseconds())); err != nil {
		return fmt.Errorf("writing welcome: %w", err)
	}
	if err := m.write(conn, protocol.Sync(resp.View)); err != nil {
		return fmt.Errorf("writing sync: %w", err)
	}

	go m.writeLoop(ctx, cancel, conn, out)

	// A player the room removed, by timeout or shutdown, has no session left.
	go func() {
		select {
		case <-resp.Gone:
			slog.InfoContext(ctx, "player removed by room, closing session", "session", resp.SessionID)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session ended"),
				time.Now().Add(time.Second))
			cancel()
		case <-ctx.Done():
		}
	}()

	// Unblock the reader once the session is over.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	return m.readLoop(ctx, conn, resp.SessionID)
}

// heartbeatInterval is how often clients are asked to prove they are alive.
func (m *ConnectionManager) heartbeatInterval() time.Duration {
	return m.heartbeatTimeout / 3
}

func (m *ConnectionManager) readHello(conn *websocket.Conn) (protocol.Hello, error) {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return protocol.Hello{}, err
	}
	msg, err := protocol.DecodeClient(data)
	if err != nil {
		return protocol.Hello{}, err
	}
	if msg.Type != protocol.TypeHello {
		return protocol.Hello{}, fmt.Errorf("%w: got %q", ErrExpectedHello, msg.Type)
	}
	return *msg.Hello, nil
}

func (m *ConnectionManager) readLoop(ctx context.Context, conn *websocket.Conn, sessionID string) error {
	for {
		_ = conn.SetReadDeadline(time.Now().Add(m.heartbeatTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("reading message: %w", err)
		}
		m.dispatch(ctx, sessionID, data)
	}
}

// dispatch forwards one client frame to the room. Malformed frames and
// frames the room cannot take are dropped.
func (m *ConnectionManager) dispatch(ctx context.Context, sessionID string, data []byte) {
	msg, err := protocol.DecodeClient(data)
	if err != nil {
		slog.DebugContext(ctx, "malformed message dropped", "session", sessionID, "error", err)
		return
	}

	switch {
	case msg.Intent != nil:
		err = m.room.Submit(sessionID, *msg.Intent)
	case msg.Type == protocol.TypeHeartbeat:
		err = m.room.Touch(sessionID)
	default:
		slog.DebugContext(ctx, "unexpected message dropped", "session", sessionID, "type", msg.Type)
		return
	}

	if errors.Is(err, room.ErrInboxFull) {
		slog.WarnContext(ctx, "room busy, message dropped", "session", sessionID, "type", msg.Type)
	} else if err != nil {
		slog.DebugContext(ctx, "message dropped", "session", sessionID, "type", msg.Type, "error", err)
	}
}

func (m *ConnectionManager) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out *outbox) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-out.ch:
			_ = conn.SetWriteDeadline(time.Now().Add(m.writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.DebugContext(ctx, "writing delta failed", "error", err)
				return
			}
		}
	}
}

func (m *ConnectionManager) write(conn *websocket.Conn, msg protocol.ServerMessage) error {
	data, err := protocol.EncodeServer(msg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(m.writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// outbox is a bounded queue of encoded frames for one session. A push that
// finds it full calls overflow once.
type outbox struct {
	ch       chan []byte
	overflow func()
	once     sync.Once
}

func newOutbox(size int, overflow func()) *outbox {
	return &outbox{ch: make(chan []byte, size), overflow: overflow}
}

func (o *outbox) push(data []byte) {
	select {
	case o.ch <- data:
	default:
		o.once.Do(o.overflow)
	}
}
