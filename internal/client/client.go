package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-farm/internal/protocol"
	"github.com/pixil98/go-farm/internal/replica"
)

const (
	DefaultSendInterval = 50 * time.Millisecond
	DefaultHeartbeat    = 3 * time.Second
	DefaultMinBackoff   = 500 * time.Millisecond
	DefaultMaxBackoff   = 10 * time.Second

	handshakeTimeout = 5 * time.Second
	writeTimeout     = 5 * time.Second
)

// Client connects a Replica to a room server and keeps it connected. While
// the server is unreachable the replica runs the room locally.
type Client struct {
	url     string
	replica *replica.Replica
	dialer  *websocket.Dialer

	sendInterval time.Duration
	minBackoff   time.Duration
	maxBackoff   time.Duration
	onConnection func(connected bool)
}

func New(url string, r *replica.Replica, opts ...ClientOpt) *Client {
	c := &Client{
		url:          url,
		replica:      r,
		dialer:       websocket.DefaultDialer,
		sendInterval: DefaultSendInterval,
		minBackoff:   DefaultMinBackoff,
		maxBackoff:   DefaultMaxBackoff,
		onConnection: func(bool) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start runs sessions against the server until ctx is cancelled, redialing
// with exponential backoff whenever a session ends.
func (c *Client) Start(ctx context.Context) error {
	backoff := c.minBackoff
	for {
		established, err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}

		c.replica.Disconnected()
		if established {
			c.onConnection(false)
			backoff = c.minBackoff
		}
		slog.WarnContext(ctx, "connection lost, playing locally", "error", err, "retry", backoff)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, c.maxBackoff)
	}
}

// session runs one connection. It reports whether the handshake completed.
func (c *Client) session(ctx context.Context) (bool, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return false, fmt.Errorf("dialing %s: %w", c.url, err)
	}
	defer conn.Close()

	heartbeat, err := c.handshake(conn)
	if err != nil {
		return false, fmt.Errorf("handshake: %w", err)
	}
	slog.InfoContext(ctx, "connected", "session", c.replica.SessionID(), "version", c.replica.Version())
	c.onConnection(true)

	sctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	go func() {
		cancel(c.readLoop(conn))
	}()
	go func() {
		<-sctx.Done()
		_ = conn.Close()
	}()

	return true, c.writeLoop(sctx, conn, heartbeat)
}

func (c *Client) handshake(conn *websocket.Conn) (time.Duration, error) {
	id := c.replica.Identity()
	hello, err := protocol.EncodeHello(protocol.Hello{Name: id.Name, Class: string(id.Class), Appearance: id.Appearance})
	if err != nil {
		return 0, err
	}
	if err := write(conn, hello); err != nil {
		return 0, fmt.Errorf("writing hello: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	welcome, err := read(conn)
	if err != nil {
		return 0, fmt.Errorf("reading welcome: %w", err)
	}
	if welcome.Type != protocol.TypeWelcome {
		return 0, fmt.Errorf("%w: expected welcome, got %q", protocol.ErrMalformed, welcome.Type)
	}
	heartbeat := DefaultHeartbeat
	if welcome.HeartbeatMs > 0 {
		heartbeat = time.Duration(welcome.HeartbeatMs) * time.Millisecond
	}

	synced, err := read(conn)
	if err != nil {
		return 0, fmt.Errorf("reading sync: %w", err)
	}
	if synced.Type != protocol.TypeSync {
		return 0, fmt.Errorf("%w: expected sync, got %q", protocol.ErrMalformed, synced.Type)
	}
	_ = conn.SetReadDeadline(time.Time{})

	if err := c.replica.Handle(welcome); err != nil {
		return 0, err
	}
	if err := c.replica.Handle(synced); err != nil {
		return 0, err
	}
	return heartbeat, nil
}

// readLoop feeds server messages to the replica until the connection fails
// or the replica falls behind and needs a fresh sync.
func (c *Client) readLoop(conn *websocket.Conn) error {
	for {
		msg, err := read(conn)
		if errors.Is(err, protocol.ErrMalformed) {
			slog.Debug("malformed server message dropped", "error", err)
			continue
		}
		if err != nil {
			return fmt.Errorf("reading: %w", err)
		}
		if err := c.replica.Handle(msg); err != nil {
			return fmt.Errorf("applying %s: %w", msg.Type, err)
		}
	}
}

// writeLoop flushes the replica outbox at the send rate and keeps the
// session alive with heartbeats.
func (c *Client) writeLoop(ctx context.Context, conn *websocket.Conn, heartbeat time.Duration) error {
	send := time.NewTicker(c.sendInterval)
	defer send.Stop()
	beat := time.NewTicker(heartbeat)
	defer beat.Stop()

	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-send.C:
			for _, in := range c.replica.Outbox() {
				data, err := protocol.EncodeIntent(in)
				if err != nil {
					slog.WarnContext(ctx, "encoding intent", "kind", in.Kind, "error", err)
					continue
				}
				if err := write(conn, data); err != nil {
					return fmt.Errorf("writing intent: %w", err)
				}
			}
		case t := <-beat.C:
			data, err := protocol.EncodeHeartbeat(protocol.Heartbeat{SentAt: t.UnixMilli()})
			if err != nil {
				return err
			}
			if err := write(conn, data); err != nil {
				return fmt.Errorf("writing heartbeat: %w", err)
			}
		}
	}
}

func read(conn *websocket.Conn) (protocol.ServerMessage, error) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return protocol.ServerMessage{}, err
	}
	return protocol.DecodeServer(data)
}

func write(conn *websocket.Conn, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}
