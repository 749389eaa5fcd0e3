package room

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pixil98/go-farm/internal/protocol"
	"github.com/pixil98/go-farm/internal/state"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxNameLength = 24
	defaultName   = "Farmer"
)

// JoinRequest carries the cosmetic choices made at character creation.
type JoinRequest struct {
	Name       string
	Class      state.Class
	Appearance string
}

// JoinResponse names the new session and holds the full room as of the
// moment the player was added. Gone is closed once the room has removed the
// player, whether it left, timed out or the room stopped.
type JoinResponse struct {
	SessionID string
	View      state.View
	Gone      <-chan struct{}
}

// Join adds a player to the room and waits for the controller to accept it.
func (c *Controller) Join(ctx context.Context, req JoinRequest) (JoinResponse, error) {
	reply := make(chan JoinResponse, 1)
	if err := c.post(ctx, message{kind: msgJoin, join: req, joined: reply}); err != nil {
		return JoinResponse{}, err
	}
	select {
	case resp := <-reply:
		return resp, nil
	case <-c.done:
		return JoinResponse{}, ErrNotRunning
	case <-ctx.Done():
		return JoinResponse{}, ctx.Err()
	}
}

// Submit queues an intent without waiting. A full inbox drops the intent.
func (c *Controller) Submit(sessionID string, in protocol.Intent) error {
	return c.offer(message{kind: msgIntent, sessionID: sessionID, intent: in})
}

// Touch records a heartbeat for the session.
func (c *Controller) Touch(sessionID string) error {
	return c.offer(message{kind: msgTouch, sessionID: sessionID})
}

// Leave removes the session's player. If the inbox is full the session is
// reaped by the heartbeat sweep instead.
func (c *Controller) Leave(sessionID string) error {
	return c.offer(message{kind: msgLeave, sessionID: sessionID})
}

func (c *Controller) offer(m message) error {
	if c.Phase() != PhaseRunning {
		return ErrNotRunning
	}
	select {
	case c.inbox <- m:
		return nil
	default:
		return ErrInboxFull
	}
}

func (c *Controller) join(ctx context.Context, req JoinRequest) JoinResponse {
	class := req.Class
	if !class.Valid() {
		class = state.ClassFarmer
	}

	spawn := c.rs.Spawn()
	p := state.Player{
		ID:         uuid.NewString(),
		Name:       normalizeName(req.Name),
		Class:      class,
		Appearance: req.Appearance,
		X:          spawn.X,
		Y:          spawn.Y,
	}
	c.rs.PutPlayer(p)
	c.lastSeen[p.ID] = c.now()
	gone := make(chan struct{})
	c.gone[p.ID] = gone
	c.publish(ctx)

	slog.InfoContext(ctx, "player joined", "session", p.ID, "name", p.Name, "players", c.rs.PlayerCount())
	return JoinResponse{SessionID: p.ID, View: c.rs.View(), Gone: gone}
}

// leave removes the session's player. The caller closes the step.
func (c *Controller) leave(ctx context.Context, sessionID string, reason string) {
	delete(c.lastSeen, sessionID)
	if gone, ok := c.gone[sessionID]; ok {
		close(gone)
		delete(c.gone, sessionID)
	}
	if !c.rs.RemovePlayer(sessionID) {
		return
	}
	slog.InfoContext(ctx, "player left", "session", sessionID, "reason", reason, "players", c.rs.PlayerCount())
}

// endSessions tells every remaining session the room is going away.
func (c *Controller) endSessions() {
	for id, gone := range c.gone {
		close(gone)
		delete(c.gone, id)
	}
}

// sweepSessions removes every session silent for longer than the heartbeat
// timeout.
func (c *Controller) sweepSessions(ctx context.Context) {
	now := c.now()

	var expired []string
	for id, seen := range c.lastSeen {
		if now.Sub(seen) > c.heartbeatTimeout {
			expired = append(expired, id)
		}
	}
	sort.Strings(expired)

	for _, id := range expired {
		c.leave(ctx, id, "timeout")
	}
}

// normalizeName trims and title-cases a display name and bounds its length.
func normalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return defaultName
	}
	name = cases.Title(language.Und).String(name)
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}
	return name
}
