package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-farm/internal/state"
)

type ServerMessageType string

const (
	TypeWelcome ServerMessageType = "welcome"
	TypeSync    ServerMessageType = "sync"
	TypeDelta   ServerMessageType = "delta"
)

// ServerMessage is every frame the room sends. A welcome names the session,
// a sync carries the whole room and a delta carries the ordered changes of one
// controller step, tagged with the state version they produce.
type ServerMessage struct {
	Type        ServerMessageType `json:"type"`
	SessionID   string            `json:"sessionId,omitempty"`
	HeartbeatMs int64             `json:"heartbeatMs,omitempty"`
	Version     uint64            `json:"version,omitempty"`
	State       *state.View       `json:"state,omitempty"`
	Changes     []state.Change    `json:"changes,omitempty"`
}

func Welcome(sessionID string, heartbeatMs int64) ServerMessage {
	return ServerMessage{Type: TypeWelcome, SessionID: sessionID, HeartbeatMs: heartbeatMs}
}

func Sync(v state.View) ServerMessage {
	return ServerMessage{Type: TypeSync, Version: v.Version, State: &v}
}

func Delta(version uint64, changes []state.Change) ServerMessage {
	return ServerMessage{Type: TypeDelta, Version: version, Changes: changes}
}

func EncodeServer(m ServerMessage) ([]byte, error) {
	return json.Marshal(m)
}

func DecodeServer(data []byte) (ServerMessage, error) {
	var m ServerMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch m.Type {
	case TypeWelcome:
		if m.SessionID == "" {
			return m, fmt.Errorf("%w: welcome without session id", ErrMalformed)
		}
	case TypeSync:
		if m.State == nil {
			return m, fmt.Errorf("%w: sync without state", ErrMalformed)
		}
	case TypeDelta:
	default:
		return m, fmt.Errorf("%w: unknown message type %q", ErrMalformed, m.Type)
	}
	return m, nil
}
