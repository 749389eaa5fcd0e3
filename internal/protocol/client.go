package protocol

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type MessageType string

const (
	TypeHello     MessageType = "hello"
	TypeHeartbeat MessageType = "heartbeat"
)

//go:embed client.schema.json
var clientSchemaJSON string

var clientSchema = jsonschema.MustCompileString("client.schema.json", clientSchemaJSON)

// Hello opens a session and carries the cosmetic choices made at character creation.
type Hello struct {
	Name       string `json:"name,omitempty"`
	Class      string `json:"class,omitempty"`
	Appearance string `json:"appearance,omitempty"`
}

type Heartbeat struct {
	SentAt int64 `json:"sentAt,omitempty"`
}

// ClientMessage is a decoded client frame. Exactly one of Hello, Heartbeat
// or Intent is set.
type ClientMessage struct {
	Type      MessageType
	Hello     *Hello
	Heartbeat *Heartbeat
	Intent    *Intent
}

// wireClient is the flat JSON shape of every client frame.
type wireClient struct {
	Type string `json:"type"`

	Name       string `json:"name,omitempty"`
	Class      string `json:"class,omitempty"`
	Appearance string `json:"appearance,omitempty"`

	SentAt int64 `json:"sentAt,omitempty"`

	X  *float64 `json:"x,omitempty"`
	Y  *float64 `json:"y,omitempty"`
	VX *float64 `json:"vx,omitempty"`
	VY *float64 `json:"vy,omitempty"`

	Index    *int   `json:"index,omitempty"`
	SeedType string `json:"seedType,omitempty"`
}

// DecodeClient validates a raw client frame against the protocol schema and
// decodes it. Any frame that fails validation is malformed and yields an error
// wrapping ErrMalformed.
func DecodeClient(data []byte) (ClientMessage, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := clientSchema.Validate(raw); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var w wireClient
	if err := json.Unmarshal(data, &w); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch MessageType(w.Type) {
	case TypeHello:
		return ClientMessage{
			Type:  TypeHello,
			Hello: &Hello{Name: w.Name, Class: w.Class, Appearance: w.Appearance},
		}, nil
	case TypeHeartbeat:
		return ClientMessage{Type: TypeHeartbeat, Heartbeat: &Heartbeat{SentAt: w.SentAt}}, nil
	}

	var in Intent
	switch kind := IntentKind(w.Type); kind {
	case IntentMove:
		in = Move(*w.X, *w.Y, *w.VX, *w.VY)
	case IntentPlantSeed:
		in = Plant(*w.Index, w.SeedType)
	default:
		in = Target(kind, *w.Index)
	}
	return ClientMessage{Type: MessageType(w.Type), Intent: &in}, nil
}

// EncodeIntent renders an intent as a client frame.
func EncodeIntent(in Intent) ([]byte, error) {
	w := wireClient{Type: string(in.Kind)}
	switch {
	case in.Move != nil:
		w.X, w.Y, w.VX, w.VY = &in.Move.X, &in.Move.Y, &in.Move.VX, &in.Move.VY
	case in.Plant != nil:
		w.Index, w.SeedType = &in.Plant.Index, in.Plant.SeedType
	case in.Target != nil:
		w.Index = &in.Target.Index
	default:
		return nil, fmt.Errorf("intent %q has no payload", in.Kind)
	}
	return json.Marshal(w)
}

func EncodeHello(h Hello) ([]byte, error) {
	return json.Marshal(wireClient{Type: string(TypeHello), Name: h.Name, Class: h.Class, Appearance: h.Appearance})
}

func EncodeHeartbeat(hb Heartbeat) ([]byte, error) {
	return json.Marshal(wireClient{Type: string(TypeHeartbeat), SentAt: hb.SentAt})
}
