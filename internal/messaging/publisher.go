package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-farm/internal/protocol"
	"github.com/pixil98/go-farm/internal/sim"
)

const (
	// DeltaSubject carries every ordered delta batch of the room.
	DeltaSubject = "farm.room.deltas"
	// GrantSubject carries item grants for the inventory service.
	GrantSubject = "farm.grants"
)

// Bus is the publish/subscribe surface of the embedded server.
type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// RoomPublisher fans room output out over NATS subjects.
type RoomPublisher struct {
	bus Bus
}

func NewRoomPublisher(bus Bus) *RoomPublisher {
	return &RoomPublisher{bus: bus}
}

// Broadcast publishes a server message to every session of the room.
func (p *RoomPublisher) Broadcast(msg protocol.ServerMessage) error {
	data, err := protocol.EncodeServer(msg)
	if err != nil {
		return err
	}
	if err := p.bus.Publish(DeltaSubject, data); err != nil {
		return fmt.Errorf("publishing delta: %w", err)
	}
	return nil
}

// Grant reports an item award to the inventory service.
func (p *RoomPublisher) Grant(g sim.Grant) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshalling grant: %w", err)
	}
	if err := p.bus.Publish(GrantSubject, data); err != nil {
		return fmt.Errorf("publishing grant: %w", err)
	}
	return nil
}

// SubscribeDeltas delivers every encoded delta batch to handler in order.
func (p *RoomPublisher) SubscribeDeltas(handler func(data []byte)) (func(), error) {
	return p.bus.Subscribe(DeltaSubject, handler)
}
