package command

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/pixil98/go-errors"
)

// EnvPrefix is prepended to every environment override, e.g. FARM_LISTENER_ADDR.
const EnvPrefix = "FARM_"

type Config struct {
	Room     RoomConfig     `json:"room" envPrefix:"ROOM_"`
	Listener ListenerConfig `json:"listener" envPrefix:"LISTENER_"`
	Storage  StorageConfig  `json:"storage" envPrefix:"STORAGE_"`
	Nats     NatsConfig     `json:"nats" envPrefix:"NATS_"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Room.validate())
	el.Add(c.Listener.validate())
	el.Add(c.Storage.validate())
	el.Add(c.Nats.validate())

	return el.Err()
}

// ApplyEnv overlays any FARM_* environment variables onto the loaded config.
// Unset variables leave the file values alone.
func (c *Config) ApplyEnv() error {
	err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix})
	if err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}
