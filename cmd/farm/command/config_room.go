package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-farm/internal/room"
	"github.com/pixil98/go-farm/internal/tuning"
)

type RoomConfig struct {
	// TuningPath is an optional YAML file of balance overrides.
	TuningPath string `json:"tuning_path" env:"TUNING_PATH"`
	InboxSize  int    `json:"inbox_size" env:"INBOX_SIZE"`
}

func (c *RoomConfig) validate() error {
	el := errors.NewErrorList()

	if c.TuningPath != "" {
		if _, err := os.Stat(c.TuningPath); err != nil {
			el.Add(fmt.Errorf("invalid tuning_path %q: %w", c.TuningPath, err))
		}
	}
	if c.InboxSize < 0 {
		el.Add(fmt.Errorf("inbox_size must not be negative"))
	}

	return el.Err()
}

func (c *RoomConfig) loadTuning() (tuning.Tuning, error) {
	t, err := tuning.Load(c.TuningPath)
	if err != nil {
		return t, fmt.Errorf("loading tuning: %w", err)
	}
	return t, nil
}

func (c *RoomConfig) controllerOpts() []room.ControllerOpt {
	var opts []room.ControllerOpt
	if c.InboxSize > 0 {
		opts = append(opts, room.WithInboxSize(c.InboxSize))
	}
	return opts
}
