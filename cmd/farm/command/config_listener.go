package command

import (
	"fmt"
	"net"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-farm/internal/listener"
)

type ListenerConfig struct {
	Addr         string `json:"addr" env:"ADDR"`
	OutboxSize   int    `json:"outbox_size" env:"OUTBOX_SIZE"`
	WriteTimeout string `json:"write_timeout" env:"WRITE_TIMEOUT"`
}

func (c *ListenerConfig) validate() error {
	el := errors.NewErrorList()

	if c.Addr == "" {
		el.Add(fmt.Errorf("listener addr is required"))
	} else if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		el.Add(fmt.Errorf("invalid listener addr %q: %w", c.Addr, err))
	}
	if c.OutboxSize < 0 {
		el.Add(fmt.Errorf("outbox_size must not be negative"))
	}
	if c.WriteTimeout != "" {
		if _, err := time.ParseDuration(c.WriteTimeout); err != nil {
			el.Add(fmt.Errorf("parsing write_timeout: %w", err))
		}
	}

	return el.Err()
}

func (c *ListenerConfig) BuildListener(r listener.Room, deltas listener.DeltaSource, heartbeatTimeout time.Duration) (*listener.WebsocketListener, error) {
	var opts []listener.ConnectionManagerOpt
	if c.OutboxSize > 0 {
		opts = append(opts, listener.WithOutboxSize(c.OutboxSize))
	}
	if c.WriteTimeout != "" {
		d, err := time.ParseDuration(c.WriteTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing write_timeout: %w", err)
		}
		opts = append(opts, listener.WithWriteTimeout(d))
	}

	cm := listener.NewConnectionManager(r, deltas, heartbeatTimeout, opts...)
	return listener.NewWebsocketListener(c.Addr, cm), nil
}
