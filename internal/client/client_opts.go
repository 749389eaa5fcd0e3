package client

import (
	"time"

	"github.com/gorilla/websocket"
)

type ClientOpt func(*Client)

// WithSendInterval sets how often the replica outbox is flushed.
func WithSendInterval(d time.Duration) ClientOpt {
	return func(c *Client) {
		c.sendInterval = d
	}
}

// WithBackoff bounds the wait between redials.
func WithBackoff(minWait, maxWait time.Duration) ClientOpt {
	return func(c *Client) {
		c.minBackoff = minWait
		c.maxBackoff = maxWait
	}
}

func WithDialer(d *websocket.Dialer) ClientOpt {
	return func(c *Client) {
		c.dialer = d
	}
}

// WithConnectionHook is called whenever a session is established or lost.
func WithConnectionHook(f func(connected bool)) ClientOpt {
	return func(c *Client) {
		c.onConnection = f
	}
}
