package listener

import "time"

type ConnectionManagerOpt func(*ConnectionManager)

// WithOutboxSize bounds the frames queued for a slow session before it is
// disconnected.
func WithOutboxSize(n int) ConnectionManagerOpt {
	return func(m *ConnectionManager) {
		m.outboxSize = n
	}
}

func WithWriteTimeout(d time.Duration) ConnectionManagerOpt {
	return func(m *ConnectionManager) {
		m.writeTimeout = d
	}
}
