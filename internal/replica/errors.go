package replica

import "errors"

var (
	ErrNotSynced  = errors.New("replica not synced")
	ErrVersionGap = errors.New("delta version gap")
	// ErrRemoved means the server dropped the local player, e.g. after a
	// heartbeat timeout. The session is over.
	ErrRemoved = errors.New("local player removed by server")
)
