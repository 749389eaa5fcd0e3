package room

import "errors"

var (
	ErrInboxFull  = errors.New("room inbox full")
	ErrNotRunning = errors.New("room not running")
)
