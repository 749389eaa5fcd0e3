package driver

import "errors"

var ErrUnknownTask = errors.New("unknown task")
