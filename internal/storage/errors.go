package storage

import "errors"

var ErrNoSnapshot = errors.New("no snapshot saved")
