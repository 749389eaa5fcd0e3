package listener

import "errors"

var ErrExpectedHello = errors.New("expected hello")
