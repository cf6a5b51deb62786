package model

import "errors"

var ErrInvalidArgument = errors.New("invalid argument")
var ErrOutOfRange = errors.New("value out of range")
var ErrReadOnly = errors.New("entity is read-only")
