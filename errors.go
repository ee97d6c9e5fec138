package bitlog

import "errors"

var (
	ErrKeyNotFound   = errors.New("bitlog: key not found")
	ErrKeyTooLarge   = errors.New("bitlog: key too large")
	ErrValueTooLarge = errors.New("bitlog: value too large")
	ErrClosed        = errors.New("bitlog: db closed")
	ErrCorruptLog    = errors.New("bitlog: corrupt log")
	ErrLocked        = errors.New("bitlog: database locked")
)

const (
	MaxKeySize   = 1024
	MaxValueSize = 10 * 1024 * 1024
)
