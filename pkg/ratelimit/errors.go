package ratelimit

import "errors"

var (
	ErrKeyRequired      = errors.New("rate limit key is required")
	ErrInvalidWindow    = errors.New("window size must be positive")
	ErrInvalidCeiling   = errors.New("invalid rate ceiling")
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)
