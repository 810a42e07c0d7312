package seats

import "errors"

var (
	ErrSeatLimitReached       = errors.New("seat limit reached")
	ErrAddonSeatsNotAllowed   = errors.New("tier does not allow addon seats")
	ErrCapacityBelowCommitted = errors.New("capacity cannot fall below committed seats")
	ErrInvalidSeatCount       = errors.New("seat count must be positive")
	ErrInvalidTenantID        = errors.New("invalid tenant ID")
	ErrAllocationNotFound     = errors.New("seat allocation not found")
	ErrNothingToRelease       = errors.New("no seat to release")
	ErrInvalidTransition      = errors.New("invalid seat slot transition")
	ErrStoreUnavailable       = errors.New("seat store unavailable")
)
