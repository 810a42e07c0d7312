package usage

import "errors"

var (
	ErrQuotaExceeded    = errors.New("usage quota exceeded")
	ErrInvalidAmount    = errors.New("debit amount must be positive")
	ErrInvalidTenantID  = errors.New("invalid tenant ID")
	ErrPeriodNotFound   = errors.New("usage period not found")
	ErrNoPeriodOpen     = errors.New("no usage period open")
	ErrStoreUnavailable = errors.New("usage store unavailable")
)
