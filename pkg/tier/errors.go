package tier

import "errors"

var (
	ErrFailedToLoadCatalog = errors.New("failed to load tier catalog")
	ErrInvalidCatalogEntry = errors.New("invalid tier catalog entry")
	ErrTierNotFound        = errors.New("tier not found in catalog")
)
