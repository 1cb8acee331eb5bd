package domain

import "errors"

var (
	ErrValidation            = errors.New("validation failed")
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrProductUnavailable    = errors.New("product unavailable")
	ErrDuplicateSerial       = errors.New("serial number already registered")
	ErrWarrantyNotClaimable  = errors.New("warranty not claimable")
	ErrClaimNotFound         = errors.New("claim not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
