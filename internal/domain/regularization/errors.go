package regularization

import "errors"

var (
	ErrRegularizationNotFound = errors.New("regularization request not found")
	ErrForbidden              = errors.New("not allowed to access this regularization request")
	ErrDuplicateRequest       = errors.New("an open regularization request already exists for this date")
	ErrFutureDate             = errors.New("attendance date must not be in the future")
	ErrConcurrentUpdate       = errors.New("regularization request was modified concurrently")
	ErrInconsistentTimes      = errors.New("corrected check-out would be before check-in")
)
