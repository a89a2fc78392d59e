package workflow

import "errors"

var (
	ErrEmptyChain        = errors.New("approval chain has no levels")
	ErrRequesterRequired = errors.New("requester is required")
	ErrUnauthorized      = errors.New("role is not allowed to act on the current approval level")
	ErrSelfApproval      = errors.New("requester cannot decide their own request")
	ErrAlreadyProcessed  = errors.New("request has already been processed")
	ErrNotRequester      = errors.New("only the requester can cancel the request")
	ErrInvalidState      = errors.New("invalid workflow state")
)
