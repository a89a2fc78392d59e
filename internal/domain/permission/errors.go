package permission

import "errors"

var (
	ErrPermissionNotFound = errors.New("permission request not found")
	ErrForbidden          = errors.New("not allowed to access this permission request")
	ErrOverlappingRequest = errors.New("an overlapping permission request already exists")
	ErrConcurrentUpdate   = errors.New("permission request was modified concurrently")
)
