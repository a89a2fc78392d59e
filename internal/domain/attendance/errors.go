package attendance

import "errors"

// Attendance domain errors
var (
	ErrAlreadyCheckedIn  = errors.New("you have already checked in today")
	ErrNotCheckedIn      = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut = errors.New("you have already checked out")
	ErrCheckOutBeforeIn  = errors.New("check-out must be after check-in")

	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrForbidden          = errors.New("not allowed to access this attendance record")
	ErrConcurrentUpdate   = errors.New("attendance record was modified concurrently")
)
