package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// Update is a compare-and-swap on Version.
type AttendanceRepository interface {
	// Create inserts a new record. A second record for the same employee and
	// date fails with ErrAlreadyCheckedIn.
	Create(ctx context.Context, record Record) (Record, error)

	GetByID(ctx context.Context, id string) (Record, error)

	// GetByEmployeeAndDate returns nil when the employee has no record that day.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// GetByEmployeeAndDateForUpdate locks the row until the surrounding
	// transaction ends.
	GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// GetOpenSessionForUpdate returns the employee's most recent record that
	// was checked in but not out, locked, or nil when there is none.
	GetOpenSessionForUpdate(ctx context.Context, employeeID string) (*Record, error)

	// Update persists record if its stored version still equals record.Version,
	// otherwise returns ErrConcurrentUpdate. The returned record carries the
	// incremented version.
	Update(ctx context.Context, record Record) (Record, error)

	List(ctx context.Context, filter AttendanceFilter) ([]Record, int64, error)

	// ListOpenInactiveSince returns open records whose last activity is
	// before the given instant.
	ListOpenInactiveSince(ctx context.Context, before time.Time) ([]Record, error)

	Statistics(ctx context.Context, filter StatisticsFilter) (Statistics, error)
}
