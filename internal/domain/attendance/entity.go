package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/audit"
)

type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusLate    Status = "Late" // reserved, lateness is tracked by IsLate
	StatusHalfDay Status = "Half Day"
	StatusOnLeave Status = "On Leave"
	StatusHoliday Status = "Holiday"
)

var StatusValues = []string{
	string(StatusPresent),
	string(StatusAbsent),
	string(StatusLate),
	string(StatusHalfDay),
	string(StatusOnLeave),
	string(StatusHoliday),
}

// History actions
const (
	ActionCheckedIn      = "checked_in"
	ActionCheckedOut     = "checked_out"
	ActionAutoCheckedOut = "auto_checked_out"
	ActionRegularized    = "regularized"
)

// DateLayout is the wire and storage format of attendance dates.
const DateLayout = "2006-01-02"

// Record is one employee's attendance for one calendar day.
type Record struct {
	ID           string
	EmployeeID   string
	Date         time.Time
	CheckIn      *time.Time
	CheckOut     *time.Time
	BreakMinutes int

	Derived

	LastActivityTime *time.Time
	AutoCheckedOut   bool
	IsRegularized    bool
	RegularizationID *string
	LateWaived       bool
	EarlyWaived      bool
	Location         *string
	Notes            *string
	History          audit.Trail
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Derived holds every field produced by the attendance computer. They are
// always written together.
type Derived struct {
	TotalHours            float64 `json:"total_hours"`
	Status                Status  `json:"status"`
	IsLate                bool    `json:"is_late"`
	LateMinutes           int     `json:"late_minutes"`
	IsEarly               bool    `json:"is_early"`
	EarlyMinutes          int     `json:"early_minutes"`
	OvertimeHours         float64 `json:"overtime_hours"`
	ShortageHours         float64 `json:"shortage_hours"`
	AdjustedOvertimeHours float64 `json:"adjusted_overtime_hours"`
}

// IsOpen reports whether the employee checked in but not out.
func (r Record) IsOpen() bool {
	return r.CheckIn != nil && r.CheckOut == nil
}

// Snapshot is a point-in-time copy of a record kept by correction requests.
type Snapshot struct {
	RecordID     *string    `json:"record_id,omitempty"`
	CheckIn      *time.Time `json:"check_in,omitempty"`
	CheckOut     *time.Time `json:"check_out,omitempty"`
	BreakMinutes int        `json:"break_minutes"`
	Derived
}

func (r Record) Snapshot() Snapshot {
	id := r.ID
	return Snapshot{
		RecordID:     &id,
		CheckIn:      r.CheckIn,
		CheckOut:     r.CheckOut,
		BreakMinutes: r.BreakMinutes,
		Derived:      r.Derived,
	}
}

// Statistics aggregates derived fields over a set of records.
type Statistics struct {
	TotalRecords       int64
	PresentDays        int64
	HalfDays           int64
	AbsentDays         int64
	LateDays           int64
	EarlyDays          int64
	RegularizedDays    int64
	AutoCheckedOutDays int64
	TotalHours         float64
	OvertimeHours      float64
	ShortageHours      float64
}
