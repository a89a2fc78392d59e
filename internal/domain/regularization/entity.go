package regularization

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workflow"
)

// RequestType names the kind of correction. Values are stored verbatim.
type RequestType string

const (
	TypeMissedCheckIn    RequestType = "Missed Check-In"
	TypeMissedCheckOut   RequestType = "Missed Check-Out"
	TypeMissedBoth       RequestType = "Missed Both"
	TypeLateArrival      RequestType = "Late Arrival"
	TypeEarlyDeparture   RequestType = "Early Departure"
	TypeAbsentToPresent  RequestType = "Absent to Present"
	TypeAbsentToHalfDay  RequestType = "Absent to Half Day"
	TypeSystemError      RequestType = "System Error"
	TypeWorkFromHome     RequestType = "Work From Home"
	TypeFieldWork        RequestType = "Field Work"
	TypeMedicalEmergency RequestType = "Medical Emergency"
	TypeTransportIssue   RequestType = "Transport Issue"
	TypeOther            RequestType = "Other"
)

var RequestTypeValues = []string{
	string(TypeMissedCheckIn),
	string(TypeMissedCheckOut),
	string(TypeMissedBoth),
	string(TypeLateArrival),
	string(TypeEarlyDeparture),
	string(TypeAbsentToPresent),
	string(TypeAbsentToHalfDay),
	string(TypeSystemError),
	string(TypeWorkFromHome),
	string(TypeFieldWork),
	string(TypeMedicalEmergency),
	string(TypeTransportIssue),
	string(TypeOther),
}

// Levels is the approval chain of a regularization.
var Levels = []user.Level{user.LevelTeamManager, user.LevelHR, user.LevelVPAdmin}

// Request is a retroactive correction of one attendance day.
type Request struct {
	ID                string
	EmployeeID        string
	RequesterRole     user.Role
	AttendanceDate    time.Time
	AttendanceID      *string
	RequestType       RequestType
	Reason            string
	RequestedCheckIn  *time.Time
	RequestedCheckOut *time.Time
	RequestedStatus   *attendance.Status
	OriginalSnapshot  *attendance.Snapshot

	workflow.State

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusCounts is the number of requests per status label.
type StatusCounts map[string]int64
