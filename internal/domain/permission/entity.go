package permission

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/workflow"
)

// Levels is the approval chain of a permission request.
var Levels = []user.Level{user.LevelTeamLeader, user.LevelTeamManager, user.LevelHR}

// Request asks for a short absence within one working day.
type Request struct {
	ID              string
	EmployeeID      string
	RequesterRole   user.Role
	Date            time.Time
	StartTime       string // HH:MM
	EndTime         string // HH:MM
	DurationMinutes int
	Reason          string

	workflow.State

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}
