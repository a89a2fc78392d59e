package workflow

import (
	"slices"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

// Visibility restricts which requests an actor may read.
type Visibility struct {
	All        bool
	EmployeeID string
	UserID     string
	Levels     []string // levels the actor approves, for ScopeLevel
}

// VisibilityFor derives the read scope of an actor from its capability.
// Own-scoped actors see their requests; level-scoped actors also see requests
// waiting at, or already decided by them at, their levels.
func VisibilityFor(actor user.Actor) Visibility {
	c := actor.Capability()
	v := Visibility{EmployeeID: actor.EmployeeID, UserID: actor.UserID}
	switch c.Scope {
	case user.ScopeAll:
		v.All = true
	case user.ScopeLevel:
		for _, l := range c.ApproveLevels {
			v.Levels = append(v.Levels, string(l))
		}
	}
	return v
}

// CanSee applies the same rule as the repositories' list filters.
func (v Visibility) CanSee(employeeID string, s State) bool {
	if v.All {
		return true
	}
	if v.EmployeeID != "" && employeeID == v.EmployeeID {
		return true
	}
	if len(v.Levels) == 0 {
		return false
	}
	if slices.Contains(v.Levels, string(s.CurrentLevel)) {
		return true
	}
	return slices.Contains(s.ApproverIDs(), v.UserID)
}
