package user

import (
	"strings"
)

type Role string

const (
	RoleEmployee    Role = "employee"     // Regular employee
	RoleTeamLeader  Role = "team_leader"  // Leads a small team, first approver for permissions
	RoleTeamManager Role = "team_manager" // Manages team leaders
	RoleHR          Role = "hr"           // Human resources
	RoleVP          Role = "vp"           // Vice president
	RoleAdmin       Role = "admin"        // System administrator
)

var RoleValues = []string{
	string(RoleEmployee),
	string(RoleTeamLeader),
	string(RoleTeamManager),
	string(RoleHR),
	string(RoleVP),
	string(RoleAdmin),
}

// ParseRole converts a claim value into a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := capabilities[role]; !ok {
		return "", ErrUnknownRole
	}
	return role, nil
}

// Rank orders roles by approval authority. Unknown roles rank below employees.
func (r Role) Rank() int {
	switch r {
	case RoleEmployee:
		return 0
	case RoleTeamLeader:
		return 1
	case RoleTeamManager:
		return 2
	case RoleHR:
		return 3
	case RoleVP, RoleAdmin:
		return 4
	}
	return -1
}

// Level is a named stage of an approval chain.
type Level string

const (
	LevelTeamLeader  Level = "Team Leader"
	LevelTeamManager Level = "Team Manager"
	LevelHR          Level = "HR"
	LevelVPAdmin     Level = "VP/Admin"
	LevelCompleted   Level = "Completed"
)

// LevelNames lists the levels of chain followed by LevelCompleted: the values
// a current-level filter on that chain may take.
func LevelNames(chain []Level) []string {
	names := make([]string, 0, len(chain)+1)
	for _, l := range chain {
		names = append(names, string(l))
	}
	return append(names, string(LevelCompleted))
}

// Rank returns the authority rank required to act on the level.
func (l Level) Rank() int {
	switch l {
	case LevelTeamLeader:
		return 1
	case LevelTeamManager:
		return 2
	case LevelHR:
		return 3
	case LevelVPAdmin:
		return 4
	case LevelCompleted:
		return 5
	}
	return -1
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID     string
	EmployeeID string
	Role       Role
}

// Capability returns the actor's entry in the capability table.
func (a Actor) Capability() Capability {
	return CapabilityOf(a.Role)
}
