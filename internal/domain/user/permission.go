package user

// Scope controls which requests and records a role may read.
type Scope string

const (
	ScopeOwn   Scope = "own"   // only the caller's own data
	ScopeLevel Scope = "level" // own data plus requests waiting at a level the caller approves
	ScopeAll   Scope = "all"   // everything
)

// Capability describes what a role may do. It is derived once per role.
type Capability struct {
	ApproveLevels     []Level
	Scope             Scope
	ManagePolicy      bool
	ViewAllAttendance bool
}

// CanApprove reports whether the capability covers the given level.
func (c Capability) CanApprove(level Level) bool {
	for _, l := range c.ApproveLevels {
		if l == level {
			return true
		}
	}
	return false
}

// capabilities maps roles to their capabilities
var capabilities = map[Role]Capability{
	RoleEmployee: {
		Scope: ScopeOwn,
	},
	RoleTeamLeader: {
		ApproveLevels: []Level{LevelTeamLeader},
		Scope:         ScopeLevel,
	},
	RoleTeamManager: {
		ApproveLevels: []Level{LevelTeamManager},
		Scope:         ScopeLevel,
	},
	RoleHR: {
		ApproveLevels:     []Level{LevelHR},
		Scope:             ScopeAll,
		ManagePolicy:      true,
		ViewAllAttendance: true,
	},
	RoleVP: {
		ApproveLevels:     []Level{LevelVPAdmin},
		Scope:             ScopeAll,
		ViewAllAttendance: true,
	},
	RoleAdmin: {
		ApproveLevels:     []Level{LevelVPAdmin},
		Scope:             ScopeAll,
		ManagePolicy:      true,
		ViewAllAttendance: true,
	},
}

// CapabilityOf returns the capability for a role. Unknown roles get nothing.
func CapabilityOf(role Role) Capability {
	return capabilities[role]
}

// ApproversOf lists the roles that may approve the given level.
func ApproversOf(level Level) []Role {
	var roles []Role
	for _, r := range RoleValues {
		role := Role(r)
		if capabilities[role].CanApprove(level) {
			roles = append(roles, role)
		}
	}
	return roles
}
