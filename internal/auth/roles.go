package auth

// Role is the closed set of clan roles. Display rank is member < co-leader
// < leader, but permission checks never rely on the ordering; every gated
// operation enumerates its exact allowed set in policy.go.
type Role string

const (
	RoleMember   Role = "member"
	RoleCoLeader Role = "co-leader"
	RoleLeader   Role = "leader"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	return r == RoleMember || r == RoleCoLeader || r == RoleLeader
}

// Rank orders roles for display sorting only (leader first).
func (r Role) Rank() int {
	switch r {
	case RoleLeader:
		return 0
	case RoleCoLeader:
		return 1
	default:
		return 2
	}
}

func ParseRole(s string) (Role, bool) {
	role := Role(s)
	return role, role.IsValid()
}
