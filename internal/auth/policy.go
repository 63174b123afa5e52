package auth

// Operation names a protected action. Handlers are wired to operations in
// the route table; Allowed is the single place role sets are checked.
type Operation string

const (
	// OpEditStatistics covers statistic edit/delete/manual add, spreadsheet
	// import and period creation.
	OpEditStatistics Operation = "statistics:edit"
	// OpManageWars covers changing a period's total war count.
	OpManageWars Operation = "periods:wars"
	// OpManageUsers covers creating users, listing them and changing roles.
	OpManageUsers Operation = "users:manage"
	// OpViewHistory covers reading the change log.
	OpViewHistory Operation = "history:view"
)

var policy = map[Operation][]Role{
	OpEditStatistics: {RoleCoLeader, RoleLeader},
	OpManageWars:     {RoleLeader},
	OpManageUsers:    {RoleLeader},
	OpViewHistory:    {RoleLeader},
}

// Allowed reports whether role may perform op. Unknown operations are
// denied for every role.
func Allowed(op Operation, role Role) bool {
	for _, allowed := range policy[op] {
		if role == allowed {
			return true
		}
	}
	return false
}
