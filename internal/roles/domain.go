// Package roles defines the closed set of roles a center user can hold.
package roles

import "strings"

// Role is a role name as carried in claims and stored in user_roles.
type Role string

const (
	// SuperAdmin acts across every center and is exempt from center scoping.
	SuperAdmin Role = "SuperAdmin"
	// CenterAdmin is the most senior role inside a center.
	CenterAdmin Role = "CenterAdmin"
	// Manager runs day-to-day operations of a center.
	Manager Role = "Manager"
	// Employee is front-desk and teaching staff.
	Employee Role = "Employee"
)

var known = map[string]Role{
	string(SuperAdmin):  SuperAdmin,
	string(CenterAdmin): CenterAdmin,
	string(Manager):     Manager,
	string(Employee):    Employee,
}

var descriptions = map[Role]string{
	SuperAdmin:  "Platform operator with access to every center",
	CenterAdmin: "Full control of a single center",
	Manager:     "Manages students, staff and schedules of a center",
	Employee:    "Day-to-day operations within a center",
}

// Parse resolves a raw role string into the closed role set. Unknown values
// report false and must be treated as no role at all.
func Parse(raw string) (Role, bool) {
	role, ok := known[strings.TrimSpace(raw)]
	return role, ok
}

// All returns every role, most senior first.
func All() []Role {
	return []Role{SuperAdmin, CenterAdmin, Manager, Employee}
}

// CenterRoles returns the roles that are scoped to a single center.
func CenterRoles() []Role {
	return []Role{CenterAdmin, Manager, Employee}
}

// Description returns a human readable summary.
func (r Role) Description() string {
	return descriptions[r]
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// Contains reports whether raw role names include role.
func Contains(names []string, role Role) bool {
	for _, name := range names {
		if parsed, ok := Parse(name); ok && parsed == role {
			return true
		}
	}
	return false
}

// AssignableBy lists the roles a caller may hand out. Only super admins can
// create other super admins.
func AssignableBy(callerIsSuper bool) []Role {
	if callerIsSuper {
		return All()
	}
	return CenterRoles()
}

// CanAssign reports whether a caller may grant role.
func CanAssign(callerIsSuper bool, role Role) bool {
	for _, r := range AssignableBy(callerIsSuper) {
		if r == role {
			return true
		}
	}
	return false
}
