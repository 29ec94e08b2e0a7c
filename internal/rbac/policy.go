package rbac

import (
	"sort"

	"github.com/edumatrix/edumatrix/internal/roles"
)

var (
	admin    = roles.CenterAdmin
	manager  = roles.Manager
	employee = roles.Employee
)

// policyGrid lists every cell explicitly. Entities deviate from each other, so
// no cell may be derived from another.
var policyGrid = map[Entity]map[Action][]roles.Role{
	EntityAcademicYear: {
		ActionView:   {admin, manager, employee},
		ActionAdd:    {admin},
		ActionEdit:   {admin},
		ActionDelete: {admin},
	},
	EntityAttendance: {
		ActionView:   {admin, manager, employee},
		ActionAdd:    {admin, manager, employee},
		ActionEdit:   {admin, manager, employee},
		ActionDelete: {admin, manager},
	},
	EntityClassroom: {
		ActionView:   {admin, manager, employee},
		ActionAdd:    {admin, manager},
		ActionEdit:   {admin, manager},
		ActionDelete: {admin},
	},
	EntityCourse: {
		ActionView:   {admin, manager, employee},
		ActionAdd:    {admin, manager, employee},
		ActionEdit:   {admin, manager, employee},
		ActionDelete: {admin, manager},
	},
	EntityEmployee: {
		ActionView:   {admin, manager},
		ActionAdd:    {admin, manager},
		ActionEdit:   {admin, manager},
		ActionDelete: {admin},
	},
	EntityExam: {
		ActionView:   {admin, manager, employee},
		ActionAdd:    {admin, manager, employee},
		ActionEdit:   {admin, manager, employee},
		ActionDelete: {admin, manager},
	},
	EntityExamResult: {
		ActionView:   {admin, manager, employee},
		ActionAdd:    {admin, manager, employee},
		ActionEdit:   {admin, manager},
		ActionDelete: {admin, manager},
	},
	EntityExpense: {
		ActionView:   {admin, manager},
		ActionAdd:    {admin, manager, employee},
		ActionEdit:   {admin, manager},
		ActionDelete: {admin},
	},
	EntityItem: {
		ActionView:   {admin, manager, employee},
		ActionAdd:    {admin, manager, employee},
		ActionEdit:   {admin, manager, employee},
		ActionDelete: {admin, manager},
	},
	EntityLevel: {
		ActionView:   {admin, manager, employee},
		ActionAdd:    {admin, manager},
		ActionEdit:   {admin, manager},
		ActionDelete: {admin},
	},
	EntityPayment: {
		ActionView:   {admin, manager, employee},
		ActionAdd:    {admin, manager, employee},
		ActionEdit:   {admin, manager},
		ActionDelete: {admin},
	},
	EntitySession: {
		ActionView:   {admin, manager, employee},
		ActionAdd:    {admin, manager, employee},
		ActionEdit:   {admin, manager, employee},
		ActionDelete: {admin, manager},
	},
	EntityStudent: {
		ActionView:   {admin, manager, employee},
		ActionAdd:    {admin, manager, employee},
		ActionEdit:   {admin, manager, employee},
		ActionDelete: {admin, manager},
	},
	EntitySubject: {
		ActionView:   {admin, manager, employee},
		ActionAdd:    {admin, manager, employee},
		ActionEdit:   {admin, manager, employee},
		ActionDelete: {admin, manager},
	},
	EntityTeacher: {
		ActionView:   {admin, manager, employee},
		ActionAdd:    {admin, manager, employee},
		ActionEdit:   {admin, manager, employee},
		ActionDelete: {admin, manager},
	},
	EntityUser: {
		ActionView:   {admin, manager},
		ActionAdd:    {admin},
		ActionEdit:   {admin},
		ActionDelete: {admin},
	},
}

// table is the read-only lookup built once from policyGrid.
var table = buildTable(policyGrid)

func buildTable(grid map[Entity]map[Action][]roles.Role) map[Requirement]map[roles.Role]struct{} {
	out := make(map[Requirement]map[roles.Role]struct{}, len(grid)*4)
	for entity, actions := range grid {
		for action, granted := range actions {
			set := make(map[roles.Role]struct{}, len(granted))
			for _, r := range granted {
				set[r] = struct{}{}
			}
			out[Requirement{Entity: entity, Action: action}] = set
		}
	}
	return out
}

// Allowed reports whether role may perform action on entity. Unlisted
// combinations are denied.
func Allowed(entity Entity, action Action, role roles.Role) bool {
	granted, ok := table[Requirement{Entity: entity, Action: action}]
	if !ok {
		return false
	}
	_, ok = granted[role]
	return ok
}

// Grantees returns the roles allowed on (entity, action), most senior first.
func Grantees(entity Entity, action Action) []roles.Role {
	var out []roles.Role
	for _, r := range roles.CenterRoles() {
		if Allowed(entity, action, r) {
			out = append(out, r)
		}
	}
	return out
}

// Entities returns every entity present in the table, sorted by name.
func Entities() []Entity {
	out := make([]Entity, 0, len(policyGrid))
	for entity := range policyGrid {
		out = append(out, entity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
