// Package rbac decides whether the acting principal may perform an action on
// an entity type, using a fixed permission table scoped by center.
package rbac

import "github.com/edumatrix/edumatrix/internal/roles"

// Entity names a category of center-owned resources.
type Entity string

// Action names an operation on an entity.
type Action string

// Entities guarded by the permission table.
const (
	EntityAcademicYear Entity = "AcademicYear"
	EntityAttendance   Entity = "Attendance"
	EntityClassroom    Entity = "Classroom"
	EntityCourse       Entity = "Course"
	EntityEmployee     Entity = "Employee"
	EntityExam         Entity = "Exam"
	EntityExamResult   Entity = "ExamResult"
	EntityExpense      Entity = "Expense"
	EntityItem         Entity = "Item"
	EntityLevel        Entity = "Level"
	EntityPayment      Entity = "Payment"
	EntitySession      Entity = "Session"
	EntityStudent      Entity = "Student"
	EntitySubject      Entity = "Subject"
	EntityTeacher      Entity = "Teacher"
	EntityUser         Entity = "User"

	// EntityCenter has no table entry: only super admins pass.
	EntityCenter Entity = "Center"
)

// Actions.
const (
	ActionView   Action = "View"
	ActionAdd    Action = "Add"
	ActionEdit   Action = "Edit"
	ActionDelete Action = "Delete"
)

// Actions returns every action in display order.
func Actions() []Action {
	return []Action{ActionView, ActionAdd, ActionEdit, ActionDelete}
}

// Requirement is the (entity, action) pair declared on a guarded route.
type Requirement struct {
	Entity Entity
	Action Action
}

// String renders the requirement as Entity.Action.
func (r Requirement) String() string {
	return string(r.Entity) + "." + string(r.Action)
}

// Decision is the outcome of one evaluation. A deny is a normal outcome, not an error.
type Decision struct {
	Allowed bool
	Reason  string
	Role    roles.Role
}
