package rbac

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumatrix/edumatrix/internal/roles"
)

func TestAllowedScenarios(t *testing.T) {
	assert.False(t, Allowed(EntityStudent, ActionDelete, roles.Employee))
	assert.True(t, Allowed(EntityStudent, ActionView, roles.Employee))
	assert.False(t, Allowed(EntityAcademicYear, ActionAdd, roles.Manager))
	assert.True(t, Allowed(EntityAcademicYear, ActionAdd, roles.CenterAdmin))
}

func TestAllowedUnlistedIsDenied(t *testing.T) {
	for _, role := range roles.CenterRoles() {
		for _, action := range Actions() {
			assert.False(t, Allowed(EntityCenter, action, role), "%s %s", role, action)
			assert.False(t, Allowed(Entity("Invoice"), action, role))
		}
	}
	assert.False(t, Allowed(EntityStudent, Action("Export"), roles.CenterAdmin))
	assert.False(t, Allowed(EntityStudent, ActionView, roles.Role("Auditor")))
}

func TestSuperAdminIsNotInTable(t *testing.T) {
	for _, entity := range Entities() {
		for _, action := range Actions() {
			assert.False(t, Allowed(entity, action, roles.SuperAdmin))
		}
	}
}

func TestCenterAdminHoldsEveryCell(t *testing.T) {
	for _, entity := range Entities() {
		for _, action := range Actions() {
			assert.True(t, Allowed(entity, action, roles.CenterAdmin), "%s.%s", entity, action)
		}
	}
}

func TestTableCellsAreExplicit(t *testing.T) {
	require.Len(t, Entities(), 16)
	for _, entity := range Entities() {
		actions := policyGrid[entity]
		require.Len(t, actions, 4, string(entity))
		for _, action := range Actions() {
			assert.NotEmpty(t, actions[action], "%s.%s", entity, action)
		}
	}
}

// expectedGrid is the published permission table, one letter per role:
// A = CenterAdmin, M = Manager, E = Employee. Columns are View, Add, Edit, Delete.
var expectedGrid = map[Entity][4]string{
	EntityAcademicYear: {"AME", "A", "A", "A"},
	EntityAttendance:   {"AME", "AME", "AME", "AM"},
	EntityClassroom:    {"AME", "AM", "AM", "A"},
	EntityCourse:       {"AME", "AME", "AME", "AM"},
	EntityEmployee:     {"AM", "AM", "AM", "A"},
	EntityExam:         {"AME", "AME", "AME", "AM"},
	EntityExamResult:   {"AME", "AME", "AM", "AM"},
	EntityExpense:      {"AM", "AME", "AM", "A"},
	EntityItem:         {"AME", "AME", "AME", "AM"},
	EntityLevel:        {"AME", "AM", "AM", "A"},
	EntityPayment:      {"AME", "AME", "AM", "A"},
	EntitySession:      {"AME", "AME", "AME", "AM"},
	EntityStudent:      {"AME", "AME", "AME", "AM"},
	EntitySubject:      {"AME", "AME", "AME", "AM"},
	EntityTeacher:      {"AME", "AME", "AME", "AM"},
	EntityUser:         {"AM", "A", "A", "A"},
}

var roleLetters = map[roles.Role]string{
	roles.CenterAdmin: "A",
	roles.Manager:     "M",
	roles.Employee:    "E",
}

func TestPolicyMatchesPublishedGrid(t *testing.T) {
	actions := []Action{ActionView, ActionAdd, ActionEdit, ActionDelete}
	require.Len(t, Entities(), len(expectedGrid))
	for entity, row := range expectedGrid {
		for i, action := range actions {
			for role, letter := range roleLetters {
				want := strings.Contains(row[i], letter)
				assert.Equal(t, want, Allowed(entity, action, role), "%s.%s for %s", entity, action, role)
			}
			var got strings.Builder
			for _, role := range Grantees(entity, action) {
				got.WriteString(roleLetters[role])
			}
			assert.Equal(t, row[i], got.String(), "%s.%s grantees", entity, action)
		}
	}
}

func TestGrantees(t *testing.T) {
	assert.Equal(t, []roles.Role{roles.CenterAdmin, roles.Manager}, Grantees(EntityUser, ActionView))
	assert.Equal(t, []roles.Role{roles.CenterAdmin}, Grantees(EntityUser, ActionAdd))
	assert.Equal(t, []roles.Role{roles.CenterAdmin, roles.Manager, roles.Employee}, Grantees(EntityExpense, ActionAdd))
	assert.Equal(t, []roles.Role{roles.CenterAdmin, roles.Manager}, Grantees(EntityExamResult, ActionEdit))
	assert.Nil(t, Grantees(EntityCenter, ActionView))
}

func TestEntitiesSorted(t *testing.T) {
	entities := Entities()
	assert.Equal(t, EntityAcademicYear, entities[0])
	assert.Equal(t, EntityUser, entities[len(entities)-1])
	assert.NotContains(t, entities, EntityCenter)
}

func TestGridCoversTable(t *testing.T) {
	grid := Grid()
	require.Len(t, grid, 16*4)
	assert.Equal(t, EntityAcademicYear, grid[0].Entity)
	assert.Equal(t, ActionView, grid[0].Action)
	assert.Equal(t, []roles.Role{roles.CenterAdmin, roles.Manager, roles.Employee}, grid[0].Roles)
	assert.Equal(t, []roles.Role{roles.CenterAdmin}, grid[1].Roles)
}

func TestRequirementString(t *testing.T) {
	assert.Equal(t, "Student.Delete", Requirement{Entity: EntityStudent, Action: ActionDelete}.String())
}
