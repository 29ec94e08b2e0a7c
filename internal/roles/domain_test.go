package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClosedSet(t *testing.T) {
	cases := map[string]struct {
		want Role
		ok   bool
	}{
		"SuperAdmin":    {SuperAdmin, true},
		"CenterAdmin":   {CenterAdmin, true},
		" Manager ":     {Manager, true},
		"Employee":      {Employee, true},
		"employee":      {"", false},
		"Admin":         {"", false},
		"":              {"", false},
		"Manager;Admin": {"", false},
	}
	for raw, tc := range cases {
		got, ok := Parse(raw)
		assert.Equal(t, tc.ok, ok, raw)
		assert.Equal(t, tc.want, got, raw)
	}
}

func TestContainsIgnoresGarbage(t *testing.T) {
	assert.True(t, Contains([]string{"garbage", "SuperAdmin"}, SuperAdmin))
	assert.False(t, Contains([]string{"superadmin"}, SuperAdmin))
	assert.False(t, Contains(nil, Employee))
}

func TestAssignableBy(t *testing.T) {
	assert.True(t, CanAssign(true, SuperAdmin))
	assert.False(t, CanAssign(false, SuperAdmin))
	assert.True(t, CanAssign(false, Employee))
	assert.Len(t, AssignableBy(false), 3)
}

func TestEveryRoleHasDescription(t *testing.T) {
	for _, r := range All() {
		assert.NotEmpty(t, r.Description(), r)
	}
}
