package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanApplyChanges_ManagerUnrestricted(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleManager} {
		assert.True(t, CanApplyChanges(role, false, TaskFields), "role %s", role)
	}
}

func TestCanApplyChanges_AssigneeSelfService(t *testing.T) {
	allowed := []TaskField{FieldStatus, FieldProgress}
	assert.True(t, CanApplyChanges(RoleMember, true, allowed))

	// Each restricted field alone blocks the whole change-set.
	for _, field := range TaskFields {
		if !RestrictedField(field) {
			continue
		}
		assert.False(t, CanApplyChanges(RoleMember, true, []TaskField{field}), "field %s", field)
		assert.False(t, CanApplyChanges(RoleMember, true, append(allowed, field)), "field %s mixed", field)
	}
}

func TestCanApplyChanges_NonAssigneeMemberBlocked(t *testing.T) {
	assert.False(t, CanApplyChanges(RoleMember, false, []TaskField{FieldStatus}))
	assert.False(t, CanApplyChanges(RoleMember, false, []TaskField{FieldProgress}))
}

func TestRestrictedField_ClosedOverEnum(t *testing.T) {
	restricted := map[TaskField]bool{
		FieldName:        true,
		FieldProjectID:   true,
		FieldStartDate:   true,
		FieldDueDate:     true,
		FieldAssigneeID:  true,
		FieldDescription: true,
		FieldPriority:    true,
	}
	for _, field := range TaskFields {
		assert.Equal(t, restricted[field], RestrictedField(field), "field %s", field)
	}
}
