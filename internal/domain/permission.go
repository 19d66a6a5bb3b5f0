package domain

// CanApplyChanges decides whether a member may apply a given set of field
// changes to a task. Managers change anything. An assignee without a manager
// role keeps to self-service fields (status, progress); anything in the
// manager-only set rejects the whole request. A member who is neither can
// change nothing.
func CanApplyChanges(role Role, isAssignee bool, fields []TaskField) bool {
	if role.IsManager() {
		return true
	}
	if !isAssignee {
		return false
	}
	for _, f := range fields {
		if RestrictedField(f) {
			return false
		}
	}
	return true
}
