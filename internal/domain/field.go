package domain

// TaskField enumerates the mutable task fields. The change-set computer and
// the permission evaluator both range over this closed set, so a field cannot
// exist without the ACL knowing about it.
type TaskField string

const (
	FieldName        TaskField = "name"
	FieldStatus      TaskField = "status"
	FieldProjectID   TaskField = "projectId"
	FieldStartDate   TaskField = "startDate"
	FieldDueDate     TaskField = "dueDate"
	FieldAssigneeID  TaskField = "assigneeId"
	FieldProgress    TaskField = "progress"
	FieldPriority    TaskField = "priority"
	FieldDescription TaskField = "description"
)

// TaskFields is the canonical field order, used to keep change-set output
// stable across requests.
var TaskFields = []TaskField{
	FieldName,
	FieldStatus,
	FieldProjectID,
	FieldStartDate,
	FieldDueDate,
	FieldAssigneeID,
	FieldProgress,
	FieldPriority,
	FieldDescription,
}

// managerOnlyFields are the fields an assignee may not touch: reassignment,
// rescheduling, renaming and reprioritizing stay with managers. Status and
// progress remain assignee self-service.
var managerOnlyFields = map[TaskField]bool{
	FieldName:        true,
	FieldProjectID:   true,
	FieldStartDate:   true,
	FieldDueDate:     true,
	FieldAssigneeID:  true,
	FieldDescription: true,
	FieldPriority:    true,
}

// RestrictedField reports whether f requires a manager role to change.
func RestrictedField(f TaskField) bool {
	return managerOnlyFields[f]
}
