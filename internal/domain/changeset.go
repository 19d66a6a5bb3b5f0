package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ChangeSet is the computed difference between a task's persisted state and a
// requested partial update. Only fields whose values actually differ appear;
// a resubmitted unchanged form yields an empty change-set and no history.
type ChangeSet struct {
	Fields []TaskField       `json:"changed_fields"`
	Old    map[TaskField]any `json:"old_values"`
	New    map[TaskField]any `json:"new_values"`
}

// Empty reports whether no field differs.
func (c *ChangeSet) Empty() bool {
	return len(c.Fields) == 0
}

// Has reports whether field is part of the change-set.
func (c *ChangeSet) Has(field TaskField) bool {
	_, ok := c.New[field]
	return ok
}

// FieldNames returns the changed field names as plain strings for persistence.
func (c *ChangeSet) FieldNames() []string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = string(f)
	}
	return names
}

func (c *ChangeSet) add(field TaskField, oldValue, newValue any) {
	c.Fields = append(c.Fields, field)
	c.Old[field] = oldValue
	c.New[field] = newValue
}

// ComputeChanges diffs a persisted task against a partial update. Fields
// absent from the update are skipped. Dates are compared by instant, so a
// differently formatted but semantically identical date is not a change;
// everything else compares by its string form. Returns ErrValidation (wrapped)
// for values that cannot be parsed.
func ComputeChanges(task *Task, update *TaskUpdate) (*ChangeSet, error) {
	cs := &ChangeSet{
		Old: make(map[TaskField]any),
		New: make(map[TaskField]any),
	}

	if update.Name != nil && *update.Name != task.Name {
		cs.add(FieldName, task.Name, *update.Name)
	}

	if update.Status != nil {
		if !update.Status.Valid() {
			return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, *update.Status)
		}
		if *update.Status != task.Status {
			cs.add(FieldStatus, task.Status, *update.Status)
		}
	}

	if update.ProjectID != nil && *update.ProjectID != task.ProjectID {
		cs.add(FieldProjectID, task.ProjectID, *update.ProjectID)
	}

	if update.StartDate != nil {
		changed, parsed, err := dateChanged(task.StartDate, *update.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid start_date: %v", ErrValidation, err)
		}
		if changed {
			cs.add(FieldStartDate, dateValue(task.StartDate), parsed)
		}
	}

	if update.DueDate != nil {
		changed, parsed, err := dateChanged(task.DueDate, *update.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid due_date: %v", ErrValidation, err)
		}
		if changed {
			cs.add(FieldDueDate, dateValue(task.DueDate), parsed)
		}
	}

	if update.AssigneeID != nil {
		if task.AssigneeID == nil || *update.AssigneeID != *task.AssigneeID {
			cs.add(FieldAssigneeID, assigneeValue(task.AssigneeID), *update.AssigneeID)
		}
	}

	if update.Progress != nil {
		progress, err := strconv.Atoi(*update.Progress)
		if err != nil {
			return nil, fmt.Errorf("%w: progress is not an integer", ErrValidation)
		}
		if progress < 0 || progress > 100 {
			return nil, fmt.Errorf("%w: progress must be between 0 and 100", ErrValidation)
		}
		if progress != task.Progress {
			cs.add(FieldProgress, task.Progress, progress)
		}
	}

	if update.Priority != nil {
		if !update.Priority.Valid() {
			return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, *update.Priority)
		}
		if *update.Priority != task.Priority {
			cs.add(FieldPriority, task.Priority, *update.Priority)
		}
	}

	if update.Description != nil && *update.Description != task.Description {
		cs.add(FieldDescription, task.Description, *update.Description)
	}

	return cs, nil
}

// Apply writes the change-set's new values onto the task. Numeric and date
// fields were already parsed from their wire form during the diff.
func (c *ChangeSet) Apply(task *Task) {
	for field, value := range c.New {
		switch field {
		case FieldName:
			task.Name = value.(string)
		case FieldStatus:
			task.Status = value.(TaskStatus)
		case FieldProjectID:
			task.ProjectID = value.(uuid.UUID)
		case FieldStartDate:
			t := value.(time.Time)
			task.StartDate = &t
		case FieldDueDate:
			t := value.(time.Time)
			task.DueDate = &t
		case FieldAssigneeID:
			id := value.(uuid.UUID)
			task.AssigneeID = &id
		case FieldProgress:
			task.Progress = value.(int)
		case FieldPriority:
			task.Priority = value.(TaskPriority)
		case FieldDescription:
			task.Description = value.(string)
		}
	}
}

func dateChanged(current *time.Time, wire string) (bool, time.Time, error) {
	parsed, err := ParseTaskDate(wire)
	if err != nil {
		return false, time.Time{}, err
	}
	if current != nil && current.Equal(parsed) {
		return false, parsed, nil
	}
	return true, parsed, nil
}

func dateValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func assigneeValue(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}
