package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is a kanban column.
type TaskStatus string

const (
	StatusBacklog    TaskStatus = "BACKLOG"
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusInReview   TaskStatus = "IN_REVIEW"
	StatusDone       TaskStatus = "DONE"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusBacklog, StatusTodo, StatusInProgress, StatusInReview, StatusDone:
		return true
	}
	return false
}

// TaskPriority is a task's priority level.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// PositionStep is the gap between consecutive tasks in a column. Sparse
// positions let a drag-and-drop insert pick a midpoint without rewriting
// neighbors.
const PositionStep = 1000

// MidpointPosition returns the position for a task inserted between two
// neighbors. ok is false when the gap is exhausted and the column needs
// re-spacing before the insert can keep a stable order.
func MidpointPosition(before, after int) (pos int, ok bool) {
	mid := before + (after-before)/2
	return mid, mid != before && mid != after
}

// Task is one unit of work within a project.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	WorkspaceID uuid.UUID    `json:"workspace_id"`
	ProjectID   uuid.UUID    `json:"project_id"`
	Name        string       `json:"name"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AssigneeID  *uuid.UUID   `json:"assignee_id,omitempty"`
	StartDate   *time.Time   `json:"start_date,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Progress    int          `json:"progress"`
	Position    int          `json:"position"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TaskCreate represents task creation data
type TaskCreate struct {
	Name        string       `json:"name" validate:"required,max=255"`
	Status      TaskStatus   `json:"status,omitempty"`
	Priority    TaskPriority `json:"priority,omitempty"`
	AssigneeID  *uuid.UUID   `json:"assignee_id,omitempty"`
	StartDate   *string      `json:"start_date,omitempty"`
	DueDate     *string      `json:"due_date,omitempty"`
	Description string       `json:"description,omitempty"`
}

// TaskUpdate is a partial update as it arrives on the wire. Absent fields stay
// nil and are ignored by the change-set computer. Dates and progress keep
// their wire encoding (strings) until the diff decides they matter.
type TaskUpdate struct {
	Name        *string       `json:"name,omitempty" validate:"omitempty,max=255"`
	Status      *TaskStatus   `json:"status,omitempty"`
	ProjectID   *uuid.UUID    `json:"project_id,omitempty"`
	StartDate   *string       `json:"start_date,omitempty"`
	DueDate     *string       `json:"due_date,omitempty"`
	AssigneeID  *uuid.UUID    `json:"assignee_id,omitempty"`
	Progress    *string       `json:"progress,omitempty" validate:"omitempty,number"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	Description *string       `json:"description,omitempty"`
}

// BulkTaskUpdate is one entry of a kanban drag-and-drop batch.
type BulkTaskUpdate struct {
	ID       uuid.UUID  `json:"id" validate:"required"`
	Status   TaskStatus `json:"status" validate:"required"`
	Position int        `json:"position" validate:"gte=0"`
}

// taskDateFormats are the accepted wire encodings for startDate/dueDate.
var taskDateFormats = []string{time.RFC3339, "2006-01-02"}

// ParseTaskDate parses a wire date. Comparison downstream is by instant, so
// two encodings of the same moment never register as a change.
func ParseTaskDate(s string) (time.Time, error) {
	var err error
	for _, layout := range taskDateFormats {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// TaskRepository provides access to persisted tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	// GetByID returns (nil, nil) when no task exists.
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	GetManyByIDs(ctx context.Context, ids []uuid.UUID) ([]Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	UpdateStatusPosition(ctx context.Context, id uuid.UUID, status TaskStatus, position int) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProject(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
	MaxPosition(ctx context.Context, projectID uuid.UUID, status TaskStatus) (int, error)
}
