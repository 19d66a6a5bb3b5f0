package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// History is an immutable audit entry capturing one change-set and its
// editor. Records are never updated; they are deleted only when their task is.
type History struct {
	ID            uuid.UUID      `json:"id" bson:"_id"`
	TaskID        uuid.UUID      `json:"task_id" bson:"task_id"`
	EditorID      uuid.UUID      `json:"editor_id" bson:"editor_id"`
	ChangedFields []string       `json:"changed_fields" bson:"changed_fields"`
	OldValues     map[string]any `json:"old_values" bson:"old_values"`
	NewValues     map[string]any `json:"new_values" bson:"new_values"`
	CreatedAt     time.Time      `json:"created_at" bson:"created_at"`
}

// HistoryCreate is a direct history-record creation request for callers that
// computed their own diff.
type HistoryCreate struct {
	TaskID        uuid.UUID      `json:"task_id" validate:"required"`
	ChangedFields []string       `json:"changed_fields" validate:"required,min=1"`
	OldValues     map[string]any `json:"old_values" validate:"required"`
	NewValues     map[string]any `json:"new_values" validate:"required"`
}

// HistoryEntry is a history record enriched for display: editor and, when the
// diff touched them, project/assignee references resolved into names. The
// enrichment happens at read time; the stored record keeps raw ids.
type HistoryEntry struct {
	History
	EditorName   string `json:"editor_name,omitempty"`
	ProjectName  string `json:"project_name,omitempty"`
	AssigneeName string `json:"assignee_name,omitempty"`
}

// HistoryRepository is the append-only audit store.
type HistoryRepository interface {
	Create(ctx context.Context, record *History) error
	// ListByTask returns records newest first. A task with no history yields
	// an empty slice, not an error.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]History, error)
	DeleteByTask(ctx context.Context, taskID uuid.UUID) error
}
