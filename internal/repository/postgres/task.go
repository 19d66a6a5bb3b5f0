package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/planbird/planbird/internal/domain"
)

// TaskRepository handles task data access
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, workspace_id, project_id, name, status, priority,
	assignee_id, start_date, due_date, progress, position, description,
	created_at, updated_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.WorkspaceID,
		&task.ProjectID,
		&task.Name,
		&task.Status,
		&task.Priority,
		&task.AssigneeID,
		&task.StartDate,
		&task.DueDate,
		&task.Progress,
		&task.Position,
		&task.Description,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, workspace_id, project_id, name, status, priority,
			assignee_id, start_date, due_date, progress, position, description,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		task.ID,
		task.WorkspaceID,
		task.ProjectID,
		task.Name,
		task.Status,
		task.Priority,
		task.AssigneeID,
		task.StartDate,
		task.DueDate,
		task.Progress,
		task.Position,
		task.Description,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// GetManyByIDs retrieves a set of tasks by their ids
func (r *TaskRepository) GetManyByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ANY($1)`

	rows, err := r.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}

	return tasks, nil
}

// ListByProject retrieves tasks of a project ordered for board rendering
func (r *TaskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE project_id = $1
		ORDER BY status, position ASC`

	rows, err := r.db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}

	return tasks, nil
}

// Update persists the full task row. Concurrent writers follow last-write-wins
// semantics; no version token is held.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET project_id = $2, name = $3, status = $4, priority = $5,
		    assignee_id = $6, start_date = $7, due_date = $8, progress = $9,
		    position = $10, description = $11, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Pool.Exec(ctx, query,
		task.ID,
		task.ProjectID,
		task.Name,
		task.Status,
		task.Priority,
		task.AssigneeID,
		task.StartDate,
		task.DueDate,
		task.Progress,
		task.Position,
		task.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// UpdateStatusPosition updates only a task's column and ordering position
func (r *TaskRepository) UpdateStatusPosition(ctx context.Context, id uuid.UUID, status domain.TaskStatus, position int) error {
	query := `
		UPDATE tasks
		SET status = $2, position = $3, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Pool.Exec(ctx, query, id, status, position)
	if err != nil {
		return fmt.Errorf("failed to update task position: %w", err)
	}

	return nil
}

// Delete deletes a task
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1`

	_, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// DeleteByProject deletes all tasks of a project and returns the deleted ids
// so callers can cascade their history records.
func (r *TaskRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	query := `DELETE FROM tasks WHERE project_id = $1 RETURNING id`

	rows, err := r.db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete tasks: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan task id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// MaxPosition returns the highest position within a project's status column,
// 0 when the column is empty.
func (r *TaskRepository) MaxPosition(ctx context.Context, projectID uuid.UUID, status domain.TaskStatus) (int, error) {
	query := `
		SELECT COALESCE(MAX(position), 0) FROM tasks
		WHERE project_id = $1 AND status = $2
	`

	var max int
	err := r.db.Pool.QueryRow(ctx, query, projectID, status).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to get max position: %w", err)
	}

	return max, nil
}
