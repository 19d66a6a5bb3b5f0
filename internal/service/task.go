package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/planbird/planbird/internal/domain"
	"github.com/planbird/planbird/internal/repository/redis"
)

// TaskService orchestrates task mutations: membership resolution, change-set
// computation, authorization, persistence and history recording.
type TaskService struct {
	taskRepo      domain.TaskRepository
	workspaceRepo domain.WorkspaceRepository
	projectRepo   domain.ProjectRepository
	historyRepo   domain.HistoryRepository
	boardCache    *redis.BoardCache
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo domain.TaskRepository,
	workspaceRepo domain.WorkspaceRepository,
	projectRepo domain.ProjectRepository,
	historyRepo domain.HistoryRepository,
	boardCache *redis.BoardCache,
) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		workspaceRepo: workspaceRepo,
		projectRepo:   projectRepo,
		historyRepo:   historyRepo,
		boardCache:    boardCache,
	}
}

// taskActor is the resolved acting member for a task mutation.
type taskActor struct {
	workspaceMember *domain.Member
	projectMember   *domain.Member
	isManager       bool
	isAssignee      bool
}

// resolveActor loads the caller's workspace and project memberships for a
// task. Managing a project follows from either a project-level manager role
// or a workspace-level ADMIN role.
func (s *TaskService) resolveActor(ctx context.Context, task *domain.Task, userID uuid.UUID) (*taskActor, error) {
	wsMember, err := s.workspaceRepo.GetMember(ctx, task.WorkspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace membership: %w", err)
	}
	if wsMember == nil {
		return nil, domain.ErrUnauthorized
	}

	projMember, err := s.projectRepo.GetMember(ctx, task.ProjectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project membership: %w", err)
	}
	if projMember == nil {
		return nil, domain.ErrUnauthorized
	}

	return &taskActor{
		workspaceMember: wsMember,
		projectMember:   projMember,
		isManager:       projMember.Role.IsManager() || wsMember.Role == domain.RoleAdmin,
		isAssignee:      task.AssigneeID != nil && *task.AssigneeID == wsMember.ID,
	}, nil
}

// Create creates a task in a project. Manager only. The task lands at the
// bottom of its status column, one position step below the current maximum.
func (s *TaskService) Create(ctx context.Context, userID, projectID uuid.UUID, input domain.TaskCreate) (*domain.Task, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}

	member, err := s.projectRepo.GetMember(ctx, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project membership: %w", err)
	}
	if member == nil {
		wsMember, err := s.workspaceRepo.GetMember(ctx, project.WorkspaceID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve workspace membership: %w", err)
		}
		if wsMember == nil {
			return nil, domain.ErrUnauthorized
		}
		if wsMember.Role != domain.RoleAdmin {
			return nil, domain.ErrForbidden
		}
	} else if !member.Role.IsManager() {
		return nil, domain.ErrForbidden
	}

	status := input.Status
	if status == "" {
		status = domain.StatusTodo
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", domain.ErrValidation, status)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: invalid priority %q", domain.ErrValidation, priority)
	}

	var startDate, dueDate *time.Time
	if input.StartDate != nil {
		t, err := domain.ParseTaskDate(*input.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid start_date", domain.ErrValidation)
		}
		startDate = &t
	}
	if input.DueDate != nil {
		t, err := domain.ParseTaskDate(*input.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid due_date", domain.ErrValidation)
		}
		dueDate = &t
	}

	maxPos, err := s.taskRepo.MaxPosition(ctx, projectID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get max position: %w", err)
	}

	now := time.Now()
	task := &domain.Task{
		ID:          uuid.New(),
		WorkspaceID: project.WorkspaceID,
		ProjectID:   projectID,
		Name:        input.Name,
		Status:      status,
		Priority:    priority,
		AssigneeID:  input.AssigneeID,
		StartDate:   startDate,
		DueDate:     dueDate,
		Progress:    0,
		Position:    maxPos + domain.PositionStep,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.invalidateBoard(ctx, projectID)

	return task, nil
}

// GetByID retrieves a task, requiring workspace membership.
func (s *TaskService) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}

	member, err := s.workspaceRepo.GetMember(ctx, task.WorkspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace membership: %w", err)
	}
	if member == nil {
		return nil, domain.ErrUnauthorized
	}

	return task, nil
}

// ListByProject lists a project's tasks, board-ordered, via the cache when
// warm.
func (s *TaskService) ListByProject(ctx context.Context, userID, projectID uuid.UUID) ([]domain.Task, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}

	member, err := s.workspaceRepo.GetMember(ctx, project.WorkspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace membership: %w", err)
	}
	if member == nil {
		return nil, domain.ErrUnauthorized
	}

	if s.boardCache != nil {
		if tasks, err := s.boardCache.Get(ctx, projectID); err == nil && tasks != nil {
			return tasks, nil
		}
	}

	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	if s.boardCache != nil {
		if err := s.boardCache.Set(ctx, projectID, tasks); err != nil {
			log.Warn().Err(err).Msg("failed to cache board")
		}
	}

	return tasks, nil
}

// Update applies a partial update to a task. The flow: load task, resolve the
// acting member at workspace and project scope, gate on manager-or-assignee,
// diff, authorize the diff per field, persist, record history. A no-op diff
// returns the task untouched and writes nothing, but only after the caller's
// write access was established, so non-members cannot learn task existence.
func (s *TaskService) Update(ctx context.Context, userID, taskID uuid.UUID, update domain.TaskUpdate) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}

	actor, err := s.resolveActor(ctx, task, userID)
	if err != nil {
		return nil, err
	}
	if !actor.isManager && !actor.isAssignee {
		return nil, domain.ErrForbidden
	}

	changes, err := domain.ComputeChanges(task, &update)
	if err != nil {
		return nil, err
	}
	if changes.Empty() {
		return task, nil
	}

	role := actor.projectMember.Role
	if actor.isManager {
		role = domain.RoleManager
	}
	if !domain.CanApplyChanges(role, actor.isAssignee, changes.Fields) {
		return nil, domain.ErrForbidden
	}
	if changes.Has(domain.FieldProjectID) {
		target := changes.New[domain.FieldProjectID].(uuid.UUID)
		project, err := s.projectRepo.GetByID(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("failed to get target project: %w", err)
		}
		if project == nil {
			return nil, fmt.Errorf("%w: target project does not exist", domain.ErrValidation)
		}
		if project.WorkspaceID != task.WorkspaceID {
			return nil, domain.ErrWorkspaceMismatch
		}
	}

	previousProject := task.ProjectID
	changes.Apply(task)

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.invalidateBoard(ctx, previousProject)
	if task.ProjectID != previousProject {
		s.invalidateBoard(ctx, task.ProjectID)
	}

	record := &domain.History{
		ID:            uuid.New(),
		TaskID:        task.ID,
		EditorID:      actor.workspaceMember.ID,
		ChangedFields: changes.FieldNames(),
		OldValues:     toStringKeys(changes.Old),
		NewValues:     toStringKeys(changes.New),
		CreatedAt:     time.Now(),
	}
	if err := s.historyRepo.Create(ctx, record); err != nil {
		// The task write already happened and is not rolled back; surface the
		// missing audit entry instead of reporting a clean success.
		log.Error().Err(err).Str("task_id", task.ID.String()).Msg("history write failed after task update")
		return task, fmt.Errorf("%w: %v", domain.ErrHistoryNotRecorded, err)
	}

	return task, nil
}

// Delete removes a task and its history. Manager only. History records go
// first so they never outlive their task.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return domain.ErrNotFound
	}

	actor, err := s.resolveActor(ctx, task, userID)
	if err != nil {
		return err
	}
	if !actor.isManager {
		return domain.ErrForbidden
	}

	if err := s.historyRepo.DeleteByTask(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task history: %w", err)
	}
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.invalidateBoard(ctx, task.ProjectID)

	return nil
}

// BulkUpdate applies a batch of status/position moves, the drag-and-drop
// operation. All referenced tasks must share one workspace and the caller
// needs workspace membership; the per-field ACL does not apply here, bulk
// reordering is a single coarse-grained operation. Writes run concurrently
// and independently: a partial failure leaves some tasks moved.
func (s *TaskService) BulkUpdate(ctx context.Context, userID uuid.UUID, updates []domain.BulkTaskUpdate) ([]domain.Task, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no tasks to update", domain.ErrValidation)
	}

	ids := make([]uuid.UUID, len(updates))
	seen := make(map[uuid.UUID]struct{}, len(updates))
	for i, u := range updates {
		if !u.Status.Valid() {
			return nil, fmt.Errorf("%w: invalid status %q", domain.ErrValidation, u.Status)
		}
		if _, dup := seen[u.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate task id %s", domain.ErrValidation, u.ID)
		}
		seen[u.ID] = struct{}{}
		ids[i] = u.ID
	}

	tasks, err := s.taskRepo.GetManyByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	if len(tasks) != len(updates) {
		return nil, domain.ErrNotFound
	}

	workspaceID := tasks[0].WorkspaceID
	for _, t := range tasks[1:] {
		if t.WorkspaceID != workspaceID {
			return nil, domain.ErrWorkspaceMismatch
		}
	}

	member, err := s.workspaceRepo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace membership: %w", err)
	}
	if member == nil {
		return nil, domain.ErrUnauthorized
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, u := range updates {
		u := u
		g.Go(func() error {
			return s.taskRepo.UpdateStatusPosition(gctx, u.ID, u.Status, u.Position)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("bulk update incomplete: %w", err)
	}

	projects := make(map[uuid.UUID]struct{})
	for _, t := range tasks {
		projects[t.ProjectID] = struct{}{}
	}
	for projectID := range projects {
		s.invalidateBoard(ctx, projectID)
	}

	updated, err := s.taskRepo.GetManyByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to reload tasks: %w", err)
	}

	return updated, nil
}

func (s *TaskService) invalidateBoard(ctx context.Context, projectID uuid.UUID) {
	if s.boardCache == nil {
		return
	}
	if err := s.boardCache.Invalidate(ctx, projectID); err != nil {
		log.Warn().Err(err).Str("project_id", projectID.String()).Msg("failed to invalidate board cache")
	}
}

func toStringKeys(values map[domain.TaskField]any) map[string]any {
	out := make(map[string]any, len(values))
	for field, value := range values {
		out[string(field)] = value
	}
	return out
}
