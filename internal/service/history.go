package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planbird/planbird/internal/domain"
)

// HistoryService reads the audit log and accepts direct record creation from
// callers that computed their own diff.
type HistoryService struct {
	historyRepo   domain.HistoryRepository
	taskRepo      domain.TaskRepository
	workspaceRepo domain.WorkspaceRepository
	projectRepo   domain.ProjectRepository
	userRepo      domain.UserRepository
}

// NewHistoryService creates a new history service
func NewHistoryService(
	historyRepo domain.HistoryRepository,
	taskRepo domain.TaskRepository,
	workspaceRepo domain.WorkspaceRepository,
	projectRepo domain.ProjectRepository,
	userRepo domain.UserRepository,
) *HistoryService {
	return &HistoryService{
		historyRepo:   historyRepo,
		taskRepo:      taskRepo,
		workspaceRepo: workspaceRepo,
		projectRepo:   projectRepo,
		userRepo:      userRepo,
	}
}

// ListByTask returns a task's history newest first, with editor and (when a
// diff touched them) project/assignee ids resolved into display names. The
// stored records keep raw ids; enrichment is read time only. A deleted task
// has no workspace to gate on and its history was cascaded with it, so the
// lookup degrades to an empty list rather than an error.
func (s *HistoryService) ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]domain.HistoryEntry, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if task != nil {
		member, err := s.workspaceRepo.GetMember(ctx, task.WorkspaceID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve workspace membership: %w", err)
		}
		if member == nil {
			return nil, domain.ErrUnauthorized
		}
	}

	records, err := s.historyRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]domain.HistoryEntry, len(records))
	for i, record := range records {
		entries[i] = domain.HistoryEntry{History: record}
		entries[i].EditorName = s.memberName(ctx, record.EditorID)

		if raw, ok := record.NewValues[string(domain.FieldProjectID)]; ok {
			entries[i].ProjectName = s.projectName(ctx, raw)
		}
		if raw, ok := record.NewValues[string(domain.FieldAssigneeID)]; ok {
			entries[i].AssigneeName = s.memberNameFromValue(ctx, raw)
		}
	}

	return entries, nil
}

// Create appends a history record on behalf of a caller that computed its own
// diff. The caller must be a manager or the task's assignee, same gate as the
// update path.
func (s *HistoryService) Create(ctx context.Context, userID uuid.UUID, input domain.HistoryCreate) (*domain.History, error) {
	task, err := s.taskRepo.GetByID(ctx, input.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}

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

	isManager := wsMember.Role == domain.RoleAdmin || (projMember != nil && projMember.Role.IsManager())
	isAssignee := task.AssigneeID != nil && *task.AssigneeID == wsMember.ID
	if !isManager && !isAssignee {
		return nil, domain.ErrForbidden
	}

	record := &domain.History{
		ID:            uuid.New(),
		TaskID:        input.TaskID,
		EditorID:      wsMember.ID,
		ChangedFields: input.ChangedFields,
		OldValues:     input.OldValues,
		NewValues:     input.NewValues,
		CreatedAt:     time.Now(),
	}

	if err := s.historyRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create history record: %w", err)
	}

	return record, nil
}

func (s *HistoryService) memberName(ctx context.Context, memberID uuid.UUID) string {
	member, err := s.workspaceRepo.GetMemberByID(ctx, memberID)
	if err != nil || member == nil {
		return ""
	}

	names, err := s.userRepo.NamesByID(ctx, []uuid.UUID{member.UserID})
	if err != nil {
		return ""
	}
	return names[member.UserID]
}

func (s *HistoryService) memberNameFromValue(ctx context.Context, raw any) string {
	id, ok := parseUUIDValue(raw)
	if !ok {
		return ""
	}
	return s.memberName(ctx, id)
}

func (s *HistoryService) projectName(ctx context.Context, raw any) string {
	id, ok := parseUUIDValue(raw)
	if !ok {
		return ""
	}

	names, err := s.projectRepo.NamesByID(ctx, []uuid.UUID{id})
	if err != nil {
		return ""
	}
	return names[id]
}

// parseUUIDValue handles both the in-process uuid.UUID and the string form
// the value takes after a round trip through the document store.
func parseUUIDValue(raw any) (uuid.UUID, bool) {
	switch v := raw.(type) {
	case uuid.UUID:
		return v, true
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	}
	return uuid.Nil, false
}
