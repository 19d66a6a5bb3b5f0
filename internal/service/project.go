package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planbird/planbird/internal/domain"
)

// ProjectService handles project operations
type ProjectService struct {
	projectRepo   domain.ProjectRepository
	workspaceRepo domain.WorkspaceRepository
	taskRepo      domain.TaskRepository
	historyRepo   domain.HistoryRepository
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo domain.ProjectRepository,
	workspaceRepo domain.WorkspaceRepository,
	taskRepo domain.TaskRepository,
	historyRepo domain.HistoryRepository,
) *ProjectService {
	return &ProjectService{
		projectRepo:   projectRepo,
		workspaceRepo: workspaceRepo,
		taskRepo:      taskRepo,
		historyRepo:   historyRepo,
	}
}

// Create creates a project in a workspace. Workspace manager role required;
// the creator becomes the project's first MANAGER member.
func (s *ProjectService) Create(ctx context.Context, userID, workspaceID uuid.UUID, input domain.ProjectCreate) (*domain.Project, error) {
	wsMember, err := s.workspaceRepo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if wsMember == nil {
		return nil, domain.ErrUnauthorized
	}
	if !wsMember.Role.IsManager() {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	project := &domain.Project{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        input.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	member := &domain.Member{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		ProjectID:   &project.ID,
		UserID:      userID,
		Role:        domain.RoleManager,
		CreatedAt:   now,
	}

	if err := s.projectRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return project, nil
}

// GetByID retrieves a project with access check
func (s *ProjectService) GetByID(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}

	member, err := s.workspaceRepo.GetMember(ctx, project.WorkspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		return nil, domain.ErrUnauthorized
	}

	return project, nil
}

// ListByWorkspace retrieves all projects of a workspace
func (s *ProjectService) ListByWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) ([]domain.Project, error) {
	member, err := s.workspaceRepo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		return nil, domain.ErrUnauthorized
	}

	return s.projectRepo.ListByWorkspace(ctx, workspaceID)
}

// Update updates a project. Project manager role required.
func (s *ProjectService) Update(ctx context.Context, userID, projectID uuid.UUID, input domain.ProjectUpdate) (*domain.Project, error) {
	if _, err := s.requireManager(ctx, projectID, userID); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(ctx, projectID, &input); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.projectRepo.GetByID(ctx, projectID)
}

// Delete deletes a project, cascading its tasks and their history records.
// History goes first, per task: if the history cascade aborts midway the task
// rows still exist, so a retry finds the same ids and finishes the job.
// History rows never outlive their task.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	if _, err := s.requireManager(ctx, projectID, userID); err != nil {
		return err
	}

	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to list project tasks: %w", err)
	}
	for _, task := range tasks {
		if err := s.historyRepo.DeleteByTask(ctx, task.ID); err != nil {
			return fmt.Errorf("failed to delete task history: %w", err)
		}
	}

	if _, err := s.taskRepo.DeleteByProject(ctx, projectID); err != nil {
		return fmt.Errorf("failed to delete project tasks: %w", err)
	}

	return s.projectRepo.Delete(ctx, projectID)
}

// ListMembers retrieves all members of a project
func (s *ProjectService) ListMembers(ctx context.Context, userID, projectID uuid.UUID) ([]domain.Member, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}

	member, err := s.workspaceRepo.GetMember(ctx, project.WorkspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		return nil, domain.ErrUnauthorized
	}

	return s.projectRepo.ListMembers(ctx, projectID)
}

// AddMember adds a member to a project. Project manager role required and
// the user must already belong to the workspace.
func (s *ProjectService) AddMember(ctx context.Context, requesterID, projectID uuid.UUID, input domain.MemberAdd) (*domain.Member, error) {
	project, err := s.requireManager(ctx, projectID, requesterID)
	if err != nil {
		return nil, err
	}

	if input.Role != domain.RoleMember && input.Role != domain.RoleManager {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrValidation, input.Role)
	}

	wsMember, err := s.workspaceRepo.GetMember(ctx, project.WorkspaceID, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace member: %w", err)
	}
	if wsMember == nil {
		return nil, fmt.Errorf("%w: user is not a workspace member", domain.ErrValidation)
	}

	member := &domain.Member{
		ID:          uuid.New(),
		WorkspaceID: project.WorkspaceID,
		ProjectID:   &project.ID,
		UserID:      input.UserID,
		Role:        input.Role,
		CreatedAt:   time.Now(),
	}

	if err := s.projectRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// UpdateMemberRole changes a project member's role, keeping at least one
// manager in the project.
func (s *ProjectService) UpdateMemberRole(ctx context.Context, requesterID, projectID, memberID uuid.UUID, role domain.Role) error {
	if _, err := s.requireManager(ctx, projectID, requesterID); err != nil {
		return err
	}

	if role != domain.RoleMember && role != domain.RoleManager {
		return fmt.Errorf("%w: invalid role %q", domain.ErrValidation, role)
	}

	members, err := s.projectRepo.ListMembers(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}

	var target *domain.Member
	for i := range members {
		if members[i].ID == memberID {
			target = &members[i]
			break
		}
	}
	if target == nil {
		return domain.ErrNotFound
	}

	if target.Role.IsManager() && !role.IsManager() {
		managers, err := s.projectRepo.CountManagers(ctx, projectID)
		if err != nil {
			return fmt.Errorf("failed to count managers: %w", err)
		}
		if managers <= 1 {
			return domain.ErrLastManager
		}
	}

	return s.projectRepo.UpdateMemberRole(ctx, memberID, role)
}

// RemoveMember removes a member from a project, keeping at least one manager.
func (s *ProjectService) RemoveMember(ctx context.Context, requesterID, projectID, memberID uuid.UUID) error {
	if _, err := s.requireManager(ctx, projectID, requesterID); err != nil {
		return err
	}

	members, err := s.projectRepo.ListMembers(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}

	var target *domain.Member
	for i := range members {
		if members[i].ID == memberID {
			target = &members[i]
			break
		}
	}
	if target == nil {
		return domain.ErrNotFound
	}

	if target.Role.IsManager() {
		managers, err := s.projectRepo.CountManagers(ctx, projectID)
		if err != nil {
			return fmt.Errorf("failed to count managers: %w", err)
		}
		if managers <= 1 {
			return domain.ErrLastManager
		}
	}

	return s.projectRepo.RemoveMember(ctx, memberID)
}

// requireManager resolves the project and checks the requester holds a
// manager role on it, or ADMIN on its workspace.
func (s *ProjectService) requireManager(ctx context.Context, projectID, userID uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}

	member, err := s.projectRepo.GetMember(ctx, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if member != nil && member.Role.IsManager() {
		return project, nil
	}

	wsMember, err := s.workspaceRepo.GetMember(ctx, project.WorkspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace member: %w", err)
	}
	if wsMember == nil && member == nil {
		return nil, domain.ErrUnauthorized
	}
	if wsMember != nil && wsMember.Role == domain.RoleAdmin {
		return project, nil
	}

	return nil, domain.ErrForbidden
}
