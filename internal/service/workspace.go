package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planbird/planbird/internal/domain"
)

// WorkspaceService handles workspace operations
type WorkspaceService struct {
	workspaceRepo domain.WorkspaceRepository
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(workspaceRepo domain.WorkspaceRepository) *WorkspaceService {
	return &WorkspaceService{workspaceRepo: workspaceRepo}
}

// Create creates a new workspace and adds the creator as ADMIN
func (s *WorkspaceService) Create(ctx context.Context, userID uuid.UUID, input domain.WorkspaceCreate) (*domain.Workspace, error) {
	now := time.Now()
	workspace := &domain.Workspace{
		ID:        uuid.New(),
		Name:      input.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	member := &domain.Member{
		ID:          uuid.New(),
		WorkspaceID: workspace.ID,
		UserID:      userID,
		Role:        domain.RoleAdmin,
		CreatedAt:   now,
	}

	if err := s.workspaceRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return workspace, nil
}

// GetByID retrieves a workspace by ID with access check
func (s *WorkspaceService) GetByID(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.Workspace, error) {
	member, err := s.workspaceRepo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		return nil, domain.ErrUnauthorized
	}

	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	if workspace == nil {
		return nil, domain.ErrNotFound
	}

	return workspace, nil
}

// ListByUser retrieves all workspaces for a user
func (s *WorkspaceService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Workspace, error) {
	workspaces, err := s.workspaceRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, nil
}

// Update updates a workspace. Manager role required.
func (s *WorkspaceService) Update(ctx context.Context, userID, workspaceID uuid.UUID, input domain.WorkspaceUpdate) (*domain.Workspace, error) {
	if err := s.requireManager(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	if err := s.workspaceRepo.Update(ctx, workspaceID, &input); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}

	return s.workspaceRepo.GetByID(ctx, workspaceID)
}

// Delete deletes a workspace. ADMIN only.
func (s *WorkspaceService) Delete(ctx context.Context, userID, workspaceID uuid.UUID) error {
	member, err := s.workspaceRepo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		return domain.ErrUnauthorized
	}
	if member.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	return s.workspaceRepo.Delete(ctx, workspaceID)
}

// ListMembers retrieves all members of a workspace
func (s *WorkspaceService) ListMembers(ctx context.Context, userID, workspaceID uuid.UUID) ([]domain.Member, error) {
	member, err := s.workspaceRepo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		return nil, domain.ErrUnauthorized
	}

	return s.workspaceRepo.ListMembers(ctx, workspaceID)
}

// AddMember adds a member to a workspace. Manager role required.
func (s *WorkspaceService) AddMember(ctx context.Context, requesterID, workspaceID uuid.UUID, input domain.MemberAdd) (*domain.Member, error) {
	if err := s.requireManager(ctx, workspaceID, requesterID); err != nil {
		return nil, err
	}

	if input.Role != domain.RoleMember && input.Role != domain.RoleManager {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrValidation, input.Role)
	}

	member := &domain.Member{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UserID:      input.UserID,
		Role:        input.Role,
		CreatedAt:   time.Now(),
	}

	if err := s.workspaceRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// UpdateMemberRole changes a member's role. Manager role required. A
// downgrade that would leave the workspace without any manager is rejected.
func (s *WorkspaceService) UpdateMemberRole(ctx context.Context, requesterID, workspaceID, memberID uuid.UUID, role domain.Role) error {
	if err := s.requireManager(ctx, workspaceID, requesterID); err != nil {
		return err
	}

	if !role.Valid() || role == domain.RoleAdmin {
		return fmt.Errorf("%w: invalid role %q", domain.ErrValidation, role)
	}

	target, err := s.workspaceRepo.GetMemberByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to get target member: %w", err)
	}
	if target == nil || target.WorkspaceID != workspaceID {
		return domain.ErrNotFound
	}

	if target.Role.IsManager() && !role.IsManager() {
		managers, err := s.workspaceRepo.CountManagers(ctx, workspaceID)
		if err != nil {
			return fmt.Errorf("failed to count managers: %w", err)
		}
		if managers <= 1 {
			return domain.ErrLastManager
		}
	}

	return s.workspaceRepo.UpdateMemberRole(ctx, memberID, role)
}

// RemoveMember removes a member from a workspace. Manager role required.
// Removing the last manager is rejected.
func (s *WorkspaceService) RemoveMember(ctx context.Context, requesterID, workspaceID, memberID uuid.UUID) error {
	if err := s.requireManager(ctx, workspaceID, requesterID); err != nil {
		return err
	}

	target, err := s.workspaceRepo.GetMemberByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to get target member: %w", err)
	}
	if target == nil || target.WorkspaceID != workspaceID {
		return domain.ErrNotFound
	}

	if target.Role.IsManager() {
		managers, err := s.workspaceRepo.CountManagers(ctx, workspaceID)
		if err != nil {
			return fmt.Errorf("failed to count managers: %w", err)
		}
		if managers <= 1 {
			return domain.ErrLastManager
		}
	}

	return s.workspaceRepo.RemoveMember(ctx, memberID)
}

func (s *WorkspaceService) requireManager(ctx context.Context, workspaceID, userID uuid.UUID) error {
	member, err := s.workspaceRepo.GetMember(ctx, workspaceID, userID)
	if err != nil {
		return fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		return domain.ErrUnauthorized
	}
	if !member.Role.IsManager() {
		return domain.ErrForbidden
	}
	return nil
}
