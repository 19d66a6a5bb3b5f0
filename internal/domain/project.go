package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Project is a grouping of tasks within a workspace, with its own membership.
type Project struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectCreate represents project creation data
type ProjectCreate struct {
	Name string `json:"name" validate:"required,max=255"`
}

// ProjectUpdate represents project update data
type ProjectUpdate struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=255"`
}

// ProjectRepository provides access to projects and their memberships.
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Project, error)
	Update(ctx context.Context, id uuid.UUID, update *ProjectUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	NamesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)

	AddMember(ctx context.Context, member *Member) error
	// GetMember returns (nil, nil) when the user has no membership.
	GetMember(ctx context.Context, projectID, userID uuid.UUID) (*Member, error)
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]Member, error)
	UpdateMemberRole(ctx context.Context, memberID uuid.UUID, role Role) error
	RemoveMember(ctx context.Context, memberID uuid.UUID) error
	CountManagers(ctx context.Context, projectID uuid.UUID) (int, error)
}
