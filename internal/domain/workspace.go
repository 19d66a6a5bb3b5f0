package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Workspace is the top-level tenant grouping projects and members.
type Workspace struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkspaceCreate represents workspace creation data
type WorkspaceCreate struct {
	Name string `json:"name" validate:"required,max=255"`
}

// WorkspaceUpdate represents workspace update data
type WorkspaceUpdate struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=255"`
}

// WorkspaceRepository provides access to workspaces and their memberships.
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *Workspace) error
	GetByID(ctx context.Context, id uuid.UUID) (*Workspace, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]Workspace, error)
	Update(ctx context.Context, id uuid.UUID, update *WorkspaceUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error

	AddMember(ctx context.Context, member *Member) error
	// GetMember returns (nil, nil) when the user has no membership; callers
	// translate absence into an authorization failure.
	GetMember(ctx context.Context, workspaceID, userID uuid.UUID) (*Member, error)
	GetMemberByID(ctx context.Context, id uuid.UUID) (*Member, error)
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]Member, error)
	UpdateMemberRole(ctx context.Context, memberID uuid.UUID, role Role) error
	RemoveMember(ctx context.Context, memberID uuid.UUID) error
	CountManagers(ctx context.Context, workspaceID uuid.UUID) (int, error)
}
