package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a member's role within a workspace or project.
type Role string

const (
	// RoleAdmin is granted to workspace creators.
	RoleAdmin Role = "ADMIN"
	// RoleManager is the elevated role at workspace or project scope.
	RoleManager Role = "MANAGER"
	// RoleMember is the base role.
	RoleMember Role = "MEMBER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// IsManager reports whether r grants unrestricted mutation within its scope.
func (r Role) IsManager() bool {
	return r == RoleAdmin || r == RoleManager
}

// Member is a user's role-bearing association with a workspace or a project.
// It is distinct from the raw user identity: the same user may hold different
// roles in different scopes, and tasks reference members, not users.
type Member struct {
	ID          uuid.UUID  `json:"id"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	ProjectID   *uuid.UUID `json:"project_id,omitempty"`
	UserID      uuid.UUID  `json:"user_id"`
	Role        Role       `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MemberAdd represents a membership grant request.
type MemberAdd struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   Role      `json:"role" validate:"required"`
}

// MemberRoleUpdate represents a role change request.
type MemberRoleUpdate struct {
	Role Role `json:"role" validate:"required"`
}
