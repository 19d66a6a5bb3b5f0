package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/planbird/planbird/internal/domain"
)

// ProjectRepository handles project and project membership data access
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	query := `
		INSERT INTO projects (id, workspace_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		project.ID,
		project.WorkspaceID,
		project.Name,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	query := `
		SELECT id, workspace_id, name, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var project domain.Project
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.WorkspaceID,
		&project.Name,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

// ListByWorkspace retrieves all projects in a workspace
func (r *ProjectRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Project, error) {
	query := `
		SELECT id, workspace_id, name, created_at, updated_at
		FROM projects
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(
			&project.ID,
			&project.WorkspaceID,
			&project.Name,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return projects, nil
}

// Update updates a project
func (r *ProjectRepository) Update(ctx context.Context, id uuid.UUID, update *domain.ProjectUpdate) error {
	query := `
		UPDATE projects
		SET name = COALESCE($2, name),
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Pool.Exec(ctx, query, id, update.Name)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	return nil
}

// Delete deletes a project
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM projects WHERE id = $1`

	_, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// NamesByID resolves project names for a set of ids
func (r *ProjectRepository) NamesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	query := `SELECT id, name FROM projects WHERE id = ANY($1)`

	rows, err := r.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan project name: %w", err)
		}
		names[id] = name
	}

	return names, nil
}

// AddMember adds a member to a project
func (r *ProjectRepository) AddMember(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO project_members (id, workspace_id, project_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (project_id, user_id) DO UPDATE SET role = $5
	`

	_, err := r.db.Pool.Exec(ctx, query,
		member.ID,
		member.WorkspaceID,
		member.ProjectID,
		member.UserID,
		member.Role,
		member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	return nil
}

// GetMember retrieves a project member by project and user
func (r *ProjectRepository) GetMember(ctx context.Context, projectID, userID uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT id, workspace_id, project_id, user_id, role, created_at
		FROM project_members
		WHERE project_id = $1 AND user_id = $2
	`

	var member domain.Member
	err := r.db.Pool.QueryRow(ctx, query, projectID, userID).Scan(
		&member.ID,
		&member.WorkspaceID,
		&member.ProjectID,
		&member.UserID,
		&member.Role,
		&member.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return &member, nil
}

// ListMembers retrieves all members of a project
func (r *ProjectRepository) ListMembers(ctx context.Context, projectID uuid.UUID) ([]domain.Member, error) {
	query := `
		SELECT id, workspace_id, project_id, user_id, role, created_at
		FROM project_members
		WHERE project_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var member domain.Member
		if err := rows.Scan(
			&member.ID,
			&member.WorkspaceID,
			&member.ProjectID,
			&member.UserID,
			&member.Role,
			&member.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	return members, nil
}

// UpdateMemberRole changes a project member's role
func (r *ProjectRepository) UpdateMemberRole(ctx context.Context, memberID uuid.UUID, role domain.Role) error {
	query := `UPDATE project_members SET role = $2 WHERE id = $1`

	_, err := r.db.Pool.Exec(ctx, query, memberID, role)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}

	return nil
}

// RemoveMember removes a member from a project
func (r *ProjectRepository) RemoveMember(ctx context.Context, memberID uuid.UUID) error {
	query := `DELETE FROM project_members WHERE id = $1`

	_, err := r.db.Pool.Exec(ctx, query, memberID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// CountManagers counts members holding a manager-level role in a project
func (r *ProjectRepository) CountManagers(ctx context.Context, projectID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM project_members
		WHERE project_id = $1 AND role IN ($2, $3)
	`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, projectID, domain.RoleAdmin, domain.RoleManager).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count managers: %w", err)
	}

	return count, nil
}
