package handler

import (
	"encoding/json"
	"net/http"

	"github.com/planbird/planbird/internal/api/middleware"
	"github.com/planbird/planbird/internal/api/response"
	"github.com/planbird/planbird/internal/domain"
	"github.com/planbird/planbird/internal/service"
)

// ProjectHandler handles project endpoints
type ProjectHandler struct {
	projectService *service.ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// Create handles project creation within a workspace
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	workspaceID, err := urlUUID(r, "workspaceID")
	if err != nil {
		response.BadRequest(w, "invalid workspace ID")
		return
	}

	var input domain.ProjectCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	project, err := h.projectService.Create(r.Context(), userID, workspaceID, input)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, project)
}

// List handles listing projects in a workspace
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	workspaceID, err := urlUUID(r, "workspaceID")
	if err != nil {
		response.BadRequest(w, "invalid workspace ID")
		return
	}

	projects, err := h.projectService.ListByWorkspace(r.Context(), userID, workspaceID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, projects)
}

// Get handles getting a project by ID
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	projectID, err := urlUUID(r, "projectID")
	if err != nil {
		response.BadRequest(w, "invalid project ID")
		return
	}

	project, err := h.projectService.GetByID(r.Context(), userID, projectID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, project)
}

// Update handles updating a project
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	projectID, err := urlUUID(r, "projectID")
	if err != nil {
		response.BadRequest(w, "invalid project ID")
		return
	}

	var input domain.ProjectUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	project, err := h.projectService.Update(r.Context(), userID, projectID, input)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, project)
}

// Delete handles deleting a project and its tasks
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	projectID, err := urlUUID(r, "projectID")
	if err != nil {
		response.BadRequest(w, "invalid project ID")
		return
	}

	if err := h.projectService.Delete(r.Context(), userID, projectID); err != nil {
		respondError(w, err)
		return
	}

	response.NoContent(w)
}

// ListMembers handles listing project members
func (h *ProjectHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	projectID, err := urlUUID(r, "projectID")
	if err != nil {
		response.BadRequest(w, "invalid project ID")
		return
	}

	members, err := h.projectService.ListMembers(r.Context(), userID, projectID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, members)
}

// AddMember handles adding a workspace member to a project
func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	projectID, err := urlUUID(r, "projectID")
	if err != nil {
		response.BadRequest(w, "invalid project ID")
		return
	}

	var input domain.MemberAdd
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	member, err := h.projectService.AddMember(r.Context(), userID, projectID, input)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, member)
}

// UpdateMemberRole handles changing a project member's role
func (h *ProjectHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	projectID, err := urlUUID(r, "projectID")
	if err != nil {
		response.BadRequest(w, "invalid project ID")
		return
	}

	memberID, err := urlUUID(r, "memberID")
	if err != nil {
		response.BadRequest(w, "invalid member ID")
		return
	}

	var input domain.MemberRoleUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	if err := h.projectService.UpdateMemberRole(r.Context(), userID, projectID, memberID, input.Role); err != nil {
		respondError(w, err)
		return
	}

	response.NoContent(w)
}

// RemoveMember handles removing a member from a project
func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	projectID, err := urlUUID(r, "projectID")
	if err != nil {
		response.BadRequest(w, "invalid project ID")
		return
	}

	memberID, err := urlUUID(r, "memberID")
	if err != nil {
		response.BadRequest(w, "invalid member ID")
		return
	}

	if err := h.projectService.RemoveMember(r.Context(), userID, projectID, memberID); err != nil {
		respondError(w, err)
		return
	}

	response.NoContent(w)
}
