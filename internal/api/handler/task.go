package handler

import (
	"encoding/json"
	"net/http"

	"github.com/planbird/planbird/internal/api/middleware"
	"github.com/planbird/planbird/internal/api/response"
	"github.com/planbird/planbird/internal/domain"
	"github.com/planbird/planbird/internal/service"
)

// TaskHandler handles task endpoints
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create handles task creation within a project
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var input domain.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, projectID, input)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, task)
}

// List handles listing a project's tasks ordered for the board
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
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

	tasks, err := h.taskService.ListByProject(r.Context(), userID, projectID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, tasks)
}

// Get handles getting a task by ID
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	taskID, err := urlUUID(r, "taskID")
	if err != nil {
		response.BadRequest(w, "invalid task ID")
		return
	}

	task, err := h.taskService.GetByID(r.Context(), userID, taskID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, task)
}

// Update handles a partial task update. Only fields present in the body are
// diffed against the stored task; a no-op diff returns the task unchanged
// without writing history.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	taskID, err := urlUUID(r, "taskID")
	if err != nil {
		response.BadRequest(w, "invalid task ID")
		return
	}

	var input domain.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	task, err := h.taskService.Update(r.Context(), userID, taskID, input)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, task)
}

// Delete handles deleting a task and its history
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	taskID, err := urlUUID(r, "taskID")
	if err != nil {
		response.BadRequest(w, "invalid task ID")
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, taskID); err != nil {
		respondError(w, err)
		return
	}

	response.NoContent(w)
}

type bulkUpdateRequest struct {
	Tasks []domain.BulkTaskUpdate `json:"tasks" validate:"required,min=1,dive"`
}

// BulkUpdate handles a kanban drag-and-drop batch: status and position moves
// for several tasks at once. All tasks must belong to one workspace.
func (h *TaskHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input bulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	tasks, err := h.taskService.BulkUpdate(r.Context(), userID, input.Tasks)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, tasks)
}
