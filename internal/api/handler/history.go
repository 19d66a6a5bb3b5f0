package handler

import (
	"encoding/json"
	"net/http"

	"github.com/planbird/planbird/internal/api/middleware"
	"github.com/planbird/planbird/internal/api/response"
	"github.com/planbird/planbird/internal/domain"
	"github.com/planbird/planbird/internal/service"
)

// HistoryHandler handles task history endpoints
type HistoryHandler struct {
	historyService *service.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(historyService *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// ListByTask handles listing a task's history, newest first, with editor and
// referenced project/assignee names resolved
func (h *HistoryHandler) ListByTask(w http.ResponseWriter, r *http.Request) {
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

	entries, err := h.historyService.ListByTask(r.Context(), userID, taskID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, entries)
}

// Create handles recording a history entry directly
func (h *HistoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.HistoryCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	history, err := h.historyService.Create(r.Context(), userID, input)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, history)
}
