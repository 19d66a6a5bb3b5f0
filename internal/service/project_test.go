package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/planbird/planbird/internal/domain"
)

type projectFixture struct {
	projectRepo   *MockProjectRepository
	workspaceRepo *MockWorkspaceRepository
	taskRepo      *MockTaskRepository
	historyRepo   *MockHistoryRepository
	svc           *ProjectService

	workspaceID uuid.UUID
	projectID   uuid.UUID
	userID      uuid.UUID
}

func newProjectFixture() *projectFixture {
	f := &projectFixture{
		projectRepo:   new(MockProjectRepository),
		workspaceRepo: new(MockWorkspaceRepository),
		taskRepo:      new(MockTaskRepository),
		historyRepo:   new(MockHistoryRepository),
		workspaceID:   uuid.New(),
		projectID:     uuid.New(),
		userID:        uuid.New(),
	}
	f.svc = NewProjectService(f.projectRepo, f.workspaceRepo, f.taskRepo, f.historyRepo)
	return f
}

func (f *projectFixture) asManager() {
	f.projectRepo.On("GetByID", mock.Anything, f.projectID).Return(&domain.Project{
		ID:          f.projectID,
		WorkspaceID: f.workspaceID,
		Name:        "Website relaunch",
	}, nil)
	f.projectRepo.On("GetMember", mock.Anything, f.projectID, f.userID).Return(&domain.Member{
		ID:          uuid.New(),
		WorkspaceID: f.workspaceID,
		ProjectID:   &f.projectID,
		UserID:      f.userID,
		Role:        domain.RoleManager,
	}, nil)
}

func TestProjectService_Delete_HistoryGoesBeforeTasks(t *testing.T) {
	f := newProjectFixture()
	ctx := context.Background()
	f.asManager()

	tasks := []domain.Task{
		{ID: uuid.New(), WorkspaceID: f.workspaceID, ProjectID: f.projectID},
		{ID: uuid.New(), WorkspaceID: f.workspaceID, ProjectID: f.projectID},
	}
	f.taskRepo.On("ListByProject", ctx, f.projectID).Return(tasks, nil)

	var order []string
	f.historyRepo.On("DeleteByTask", ctx, tasks[0].ID).Run(func(mock.Arguments) {
		order = append(order, "history")
	}).Return(nil)
	f.historyRepo.On("DeleteByTask", ctx, tasks[1].ID).Run(func(mock.Arguments) {
		order = append(order, "history")
	}).Return(nil)
	f.taskRepo.On("DeleteByProject", ctx, f.projectID).Run(func(mock.Arguments) {
		order = append(order, "tasks")
	}).Return([]uuid.UUID{tasks[0].ID, tasks[1].ID}, nil)
	f.projectRepo.On("Delete", ctx, f.projectID).Run(func(mock.Arguments) {
		order = append(order, "project")
	}).Return(nil)

	err := f.svc.Delete(ctx, f.userID, f.projectID)

	assert.NoError(t, err)
	assert.Equal(t, []string{"history", "history", "tasks", "project"}, order)
}

func TestProjectService_Delete_HistoryFailureKeepsTasks(t *testing.T) {
	f := newProjectFixture()
	ctx := context.Background()
	f.asManager()

	tasks := []domain.Task{
		{ID: uuid.New(), WorkspaceID: f.workspaceID, ProjectID: f.projectID},
		{ID: uuid.New(), WorkspaceID: f.workspaceID, ProjectID: f.projectID},
	}
	f.taskRepo.On("ListByProject", ctx, f.projectID).Return(tasks, nil)
	f.historyRepo.On("DeleteByTask", ctx, tasks[0].ID).Return(nil)
	f.historyRepo.On("DeleteByTask", ctx, tasks[1].ID).Return(errors.New("mongo down"))

	err := f.svc.Delete(ctx, f.userID, f.projectID)

	// The task rows survive a mid-cascade failure, so a retry still finds the
	// ids whose history remains to be purged.
	assert.Error(t, err)
	f.taskRepo.AssertNotCalled(t, "DeleteByProject", mock.Anything, mock.Anything)
	f.projectRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProjectService_Delete_RequiresManager(t *testing.T) {
	f := newProjectFixture()
	ctx := context.Background()

	f.projectRepo.On("GetByID", ctx, f.projectID).Return(&domain.Project{
		ID:          f.projectID,
		WorkspaceID: f.workspaceID,
	}, nil)
	f.projectRepo.On("GetMember", ctx, f.projectID, f.userID).Return(&domain.Member{
		ID:   uuid.New(),
		Role: domain.RoleMember,
	}, nil)
	f.workspaceRepo.On("GetMember", ctx, f.workspaceID, f.userID).Return(&domain.Member{
		ID:          uuid.New(),
		WorkspaceID: f.workspaceID,
		UserID:      f.userID,
		Role:        domain.RoleMember,
	}, nil)

	err := f.svc.Delete(ctx, f.userID, f.projectID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.taskRepo.AssertNotCalled(t, "ListByProject", mock.Anything, mock.Anything)
}
