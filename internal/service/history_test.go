package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/planbird/planbird/internal/domain"
)

type historyFixture struct {
	historyRepo   *MockHistoryRepository
	taskRepo      *MockTaskRepository
	workspaceRepo *MockWorkspaceRepository
	projectRepo   *MockProjectRepository
	userRepo      *MockUserRepository
	svc           *HistoryService

	workspaceID uuid.UUID
	projectID   uuid.UUID
	userID      uuid.UUID
	task        *domain.Task
}

func newHistoryFixture() *historyFixture {
	f := &historyFixture{
		historyRepo:   new(MockHistoryRepository),
		taskRepo:      new(MockTaskRepository),
		workspaceRepo: new(MockWorkspaceRepository),
		projectRepo:   new(MockProjectRepository),
		userRepo:      new(MockUserRepository),
		workspaceID:   uuid.New(),
		projectID:     uuid.New(),
		userID:        uuid.New(),
	}
	f.svc = NewHistoryService(f.historyRepo, f.taskRepo, f.workspaceRepo, f.projectRepo, f.userRepo)
	f.task = &domain.Task{
		ID:          uuid.New(),
		WorkspaceID: f.workspaceID,
		ProjectID:   f.projectID,
		Name:        "Write release notes",
		Status:      domain.StatusTodo,
	}
	return f
}

func TestHistoryService_ListByTask_EnrichesNames(t *testing.T) {
	f := newHistoryFixture()
	ctx := context.Background()

	editorUserID := uuid.New()
	editorMemberID := uuid.New()
	assigneeUserID := uuid.New()
	assigneeMemberID := uuid.New()
	targetProjectID := uuid.New()

	f.taskRepo.On("GetByID", ctx, f.task.ID).Return(f.task, nil)
	f.workspaceRepo.On("GetMember", ctx, f.workspaceID, f.userID).Return(&domain.Member{
		ID:          uuid.New(),
		WorkspaceID: f.workspaceID,
		UserID:      f.userID,
		Role:        domain.RoleMember,
	}, nil)

	records := []domain.History{
		{
			ID:            uuid.New(),
			TaskID:        f.task.ID,
			EditorID:      editorMemberID,
			ChangedFields: []string{"projectId", "assigneeId"},
			OldValues:     map[string]any{"projectId": f.projectID.String(), "assigneeId": nil},
			// Values come back from the document store as strings.
			NewValues: map[string]any{
				"projectId":  targetProjectID.String(),
				"assigneeId": assigneeMemberID.String(),
			},
			CreatedAt: time.Now(),
		},
	}
	f.historyRepo.On("ListByTask", ctx, f.task.ID).Return(records, nil)

	f.workspaceRepo.On("GetMemberByID", ctx, editorMemberID).Return(&domain.Member{
		ID:     editorMemberID,
		UserID: editorUserID,
	}, nil)
	f.workspaceRepo.On("GetMemberByID", ctx, assigneeMemberID).Return(&domain.Member{
		ID:     assigneeMemberID,
		UserID: assigneeUserID,
	}, nil)
	f.userRepo.On("NamesByID", ctx, []uuid.UUID{editorUserID}).
		Return(map[uuid.UUID]string{editorUserID: "Dana"}, nil)
	f.userRepo.On("NamesByID", ctx, []uuid.UUID{assigneeUserID}).
		Return(map[uuid.UUID]string{assigneeUserID: "Riley"}, nil)
	f.projectRepo.On("NamesByID", ctx, []uuid.UUID{targetProjectID}).
		Return(map[uuid.UUID]string{targetProjectID: "Mobile App"}, nil)

	entries, err := f.svc.ListByTask(ctx, f.userID, f.task.ID)

	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "Dana", entries[0].EditorName)
	assert.Equal(t, "Mobile App", entries[0].ProjectName)
	assert.Equal(t, "Riley", entries[0].AssigneeName)
}

func TestHistoryService_ListByTask_RequiresMembership(t *testing.T) {
	f := newHistoryFixture()
	ctx := context.Background()

	f.taskRepo.On("GetByID", ctx, f.task.ID).Return(f.task, nil)
	f.workspaceRepo.On("GetMember", ctx, f.workspaceID, f.userID).Return(nil, nil)

	_, err := f.svc.ListByTask(ctx, f.userID, f.task.ID)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	f.historyRepo.AssertNotCalled(t, "ListByTask", mock.Anything, mock.Anything)
}

func TestHistoryService_ListByTask_DeletedTaskYieldsEmptyList(t *testing.T) {
	f := newHistoryFixture()
	ctx := context.Background()

	// After a task delete the row and its cascaded history are both gone; the
	// lookup answers with an empty list, not an error.
	taskID := uuid.New()
	f.taskRepo.On("GetByID", ctx, taskID).Return(nil, nil)
	f.historyRepo.On("ListByTask", ctx, taskID).Return([]domain.History{}, nil)

	entries, err := f.svc.ListByTask(ctx, f.userID, taskID)

	assert.NoError(t, err)
	assert.Empty(t, entries)
	f.workspaceRepo.AssertNotCalled(t, "GetMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestHistoryService_Create_GatesLikeUpdate(t *testing.T) {
	ctx := context.Background()

	input := func(taskID uuid.UUID) domain.HistoryCreate {
		return domain.HistoryCreate{
			TaskID:        taskID,
			ChangedFields: []string{"status"},
			OldValues:     map[string]any{"status": "TODO"},
			NewValues:     map[string]any{"status": "DONE"},
		}
	}

	t.Run("manager records", func(t *testing.T) {
		f := newHistoryFixture()
		wsMember := &domain.Member{ID: uuid.New(), WorkspaceID: f.workspaceID, UserID: f.userID, Role: domain.RoleMember}
		f.taskRepo.On("GetByID", ctx, f.task.ID).Return(f.task, nil)
		f.workspaceRepo.On("GetMember", ctx, f.workspaceID, f.userID).Return(wsMember, nil)
		f.projectRepo.On("GetMember", ctx, f.projectID, f.userID).Return(&domain.Member{
			ID:   uuid.New(),
			Role: domain.RoleManager,
		}, nil)
		f.historyRepo.On("Create", ctx, mock.AnythingOfType("*domain.History")).Return(nil)

		record, err := f.svc.Create(ctx, f.userID, input(f.task.ID))

		assert.NoError(t, err)
		assert.Equal(t, wsMember.ID, record.EditorID)
		assert.Equal(t, []string{"status"}, record.ChangedFields)
	})

	t.Run("plain member rejected", func(t *testing.T) {
		f := newHistoryFixture()
		f.taskRepo.On("GetByID", ctx, f.task.ID).Return(f.task, nil)
		f.workspaceRepo.On("GetMember", ctx, f.workspaceID, f.userID).Return(&domain.Member{
			ID:          uuid.New(),
			WorkspaceID: f.workspaceID,
			UserID:      f.userID,
			Role:        domain.RoleMember,
		}, nil)
		f.projectRepo.On("GetMember", ctx, f.projectID, f.userID).Return(&domain.Member{
			ID:   uuid.New(),
			Role: domain.RoleMember,
		}, nil)

		_, err := f.svc.Create(ctx, f.userID, input(f.task.ID))

		assert.ErrorIs(t, err, domain.ErrForbidden)
		f.historyRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("assignee records", func(t *testing.T) {
		f := newHistoryFixture()
		wsMember := &domain.Member{ID: uuid.New(), WorkspaceID: f.workspaceID, UserID: f.userID, Role: domain.RoleMember}
		f.task.AssigneeID = &wsMember.ID
		f.taskRepo.On("GetByID", ctx, f.task.ID).Return(f.task, nil)
		f.workspaceRepo.On("GetMember", ctx, f.workspaceID, f.userID).Return(wsMember, nil)
		f.projectRepo.On("GetMember", ctx, f.projectID, f.userID).Return(&domain.Member{
			ID:   uuid.New(),
			Role: domain.RoleMember,
		}, nil)
		f.historyRepo.On("Create", ctx, mock.AnythingOfType("*domain.History")).Return(nil)

		_, err := f.svc.Create(ctx, f.userID, input(f.task.ID))

		assert.NoError(t, err)
	})
}
