package domain

import "errors"

// Sentinel errors shared across services; handlers map them to HTTP statuses.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the caller has no membership in the scope at all.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller is a member but the specific action is
	// not allowed for their role.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation indicates a malformed or missing field in the request.
	ErrValidation = errors.New("validation failed")

	// ErrWorkspaceMismatch indicates a bulk update referenced tasks from more
	// than one workspace.
	ErrWorkspaceMismatch = errors.New("tasks belong to different workspaces")

	// ErrLastManager indicates a role change or removal that would leave a
	// workspace or project without any manager.
	ErrLastManager = errors.New("cannot remove the last manager")

	// ErrHistoryNotRecorded indicates the task update was persisted but the
	// audit record write failed afterwards. The update is NOT rolled back.
	ErrHistoryNotRecorded = errors.New("task updated but history not recorded")
)
