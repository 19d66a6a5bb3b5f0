package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/planbird/planbird/internal/api/response"
	"github.com/planbird/planbird/internal/domain"
)

var validate = validator.New()

// urlUUID parses a UUID path parameter.
func urlUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, errors.New("missing " + name)
	}
	return uuid.Parse(raw)
}

// respondError maps the domain error taxonomy to HTTP statuses and the
// {error} envelope.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		response.Unauthorized(w, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		response.Forbidden(w, "forbidden")
	case errors.Is(err, domain.ErrValidation):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrWorkspaceMismatch):
		response.Conflict(w, err.Error())
	case errors.Is(err, domain.ErrLastManager):
		response.Conflict(w, err.Error())
	case errors.Is(err, domain.ErrHistoryNotRecorded):
		response.InternalError(w, err.Error())
	default:
		response.InternalError(w, "internal error")
	}
}

// validationMessage flattens validator errors into a readable message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	msg := ""
	for i, e := range verrs {
		if i > 0 {
			msg += "; "
		}
		switch e.Tag() {
		case "required":
			msg += e.Field() + " is required"
		case "email":
			msg += e.Field() + " must be a valid email"
		case "min":
			msg += e.Field() + " must be at least " + e.Param() + " characters"
		case "max":
			msg += e.Field() + " must be at most " + e.Param() + " characters"
		default:
			msg += e.Field() + " failed validation on " + e.Tag()
		}
	}
	return msg
}
