package handler

import (
	"errors"
	"net/http"

	"github.com/Rrens/deskflow/internal/stubserver/middleware"
	"github.com/Rrens/deskflow/internal/stubserver/response"
	"github.com/Rrens/deskflow/internal/stubserver/service"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// actor builds the service identity from the authenticated request context
func actor(r *http.Request) (service.Actor, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return service.Actor{}, false
	}
	role, ok := middleware.GetUserRole(r.Context())
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{UserID: userID, Role: role}, true
}

// writeServiceError maps service sentinel errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		response.BadRequest(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(w, err.Error())
	default:
		response.InternalError(w, err.Error())
	}
}

// validationMessage flattens validator errors into field messages
func validationMessage(err error) map[string]string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make(map[string]string)
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			out[e.Field()] = "field is required"
		case "email":
			out[e.Field()] = "invalid email format"
		case "min":
			out[e.Field()] = "must be at least " + e.Param() + " characters"
		case "max":
			out[e.Field()] = "must be at most " + e.Param() + " characters"
		case "oneof":
			out[e.Field()] = "must be one of: " + e.Param()
		default:
			out[e.Field()] = "validation failed on " + e.Tag()
		}
	}
	return out
}

func writeValidationError(w http.ResponseWriter, err error) {
	if fields := validationMessage(err); fields != nil {
		msg := ""
		for field, detail := range fields {
			if msg != "" {
				msg += "; "
			}
			msg += field + ": " + detail
		}
		response.BadRequest(w, msg)
		return
	}
	response.BadRequest(w, err.Error())
}
