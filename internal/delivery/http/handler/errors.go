package handler

import (
	"errors"
	"net/http"

	"serenecare/internal/delivery/http/middleware"
	"serenecare/internal/usecase"
	"serenecare/pkg/response"
)

// writeSchedulingError maps the scheduling error kinds onto HTTP statuses.
// Each kind has a fixed message; the detail goes into the error field.
func writeSchedulingError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		response.BadRequest(w, "Invalid scheduling request", err.Error())
	case errors.Is(err, usecase.ErrConflict):
		response.Conflict(w, "Availability already exists for this date", err.Error())
	case errors.Is(err, usecase.ErrSlotUnavailable):
		response.Conflict(w, "Time slot is not available, please pick another slot", err.Error())
	case errors.Is(err, usecase.ErrNotFound):
		response.NotFound(w, "Resource not found")
	case errors.Is(err, usecase.ErrInvalidTransition):
		response.Conflict(w, "Appointment has already been decided", err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}

// callerFrom reads the identity placed in the context by AuthMiddleware.
func callerFrom(r *http.Request) (usecase.Caller, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return usecase.Caller{}, false
	}
	role, ok := middleware.GetRoleFromContext(r.Context())
	if !ok {
		return usecase.Caller{}, false
	}
	return usecase.Caller{ID: userID, Role: role}, true
}
