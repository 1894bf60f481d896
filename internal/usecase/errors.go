package usecase

import "errors"

// Error kinds returned by the scheduling usecases. Details are wrapped with
// fmt.Errorf("%w: ...") so callers match with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrSlotUnavailable   = errors.New("time slot is not available")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("appointment has already been decided")
)

// Identity errors.
var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRoleNotAllowed     = errors.New("role cannot be self-registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrAuditLogNotFound   = errors.New("audit log not found")
)
