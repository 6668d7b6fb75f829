package domain

import "errors"

// Error categories surfaced to callers. Handlers map them to HTTP status codes;
// wrap them with fmt.Errorf("...: %w", ErrX) to add detail.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrExternalService = errors.New("external service error")
)

// ExternalServiceError is a collaborator failure whose Reason is safe to show
// to callers. Other errors wrapping ErrExternalService are reported generically.
type ExternalServiceError struct {
	Reason string
}

func (e *ExternalServiceError) Error() string {
	return ErrExternalService.Error() + ": " + e.Reason
}

func (e *ExternalServiceError) Unwrap() error { return ErrExternalService }
