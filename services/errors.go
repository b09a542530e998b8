package services

import "errors"

type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindAuthorization ErrorKind = "authorization"
	KindPolicy        ErrorKind = "policy"
	KindIntegrity     ErrorKind = "integrity"
)

// ServiceError is the error type every service operation fails with when the
// failure is caller-facing. The Kind drives the HTTP status at the boundary.
type ServiceError struct {
	Kind    ErrorKind
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NewValidationError(message string) *ServiceError {
	return &ServiceError{Kind: KindValidation, Message: message}
}

func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Message: message}
}

func NewConflictError(message string) *ServiceError {
	return &ServiceError{Kind: KindConflict, Message: message}
}

func NewAuthorizationError(message string) *ServiceError {
	return &ServiceError{Kind: KindAuthorization, Message: message}
}

func NewPolicyError(message string) *ServiceError {
	return &ServiceError{Kind: KindPolicy, Message: message}
}

func NewIntegrityError(message string) *ServiceError {
	return &ServiceError{Kind: KindIntegrity, Message: message}
}

// KindOf extracts the kind of a service error, or "" for unknown errors.
func KindOf(err error) ErrorKind {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ""
}
