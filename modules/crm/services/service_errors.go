package services

import (
	"fmt"
	"net/http"
)

// ServiceError is the typed failure surfaced to the transport boundary.
// Status carries the HTTP status the API layer should map it to.
type ServiceError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func newServiceError(status int, code, message string, cause error) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: message, Cause: cause}
}

func errNotFound(message string, cause error) *ServiceError {
	return newServiceError(http.StatusNotFound, "CRM_NOT_FOUND", message, cause)
}

func errInvalidBody(message string) *ServiceError {
	return newServiceError(http.StatusBadRequest, "CRM_INVALID_BODY", message, nil)
}

func errValidation(code, message string) *ServiceError {
	return newServiceError(http.StatusUnprocessableEntity, code, message, nil)
}

func errForbidden(message string) *ServiceError {
	return newServiceError(http.StatusForbidden, "CRM_FORBIDDEN", message, nil)
}

func errConflict(message string, cause error) *ServiceError {
	return newServiceError(http.StatusConflict, "CRM_CONFLICT", message, cause)
}

func errInvariant(message string, cause error) *ServiceError {
	return newServiceError(http.StatusInternalServerError, "CRM_INVARIANT", message, cause)
}

// ValidationResult is returned by validators that never mutate state;
// callers apply the mutation only when Valid is true.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func valid() *ValidationResult {
	return &ValidationResult{Valid: true}
}

func invalid(reason string) *ValidationResult {
	return &ValidationResult{Valid: false, Error: reason}
}
