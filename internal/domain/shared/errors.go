package shared

import (
	"errors"
	"fmt"
)

// ErrBlockingOnActuationThread is returned when a long-running operation is
// invoked from the thread that drives perception and actuation.
var ErrBlockingOnActuationThread = errors.New("blocking operation invoked on actuation thread")

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// ConfigurationError is raised at construction time when a requirement or
// demand is assembled from inconsistent parts. It is never retried.
type ConfigurationError struct {
	*DomainError
	Component string
}

func NewConfigurationError(component, message string) *ConfigurationError {
	return &ConfigurationError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s: %s", component, message)},
		Component:   component,
	}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsConfigurationError reports whether err (or anything it wraps) is a ConfigurationError
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
