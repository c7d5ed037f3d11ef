// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input to a service operation. It is
// surfaced to the caller and never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// GatewayError reports a failure talking to the external checkout provider,
// either a transport failure or a rejection. The remote message is preserved.
type GatewayError struct {
	Op      string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sideshift %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("sideshift %s: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// ConflictError reports a uniqueness collision, such as a taken username or
// an already-registered email.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NotFoundError reports a missing Idea, Purchase or User.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// StateError reports a status transition attempted from a terminal state.
// The webhook reconciler treats it as a benign no-op so duplicate deliveries
// are safe.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsGateway(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

func IsState(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}
