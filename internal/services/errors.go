package services

import (
	"errors"
	"fmt"
)

// Not-found sentinels; the messages are part of the API contract.
var (
	ErrEventNotFound = errors.New("Event not found")
	ErrImageNotFound = errors.New("Image not found")
)

// ValidationError reports invalid client input. Its message is returned to
// the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
