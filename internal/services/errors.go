package services

import (
	"errors"
	"fmt"

	"transroute/internal/repositories"
)

// ErrSegmentGeneration is returned when a trip was stored but its segments
// could not be inserted.
var ErrSegmentGeneration = errors.New("trip segments could not be generated")

// ValidationError is a client-correctable problem with a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(entity string, id uint) error {
	return fmt.Errorf("%s %d: %w", entity, id, repositories.ErrNotFound)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID    uint
	CompanyID uint
}
