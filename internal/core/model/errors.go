package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrRetired           = errors.New("id has been retired")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrConflict          = errors.New("already exists")
)

// ValidationError lists the fields rejected at the boundary. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError names the kind and id that could not be resolved.
func NotFoundError(kind, id string) error {
	return fmt.Errorf("%s with ID %s: %w", kind, id, ErrNotFound)
}
