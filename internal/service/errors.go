package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a directly referenced record does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials deliberately does not say which credential failed
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")

	ErrEmailTaken        = errors.New("user with this email already exists")
	ErrSelfSubscription  = errors.New("cannot subscribe to yourself")
	ErrAlreadySubscribed = errors.New("already subscribed to this author")
	ErrNotRecipeAuthor   = errors.New("only the author can modify this recipe")
)

// ValidationError is a field-scoped rejection of a write payload
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
