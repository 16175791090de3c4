package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	ErrEmailTaken           = kindOf(ErrConflict, "email already exists")
	ErrPaymentExists        = kindOf(ErrConflict, "booking already has a payment")
	ErrInsufficientQuantity = kindOf(ErrConflict, "not enough tickets remaining")
	ErrInvalidTransition    = kindOf(ErrConflict, "invalid status transition")
	ErrInUse                = kindOf(ErrConflict, "record is still referenced")

	ErrUserNotFound       = kindOf(ErrUnauthorized, "user not found")
	ErrUserInactive       = kindOf(ErrUnauthorized, "user account is inactive")
	ErrInvalidCredentials = kindOf(ErrUnauthorized, "invalid email or password")

	ErrNotOwner = kindOf(ErrForbidden, "not the owner of this resource")
)

// kindError carries a client-facing message and unwraps to one of the
// error kinds above.
type kindError struct {
	kind    error
	message string
}

func kindOf(kind error, message string) error {
	return &kindError{kind: kind, message: message}
}

func (e *kindError) Error() string { return e.message }

func (e *kindError) Unwrap() error { return e.kind }

// ValidationError is a rejected input field. errors.Is(err, ErrValidation)
// holds for every ValidationError.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func notFound(entity string) error {
	return kindOf(ErrNotFound, entity+" not found")
}

// persistence wraps unexpected database errors and maps the ones GORM
// translates into conflicts.
func persistence(action string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w", action, ErrInUse)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", action, ErrConflict)
	}
	return fmt.Errorf("%s: %w", action, err)
}
