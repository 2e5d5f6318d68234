package services

import (
	"errors"
	"fmt"

	"github.com/anonto42/social-hub/backend/internal/repositories"
)

// Error kinds returned by RelationService. Match them with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrValidation         = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Error is a typed failure of a store operation
type Error struct {
	Kind   error
	Entity string // "user", "group", "post" or ""
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == ErrNotFound && e.Entity != "":
		return e.Entity + " not found"
	case e.Kind == ErrValidation && e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	case e.Kind == ErrStorageUnavailable && e.Err != nil:
		return fmt.Sprintf("%v, retry later: %v", e.Kind, e.Err)
	case e.Kind == nil && e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	errs := []error{}
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func validationError(err error) error {
	return &Error{Kind: ErrValidation, Err: err}
}

// storeError classifies a repository error for entity
func storeError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return &Error{Kind: ErrNotFound, Entity: entity, Err: err}
	case errors.Is(err, repositories.ErrDuplicate) && entity == "user":
		return &Error{Kind: ErrDuplicateEmail, Entity: entity, Err: err}
	case errors.Is(err, repositories.ErrUnavailable):
		return &Error{Kind: ErrStorageUnavailable, Entity: entity, Err: err}
	}
	return &Error{Entity: entity, Err: err}
}
