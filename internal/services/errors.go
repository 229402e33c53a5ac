package services

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by all services. Handlers map these onto HTTP
// statuses; everything else is treated as an internal error.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrExternal     = errors.New("external service failed")
)

func notFoundErr(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// externalErr tags a collaborator failure with the step that failed so the
// caller can see which external call broke.
func externalErr(step string, err error) error {
	return fmt.Errorf("%s: %v: %w", step, err, ErrExternal)
}
