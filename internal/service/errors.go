package service

import (
	"errors"

	"github.com/AditRobertho/eshop-backend/internal/authz"
	"github.com/AditRobertho/eshop-backend/internal/repo"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrUnauthorized = authz.ErrUnauthorized
	ErrForbidden    = authz.ErrForbidden

	ErrNotFound = repo.ErrNotFound
	ErrConflict = repo.ErrConflict
	ErrStorage  = repo.ErrStorage
)

// inputError carries a client-facing message and matches ErrValidation.
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error {
	return &inputError{msg: msg}
}
