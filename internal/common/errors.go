// Package common defines shared constants and sentinel errors used across
// NovelNest layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	// Service-level errors.
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Authentication errors. ErrInvalidToken covers every token failure
	// (bad signature, malformed, missing subject, expired) on purpose.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrorUnauthorized     = errors.New("unauthorized")

	// Authorization errors.
	ErrForbidden = errors.New("forbidden")
)

// DetailError carries a caller-facing message while still matching its
// sentinel kind through errors.Is.
type DetailError struct {
	Kind   error
	Detail string
}

func (e *DetailError) Error() string {
	return e.Detail
}

func (e *DetailError) Unwrap() error {
	return e.Kind
}

// Detailed builds a DetailError of the given kind with a formatted message.
//
//	return common.Detailed(common.ErrConflict, "Username '%s' is already taken.", name)
func Detailed(kind error, format string, args ...any) error {
	return &DetailError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
