package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInternal           = errors.New("internal error")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token verification failures. Expired and wrong-scope are distinct from
	// plain invalid so tests and callers can tell them apart; the HTTP layer
	// still collapses all three into one answer.
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
	ErrWrongScope   = errors.New("wrong token scope")

	// Pipeline terminals.
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrInactiveAccount   = errors.New("inactive account")
	ErrNotVerified       = errors.New("email not verified")
	ErrInsufficientRole  = errors.New("insufficient role")
	ErrRateLimited       = errors.New("rate limited")
)

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, context, err)
}

func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }

func IsInternal(err error) bool { return errors.Is(err, ErrInternal) }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }

func IsInvalidCredentials(err error) bool { return errors.Is(err, ErrInvalidCredentials) }

// IsUnauthenticated groups every failure that must be reported to the client
// as a bare 401, so the response does not leak which check tripped.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrWrongScope) ||
		errors.Is(err, ErrPrincipalNotFound) ||
		errors.Is(err, ErrInactiveAccount)
}

// IsForbidden groups the gate failures of an already-authenticated caller.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrNotVerified) || errors.Is(err, ErrInsufficientRole)
}

func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }
