package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Business outcomes of the authentication flows. These are expected results,
// returned as typed values so callers can branch without string matching;
// only database faults are treated as unexpected.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token is expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyVerified    = errors.New("email is already verified")
	ErrRefreshInvalid     = errors.New("refresh token is invalid")
)

// ValidationError reports every constraint rule a field value violated, not
// just the first one. Callers decide how much of the detail to surface.
type ValidationError struct {
	Field  string
	Failed []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Field, strings.Join(e.Failed, ", "))
}

// DuplicateError reports that a unique identifier is already taken.
// Field is "username" or "email".
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return e.Field + " already exists"
}
