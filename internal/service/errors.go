package service

import (
	"errors"
	"fmt"

	"github.com/NaufalH27/inquran-be/internal/repository"
)

var (
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not found")
	ErrAuthentication = errors.New("authentication failed")

	ErrIdentifierNotFound  = errors.New("identifier not found")
	ErrNoPasswordMethod    = errors.New("no password method bound")
	ErrBadCredentials      = errors.New("bad credentials")
	ErrInvalidOrExpired    = errors.New("invalid or expired")
	ErrSessionUserNotFound = errors.New("user not found")
)

const (
	msgInvalidCredentials  = "invalid credentials"
	msgInvalidRefreshToken = "invalid or expired refresh token"
)

// ConflictError reports a unique-field collision. Field uses the client-facing
// name ("username", "email", "googleId", "password", "favorite").
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string { return e.Field + " already exists" }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// AuthenticationError carries the precise Reason for logs and metrics and a
// Message that is safe to return to clients.
type AuthenticationError struct {
	Reason  error
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Reason)
}

func (e *AuthenticationError) Unwrap() error { return e.Reason }

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func loginFailure(reason error) error {
	return &AuthenticationError{Reason: reason, Message: msgInvalidCredentials}
}

func refreshFailure(reason error) error {
	return &AuthenticationError{Reason: reason, Message: msgInvalidRefreshToken}
}

// conflictFromDuplicate turns a store-level unique violation into a
// ConflictError, or returns nil when err is something else.
func conflictFromDuplicate(err error) error {
	var dup *repository.DuplicateKeyError
	if !errors.As(err, &dup) {
		return nil
	}
	return &ConflictError{Field: clientFieldName(dup.Field)}
}

func clientFieldName(column string) string {
	switch column {
	case "google_id":
		return "googleId"
	default:
		return column
	}
}

// authReason names the failure for metrics and audit records.
func authReason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrIdentifierNotFound):
		return "identifier_not_found"
	case errors.Is(err, ErrNoPasswordMethod):
		return "no_password_method"
	case errors.Is(err, ErrBadCredentials):
		return "bad_credentials"
	case errors.Is(err, ErrInvalidOrExpired):
		return "invalid_or_expired"
	case errors.Is(err, ErrSessionUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

// AuthFailureReason exposes authReason to the HTTP layer for audit logging.
func AuthFailureReason(err error) string { return authReason(err) }
