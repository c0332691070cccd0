// Package fault defines the structured error taxonomy returned by the
// application core. Every operation failure is one of these; the HTTP
// adapter maps each kind to a status code and machine-readable error code.
package fault

import (
	"errors"
	"fmt"
)

// ErrNotFound covers both true absence and tenant-mismatched existence.
// A lookup under the wrong local site deliberately reports not-found rather
// than permission-denied so cross-site probing cannot confirm existence.
var ErrNotFound = errors.New("object does not exist")

// ErrPermissionDenied is returned when the actor may see an entity but not
// perform the requested operation on it.
var ErrPermissionDenied = errors.New("permission denied")

// ErrNotLoggedIn is returned when an operation requires an authenticated
// actor and none was provided.
var ErrNotLoggedIn = errors.New("not logged in")

// FieldError reports invalid data for a named field. The field name is
// carried so clients can highlight the offending input.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid value for field %q: %s", e.Field, e.Reason)
}

// InvalidField constructs a FieldError.
func InvalidField(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

// FieldErrors aggregates invalid fields from a multi-field update. No state
// is mutated when any field is invalid.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%d invalid fields", len(e))
}

// StateError reports an operation attempted in a state that does not allow
// it, such as publishing with no open draft or replying to a reply.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return "invalid state: " + e.Reason
}

// InvalidState constructs a StateError.
func InvalidState(reason string) error {
	return &StateError{Reason: reason}
}

// ValidationError reports a missing prerequisite detected before any
// mutation, such as a first publish without a repository.
type ValidationError struct {
	Prerequisite string
	Reason       string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Prerequisite, e.Reason)
}

// Validation constructs a ValidationError.
func Validation(prerequisite, reason string) error {
	return &ValidationError{Prerequisite: prerequisite, Reason: reason}
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPermissionDenied reports whether err is (or wraps) ErrPermissionDenied.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// AsFieldErrors extracts field errors from err. A single FieldError is
// returned as a one-element slice.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var multi FieldErrors
	if errors.As(err, &multi) {
		return multi, true
	}
	var single *FieldError
	if errors.As(err, &single) {
		return FieldErrors{*single}, true
	}
	return nil, false
}

// AsStateError extracts a StateError from err.
func AsStateError(err error) (*StateError, bool) {
	var e *StateError
	ok := errors.As(err, &e)
	return e, ok
}

// AsValidationError extracts a ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var e *ValidationError
	ok := errors.As(err, &e)
	return e, ok
}
