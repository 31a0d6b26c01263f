/*
errors.go - Centralized error types for the tour guide engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers branch with errors.Is / errors.As, never on message text.

ERROR CATEGORIES:
  1. Invalid argument - nil or absent input, non-positive configuration.
     Always returned synchronously, never retried.
  2. Upstream unavailable - location provider or points oracle failure.
     Recovered locally: the reward engine skips the candidate, the tracker
     skips the user until the next cycle.
  3. Not found - lookups by user name.

  Cancellation is not an error category of its own: context.Canceled and
  context.DeadlineExceeded stop the tracker and are not logged as failures.

SEE ALSO:
  - rewards/engine.go: Skips candidates on UpstreamError
  - api/tracker.go: Logs per-user failures and keeps going
  - api/handlers.go: Maps categories to HTTP status codes
*/
package tourguide

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidArgument is returned when a required input is missing or a
	// configuration value is out of range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUpstreamUnavailable is returned when an external collaborator fails.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUserNotFound is returned when no user is registered under a name.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser is returned by strict inserts when the name is taken.
	// UserStore.Add itself treats a duplicate as a no-op.
	ErrDuplicateUser = errors.New("user already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidArgumentError names the offending argument.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Field, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// InvalidArgument builds an *InvalidArgumentError.
func InvalidArgument(field, reason string) error {
	return &InvalidArgumentError{Field: field, Reason: reason}
}

// UpstreamError wraps a failure from an external collaborator.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

// Is matches ErrUpstreamUnavailable while Unwrap still exposes the cause.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Upstream wraps err as an *UpstreamError for service.
func Upstream(service string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Service: service, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsUpstream returns true if an external collaborator failed.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsConflict returns true if the error indicates a duplicate user.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateUser)
}
