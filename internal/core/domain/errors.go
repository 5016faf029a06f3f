package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUsernameTaken      = errors.New("username already in use")
	ErrInvalidCredentials = errors.New("wrong username or password")
	ErrMissingFields      = errors.New("please fill out all fields")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnknownMetric      = errors.New("unknown metric")

	// ErrInvalidNumber is returned when a submitted value is not a finite real number.
	ErrInvalidNumber = errors.New("please enter valid numbers.")

	// ErrOutOfRange matches every *RangeError through errors.Is.
	ErrOutOfRange = errors.New("value out of range")

	// ErrStoreUnavailable wraps every persistence failure surfaced by a repository.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// RangeError rejects a well-formed number that falls outside the accepted range.
// Message is user facing advice; nothing is persisted when it is returned.
type RangeError struct {
	Metric  Metric
	Message string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Metric, e.Message)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// StoreError wraps a driver error so callers can match ErrStoreUnavailable
// while the underlying cause stays reachable through errors.Unwrap.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
