package user

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a user document does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrValidation covers rejected input and records that break an invariant.
	ErrValidation = errors.New("validation failed")
	// ErrTransport wraps backend and network failures.
	ErrTransport = errors.New("backend unavailable")
	// ErrParse is returned when a stored document does not have the expected shape.
	ErrParse = errors.New("malformed user document")
	// ErrFeedClosed is returned by Feed.Next once the feed has been stopped.
	ErrFeedClosed = errors.New("feed closed")

	ErrMissingName = fmt.Errorf("%w: name is required", ErrValidation)
	ErrMissingID   = fmt.Errorf("%w: user id is required", ErrValidation)
)
