package service

import (
	"errors"
	"fmt"
)

// Error taxonomy. Handlers match with errors.Is and map to generic HTTP
// responses; whatever wraps these stays in the logs.
var (
	// ErrValidation rejects malformed input before any mutation.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound covers both missing rows and rows owned by someone else,
	// so existence of other users' data is never leaked.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized rejects bad credentials without saying which part
	// was wrong.
	ErrUnauthorized = errors.New("invalid credentials")

	// ErrTransport marks a failed carrier or object-storage call.
	ErrTransport = errors.New("transport failure")

	// ErrStorage marks a persistence-layer failure.
	ErrStorage = errors.New("storage failure")
)

func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

func storageError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
