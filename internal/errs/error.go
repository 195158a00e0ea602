package errs

import (
	"errors"
)

var (
	// ErrNotFound means the requested id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyBorrowed and ErrNotBorrowed reject transitions that the
	// current derived state forbids; retrying the same call cannot help.
	ErrAlreadyBorrowed = errors.New("book is already borrowed")
	ErrNotBorrowed     = errors.New("book is not borrowed")

	// ErrConcurrentModification means the conditional update affected no
	// rows: another writer changed the record after it was read. The
	// caller may retry from a fresh read.
	ErrConcurrentModification = errors.New("concurrent modification detected, no rows were affected")

	ErrAlreadyExists = errors.New("already exists")

	// ErrStoreUnavailable marks infrastructure failures of the persistence
	// medium, distinct from logical conflicts.
	ErrStoreUnavailable = errors.New("store unavailable")
)

type ValidationErrorResponse struct {
	Message string `json:"message"`
	Errors  struct {
		AdditionalProperties string `json:"additionalProperties"`
	} `json:"errors"`
}
