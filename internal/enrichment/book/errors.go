package book

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidISBN is returned when the ISBN is empty or blank.
	ErrInvalidISBN = errors.New("ISBN is required")

	// ErrMissingCredential is returned when a provider needs a credential the
	// request does not carry.
	ErrMissingCredential = errors.New("required credential is missing")

	// ErrNoResult is returned when a response holds no usable item.
	ErrNoResult = errors.New("no book information found")

	// ErrNotImplemented is returned by providers that cannot issue requests.
	ErrNotImplemented = errors.New("integration is not implemented")
)

// IncompleteError reports a record that lacks required fields.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("insufficient book information, missing [%s]", strings.Join(e.Missing, ", "))
}
