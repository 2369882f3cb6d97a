package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidSchema signals an invalid input shape.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrInvalidPayload signals a malformed request body.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrElementNotFound signals a missing feed element.
	ErrElementNotFound = errors.New("feed element not found")
	// ErrAppNotFound signals that a referenced app is absent from the catalog.
	ErrAppNotFound = errors.New("app not found")
	// ErrShelfNotFound signals a missing shelf.
	ErrShelfNotFound = errors.New("shelf not found")
	// ErrFeedEmpty signals that no usable feed exists even at rest-of-world scope.
	ErrFeedEmpty = errors.New("feed is empty")

	// ErrInvalidRegion signals an unknown region code.
	ErrInvalidRegion = errors.New("invalid region")
	// ErrInvalidCarrier signals an unknown carrier code.
	ErrInvalidCarrier = errors.New("invalid carrier")
	// ErrInvalidDevice signals an unrecognized dev/device token.
	ErrInvalidDevice = errors.New("invalid device or device type")
	// ErrInvalidItemType signals an unknown feed element type.
	ErrInvalidItemType = errors.New("invalid item type")
	// ErrSlugExists signals a duplicate slug within one element type.
	ErrSlugExists = errors.New("slug already exists")
	// ErrImageSuperseded signals that an element's image URL changed after
	// its fetch was scheduled.
	ErrImageSuperseded = errors.New("image superseded")
)

// ValidationError carries a client-facing message for a rejected input.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidation wraps a sentinel with a client-facing message.
func NewValidation(sentinel error, format string, args ...any) error {
	return &ValidationError{Err: sentinel, Message: fmt.Sprintf(format, args...)}
}
