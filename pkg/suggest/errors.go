package suggest

import "errors"

var (
	// ErrInvalidInput is returned for an absent term or prefix. Go strings
	// cannot be nil, so "absent" means a value that is not valid UTF-8, or a
	// negative result cap.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexSealed is returned by Insert after the index became queryable.
	ErrIndexSealed = errors.New("index is sealed")
)
