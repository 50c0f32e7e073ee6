package primitive

import "errors"

var (
	// ErrInvalidDescriptor is returned when a descriptor does not describe
	// a constructible primitive.
	ErrInvalidDescriptor = errors.New("primitive: invalid descriptor")

	// ErrNilBuilder is returned by GetOrCreate when no build function is given.
	ErrNilBuilder = errors.New("primitive: nil build function")
)
