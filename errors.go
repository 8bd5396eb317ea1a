package animplay

import "errors"

// Sentinel errors for animator operations. These enable reliable error
// classification using errors.Is().

var (
	// ErrDisposed indicates an operation on a disposed animator.
	ErrDisposed = errors.New("animator is disposed")

	// ErrNilSource indicates Prepare was called with no source data.
	ErrNilSource = errors.New("animation source data cannot be empty")

	// ErrInvalidOptions indicates configuration that cannot produce a
	// playable animator, such as a non-positive maximum time step.
	ErrInvalidOptions = errors.New("invalid animator options")
)
