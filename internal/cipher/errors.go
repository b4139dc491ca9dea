package cipher

import "errors"

var (
	// ErrInvalidKey reports a key that cannot drive a cipher, such as a
	// Vigenère keyword without a single ASCII letter.
	ErrInvalidKey = errors.New("cipher: invalid key")

	// ErrUnknownOperation is returned when a pipeline names an operation
	// that is not registered.
	ErrUnknownOperation = errors.New("cipher: unknown operation")

	// ErrNotReversible is returned when reversing a pipeline that contains
	// an operation without an inverse.
	ErrNotReversible = errors.New("cipher: operation is not reversible")
)
