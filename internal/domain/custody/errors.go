package custody

import "errors"

var (
	// ErrNotFound means a referenced kit, request, or event does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the actor's role does not permit the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState means the entity is not in the required state for the
	// requested transition.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict means a uniqueness invariant was violated, e.g. a second
	// pending approval request for the same kit.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput means a required field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDecryption means stored ciphertext could not be recovered.
	ErrDecryption = errors.New("decryption failed")
	// ErrInconsistent means an expected companion row is missing. This is an
	// internal invariant violation, never user-triggered.
	ErrInconsistent = errors.New("inconsistent state")
)
