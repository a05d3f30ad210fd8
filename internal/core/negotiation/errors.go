package negotiation

import "errors"

// Sentinel errors for the negotiation domain. Callers match with errors.Is;
// layers above wrap these with contextual detail via fmt.Errorf("%w").
var (
	// ErrNotFound indicates the subject or negotiation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the actor is not allowed to act in the
	// negotiation's current state.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition indicates the action is not legal for the
	// negotiation's current status.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrExpired indicates the negotiation's deadline has passed.
	ErrExpired = errors.New("negotiation expired")

	// ErrValidation indicates a request failed offer-bounds or field
	// validation before any state was written.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a concurrent writer won the optimistic race
	// on a status transition. Recoverable: re-read and retry.
	ErrConflict = errors.New("conflict")
)
