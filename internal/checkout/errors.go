package checkout

import "errors"

var (
	// ErrValidation indicates the checkout request itself is malformed. No
	// side effects have happened when this is returned.
	ErrValidation = errors.New("invalid checkout request")

	// ErrPersistence indicates the storage layer failed while recording the
	// order. All stock reservations from the attempt have been released, so
	// the whole checkout is safe to retry.
	ErrPersistence = errors.New("order could not be persisted")

	// ErrDuplicateCheckout indicates the idempotency key was already consumed
	// by a previous attempt; the stored response should be replayed.
	ErrDuplicateCheckout = errors.New("duplicate checkout")

	// ErrOrderNotFound indicates a status update referenced an unknown order.
	ErrOrderNotFound = errors.New("order not found")
)
