// Package errors contains the engine's sentinel errors and the single
// place where they are mapped onto HTTP responses.
package errors

import "errors"

var (
	// ErrSelfAction indicates a user tried to like, dislike or crush on
	// themselves.
	ErrSelfAction = errors.New("cannot act on yourself")

	// ErrRecipientNotFound indicates the recipient is absent from the
	// profile store.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrQuotaExceeded indicates the sender already used all crush sends
	// for the current weekly window.
	ErrQuotaExceeded = errors.New("weekly crush quota exceeded")

	// ErrDuplicateThisWeek indicates a crush for the same pair already
	// exists inside the current weekly window.
	ErrDuplicateThisWeek = errors.New("crush already sent to this user this week")

	// ErrFetchFailed indicates a profile store read failed.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrPersistenceFailed indicates a ledger/registry write failed after
	// contention retries were exhausted. Safe to retry: every mutating
	// step is idempotent.
	ErrPersistenceFailed = errors.New("persistence failed")
)
