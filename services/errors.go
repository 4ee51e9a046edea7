package services

import (
	"errors"
	"fmt"
)

// Error taxonomy. Mutation failures are terminal for the call; the only
// automatic recovery in the system is the queue's silent re-enqueue on a
// claim/verify race, which is not an error at all.
var (
	// ErrUnauthenticated: no identity on the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound: session, match or user missing.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized: caller is not a participant. Logged as a potential
	// abuse signal, never retried.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPreconditionFailed: wrong phase/status for the operation.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrRateLimited: too many messages or images in the window.
	ErrRateLimited = errors.New("rate limited")
	// ErrAlreadyInSession: caller already has an active speed-dating
	// session. Extended chats do not trigger this.
	ErrAlreadyInSession = errors.New("already in an active speed dating session, leave your current chat first")
	// ErrAccountNotSynced: identity exists at the auth provider but the
	// user record has not been created yet (first-login race).
	ErrAccountNotSynced = errors.New("account not found, sign out and back in to resync your profile")
)

func preconditionf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPreconditionFailed, fmt.Sprintf(format, args...))
}
