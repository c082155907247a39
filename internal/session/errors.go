package session

import "errors"

var (
	// ErrDuplicateSession is returned when a freshly generated session id
	// collides with a stored session. This is a fatal condition; the store is
	// never silently overwritten.
	ErrDuplicateSession = errors.New("duplicate session id")

	// ErrSessionNotFound is returned when updating a session that is not in
	// the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyOwner is returned when creating a session without an owning
	// principal.
	ErrEmptyOwner = errors.New("session owner principal can not be empty")
)
