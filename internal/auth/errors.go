package auth

import "errors"

var (
	// ErrAuthentication is returned when a presented credential cannot be
	// turned into a non-empty scope map: undecodable Basic header, unknown
	// API key, or a key whose every row is filtered out. It maps to a 401
	// at the boundary and is never retried.
	ErrAuthentication = errors.New("auth: authentication failed")

	// ErrScopeDenied is returned by guards when the required scope is not
	// a key of the visibility map. Absence is denial; no scope implies
	// another.
	ErrScopeDenied = errors.New("auth: scope not granted")

	// ErrMissingState is returned by guards when a handler needs a
	// resolved handle (league, user, match, ban, queue) the resolver did
	// not attach.
	ErrMissingState = errors.New("auth: required state not resolved")
)
