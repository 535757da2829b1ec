// Package store holds the authoritative in-process snapshot of users, seats
// and settings, and applies admin mutations to it. Every mutation is
// serialized through a single writer lock and persisted before the snapshot
// is swapped, so a failed write never leaves a dangling user-seat reference.
package store

import "errors"

// ErrNotFound is returned when a user id does not exist in the snapshot.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned for malformed input such as a missing required
// field or an unknown fee status. Handlers should translate this into 400.
var ErrValidation = errors.New("validation failed")
