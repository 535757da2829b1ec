package rules

import "errors"

// ErrSeatConflict is returned when the requested seat/slot pair is already
// occupied by a different live user. Handlers translate this into 409.
var ErrSeatConflict = errors.New("seat conflict")

// ErrInvalidSlot is returned when a slot label is not present in the
// configured slot timings. Handlers translate this into 400.
var ErrInvalidSlot = errors.New("invalid slot")

// ErrSeatOutOfRange is returned when a seat number is outside the fixed
// 1..N range established at system initialisation.
var ErrSeatOutOfRange = errors.New("seat out of range")
