// Package rules contains the pure validation and derivation functions that
// keep the user and seat collections mutually consistent. Nothing in this
// package performs I/O; the store applies the results.
package rules

import (
	"fmt"

	"github.com/vidhyadham/server/internal/model"
)

// SeatStatusFor maps a member's fee status onto the status stored on the
// seat they occupy. The mapping is total: FeeStatus is a closed enum, so no
// default case exists.
func SeatStatusFor(fee model.FeeStatus) model.SeatStatus {
	switch fee {
	case model.FeePaid:
		return model.SeatPaid
	case model.FeeExpired:
		return model.SeatExpired
	default:
		return model.SeatDue
	}
}

// IsAvailableForSlot reports whether seat number seatNum is free for the
// given slot. Occupancy is evaluated per-slot: a seat occupied by a user in
// another slot does not block this one. Any live user in the requested slot
// blocks the seat regardless of their fee status. exceptUserID is skipped
// during the scan so a user can be re-validated against their own seat; pass
// 0 when no exception applies.
func IsAvailableForSlot(seatNum uint32, slot string, users []model.User, exceptUserID uint64) bool {
	for i := range users {
		u := &users[i]
		if u.ID == exceptUserID {
			continue
		}
		if u.SeatNumber != nil && *u.SeatNumber == seatNum && u.Slot == slot {
			return false
		}
	}
	return true
}

// ValidateRegistration checks a registration intent against the current
// snapshot before any state is touched. It returns ErrInvalidSlot when the
// slot label is unknown, ErrSeatOutOfRange when the seat number falls
// outside the configured range, and ErrSeatConflict when a live user
// already holds the seat in that slot.
func ValidateRegistration(seatNum uint32, slot string, users []model.User, settings model.Settings, seatCount uint32) error {
	if !settings.HasSlot(slot) {
		return fmt.Errorf("%w: unknown slot %q", ErrInvalidSlot, slot)
	}
	if seatNum < 1 || seatNum > seatCount {
		return fmt.Errorf("%w: seat %d not in 1..%d", ErrSeatOutOfRange, seatNum, seatCount)
	}
	if !IsAvailableForSlot(seatNum, slot, users, 0) {
		return fmt.Errorf("%w: seat %d already taken for slot %q", ErrSeatConflict, seatNum, slot)
	}
	return nil
}

// ValidateReassignment is ValidateRegistration for an existing user moving
// to a new slot/seat pair. The user's own current binding never conflicts
// with itself.
func ValidateReassignment(userID uint64, seatNum uint32, slot string, users []model.User, settings model.Settings, seatCount uint32) error {
	if !settings.HasSlot(slot) {
		return fmt.Errorf("%w: unknown slot %q", ErrInvalidSlot, slot)
	}
	if seatNum < 1 || seatNum > seatCount {
		return fmt.Errorf("%w: seat %d not in 1..%d", ErrSeatOutOfRange, seatNum, seatCount)
	}
	if !IsAvailableForSlot(seatNum, slot, users, userID) {
		return fmt.Errorf("%w: seat %d already taken for slot %q", ErrSeatConflict, seatNum, slot)
	}
	return nil
}
