package rules

import (
	"errors"
	"testing"

	"github.com/vidhyadham/server/internal/model"
)

func seatPtr(n uint32) *uint32 { return &n }

func TestSeatStatusFor(t *testing.T) {
	cases := []struct {
		fee  model.FeeStatus
		want model.SeatStatus
	}{
		{model.FeePaid, model.SeatPaid},
		{model.FeeDue, model.SeatDue},
		{model.FeeExpired, model.SeatExpired},
	}
	for _, c := range cases {
		if got := SeatStatusFor(c.fee); got != c.want {
			t.Errorf("SeatStatusFor(%q) = %q, want %q", c.fee, got, c.want)
		}
	}
}

func TestIsAvailableForSlot(t *testing.T) {
	users := []model.User{
		{ID: 1, SeatNumber: seatPtr(5), Slot: "Morning", FeeStatus: model.FeePaid},
		{ID: 2, SeatNumber: seatPtr(5), Slot: "Evening", FeeStatus: model.FeeExpired},
	}

	if IsAvailableForSlot(5, "Morning", users, 0) {
		t.Error("seat 5 Morning should be taken")
	}
	// Expired occupants still block the seat.
	if IsAvailableForSlot(5, "Evening", users, 0) {
		t.Error("seat 5 Evening should be taken even though the occupant is expired")
	}
	// Same number, untouched slot.
	if !IsAvailableForSlot(5, "Afternoon", users, 0) {
		t.Error("seat 5 Afternoon should be free")
	}
	// The exception id lets a user re-validate their own seat.
	if !IsAvailableForSlot(5, "Morning", users, 1) {
		t.Error("seat 5 Morning should be free when user 1 is excluded")
	}
}

func TestValidateRegistration(t *testing.T) {
	settings := model.DefaultSettings()
	users := []model.User{
		{ID: 1, SeatNumber: seatPtr(3), Slot: "Morning", FeeStatus: model.FeeDue},
	}

	if err := ValidateRegistration(3, "Night", users, settings, 10); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("unknown slot: got %v, want ErrInvalidSlot", err)
	}
	if err := ValidateRegistration(0, "Morning", users, settings, 10); !errors.Is(err, ErrSeatOutOfRange) {
		t.Errorf("seat 0: got %v, want ErrSeatOutOfRange", err)
	}
	if err := ValidateRegistration(11, "Morning", users, settings, 10); !errors.Is(err, ErrSeatOutOfRange) {
		t.Errorf("seat 11: got %v, want ErrSeatOutOfRange", err)
	}
	if err := ValidateRegistration(3, "Morning", users, settings, 10); !errors.Is(err, ErrSeatConflict) {
		t.Errorf("taken seat: got %v, want ErrSeatConflict", err)
	}
	if err := ValidateRegistration(3, "Evening", users, settings, 10); err != nil {
		t.Errorf("same seat other slot: got %v, want nil", err)
	}
	if err := ValidateRegistration(4, "Morning", users, settings, 10); err != nil {
		t.Errorf("free seat: got %v, want nil", err)
	}
}

func TestValidateReassignment(t *testing.T) {
	settings := model.DefaultSettings()
	users := []model.User{
		{ID: 1, SeatNumber: seatPtr(3), Slot: "Morning", FeeStatus: model.FeePaid},
		{ID: 2, SeatNumber: seatPtr(4), Slot: "Morning", FeeStatus: model.FeeDue},
	}

	// Moving onto your own current seat is a no-op, not a conflict.
	if err := ValidateReassignment(1, 3, "Morning", users, settings, 10); err != nil {
		t.Errorf("own seat: got %v, want nil", err)
	}
	if err := ValidateReassignment(1, 4, "Morning", users, settings, 10); !errors.Is(err, ErrSeatConflict) {
		t.Errorf("occupied seat: got %v, want ErrSeatConflict", err)
	}
	if err := ValidateReassignment(1, 4, "Evening", users, settings, 10); err != nil {
		t.Errorf("same seat other slot: got %v, want nil", err)
	}
}
