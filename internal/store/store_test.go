package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidhyadham/server/internal/model"
	"github.com/vidhyadham/server/internal/queue"
	"github.com/vidhyadham/server/internal/rules"
)

// failingPersister rejects every delta so tests can verify that a failed
// write leaves the snapshot untouched.
type failingPersister struct{}

func (failingPersister) Apply(context.Context, Delta) error {
	return errors.New("disk on fire")
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(nil, 10)
}

func register(t *testing.T, s *Store, name, slot string, seat uint32) model.User {
	t.Helper()
	u, err := s.RegisterUser(context.Background(), RegisterInput{
		Name:       name,
		Phone:      "9999900000",
		SeatNumber: seat,
		Slot:       slot,
	}, nil)
	if err != nil {
		t.Fatalf("RegisterUser(%s, %s, %d): %v", name, slot, seat, err)
	}
	return u
}

func TestRegisterDefaultsToDue(t *testing.T) {
	s := newTestStore(t)
	u := register(t, s, "Asha", "Morning", 3)

	if u.FeeStatus != model.FeeDue {
		t.Errorf("fee status = %q, want %q", u.FeeStatus, model.FeeDue)
	}
	if u.SeatNumber == nil || *u.SeatNumber != 3 {
		t.Fatalf("seat number = %v, want 3", u.SeatNumber)
	}
	if len(u.Logs) != 1 || u.Logs[0].Action != "User registered" {
		t.Errorf("logs = %v, want single 'User registered' entry", u.Logs)
	}

	seats := s.Seats()
	if got := seats[2]; got.Status != model.SeatDue || got.UserID == nil || *got.UserID != u.ID {
		t.Errorf("seat 3 = %+v, want due and bound to user %d", got, u.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RegisterUser(context.Background(), RegisterInput{Phone: "1", SeatNumber: 1, Slot: "Morning"}, nil)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("empty name: got %v, want ErrValidation", err)
	}
	_, err = s.RegisterUser(context.Background(), RegisterInput{Name: "A", SeatNumber: 1, Slot: "Morning"}, nil)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("no contact: got %v, want ErrValidation", err)
	}
	_, err = s.RegisterUser(context.Background(), RegisterInput{Name: "A", Phone: "1", SeatNumber: 1, Slot: "Morning", FeeStatus: "overdue"}, nil)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("bad fee status: got %v, want ErrValidation", err)
	}
	_, err = s.RegisterUser(context.Background(), RegisterInput{Name: "A", Phone: "1", SeatNumber: 1, Slot: "Night"}, nil)
	if !errors.Is(err, rules.ErrInvalidSlot) {
		t.Errorf("bad slot: got %v, want ErrInvalidSlot", err)
	}
	_, err = s.RegisterUser(context.Background(), RegisterInput{Name: "A", Phone: "1", SeatNumber: 99, Slot: "Morning"}, nil)
	if !errors.Is(err, rules.ErrSeatOutOfRange) {
		t.Errorf("seat out of range: got %v, want ErrSeatOutOfRange", err)
	}
}

func TestSeatConflictIsSlotScoped(t *testing.T) {
	s := newTestStore(t)
	register(t, s, "Asha", "Morning", 5)

	// Same seat, same slot: conflict.
	_, err := s.RegisterUser(context.Background(), RegisterInput{
		Name: "Bharat", Phone: "2", SeatNumber: 5, Slot: "Morning",
	}, nil)
	if !errors.Is(err, rules.ErrSeatConflict) {
		t.Fatalf("same slot: got %v, want ErrSeatConflict", err)
	}

	// Same seat, different slot: allowed.
	b := register(t, s, "Bharat", "Evening", 5)
	if b.SeatNumber == nil || *b.SeatNumber != 5 {
		t.Errorf("cross-slot registration did not bind seat 5")
	}
	if len(s.Users()) != 2 {
		t.Errorf("users = %d, want 2", len(s.Users()))
	}
}

func TestMarkPaidIdempotent(t *testing.T) {
	s := newTestStore(t)
	u := register(t, s, "Asha", "Morning", 1)

	first, err := s.MarkPaid(context.Background(), u.ID, nil)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if first.FeeStatus != model.FeePaid {
		t.Errorf("fee = %q, want paid", first.FeeStatus)
	}
	second, err := s.MarkPaid(context.Background(), u.ID, nil)
	if err != nil {
		t.Fatalf("MarkPaid again: %v", err)
	}
	if second.FeeStatus != model.FeePaid {
		t.Errorf("fee after repeat = %q, want paid", second.FeeStatus)
	}
	// Every call appends exactly one log entry, even a repeated one.
	if len(second.Logs) != len(first.Logs)+1 {
		t.Errorf("logs = %d, want %d", len(second.Logs), len(first.Logs)+1)
	}
	if got := s.Seats()[0]; got.Status != model.SeatPaid {
		t.Errorf("seat status = %q, want paid", got.Status)
	}
}

func TestMarkExpiredRestampsSeat(t *testing.T) {
	s := newTestStore(t)
	u := register(t, s, "Asha", "Morning", 2)

	if _, err := s.MarkExpired(context.Background(), u.ID, nil); err != nil {
		t.Fatalf("MarkExpired: %v", err)
	}
	if got := s.Seats()[1]; got.Status != model.SeatExpired {
		t.Errorf("seat status = %q, want expired", got.Status)
	}
	if _, err := s.MarkPaid(context.Background(), 404, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user: got %v, want ErrNotFound", err)
	}
}

func TestChangeSlotOrSeatReleasesOldSeat(t *testing.T) {
	s := newTestStore(t)
	u := register(t, s, "Asha", "Morning", 1)

	moved, err := s.ChangeSlotOrSeat(context.Background(), u.ID, "Evening", 7, nil)
	if err != nil {
		t.Fatalf("ChangeSlotOrSeat: %v", err)
	}
	if moved.Slot != "Evening" || moved.SeatNumber == nil || *moved.SeatNumber != 7 {
		t.Errorf("user = slot %q seat %v, want Evening/7", moved.Slot, moved.SeatNumber)
	}
	seats := s.Seats()
	if seats[0].Status != model.SeatAvailable || seats[0].UserID != nil {
		t.Errorf("old seat = %+v, want available", seats[0])
	}
	if seats[6].UserID == nil || *seats[6].UserID != u.ID {
		t.Errorf("new seat = %+v, want bound to user %d", seats[6], u.ID)
	}
}

func TestReleasedSeatRebindsToRemainingOccupant(t *testing.T) {
	s := newTestStore(t)
	a := register(t, s, "Asha", "Morning", 5)
	b := register(t, s, "Bharat", "Evening", 5)
	if _, err := s.MarkPaid(context.Background(), a.ID, nil); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	// Asha leaves seat 5; Bharat (due, Evening) still holds the number, so
	// the stored seat rebinds to him instead of going available.
	if _, err := s.ChangeSlotOrSeat(context.Background(), a.ID, "Morning", 6, nil); err != nil {
		t.Fatalf("ChangeSlotOrSeat: %v", err)
	}
	got := s.Seats()[4]
	if got.UserID == nil || *got.UserID != b.ID {
		t.Fatalf("seat 5 = %+v, want rebound to user %d", got, b.ID)
	}
	if got.Status != model.SeatDue {
		t.Errorf("seat 5 status = %q, want due", got.Status)
	}
}

func TestDeleteUserFreesSeat(t *testing.T) {
	s := newTestStore(t)
	u := register(t, s, "Asha", "Morning", 4)

	if err := s.DeleteUser(context.Background(), u.ID, nil); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if len(s.Users()) != 0 {
		t.Errorf("users = %d, want 0", len(s.Users()))
	}
	if got := s.Seats()[3]; got.Status != model.SeatAvailable || got.UserID != nil {
		t.Errorf("seat 4 = %+v, want available", got)
	}
	if err := s.DeleteUser(context.Background(), u.ID, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("repeat delete: got %v, want ErrNotFound", err)
	}
	// The seat is immediately reusable.
	register(t, s, "Chitra", "Morning", 4)
}

func TestPersistFailureLeavesSnapshotUntouched(t *testing.T) {
	s := New(failingPersister{}, 10)

	_, err := s.RegisterUser(context.Background(), RegisterInput{
		Name: "Asha", Phone: "1", SeatNumber: 1, Slot: "Morning",
	}, nil)
	if err == nil {
		t.Fatal("RegisterUser succeeded with a failing persister")
	}
	if len(s.Users()) != 0 {
		t.Errorf("users = %d, want 0 after failed persist", len(s.Users()))
	}
	if got := s.Seats()[0]; got.Status != model.SeatAvailable {
		t.Errorf("seat 1 = %+v, want still available", got)
	}
}

func TestLogOrderingFollowsMutationOrder(t *testing.T) {
	clock := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	s := New(nil, 10, WithNow(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))

	u, err := s.RegisterUser(context.Background(), RegisterInput{
		Name: "Asha", Phone: "1", SeatNumber: 1, Slot: "Morning",
	}, nil)
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if _, err := s.MarkPaid(context.Background(), u.ID, nil); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if _, err := s.ChangeSlotOrSeat(context.Background(), u.ID, "Evening", 2, nil); err != nil {
		t.Fatalf("ChangeSlotOrSeat: %v", err)
	}

	logs, err := s.UserLogs(u.ID)
	if err != nil {
		t.Fatalf("UserLogs: %v", err)
	}
	want := []string{"User registered", "Fee marked as paid", "Slot/seat changed"}
	if len(logs) != len(want) {
		t.Fatalf("logs = %d entries, want %d", len(logs), len(want))
	}
	for i, w := range want {
		if logs[i].Action != w {
			t.Errorf("logs[%d] = %q, want %q", i, logs[i].Action, w)
		}
		if i > 0 && !logs[i].At.After(logs[i-1].At) {
			t.Errorf("logs[%d] timestamp %v not after logs[%d] %v", i, logs[i].At, i-1, logs[i-1].At)
		}
	}
}

func TestPublisherReceivesCommittedEvents(t *testing.T) {
	events := make(chan queue.UserEvent, 4)
	s := New(nil, 10, WithPublisher(func(_ context.Context, ev queue.UserEvent) {
		events <- ev
	}))

	u, err := s.RegisterUser(context.Background(), RegisterInput{
		Name: "Asha", Phone: "1", SeatNumber: 1, Slot: "Morning",
	}, nil)
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Type != queue.EventUserRegistered || ev.UserID != u.ID {
			t.Errorf("event = %+v, want %s for user %d", ev, queue.EventUserRegistered, u.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event published within 1s of the committed mutation")
	}
}

func TestUpdateSettingsMergesSections(t *testing.T) {
	s := newTestStore(t)

	out, err := s.UpdateSettings(context.Background(), SettingsPatch{
		SlotPricing: map[string]uint32{"Morning": 70000, "Night": 40000},
		SlotTimings: map[string]string{"Night": "22:00-06:00"},
		Email:       &model.EmailSettings{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"},
	})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if out.SlotPricing["Morning"] != 70000 {
		t.Errorf("Morning price = %d, want 70000", out.SlotPricing["Morning"])
	}
	if out.SlotPricing["Afternoon"] != 50000 {
		t.Errorf("Afternoon price = %d, want untouched 50000", out.SlotPricing["Afternoon"])
	}
	if !out.HasSlot("Night") {
		t.Error("Night slot missing after patch")
	}
	if out.Email.Host != "smtp.example.com" {
		t.Errorf("email host = %q, want smtp.example.com", out.Email.Host)
	}

	// The new slot is immediately registrable.
	if _, err := s.RegisterUser(context.Background(), RegisterInput{
		Name: "Asha", Phone: "1", SeatNumber: 1, Slot: "Night",
	}, nil); err != nil {
		t.Errorf("register into new slot: %v", err)
	}
}

func TestHydrateContinuesIDSequence(t *testing.T) {
	s := newTestStore(t)
	seat := uint32(2)
	s.Hydrate([]model.User{
		{ID: 7, Name: "Asha", Phone: "1", SeatNumber: &seat, Slot: "Morning", FeeStatus: model.FeePaid},
	}, []model.Seat{
		{Number: 2, Status: model.SeatPaid, UserID: ptrU64(7)},
	}, nil)

	u := register(t, s, "Bharat", "Evening", 3)
	if u.ID != 8 {
		t.Errorf("next id = %d, want 8", u.ID)
	}
}

func ptrU64(v uint64) *uint64 { return &v }
