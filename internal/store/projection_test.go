package store

import (
	"context"
	"testing"

	"github.com/vidhyadham/server/internal/model"
)

func TestComputeStats(t *testing.T) {
	s := newTestStore(t)
	a := register(t, s, "Asha", "Morning", 1)
	register(t, s, "Bharat", "Morning", 2)
	register(t, s, "Chitra", "Evening", 1)
	if _, err := s.MarkPaid(context.Background(), a.ID, nil); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	st := s.ComputeStats()
	if st.TotalUsers != 3 {
		t.Errorf("total users = %d, want 3", st.TotalUsers)
	}
	if st.TotalSeats != 10 {
		t.Errorf("total seats = %d, want 10", st.TotalSeats)
	}
	if st.UsersByStatus[model.FeePaid] != 1 || st.UsersByStatus[model.FeeDue] != 2 {
		t.Errorf("by status = %v, want 1 paid / 2 due", st.UsersByStatus)
	}
	if st.AvailableBySlot["Morning"] != 8 {
		t.Errorf("Morning available = %d, want 8", st.AvailableBySlot["Morning"])
	}
	if st.AvailableBySlot["Evening"] != 9 {
		t.Errorf("Evening available = %d, want 9", st.AvailableBySlot["Evening"])
	}
	if st.AvailableBySlot["Afternoon"] != 10 {
		t.Errorf("Afternoon available = %d, want 10", st.AvailableBySlot["Afternoon"])
	}
}

func TestSeatGridDerivesPerSlot(t *testing.T) {
	s := newTestStore(t)
	a := register(t, s, "Asha", "Morning", 1)
	register(t, s, "Bharat", "Evening", 1)
	if _, err := s.MarkPaid(context.Background(), a.ID, nil); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	morning := s.SeatGrid("Morning", 1, 10, false)
	if morning.Seats[0].Status != model.SeatPaid || morning.Seats[0].UserName != "Asha" {
		t.Errorf("Morning seat 1 = %+v, want paid/Asha", morning.Seats[0])
	}
	evening := s.SeatGrid("Evening", 1, 10, false)
	if evening.Seats[0].Status != model.SeatDue || evening.Seats[0].UserName != "Bharat" {
		t.Errorf("Evening seat 1 = %+v, want due/Bharat", evening.Seats[0])
	}
	afternoon := s.SeatGrid("Afternoon", 1, 10, false)
	if afternoon.Seats[0].Status != model.SeatAvailable || afternoon.Seats[0].UserID != nil {
		t.Errorf("Afternoon seat 1 = %+v, want available", afternoon.Seats[0])
	}
}

func TestSeatGridPaginationIsDeterministic(t *testing.T) {
	s := newTestStore(t)

	p1 := s.SeatGrid("Morning", 1, 4, false)
	p2 := s.SeatGrid("Morning", 2, 4, false)
	p3 := s.SeatGrid("Morning", 3, 4, false)
	if len(p1.Seats) != 4 || len(p2.Seats) != 4 || len(p3.Seats) != 2 {
		t.Fatalf("page sizes = %d/%d/%d, want 4/4/2", len(p1.Seats), len(p2.Seats), len(p3.Seats))
	}
	if p1.Seats[0].Number != 1 || p2.Seats[0].Number != 5 || p3.Seats[0].Number != 9 {
		t.Errorf("page starts = %d/%d/%d, want 1/5/9", p1.Seats[0].Number, p2.Seats[0].Number, p3.Seats[0].Number)
	}

	// A page past the end is empty, not an error.
	p4 := s.SeatGrid("Morning", 4, 4, false)
	if len(p4.Seats) != 0 {
		t.Errorf("page 4 = %d seats, want 0", len(p4.Seats))
	}

	// all=true bypasses pagination entirely.
	full := s.SeatGrid("Morning", 99, 1, true)
	if len(full.Seats) != 10 {
		t.Errorf("all = %d seats, want 10", len(full.Seats))
	}

	// Repeated identical requests return the same window.
	again := s.SeatGrid("Morning", 2, 4, false)
	for i := range p2.Seats {
		if p2.Seats[i].Number != again.Seats[i].Number {
			t.Fatalf("page 2 changed between calls at index %d", i)
		}
	}
}

func TestAvailability(t *testing.T) {
	s := newTestStore(t)
	register(t, s, "Asha", "Morning", 2)
	register(t, s, "Bharat", "Morning", 5)
	register(t, s, "Chitra", "Evening", 2)

	free := s.Availability("Morning")
	want := []uint32{1, 3, 4, 6, 7, 8, 9, 10}
	if len(free) != len(want) {
		t.Fatalf("free = %v, want %v", free, want)
	}
	for i := range want {
		if free[i] != want[i] {
			t.Fatalf("free = %v, want %v", free, want)
		}
	}
	if got := s.Availability("Evening"); len(got) != 9 {
		t.Errorf("Evening free = %d seats, want 9", len(got))
	}
}
