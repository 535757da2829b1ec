package store

import (
	"sort"

	"github.com/vidhyadham/server/internal/model"
	"github.com/vidhyadham/server/internal/rules"
)

// Stats aggregates the current snapshot for the dashboard. All counts are
// recomputed on demand; at a few hundred seats the O(n) scan is cheap.
type Stats struct {
	TotalUsers      int                     `json:"total_users"`
	UsersByStatus   map[model.FeeStatus]int `json:"users_by_status"`
	TotalSeats      int                     `json:"total_seats"`
	AvailableBySlot map[string]int          `json:"available_by_slot"`
}

// SeatView is one cell of the seat grid, with status derived for the
// requested slot rather than read from the stored seat row.
type SeatView struct {
	Number    uint32           `json:"number"`
	Status    model.SeatStatus `json:"status"`
	UserID    *uint64          `json:"user_id,omitempty"`
	UserName  string           `json:"user_name,omitempty"`
	FeeStatus model.FeeStatus  `json:"fee_status,omitempty"`
}

// GridPage is a deterministic window over the seat grid.
type GridPage struct {
	Slot       string     `json:"slot"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalSeats int        `json:"total_seats"`
	Seats      []SeatView `json:"seats"`
}

// ComputeStats builds the aggregate counts over the snapshot.
func (s *Store) ComputeStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		TotalUsers:      len(s.users),
		UsersByStatus:   map[model.FeeStatus]int{model.FeePaid: 0, model.FeeDue: 0, model.FeeExpired: 0},
		TotalSeats:      int(s.seatCount),
		AvailableBySlot: map[string]int{},
	}
	for i := range s.users {
		st.UsersByStatus[s.users[i].FeeStatus]++
	}
	for _, slot := range s.settings.Slots() {
		taken := 0
		for i := range s.users {
			u := &s.users[i]
			if u.SeatNumber != nil && u.Slot == slot {
				taken++
			}
		}
		st.AvailableBySlot[slot] = int(s.seatCount) - taken
	}
	return st
}

// seatViewLocked derives the grid cell for one seat in one slot. Caller
// holds the lock.
func (s *Store) seatViewLocked(num uint32, slot string) SeatView {
	for i := range s.users {
		u := &s.users[i]
		if u.SeatNumber != nil && *u.SeatNumber == num && u.Slot == slot {
			id := u.ID
			return SeatView{Number: num, Status: rules.SeatStatusFor(u.FeeStatus), UserID: &id, UserName: u.Name, FeeStatus: u.FeeStatus}
		}
	}
	return SeatView{Number: num, Status: model.SeatAvailable}
}

// SeatGrid returns the page-th window of the seat grid for a slot. Pages
// are 1-based; all=true bypasses pagination and returns every seat. Slicing
// is deterministic: seat numbers ascend and the window is [(page-1)*size,
// page*size).
func (s *Store) SeatGrid(slot string, page, size int, all bool) GridPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := GridPage{Slot: slot, Page: page, PageSize: size, TotalSeats: int(s.seatCount)}
	lo, hi := 0, int(s.seatCount)
	if !all {
		if page < 1 {
			page = 1
		}
		if size < 1 {
			size = 50
		}
		out.Page, out.PageSize = page, size
		lo = (page - 1) * size
		if lo > hi {
			lo = hi
		}
		if lo+size < hi {
			hi = lo + size
		}
	}
	out.Seats = make([]SeatView, 0, hi-lo)
	for n := lo + 1; n <= hi; n++ {
		out.Seats = append(out.Seats, s.seatViewLocked(uint32(n), slot))
	}
	return out
}

// Availability lists the free seat numbers for a slot in ascending order.
func (s *Store) Availability(slot string) []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := make(map[uint32]bool, len(s.users))
	for i := range s.users {
		u := &s.users[i]
		if u.SeatNumber != nil && u.Slot == slot {
			taken[*u.SeatNumber] = true
		}
	}
	free := make([]uint32, 0, int(s.seatCount)-len(taken))
	for n := uint32(1); n <= s.seatCount; n++ {
		if !taken[n] {
			free = append(free, n)
		}
	}
	sort.Slice(free, func(i, j int) bool { return free[i] < free[j] })
	return free
}
