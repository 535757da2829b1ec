package model

// SeatStatus describes a seat as seen through its current occupant. The
// stored status always reflects the occupant's fee state; per-slot
// availability is derived from users, never read from this field directly
// when the requesting slot differs from the occupant's slot.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatPaid      SeatStatus = "paid"
	SeatDue       SeatStatus = "due"
	SeatExpired   SeatStatus = "expired"
)

// Seat is a fixed numbered resource unit, reusable across slots. Seats are
// created once at system initialisation (1..N) and never destroyed; only
// Status and UserID mutate.
//
// Fields:
//  Number – unique stable identifier, 1-based.
//  Status – occupant-derived state, available when unoccupied.
//  UserID – back-reference to the occupying user, nil when available.
type Seat struct {
	Number uint32     `json:"number"`
	Status SeatStatus `json:"status"`
	UserID *uint64    `json:"user_id,omitempty"`
}
