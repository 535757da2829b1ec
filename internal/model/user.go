package model

import "time"

// FeeStatus is a member's payment state. It is a closed enum; the seat a
// member occupies is coloured from this value.
type FeeStatus string

const (
	FeePaid    FeeStatus = "paid"
	FeeDue     FeeStatus = "due"
	FeeExpired FeeStatus = "expired"
)

// Valid reports whether s is one of the three defined fee states.
func (s FeeStatus) Valid() bool {
	return s == FeePaid || s == FeeDue || s == FeeExpired
}

// UserLog is an immutable audit entry appended to a user on every
// state-changing action.
//
// Fields:
//  Action  – human-readable action label (e.g. "Fee marked as paid").
//  AdminID – acting admin, nil when the action was system-initiated.
//  At      – UTC timestamp of the action.
type UserLog struct {
	Action  string    `json:"action"`
	AdminID *uint64   `json:"admin_id,omitempty"`
	At      time.Time `json:"at"`
}

// User represents a registered member of the study hall. A user holds at
// most one seat, scoped to one time slot. The Logs slice is append-only;
// entries are never rewritten or removed while the user exists.
//
// Fields:
//  ID               – primary key identifier.
//  Name             – full name.
//  Email            – contact email.
//  Phone            – contact phone number.
//  SeatNumber       – occupied seat, nil when unseated.
//  Slot             – time-slot label the membership is scoped to.
//  FeeStatus        – payment state (paid, due, expired).
//  RegistrationDate – when the user was registered.
//  IDProofURL       – uploaded identity document, nil when absent.
//  Logs             – ordered audit trail, oldest first.
type User struct {
	ID               uint64    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	SeatNumber       *uint32   `json:"seat_number,omitempty"`
	Slot             string    `json:"slot"`
	FeeStatus        FeeStatus `json:"fee_status"`
	RegistrationDate time.Time `json:"registration_date"`
	IDProofURL       *string   `json:"id_proof_url,omitempty"`
	Logs             []UserLog `json:"logs,omitempty"`
}

// AuditRecord preserves the terminal log entry of a deleted user. The user
// entity itself is destroyed on deletion, so the record lives outside it.
type AuditRecord struct {
	UserID  uint64    `json:"user_id"`
	Action  string    `json:"action"`
	AdminID *uint64   `json:"admin_id,omitempty"`
	At      time.Time `json:"at"`
}
