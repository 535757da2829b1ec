// Package queue defines the notification payloads exchanged over the
// message broker and the publisher/consumer pair that moves them.
package queue

// Event types published on the user.events queue. Settings bot
// subscriptions refer to these strings.
const (
	EventUserRegistered = "user.registered"
	EventFeePaid        = "fee.paid"
	EventFeeExpired     = "fee.expired"
	EventUserUpdated    = "user.updated"
	EventUserDeleted    = "user.deleted"
)

// UserEvent is published after a user mutation commits. It carries enough
// information for downstream notifiers to compose a message without
// querying the primary database.
type UserEvent struct {
	Type       string  `json:"type"`
	UserID     uint64  `json:"user_id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	SeatNumber *uint32 `json:"seat_number,omitempty"`
	Slot       string  `json:"slot"`
	FeeStatus  string  `json:"fee_status"`
	OccurredAt string  `json:"occurred_at"`
}
