package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vidhyadham/server/internal/model"
	"github.com/vidhyadham/server/internal/queue"
	"github.com/vidhyadham/server/internal/rules"
)

// Delta is the paired set of rows a single mutation must apply together.
// The persister writes the whole delta in one transaction; the store only
// swaps its snapshot after the transaction commits.
type Delta struct {
	PutUser      *model.User        // user row to insert or rewrite
	NewLog       *model.UserLog     // log entry appended for PutUser
	DeleteUserID uint64             // user row (and its logs) to remove
	PutSeats     []model.Seat       // seat rows to rewrite
	PutSettings  *model.Settings    // settings document to rewrite
	Audit        *model.AuditRecord // terminal audit row for a deletion
}

// Persister writes a delta through to durable storage. Implementations must
// be all-or-nothing: a partially applied delta would break the user-seat
// bijection on restart.
type Persister interface {
	Apply(ctx context.Context, d Delta) error
}

// PublishFunc delivers a committed-mutation event to the notification
// pipeline. It runs outside the writer lock and its failures never affect
// the mutation result.
type PublishFunc func(ctx context.Context, ev queue.UserEvent)

// Store is the single-writer state store. All mutations take the writer
// lock, validate against the current snapshot, persist, then swap. Reads
// copy out of the snapshot under the same lock.
type Store struct {
	mu        sync.Mutex // writer lock; every mutation and read holds it
	users     []model.User
	seats     []model.Seat // seats[i] is seat number i+1
	settings  model.Settings
	nextID    uint64
	seatCount uint32
	p         Persister
	publish   PublishFunc
	now       func() time.Time
}

// Option customises a Store at construction time.
type Option func(*Store)

// WithNow overrides the clock used for log timestamps. Tests use this to
// make log ordering deterministic.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithPublisher wires the committed-mutation event sink.
func WithPublisher(fn PublishFunc) Option {
	return func(s *Store) { s.publish = fn }
}

// New creates a Store with seatCount empty seats and default settings. Pass
// a nil persister to run purely in memory (tests do this).
func New(p Persister, seatCount uint32, opts ...Option) *Store {
	s := &Store{
		seats:     make([]model.Seat, seatCount),
		settings:  model.DefaultSettings(),
		nextID:    1,
		seatCount: seatCount,
		p:         p,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for i := range s.seats {
		s.seats[i] = model.Seat{Number: uint32(i + 1), Status: model.SeatAvailable}
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Hydrate replaces the snapshot with state loaded from the persistence
// layer at startup. Seat rows missing from storage stay available. The next
// user id continues after the highest loaded id.
func (s *Store) Hydrate(users []model.User, seats []model.Seat, settings *model.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append([]model.User(nil), users...)
	for _, seat := range seats {
		if seat.Number >= 1 && seat.Number <= s.seatCount {
			s.seats[seat.Number-1] = seat
		}
	}
	if settings != nil {
		s.settings = *settings
	}
	s.nextID = 1
	for i := range users {
		if users[i].ID >= s.nextID {
			s.nextID = users[i].ID + 1
		}
	}
}

// persist is nil-safe so the store can run without durable backing.
func (s *Store) persist(ctx context.Context, d Delta) error {
	if s.p == nil {
		return nil
	}
	return s.p.Apply(ctx, d)
}

// emit hands the event to the publisher outside the request path. The
// mutation has already committed; delivery failures are the pipeline's
// concern (logged and counted there).
func (s *Store) emit(typ string, u model.User) {
	if s.publish == nil {
		return
	}
	ev := queue.UserEvent{
		Type:       typ,
		UserID:     u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		SeatNumber: u.SeatNumber,
		Slot:       u.Slot,
		FeeStatus:  string(u.FeeStatus),
		OccurredAt: s.now().Format(time.RFC3339),
	}
	go s.publish(context.Background(), ev)
}

// indexOf returns the position of the user with the given id, or -1.
func (s *Store) indexOf(id uint64) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

// releasedSeat computes the state of seat number num after the user with
// exceptID lets go of it. If another live user still holds the same seat
// number (in a different slot), the seat rebinds to that occupant;
// otherwise it becomes available.
func (s *Store) releasedSeat(num uint32, exceptID uint64) model.Seat {
	for i := range s.users {
		u := &s.users[i]
		if u.ID != exceptID && u.SeatNumber != nil && *u.SeatNumber == num {
			id := u.ID
			return model.Seat{Number: num, Status: rules.SeatStatusFor(u.FeeStatus), UserID: &id}
		}
	}
	return model.Seat{Number: num, Status: model.SeatAvailable}
}

// RegisterInput is the registration command payload.
type RegisterInput struct {
	Name       string
	Email      string
	Phone      string
	SeatNumber uint32
	Slot       string
	FeeStatus  model.FeeStatus // empty means due
}

// RegisterUser creates a new user bound to a seat/slot pair. A fresh
// registration defaults to fee status due until explicitly marked paid.
func (s *Store) RegisterUser(ctx context.Context, in RegisterInput, adminID *uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" {
		return model.User{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.Phone == "" && strings.TrimSpace(in.Email) == "" {
		return model.User{}, fmt.Errorf("%w: phone or email is required", ErrValidation)
	}
	fee := in.FeeStatus
	if fee == "" {
		fee = model.FeeDue
	}
	if !fee.Valid() {
		return model.User{}, fmt.Errorf("%w: unknown fee status %q", ErrValidation, in.FeeStatus)
	}
	if err := rules.ValidateRegistration(in.SeatNumber, in.Slot, s.users, s.settings, s.seatCount); err != nil {
		return model.User{}, err
	}

	now := s.now()
	seatNum := in.SeatNumber
	id := s.nextID
	u := model.User{
		ID:               id,
		Name:             in.Name,
		Email:            strings.TrimSpace(strings.ToLower(in.Email)),
		Phone:            in.Phone,
		SeatNumber:       &seatNum,
		Slot:             in.Slot,
		FeeStatus:        fee,
		RegistrationDate: now,
		Logs:             []model.UserLog{{Action: "User registered", AdminID: adminID, At: now}},
	}
	seat := model.Seat{Number: seatNum, Status: rules.SeatStatusFor(fee), UserID: &u.ID}

	if err := s.persist(ctx, Delta{PutUser: &u, NewLog: &u.Logs[0], PutSeats: []model.Seat{seat}}); err != nil {
		return model.User{}, err
	}
	s.nextID++
	s.users = append(s.users, u)
	s.seats[seatNum-1] = seat
	s.emit(queue.EventUserRegistered, u)
	return u, nil
}

// MarkPaid sets a user's fee status to paid and updates the paired seat.
// Calling it on an already paid user still appends one log entry per call.
func (s *Store) MarkPaid(ctx context.Context, userID uint64, adminID *uint64) (model.User, error) {
	return s.setFee(ctx, userID, model.FeePaid, "Fee marked as paid", queue.EventFeePaid, adminID)
}

// MarkExpired sets a user's fee status to expired. Expiry is never computed
// by the store itself; an admin or an external scheduler issues this
// command when the member's term lapses.
func (s *Store) MarkExpired(ctx context.Context, userID uint64, adminID *uint64) (model.User, error) {
	return s.setFee(ctx, userID, model.FeeExpired, "Fee marked as expired", queue.EventFeeExpired, adminID)
}

func (s *Store) setFee(ctx context.Context, userID uint64, fee model.FeeStatus, action, event string, adminID *uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(userID)
	if idx < 0 {
		return model.User{}, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	u := s.users[idx]
	u.Logs = append(append([]model.UserLog(nil), u.Logs...), model.UserLog{Action: action, AdminID: adminID, At: s.now()})
	u.FeeStatus = fee

	d := Delta{PutUser: &u, NewLog: &u.Logs[len(u.Logs)-1]}
	var seat model.Seat
	if u.SeatNumber != nil {
		seat = s.seats[*u.SeatNumber-1]
		// only restamp the seat when this user is its recorded occupant
		if seat.UserID != nil && *seat.UserID == u.ID {
			seat.Status = rules.SeatStatusFor(fee)
			d.PutSeats = []model.Seat{seat}
		}
	}
	if err := s.persist(ctx, d); err != nil {
		return model.User{}, err
	}
	s.users[idx] = u
	if len(d.PutSeats) == 1 {
		s.seats[seat.Number-1] = seat
	}
	s.emit(event, u)
	return u, nil
}

// UpdateInput is the profile patch payload; nil fields are left untouched.
type UpdateInput struct {
	Name  *string
	Email *string
	Phone *string
}

// UpdateUser edits contact fields. It appends a "Profile updated" log entry
// even when the patch is empty, matching one-entry-per-mutation semantics.
func (s *Store) UpdateUser(ctx context.Context, userID uint64, in UpdateInput, adminID *uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(userID)
	if idx < 0 {
		return model.User{}, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	u := s.users[idx]
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return model.User{}, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = strings.TrimSpace(strings.ToLower(*in.Email))
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	u.Logs = append(append([]model.UserLog(nil), u.Logs...), model.UserLog{Action: "Profile updated", AdminID: adminID, At: s.now()})

	if err := s.persist(ctx, Delta{PutUser: &u, NewLog: &u.Logs[len(u.Logs)-1]}); err != nil {
		return model.User{}, err
	}
	s.users[idx] = u
	s.emit(queue.EventUserUpdated, u)
	return u, nil
}

// AttachIDProof records the URL of an uploaded identity document.
func (s *Store) AttachIDProof(ctx context.Context, userID uint64, url string, adminID *uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(userID)
	if idx < 0 {
		return model.User{}, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	u := s.users[idx]
	u.IDProofURL = &url
	u.Logs = append(append([]model.UserLog(nil), u.Logs...), model.UserLog{Action: "ID proof uploaded", AdminID: adminID, At: s.now()})

	if err := s.persist(ctx, Delta{PutUser: &u, NewLog: &u.Logs[len(u.Logs)-1]}); err != nil {
		return model.User{}, err
	}
	s.users[idx] = u
	return u, nil
}

// ChangeSlotOrSeat moves a user to a new slot/seat pair. The new pair is
// re-validated against the snapshot before anything is applied; the old
// seat is released (or rebound to a remaining occupant from another slot)
// in the same delta that binds the new one.
func (s *Store) ChangeSlotOrSeat(ctx context.Context, userID uint64, newSlot string, newSeat uint32, adminID *uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(userID)
	if idx < 0 {
		return model.User{}, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if err := rules.ValidateReassignment(userID, newSeat, newSlot, s.users, s.settings, s.seatCount); err != nil {
		return model.User{}, err
	}

	u := s.users[idx]
	oldSeat := u.SeatNumber
	seatNum := newSeat
	u.SeatNumber = &seatNum
	u.Slot = newSlot
	u.Logs = append(append([]model.UserLog(nil), u.Logs...), model.UserLog{Action: "Slot/seat changed", AdminID: adminID, At: s.now()})

	newBinding := model.Seat{Number: newSeat, Status: rules.SeatStatusFor(u.FeeStatus), UserID: &u.ID}
	seats := []model.Seat{newBinding}
	var released *model.Seat
	if oldSeat != nil && *oldSeat != newSeat {
		r := s.releasedSeat(*oldSeat, userID)
		released = &r
		seats = append(seats, r)
	}

	if err := s.persist(ctx, Delta{PutUser: &u, NewLog: &u.Logs[len(u.Logs)-1], PutSeats: seats}); err != nil {
		return model.User{}, err
	}
	s.users[idx] = u
	s.seats[newSeat-1] = newBinding
	if released != nil {
		s.seats[released.Number-1] = *released
	}
	s.emit(queue.EventUserUpdated, u)
	return u, nil
}

// DeleteUser removes a user and releases their seat. The terminal log entry
// survives as an audit record because the user entity itself is destroyed.
func (s *Store) DeleteUser(ctx context.Context, userID uint64, adminID *uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(userID)
	if idx < 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	u := s.users[idx]
	audit := model.AuditRecord{UserID: userID, Action: "User deleted", AdminID: adminID, At: s.now()}
	d := Delta{DeleteUserID: userID, Audit: &audit}
	var released *model.Seat
	if u.SeatNumber != nil {
		r := s.releasedSeat(*u.SeatNumber, userID)
		released = &r
		d.PutSeats = []model.Seat{r}
	}

	if err := s.persist(ctx, d); err != nil {
		return err
	}
	s.users = append(s.users[:idx], s.users[idx+1:]...)
	if released != nil {
		s.seats[released.Number-1] = *released
	}
	s.emit(queue.EventUserDeleted, u)
	return nil
}

// SettingsPatch is a section-wise merge into the settings document. Map
// entries merge by key; Email and TelegramBots replace wholesale when set.
type SettingsPatch struct {
	SlotPricing  map[string]uint32
	SlotTimings  map[string]string
	Email        *model.EmailSettings
	TelegramBots *[]model.TelegramBot
}

// UpdateSettings merges the patch into the settings document. No
// cross-entity invariant applies; existing users keep their slot label even
// if its timing is edited.
func (s *Store) UpdateSettings(ctx context.Context, patch SettingsPatch) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copySettings()
	for k, v := range patch.SlotPricing {
		next.SlotPricing[k] = v
	}
	for k, v := range patch.SlotTimings {
		next.SlotTimings[k] = v
	}
	if patch.Email != nil {
		next.Email = *patch.Email
	}
	if patch.TelegramBots != nil {
		next.TelegramBots = append([]model.TelegramBot(nil), (*patch.TelegramBots)...)
	}

	if err := s.persist(ctx, Delta{PutSettings: &next}); err != nil {
		return model.Settings{}, err
	}
	s.settings = next
	return s.copySettings(), nil
}

func (s *Store) copySettings() model.Settings {
	out := s.settings
	out.SlotPricing = make(map[string]uint32, len(s.settings.SlotPricing))
	for k, v := range s.settings.SlotPricing {
		out.SlotPricing[k] = v
	}
	out.SlotTimings = make(map[string]string, len(s.settings.SlotTimings))
	for k, v := range s.settings.SlotTimings {
		out.SlotTimings[k] = v
	}
	out.TelegramBots = append([]model.TelegramBot(nil), s.settings.TelegramBots...)
	return out
}

// Users returns a copy of the current user list in registration order.
func (s *Store) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.User(nil), s.users...)
}

// User returns a single user by id.
func (s *Store) User(id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return model.User{}, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return s.users[idx], nil
}

// UserLogs returns the ordered audit trail for a user, oldest first.
func (s *Store) UserLogs(id uint64) ([]model.UserLog, error) {
	u, err := s.User(id)
	if err != nil {
		return nil, err
	}
	return append([]model.UserLog(nil), u.Logs...), nil
}

// Seats returns a copy of all seat rows ordered by number.
func (s *Store) Seats() []model.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Seat(nil), s.seats...)
}

// Settings returns a copy of the settings document.
func (s *Store) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copySettings()
}

// SeatCount returns the fixed number of seats configured at boot.
func (s *Store) SeatCount() uint32 { return s.seatCount }
