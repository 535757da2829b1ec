package model

// EmailSettings configures the SMTP collaborator used for outgoing mail.
type EmailSettings struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	From     string `json:"from"`
}

// TelegramBot configures one notification bot. Events lists the event types
// the bot subscribes to (e.g. "user.registered", "fee.paid"); an empty list
// means the bot receives nothing.
type TelegramBot struct {
	Name   string   `json:"name"`
	Token  string   `json:"token,omitempty"`
	ChatID int64    `json:"chat_id"`
	Events []string `json:"events"`
}

// Subscribed reports whether the bot wants the given event type.
func (b TelegramBot) Subscribed(event string) bool {
	for _, e := range b.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Settings is the whole-document configuration mutated over the API. The
// slot maps double as the registry of valid slot labels: a slot exists iff
// it has a timing entry.
//
// Fields:
//  SlotPricing  – monthly fee in cents per slot label.
//  SlotTimings  – "HH:MM-HH:MM" window per slot label.
//  Email        – SMTP provider configuration.
//  TelegramBots – notification bots with per-bot event subscriptions.
type Settings struct {
	SlotPricing  map[string]uint32 `json:"slot_pricing"`
	SlotTimings  map[string]string `json:"slot_timings"`
	Email        EmailSettings     `json:"email"`
	TelegramBots []TelegramBot     `json:"telegram_bots"`
}

// HasSlot reports whether label is a configured slot.
func (s Settings) HasSlot(label string) bool {
	_, ok := s.SlotTimings[label]
	return ok
}

// Slots returns the configured slot labels in unspecified order.
func (s Settings) Slots() []string {
	out := make([]string, 0, len(s.SlotTimings))
	for label := range s.SlotTimings {
		out = append(out, label)
	}
	return out
}

// DefaultSettings seeds a fresh installation with the standard three slots.
func DefaultSettings() Settings {
	return Settings{
		SlotPricing: map[string]uint32{
			"Morning":   60000,
			"Afternoon": 50000,
			"Evening":   60000,
		},
		SlotTimings: map[string]string{
			"Morning":   "06:00-12:00",
			"Afternoon": "12:00-17:00",
			"Evening":   "17:00-22:00",
		},
	}
}
