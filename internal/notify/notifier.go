// Package notify delivers user events to external channels (SMTP email,
// Telegram). Delivery is strictly post-commit: a failed send is logged and
// counted but never affects the mutation that triggered it.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vidhyadham/server/internal/metrics"
	"github.com/vidhyadham/server/internal/model"
	"github.com/vidhyadham/server/internal/queue"
)

// ErrUpstream wraps any provider failure (SMTP or Telegram unreachable,
// rejected credentials). Handlers surface it as a non-fatal 502.
var ErrUpstream = errors.New("upstream failure")

// SettingsSource yields the current notification configuration. The store
// satisfies this; the indirection keeps notify free of a store dependency.
type SettingsSource interface {
	Settings() model.Settings
}

// Dispatcher fans one user event out to every configured channel.
type Dispatcher struct {
	settings SettingsSource
	email    *EmailSender
	telegram *TelegramSender
	log      *slog.Logger
}

func NewDispatcher(settings SettingsSource, email *EmailSender, telegram *TelegramSender, log *slog.Logger) *Dispatcher {
	return &Dispatcher{settings: settings, email: email, telegram: telegram, log: log}
}

// Dispatch sends the event over email (to the member) and to every
// subscribed Telegram bot. Each channel fails independently.
func (d *Dispatcher) Dispatch(ctx context.Context, ev queue.UserEvent) {
	cfg := d.settings.Settings()

	if d.email != nil && ev.Email != "" && cfg.Email.Host != "" {
		subject, body := composeMessage(ev)
		if err := d.email.Send(ctx, cfg.Email, ev.Email, subject, body); err != nil {
			d.log.Warn("email notification failed", "event", ev.Type, "user_id", ev.UserID, "err", err)
			metrics.NotificationsTotal.WithLabelValues("email", "error").Inc()
		} else {
			metrics.NotificationsTotal.WithLabelValues("email", "ok").Inc()
		}
	}

	if d.telegram != nil {
		_, body := composeMessage(ev)
		for _, bot := range cfg.TelegramBots {
			if !bot.Subscribed(ev.Type) {
				continue
			}
			if err := d.telegram.Send(ctx, bot, body); err != nil {
				d.log.Warn("telegram notification failed", "event", ev.Type, "bot", bot.Name, "err", err)
				metrics.NotificationsTotal.WithLabelValues("telegram", "error").Inc()
			} else {
				metrics.NotificationsTotal.WithLabelValues("telegram", "ok").Inc()
			}
		}
	}
}

// composeMessage renders the subject and body for an event.
func composeMessage(ev queue.UserEvent) (subject, body string) {
	seat := "-"
	if ev.SeatNumber != nil {
		seat = fmt.Sprintf("%d", *ev.SeatNumber)
	}
	switch ev.Type {
	case queue.EventUserRegistered:
		subject = "Welcome to VidhyaDham"
		body = fmt.Sprintf("%s registered for the %s slot, seat %s. Fee status: %s.", ev.Name, ev.Slot, seat, ev.FeeStatus)
	case queue.EventFeePaid:
		subject = "Fee payment recorded"
		body = fmt.Sprintf("Fee for %s (seat %s, %s slot) marked as paid.", ev.Name, seat, ev.Slot)
	case queue.EventFeeExpired:
		subject = "Membership expired"
		body = fmt.Sprintf("Membership of %s (seat %s, %s slot) has expired.", ev.Name, seat, ev.Slot)
	case queue.EventUserDeleted:
		subject = "Membership closed"
		body = fmt.Sprintf("%s has been removed; seat %s is released.", ev.Name, seat)
	default:
		subject = "VidhyaDham update"
		body = fmt.Sprintf("Record of %s (seat %s, %s slot) was updated.", ev.Name, seat, ev.Slot)
	}
	return subject, body
}
