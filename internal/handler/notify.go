package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vidhyadham/server/internal/notify"
	"github.com/vidhyadham/server/internal/store"
)

// NotifyHandler exposes test-delivery endpoints so admins can verify the
// email and Telegram configuration without mutating any user.
type NotifyHandler struct {
	Store    *store.Store
	Email    *notify.EmailSender
	Telegram *notify.TelegramSender
}

func NewNotifyHandler(s *store.Store, e *notify.EmailSender, t *notify.TelegramSender) *NotifyHandler {
	return &NotifyHandler{Store: s, Email: e, Telegram: t}
}

// TestEmail handles POST /v1/notify/email/test with body {"to": "..."}.
// A provider failure comes back as 502, never 500; the configuration is
// at fault, not the service.
func (h *NotifyHandler) TestEmail(c echo.Context) error {
	var req struct {
		To string `json:"to"`
	}
	if err := c.Bind(&req); err != nil || req.To == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "recipient address is required"})
	}

	cfg := h.Store.Settings().Email
	if cfg.Host == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email settings are not configured"})
	}
	err := h.Email.Send(c.Request().Context(), cfg, req.To,
		"VidhyaDham test message", "This is a test notification from VidhyaDham.")
	if err != nil {
		if errors.Is(err, notify.ErrUpstream) {
			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "sent"})
}

// TestTelegram handles POST /v1/notify/telegram/test with an optional
// {"bot_name": "..."} body. With no name every configured bot is pinged.
func (h *NotifyHandler) TestTelegram(c echo.Context) error {
	var req struct {
		BotName string `json:"bot_name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	bots := h.Store.Settings().TelegramBots
	if req.BotName != "" {
		filtered := bots[:0:0]
		for _, b := range bots {
			if b.Name == req.BotName {
				filtered = append(filtered, b)
			}
		}
		bots = filtered
	}
	if len(bots) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no matching telegram bot configured"})
	}

	sent := 0
	var last error
	for _, bot := range bots {
		if err := h.Telegram.Send(c.Request().Context(), bot, "VidhyaDham test notification."); err != nil {
			last = err
			continue
		}
		sent++
	}
	if sent == 0 {
		if errors.Is(last, notify.ErrUpstream) {
			return c.JSON(http.StatusBadGateway, map[string]string{"error": last.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "sent", "bots": sent})
}
