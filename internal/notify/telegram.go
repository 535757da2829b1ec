package notify

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vidhyadham/server/internal/model"
)

// TelegramSender delivers messages through the Bot API. Bot clients are
// cached per token; settings edits that swap tokens simply miss the cache
// and build a fresh client.
type TelegramSender struct {
	mu   sync.Mutex
	bots map[string]*tgbotapi.BotAPI
}

func NewTelegramSender() *TelegramSender {
	return &TelegramSender{bots: make(map[string]*tgbotapi.BotAPI)}
}

func (s *TelegramSender) client(token string) (*tgbotapi.BotAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if api, ok := s.bots[token]; ok {
		return api, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	s.bots[token] = api
	return api, nil
}

// Send posts text to the bot's configured chat. Failures are wrapped as
// ErrUpstream so callers can treat them as non-fatal.
func (s *TelegramSender) Send(ctx context.Context, bot model.TelegramBot, text string) error {
	if bot.Token == "" || bot.ChatID == 0 {
		return fmt.Errorf("%w: telegram bot %q not configured", ErrUpstream, bot.Name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	api, err := s.client(bot.Token)
	if err != nil {
		return fmt.Errorf("%w: telegram auth: %v", ErrUpstream, err)
	}
	if _, err := api.Send(tgbotapi.NewMessage(bot.ChatID, text)); err != nil {
		return fmt.Errorf("%w: telegram send: %v", ErrUpstream, err)
	}
	return nil
}
