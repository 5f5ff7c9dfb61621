package telegram

import (
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/zhotheone/discordmusicbot/internal/events"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

// sender is the slice of tgbotapi.BotAPI the bridge uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bridge mirrors playback notifications into a linked Telegram chat. It is a
// plain event bus subscriber; nothing in the playback core knows it exists.
type Bridge struct {
	api    sender
	chatID int64
	logger *logger.Logger
	subID  string
}

// NewBridge authenticates against the Telegram Bot API
func NewBridge(token string, chatID int64, log *logger.Logger) (*Bridge, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	log.WithField("account", api.Self.UserName).Info("Telegram bridge initialized")
	return &Bridge{api: api, chatID: chatID, logger: log}, nil
}

// Attach subscribes the bridge to playback events. Call Detach on shutdown.
func (b *Bridge) Attach(bus *events.Bus) {
	b.subID = bus.Subscribe(
		events.ForKinds(events.KindNowPlaying, events.KindQueueFinished, events.KindTrackFailed),
		b.forward,
	)
}

// Detach removes the bus subscription
func (b *Bridge) Detach(bus *events.Bus) {
	if b.subID != "" {
		bus.Unsubscribe(b.subID)
	}
}

func (b *Bridge) forward(ev events.Event) {
	text := formatEvent(ev)
	if text == "" {
		return
	}

	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := b.api.Send(msg); err != nil {
		b.logger.WithError(err).Warn("Failed to forward event to Telegram")
	}
}

// formatEvent renders a playback event as a Telegram HTML message
func formatEvent(ev events.Event) string {
	switch ev.Kind {
	case events.KindNowPlaying:
		if ev.Track == nil {
			return ""
		}
		return fmt.Sprintf("🎵 Now playing: <b>%s</b> (%s)",
			html.EscapeString(ev.Track.DisplayName()), ev.Track.DurationFormatted())
	case events.KindQueueFinished:
		return "🏁 Queue finished"
	case events.KindTrackFailed:
		if ev.Track == nil {
			return ""
		}
		return fmt.Sprintf("⚠️ Could not play <b>%s</b>, skipping",
			html.EscapeString(ev.Track.DisplayName()))
	}
	return ""
}
