package voice

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	apperrors "github.com/zhotheone/discordmusicbot/internal/errors"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

const disconnectTimeout = 5 * time.Second

// DiscordTransport acquires voice connections through a discordgo session
type DiscordTransport struct {
	session *discordgo.Session
	logger  *logger.Logger
}

// NewDiscordTransport creates a transport bound to a Discord session
func NewDiscordTransport(session *discordgo.Session, log *logger.Logger) *DiscordTransport {
	return &DiscordTransport{
		session: session,
		logger:  log,
	}
}

// Connect joins a voice channel (unmuted, deafened). ChannelVoiceJoin
// blocks until the connection is ready or ctx expires
func (t *DiscordTransport) Connect(ctx context.Context, guildID, channelID string) (Connection, error) {
	t.logger.WithFields(map[string]interface{}{
		"guild":   guildID,
		"channel": channelID,
	}).Info("Connecting to voice channel...")

	vc, err := t.session.ChannelVoiceJoin(ctx, guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConnectionFailed, err)
	}

	t.logger.WithGuild(guildID).Info("✅ Voice connection ready")

	return &discordConnection{
		vc:        vc,
		channelID: channelID,
		logger:    t.logger,
	}, nil
}

type discordConnection struct {
	vc        *discordgo.VoiceConnection
	channelID string
	logger    *logger.Logger
}

func (c *discordConnection) OpusSend() chan<- []byte {
	return c.vc.OpusSend
}

func (c *discordConnection) Speaking(on bool) error {
	return c.vc.Speaking(on)
}

func (c *discordConnection) ChannelID() string {
	return c.channelID
}

func (c *discordConnection) Disconnect() error {
	if err := c.vc.Speaking(false); err != nil {
		c.logger.WithError(err).Debug("Failed to clear speaking state before disconnect")
	}
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return c.vc.Disconnect(ctx)
}
