package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/zhotheone/discordmusicbot/internal/domain/valueobjects"
	apperrors "github.com/zhotheone/discordmusicbot/internal/errors"
	"github.com/zhotheone/discordmusicbot/internal/session"
)

// handlePlay handles the play command
func (h *Handler) handlePlay(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := deferResponse(s, i); err != nil {
		return err
	}

	options := i.ApplicationCommandData().Options
	query := options[0].StringValue()

	channelID, err := h.getUserVoiceChannel(s, i.GuildID, i.Member.User.ID)
	if err != nil {
		return followUpError(s, i, "🔊 You must be in a voice channel to play music")
	}

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	tracks, err := h.resolver.Resolve(ctx, query, i.Member.User.ID, i.GuildID)
	if err != nil {
		return followUpError(s, i, apperrors.GetUserMessage(err))
	}

	sess, err := h.registry.GetOrCreate(ctx, i.GuildID)
	if err != nil {
		return followUpError(s, i, apperrors.GetUserMessage(err))
	}

	h.applyUserDefaults(ctx, sess, i.Member.User.ID)

	added := 0
	firstPos := 0
	for _, track := range tracks {
		pos, err := sess.Enqueue(ctx, track, channelID)
		if err != nil {
			if added == 0 {
				return followUpError(s, i, apperrors.GetUserMessage(err))
			}
			h.logger.WithGuild(i.GuildID).WithError(err).Warn("Enqueue stopped mid-batch")
			break
		}
		if added == 0 {
			firstPos = pos
		}
		added++
	}

	if added == 1 {
		track := tracks[0]
		embed := NewEmbed().
			Title("🎵 Added to Queue").
			Description(fmt.Sprintf("**%s**", track.DisplayName())).
			Color(ColorSuccess).
			Thumbnail(track.Thumbnail).
			Field("Duration", track.DurationFormatted(), true).
			Field("Position", fmt.Sprintf("#%d", firstPos), true).
			Footer("Use /queue to view the queue").
			Build()
		return followUpEmbed(s, i, embed)
	}

	embed := NewEmbed().
		Title("📻 Playlist Added").
		Description(fmt.Sprintf("Added **%d** tracks to the queue", added)).
		Color(ColorSuccess).
		Footer("Use /queue to view the queue").
		Build()
	return followUpEmbed(s, i, embed)
}

// applyUserDefaults applies the requester's stored preferences when the
// session has nothing playing and nothing queued yet. Best effort: ongoing
// playback is never disturbed by another user's defaults.
func (h *Handler) applyUserDefaults(ctx context.Context, sess *session.Session, userID string) {
	prefs, ok := h.users.Preferences(ctx, userID)
	if !ok {
		return
	}

	st, err := sess.Status()
	if err != nil || st.Current != nil || len(st.Queue) > 0 {
		return
	}

	if err := sess.SetVolume(prefs.Volume); err != nil {
		h.logger.WithField("user", userID).WithError(err).Debug("Skipping stored volume preference")
	}
	if mode, valid := valueobjects.ParseRepeatMode(prefs.RepeatMode); valid {
		if err := sess.SetRepeatMode(mode); err != nil {
			h.logger.WithField("user", userID).WithError(err).Debug("Skipping stored repeat preference")
		}
	}
}

// handlePause handles the pause command
func (h *Handler) handlePause(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sess := h.guildSession(i.GuildID)
	if sess == nil {
		return respondError(s, i, apperrors.GetUserMessage(apperrors.ErrNothingPlaying))
	}

	if err := sess.Pause(); err != nil {
		return respondError(s, i, apperrors.GetUserMessage(err))
	}

	embed := NewEmbed().
		Title("⏸️ Playback Paused").
		Description("Use `/resume` to continue playing").
		Color(ColorWarning).
		Build()
	return respondEmbed(s, i, embed)
}

// handleResume handles the resume command
func (h *Handler) handleResume(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sess := h.guildSession(i.GuildID)
	if sess == nil {
		return respondError(s, i, apperrors.GetUserMessage(apperrors.ErrNothingPlaying))
	}

	if err := sess.Resume(); err != nil {
		return respondError(s, i, apperrors.GetUserMessage(err))
	}

	embed := NewEmbed().
		Title("▶️ Playback Resumed").
		Description("Music is now playing").
		Color(ColorSuccess).
		Build()
	return respondEmbed(s, i, embed)
}

// handleSkip handles the skip command
func (h *Handler) handleSkip(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sess := h.guildSession(i.GuildID)
	if sess == nil {
		return respondError(s, i, apperrors.GetUserMessage(apperrors.ErrNothingPlaying))
	}

	if err := sess.Skip(); err != nil {
		return respondError(s, i, apperrors.GetUserMessage(err))
	}

	builder := NewEmbed().
		Title("⏭️ Skipped").
		Color(ColorInfo)

	if st, err := sess.Status(); err == nil && st.Current != nil {
		builder.Description(fmt.Sprintf("Now playing: **%s**", st.Current.DisplayName()))
		builder.Thumbnail(st.Current.Thumbnail)
	} else {
		builder.Description("No more tracks in queue")
	}

	return respondEmbed(s, i, builder.Build())
}

// handleStop handles the stop command
func (h *Handler) handleStop(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sess := h.guildSession(i.GuildID)
	if sess == nil {
		return respondError(s, i, apperrors.GetUserMessage(apperrors.ErrNothingPlaying))
	}

	if err := sess.Stop(); err != nil {
		return respondError(s, i, apperrors.GetUserMessage(err))
	}

	embed := NewEmbed().
		Title("⏹️ Playback Stopped").
		Description("Playback has been stopped and the queue has been cleared").
		Color(ColorError).
		Build()
	return respondEmbed(s, i, embed)
}

// handleVolume handles the volume command
func (h *Handler) handleVolume(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	options := i.ApplicationCommandData().Options
	level := int(options[0].IntValue())

	sess := h.guildSession(i.GuildID)
	if sess == nil {
		return respondError(s, i, apperrors.GetUserMessage(apperrors.ErrNothingPlaying))
	}

	if err := sess.SetVolume(level); err != nil {
		return respondError(s, i, apperrors.GetUserMessage(err))
	}

	// Remember the preference for future sessions
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.settings.SetVolume(ctx, i.GuildID, level); err != nil {
		h.logger.WithGuild(i.GuildID).WithError(err).Warn("Failed to persist volume")
	}

	embed := NewEmbed().
		Title("🔊 Volume Adjusted").
		Description(fmt.Sprintf("%s **%d%%**", volumeBar(level), level)).
		Color(ColorInfo).
		Build()
	return respondEmbed(s, i, embed)
}

// volumeBar renders a ten segment bar for a 0-150 volume level
func volumeBar(level int) string {
	filled := level * 10 / 150
	var sb strings.Builder
	for j := 0; j < 10; j++ {
		if j < filled {
			sb.WriteString("█")
		} else {
			sb.WriteString("░")
		}
	}
	return sb.String()
}

// handleRepeat handles the repeat command
func (h *Handler) handleRepeat(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	options := i.ApplicationCommandData().Options
	mode, ok := valueobjects.ParseRepeatMode(options[0].StringValue())
	if !ok {
		return respondError(s, i, "Unknown repeat mode")
	}

	sess := h.guildSession(i.GuildID)
	if sess == nil {
		return respondError(s, i, apperrors.GetUserMessage(apperrors.ErrNothingPlaying))
	}

	if err := sess.SetRepeatMode(mode); err != nil {
		return respondError(s, i, apperrors.GetUserMessage(err))
	}

	embed := NewEmbed().
		Title("🔁 Repeat Mode").
		Description(fmt.Sprintf("Repeat is now **%s**", mode)).
		Color(ColorInfo).
		Build()
	return respondEmbed(s, i, embed)
}
