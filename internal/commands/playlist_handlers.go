package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	apperrors "github.com/zhotheone/discordmusicbot/internal/errors"
	"github.com/zhotheone/discordmusicbot/internal/validation"
)

// shownPlaylistTracks caps how many rows /playlist show renders
const shownPlaylistTracks = 15

// handlePlaylist routes the playlist subcommands
func (h *Handler) handlePlaylist(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if h.playlists == nil {
		return respondError(s, i, "📋 Playlists are not enabled on this bot")
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondError(s, i, "Missing subcommand")
	}

	sub := options[0]
	switch sub.Name {
	case "create":
		return h.handlePlaylistCreate(s, i, sub)
	case "delete":
		return h.handlePlaylistDelete(s, i, sub)
	case "list":
		return h.handlePlaylistList(s, i)
	case "show":
		return h.handlePlaylistShow(s, i, sub)
	case "add":
		return h.handlePlaylistAdd(s, i, sub)
	case "play":
		return h.handlePlaylistPlay(s, i, sub)
	}
	return respondError(s, i, "Unknown subcommand")
}

func (h *Handler) handlePlaylistCreate(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	name := sub.Options[0].StringValue()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.playlists.Create(ctx, i.GuildID, name, i.Member.User.ID); err != nil {
		return respondError(s, i, apperrors.GetUserMessage(err))
	}

	embed := NewEmbed().
		Title("📋 Playlist Created").
		Description(fmt.Sprintf("Created playlist **%s**", name)).
		Color(ColorSuccess).
		Field("Next Steps", fmt.Sprintf("> • `/playlist add %s <query>` to add songs\n> • `/playlist play %s` to play it", name, name), false).
		Build()
	return respondEmbed(s, i, embed)
}

func (h *Handler) handlePlaylistDelete(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	name := sub.Options[0].StringValue()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.playlists.Delete(ctx, i.GuildID, name); err != nil {
		return respondError(s, i, apperrors.GetUserMessage(err))
	}

	embed := NewEmbed().
		Title("📋 Playlist Deleted").
		Description(fmt.Sprintf("Playlist **%s** has been permanently deleted", name)).
		Color(ColorWarning).
		Build()
	return respondEmbed(s, i, embed)
}

func (h *Handler) handlePlaylistList(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	summaries, err := h.playlists.List(ctx, i.GuildID)
	if err != nil {
		h.logger.WithGuild(i.GuildID).WithError(err).Error("Failed to list playlists")
		return respondError(s, i, "Failed to retrieve playlists")
	}

	if len(summaries) == 0 {
		embed := NewEmbed().
			Title("📋 Playlists").
			Description("No playlists yet.\nUse `/playlist create <name>` to create one!").
			Color(ColorInfo).
			Build()
		return respondEmbed(s, i, embed)
	}

	var sb strings.Builder
	for _, summary := range summaries {
		sb.WriteString(fmt.Sprintf("⚬ **%s** • %d tracks\n", summary.Name, summary.TrackCount))
	}

	embed := NewEmbed().
		Title("📋 Playlists").
		Description(sb.String()).
		Color(ColorPrimary).
		Footer(fmt.Sprintf("%d playlists • Use /playlist play <name> to start one", len(summaries))).
		Build()
	return respondEmbed(s, i, embed)
}

func (h *Handler) handlePlaylistShow(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	name := sub.Options[0].StringValue()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tracks, err := h.playlists.Tracks(ctx, i.GuildID, name)
	if err != nil {
		return respondError(s, i, apperrors.GetUserMessage(err))
	}

	if len(tracks) == 0 {
		embed := NewEmbed().
			Title(fmt.Sprintf("📋 %s", name)).
			Description(fmt.Sprintf("This playlist is empty.\nUse `/playlist add %s <query>` to add songs.", name)).
			Color(ColorInfo).
			Build()
		return respondEmbed(s, i, embed)
	}

	var sb strings.Builder
	for idx, row := range tracks {
		if idx == shownPlaylistTracks {
			sb.WriteString(fmt.Sprintf("… and %d more\n", len(tracks)-shownPlaylistTracks))
			break
		}
		title := row.Title
		if row.Artist != nil && *row.Artist != "" {
			title = *row.Artist + " - " + title
		}
		sb.WriteString(fmt.Sprintf("**%d.** %s `%02d:%02d`\n",
			idx+1, validation.TruncateString(title, 50),
			row.DurationSeconds/60, row.DurationSeconds%60))
	}

	embed := NewEmbed().
		Title(fmt.Sprintf("📋 %s", name)).
		Description(sb.String()).
		Color(ColorPrimary).
		Footer(fmt.Sprintf("%d tracks", len(tracks))).
		Build()
	return respondEmbed(s, i, embed)
}

func (h *Handler) handlePlaylistAdd(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	if err := deferResponse(s, i); err != nil {
		return err
	}

	name := sub.Options[0].StringValue()
	query := sub.Options[1].StringValue()

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	tracks, err := h.resolver.Resolve(ctx, query, i.Member.User.ID, i.GuildID)
	if err != nil {
		return followUpError(s, i, apperrors.GetUserMessage(err))
	}

	added, err := h.playlists.AddTracks(ctx, i.GuildID, name, i.Member.User.ID, tracks)
	if err != nil {
		return followUpError(s, i, apperrors.GetUserMessage(err))
	}
	if added == 0 {
		return followUpError(s, i, "Failed to add any songs to the playlist")
	}

	if added == 1 {
		embed := NewEmbed().
			Title("✅ Song Added").
			Description(fmt.Sprintf("Added **%s** to playlist **%s**", tracks[0].DisplayName(), name)).
			Color(ColorSuccess).
			Build()
		return followUpEmbed(s, i, embed)
	}

	embed := NewEmbed().
		Title("✅ Songs Added").
		Description(fmt.Sprintf("Added **%d** songs to playlist **%s**", added, name)).
		Color(ColorSuccess).
		Build()
	return followUpEmbed(s, i, embed)
}

func (h *Handler) handlePlaylistPlay(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	if err := deferResponse(s, i); err != nil {
		return err
	}

	name := sub.Options[0].StringValue()

	channelID, err := h.getUserVoiceChannel(s, i.GuildID, i.Member.User.ID)
	if err != nil {
		return followUpError(s, i, "🔊 You must be in a voice channel to play music")
	}

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	tracks, err := h.playlists.PlayableTracks(ctx, i.GuildID, name, i.Member.User.ID)
	if err != nil {
		return followUpError(s, i, apperrors.GetUserMessage(err))
	}
	if len(tracks) == 0 {
		return followUpError(s, i, fmt.Sprintf("Playlist **%s** is empty. Use `/playlist add %s <query>` first", name, name))
	}

	sess, err := h.registry.GetOrCreate(ctx, i.GuildID)
	if err != nil {
		return followUpError(s, i, apperrors.GetUserMessage(err))
	}

	h.applyUserDefaults(ctx, sess, i.Member.User.ID)

	added := 0
	for _, track := range tracks {
		if _, err := sess.Enqueue(ctx, track, channelID); err != nil {
			if added == 0 {
				return followUpError(s, i, apperrors.GetUserMessage(err))
			}
			h.logger.WithGuild(i.GuildID).WithError(err).Warn("Enqueue stopped mid-playlist")
			break
		}
		added++
	}

	embed := NewEmbed().
		Title("📋 Playlist Loaded").
		Description(fmt.Sprintf("Queued **%d** tracks from **%s**", added, name)).
		Color(ColorSuccess).
		Footer("Use /queue to view the queue").
		Build()
	return followUpEmbed(s, i, embed)
}
