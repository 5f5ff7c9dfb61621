package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/zhotheone/discordmusicbot/internal/validation"
)

// handleHistory handles the history command
func (h *Handler) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if h.history == nil {
		return respondError(s, i, "📜 Play history is not enabled on this bot")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := h.history.Recent(ctx, i.GuildID, 10)
	if err != nil {
		h.logger.WithGuild(i.GuildID).WithError(err).Error("Failed to load play history")
		return respondError(s, i, "Failed to load play history")
	}

	if len(entries) == 0 {
		embed := NewEmbed().
			Title("📜 Play History").
			Description("Nothing has been played in this server yet").
			Color(ColorInfo).
			Footer("Use /play to start playing music").
			Build()
		return respondEmbed(s, i, embed)
	}

	var sb strings.Builder
	for idx, e := range entries {
		title := e.Title
		if e.Artist != nil && *e.Artist != "" {
			title = *e.Artist + " - " + title
		}
		sb.WriteString(fmt.Sprintf("**%d.** %s `%02d:%02d` • <t:%d:R>\n",
			idx+1, validation.TruncateString(title, 50),
			e.DurationSeconds/60, e.DurationSeconds%60, e.PlayedAt.Unix()))
	}

	embed := NewEmbed().
		Title("📜 Play History").
		Description(sb.String()).
		Color(ColorPrimary).
		Footer(fmt.Sprintf("Last %d tracks", len(entries))).
		Build()

	return respondEmbed(s, i, embed)
}

// handleStats handles the stats command
func (h *Handler) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guildCount := len(s.State.Guilds)
	sessionCount := len(h.registry.ListActive())
	latency := s.HeartbeatLatency().Milliseconds()
	uptime := time.Since(h.startedAt).Round(time.Second)

	// Latency indicator
	latencyStatus := "🟢 Excellent"
	if latency > 200 {
		latencyStatus = "🔴 Poor"
	} else if latency > 100 {
		latencyStatus = "🟡 Moderate"
	}

	hits, misses, _, size := h.resolver.CacheStats()
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses) * 100
	}

	embed := NewEmbed().
		Title("Bot Statistics").
		Color(ColorPrimary).
		Field("Servers", fmt.Sprintf("%d", guildCount), true).
		Field("Active Sessions", fmt.Sprintf("%d", sessionCount), true).
		Field("Latency", fmt.Sprintf("%dms %s", latency, latencyStatus), true).
		Field("Uptime", uptime.String(), true).
		Field("Resolve Cache", fmt.Sprintf("%d entries, %.0f%% hit rate", size, hitRate), true).
		Field("Version", h.config.Version, true).
		Footer(h.config.BotName).
		Build()

	return respondEmbed(s, i, embed)
}

// handleHelp handles the help command
func (h *Handler) handleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	embed := NewEmbed().
		Title(h.config.BotName).
		Color(ColorPrimary).
		Field("Playback",
			"> **`/play <query>` - Play a song or playlist**\n"+
				"> **`/pause` - Pause playback**\n"+
				"> **`/resume` - Resume playback**\n"+
				"> **`/skip` - Skip current song**\n"+
				"> **`/stop` - Stop and clear queue**\n"+
				"> **`/volume <0-150>` - Adjust volume**\n"+
				"> **`/repeat <mode>` - Set repeat mode**",
			false).
		Field("Queue",
			"> **`/queue` - View current queue**\n"+
				"> **`/nowplaying` - Current song info**",
			false).
		Field("Playlists",
			"> **`/playlist create|delete|list|show` - Manage playlists**\n"+
				"> **`/playlist add <name> <query>` - Add songs to a playlist**\n"+
				"> **`/playlist play <name>` - Queue a whole playlist**",
			false).
		Field("Filters",
			"> **`/filter enable <name> [params]` - Enable an audio filter**\n"+
				"> **`/filter disable <name>` - Disable a filter**\n"+
				"> **`/filter clear` - Remove all filters**\n"+
				"> **`/filter list` - Show available filters**\n"+
				"> **`/preset <name>` - Apply a filter preset**",
			false).
		Field("Utility",
			"> **`/settings set|show` - Personal playback defaults**\n"+
				"> **`/history` - Recently played tracks**\n"+
				"> **`/stats` - Bot statistics**\n"+
				"> **`/help` - Show this help**",
			false).
		Footer(fmt.Sprintf("%s v%s • Built with Go", h.config.BotName, h.config.Version)).
		Build()

	return respondEmbed(s, i, embed)
}
