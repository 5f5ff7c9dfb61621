package commands

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/zhotheone/discordmusicbot/internal/config"
	"github.com/zhotheone/discordmusicbot/internal/resolver"
	"github.com/zhotheone/discordmusicbot/internal/session"
	"github.com/zhotheone/discordmusicbot/internal/storage"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

// resolveTimeout bounds yt-dlp and Spotify work per /play invocation
const resolveTimeout = 60 * time.Second

// Handler routes slash commands onto the per-guild playback sessions
type Handler struct {
	discord   *discordgo.Session
	registry  *session.Registry
	resolver  *resolver.Service
	settings  *storage.SettingsStore
	users     *storage.UserStore
	history   *storage.HistoryRecorder // nil without a database
	playlists *storage.PlaylistStore   // nil without a database
	logger    *logger.Logger
	config    *config.Config

	startedAt time.Time
}

// NewHandler creates a new command handler
func NewHandler(
	discord *discordgo.Session,
	registry *session.Registry,
	resolverSvc *resolver.Service,
	settings *storage.SettingsStore,
	users *storage.UserStore,
	history *storage.HistoryRecorder,
	playlists *storage.PlaylistStore,
	log *logger.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		discord:   discord,
		registry:  registry,
		resolver:  resolverSvc,
		settings:  settings,
		users:     users,
		history:   history,
		playlists: playlists,
		logger:    log,
		config:    cfg,
		startedAt: time.Now(),
	}
}

// RegisterCommands registers all slash commands with Discord
func (h *Handler) RegisterCommands() error {
	commands := GetCommands()

	_, err := h.discord.ApplicationCommandBulkOverwrite(h.discord.State.User.ID, "", commands)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	h.logger.WithField("count", len(commands)).Info("✅ All commands registered")
	return nil
}

// HandleInteraction routes incoming interactions to appropriate handlers
func (h *Handler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.WithField("panic", r).Error("Recovered from panic in command handler")
			_ = respondError(s, i, "❌ An internal error occurred")
		}
	}()

	// Pagination buttons
	if i.Type == discordgo.InteractionMessageComponent {
		h.handleButtonInteraction(s, i)
		return
	}

	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()

	h.logger.WithFields(map[string]interface{}{
		"command": data.Name,
		"guild":   i.GuildID,
		"user":    i.Member.User.Username,
	}).Info("Command received")

	var err error
	switch data.Name {
	// Playback commands
	case "play":
		err = h.handlePlay(s, i)
	case "pause":
		err = h.handlePause(s, i)
	case "resume":
		err = h.handleResume(s, i)
	case "skip":
		err = h.handleSkip(s, i)
	case "stop":
		err = h.handleStop(s, i)
	case "volume":
		err = h.handleVolume(s, i)
	case "repeat":
		err = h.handleRepeat(s, i)
	case "playlist":
		err = h.handlePlaylist(s, i)

	// Queue commands
	case "queue":
		err = h.handleQueue(s, i)
	case "nowplaying":
		err = h.handleNowPlaying(s, i)

	// Filter commands
	case "filter":
		err = h.handleFilter(s, i)
	case "preset":
		err = h.handlePreset(s, i)

	// Utility commands
	case "settings":
		err = h.handleSettings(s, i)
	case "history":
		err = h.handleHistory(s, i)
	case "stats":
		err = h.handleStats(s, i)
	case "help":
		err = h.handleHelp(s, i)

	default:
		err = respondError(s, i, "Unknown command")
	}

	if err != nil {
		h.logger.WithError(err).WithField("command", data.Name).Error("Command handler failed")
	}
}

// getUserVoiceChannel gets the user's current voice channel
func (h *Handler) getUserVoiceChannel(s *discordgo.Session, guildID, userID string) (string, error) {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return "", err
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, nil
		}
	}

	return "", fmt.Errorf("user not in voice channel")
}

// guildSession returns the live session for a guild, or nil when nothing has
// been started there
func (h *Handler) guildSession(guildID string) *session.Session {
	return h.registry.Get(guildID)
}
