package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/zhotheone/discordmusicbot/internal/commands"
	"github.com/zhotheone/discordmusicbot/internal/config"
	"github.com/zhotheone/discordmusicbot/internal/database"
	"github.com/zhotheone/discordmusicbot/internal/events"
	"github.com/zhotheone/discordmusicbot/internal/pipeline"
	"github.com/zhotheone/discordmusicbot/internal/resolver"
	"github.com/zhotheone/discordmusicbot/internal/session"
	"github.com/zhotheone/discordmusicbot/internal/storage"
	"github.com/zhotheone/discordmusicbot/internal/telegram"
	"github.com/zhotheone/discordmusicbot/internal/voice"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

// historyKeep is how many play history rows are retained per guild
const historyKeep = 500

// eventBufferSize is the per-subscriber event queue depth
const eventBufferSize = 256

// MusicBot represents the Discord music bot
type MusicBot struct {
	config     *config.Config
	logger     *logger.Logger
	session    *discordgo.Session
	db         *database.DB
	bus        *events.Bus
	registry   *session.Registry
	resolver   *resolver.Service
	settings   *storage.SettingsStore
	history    *storage.HistoryRecorder
	bridge     *telegram.Bridge
	cmdHandler *commands.Handler

	cacheStop   chan struct{}
	sweepCancel context.CancelFunc
}

// New creates a new MusicBot instance
func New(cfg *config.Config, log *logger.Logger) (*MusicBot, error) {
	// Create Discord session
	discord, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Setup intents
	discord.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates
	discord.StateEnabled = true

	// Initialize database if configured
	var db *database.DB
	if cfg.UseDatabase {
		ctx := context.Background()
		dbCfg := database.DefaultConfig(cfg.DatabaseURL)
		db, err = database.Connect(ctx, dbCfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		// Run migrations
		if err := db.RunMigrations(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	// Initialize the audio pipeline (checks yt-dlp and ffmpeg on PATH)
	audioPipeline, err := pipeline.NewFFmpegPipeline(log)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("failed to create audio pipeline: %w", err)
	}

	// Initialize YouTube resolver
	ytClient, err := resolver.NewYouTubeClient(log)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}

	// Initialize Spotify client (optional)
	var spotifyClient *resolver.SpotifyClient
	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		spotifyClient, err = resolver.NewSpotifyClient(context.Background(), cfg.SpotifyClientID, cfg.SpotifyClientSecret, log)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Spotify client - Spotify links will not work")
			spotifyClient = nil
		} else {
			log.Info("Spotify client initialized")
		}
	} else {
		log.Info("Spotify credentials not provided - Spotify links will not work")
	}

	resolverSvc := resolver.NewService(ytClient, spotifyClient,
		cfg.CacheSize, time.Duration(cfg.CacheDurationMinutes)*time.Minute, log)

	// Event bus ties sessions to subscribers (history, Telegram)
	bus := events.NewBus(eventBufferSize, log)

	// Per-guild settings backed by Postgres when available
	defaults := session.Config{
		MaxQueueSize:  cfg.MaxQueueSize,
		DefaultVolume: cfg.DefaultVolume,
		IdleTimeout:   cfg.IdleTimeout,
	}
	var queries *database.Queries
	if db != nil {
		queries = db.Queries
	}
	settings := storage.NewSettingsStore(queries, defaults, time.Minute, log)
	users := storage.NewUserStore(queries, log)

	// Play history and named playlists (database only)
	var history *storage.HistoryRecorder
	var playlists *storage.PlaylistStore
	if db != nil {
		history = storage.NewHistoryRecorder(db.Queries, historyKeep, log)
		history.Attach(bus)
		playlists = storage.NewPlaylistStore(db.Queries, log)
		log.Info("Play history recording and playlists enabled")
	}

	// Telegram bridge (optional)
	var bridge *telegram.Bridge
	if cfg.EnableTelegram {
		bridge, err = telegram.NewBridge(cfg.TelegramToken, cfg.TelegramChatID, log)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Telegram bridge - notifications disabled")
			bridge = nil
		} else {
			bridge.Attach(bus)
			log.Info("Telegram bridge initialized")
		}
	}

	registry := session.NewRegistry(session.Deps{
		Pipeline: audioPipeline,
		Voice:    voice.NewDiscordTransport(discord, log),
		Bus:      bus,
		Logger:   log,
	}, settings)

	// Initialize command handler
	cmdHandler := commands.NewHandler(discord, registry, resolverSvc, settings, users, history, playlists, log, cfg)

	b := &MusicBot{
		config:     cfg,
		logger:     log,
		session:    discord,
		db:         db,
		bus:        bus,
		registry:   registry,
		resolver:   resolverSvc,
		settings:   settings,
		history:    history,
		bridge:     bridge,
		cmdHandler: cmdHandler,
		cacheStop:  make(chan struct{}),
	}

	// Register event handlers
	discord.AddHandler(b.onReady)
	discord.AddHandler(cmdHandler.HandleInteraction)
	discord.AddHandler(b.onVoiceStateUpdate)

	return b, nil
}

// Start opens the gateway connection and starts background workers
func (b *MusicBot) Start(ctx context.Context) error {
	b.logger.Info("Opening Discord connection...")
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	// Register commands
	b.logger.Info("Registering slash commands...")
	if err := b.cmdHandler.RegisterCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	// Idle session sweeper
	sweepCtx, cancel := context.WithCancel(ctx)
	b.sweepCancel = cancel
	go b.registry.RunSweeper(sweepCtx, b.config.SweepInterval)

	// Resolve cache expiry
	go b.resolver.RunCacheCleanup(time.Minute, b.cacheStop)

	return nil
}

// Stop stops the bot gracefully
func (b *MusicBot) Stop() {
	b.logger.Info("Shutting down...")

	if b.sweepCancel != nil {
		b.sweepCancel()
	}
	close(b.cacheStop)

	// Terminate every playback session before dropping the gateway
	b.registry.Shutdown()

	if b.bridge != nil {
		b.bridge.Detach(b.bus)
	}
	if b.history != nil {
		b.history.Detach(b.bus)
	}
	b.bus.Close()

	if b.db != nil {
		b.db.Close()
	}

	b.logger.Info("Closing Discord connection...")
	if err := b.session.Close(); err != nil {
		b.logger.WithError(err).Error("Failed to close Discord session")
	}
}

// onReady is called when the bot is ready
func (b *MusicBot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	b.logger.Infof("✅ Bot is ready! Logged in as %s#%s", event.User.Username, event.User.Discriminator)
	b.logger.Infof("📊 Connected to %d guilds", len(event.Guilds))

	// Set bot status
	if err := s.UpdateGameStatus(0, "🎵 Music - /help"); err != nil {
		b.logger.WithError(err).Warn("Failed to update status")
	}
}

// onVoiceStateUpdate stops playback when the bot is left alone in a channel
func (b *MusicBot) onVoiceStateUpdate(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
	// Skip if the event is about the bot itself
	if event.UserID == s.State.User.ID {
		return
	}

	guildID := event.GuildID

	sess := b.registry.Get(guildID)
	if sess == nil {
		return
	}

	botChannelID := sess.ChannelID()
	if botChannelID == "" {
		return
	}

	// Only care about users leaving the bot's channel
	if event.BeforeUpdate == nil || event.BeforeUpdate.ChannelID != botChannelID {
		return
	}

	guild, err := s.State.Guild(guildID)
	if err != nil {
		b.logger.WithError(err).Warn("Failed to get guild state")
		return
	}

	// Count non-bot users still in the channel
	userCount := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != botChannelID || vs.UserID == s.State.User.ID {
			continue
		}
		member, err := s.State.Member(guildID, vs.UserID)
		if err != nil {
			member, err = s.GuildMember(guildID, vs.UserID)
			if err != nil {
				continue
			}
		}
		if member.User != nil && !member.User.Bot {
			userCount++
		}
	}

	if userCount > 0 {
		return
	}

	b.logger.WithGuild(guildID).Info("No users left in voice channel, stopping playback")
	if err := sess.Stop(); err != nil {
		b.logger.WithGuild(guildID).WithError(err).Warn("Failed to stop session")
	}
}
