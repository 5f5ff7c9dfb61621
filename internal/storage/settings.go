package storage

import (
	"context"
	goerrors "errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/zhotheone/discordmusicbot/internal/database"
	"github.com/zhotheone/discordmusicbot/internal/session"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

// settingsQueries is the slice of database.Queries the store needs
type settingsQueries interface {
	GetGuildSettings(ctx context.Context, guildID string) (database.GuildSettings, error)
	UpsertGuildSettings(ctx context.Context, s database.GuildSettings) error
}

// SettingsStore is a cached per-guild settings lookup backed by Postgres.
// Guilds without a stored row get the configured defaults, so a missing or
// unreachable database never blocks playback.
type SettingsStore struct {
	queries  settingsQueries
	defaults session.Config
	ttl      time.Duration
	logger   *logger.Logger

	mu    sync.Mutex
	cache map[string]cachedConfig
}

type cachedConfig struct {
	cfg       session.Config
	expiresAt time.Time
}

// NewSettingsStore creates a store over the given queries. queries may be nil
// when the bot runs without a database; every guild then gets the defaults.
func NewSettingsStore(queries *database.Queries, defaults session.Config, ttl time.Duration, log *logger.Logger) *SettingsStore {
	s := &SettingsStore{
		defaults: defaults,
		ttl:      ttl,
		logger:   log,
		cache:    make(map[string]cachedConfig),
	}
	if queries != nil {
		s.queries = queries
	}
	return s
}

// GuildConfig returns the effective session configuration for a guild
func (s *SettingsStore) GuildConfig(ctx context.Context, guildID string) (session.Config, error) {
	if s.queries == nil {
		return s.defaults, nil
	}

	s.mu.Lock()
	if entry, ok := s.cache[guildID]; ok && time.Now().Before(entry.expiresAt) {
		s.mu.Unlock()
		return entry.cfg, nil
	}
	s.mu.Unlock()

	row, err := s.queries.GetGuildSettings(ctx, guildID)
	if err != nil {
		if !goerrors.Is(err, pgx.ErrNoRows) {
			s.logger.WithGuild(guildID).WithError(err).Warn("Settings lookup failed, using defaults")
		}
		return s.defaults, nil
	}

	cfg := session.Config{
		MaxQueueSize:  row.MaxQueueSize,
		DefaultVolume: row.Volume,
		IdleTimeout:   time.Duration(row.IdleTimeoutSeconds) * time.Second,
	}

	s.mu.Lock()
	s.cache[guildID] = cachedConfig{cfg: cfg, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()

	return cfg, nil
}

// SetVolume persists a guild's preferred volume and invalidates the cache
func (s *SettingsStore) SetVolume(ctx context.Context, guildID string, volume int) error {
	if s.queries == nil {
		return nil
	}

	row, err := s.currentRow(ctx, guildID)
	if err != nil {
		return err
	}
	row.Volume = volume

	if err := s.queries.UpsertGuildSettings(ctx, row); err != nil {
		return err
	}
	s.invalidate(guildID)
	return nil
}

// SetActivePreset persists the filter preset last applied in a guild
func (s *SettingsStore) SetActivePreset(ctx context.Context, guildID, preset string) error {
	if s.queries == nil {
		return nil
	}

	row, err := s.currentRow(ctx, guildID)
	if err != nil {
		return err
	}
	if preset == "" {
		row.ActivePreset = nil
	} else {
		row.ActivePreset = &preset
	}

	if err := s.queries.UpsertGuildSettings(ctx, row); err != nil {
		return err
	}
	s.invalidate(guildID)
	return nil
}

// currentRow loads the stored row or builds one from the defaults
func (s *SettingsStore) currentRow(ctx context.Context, guildID string) (database.GuildSettings, error) {
	row, err := s.queries.GetGuildSettings(ctx, guildID)
	if err == nil {
		return row, nil
	}
	if !goerrors.Is(err, pgx.ErrNoRows) {
		return database.GuildSettings{}, err
	}

	return database.GuildSettings{
		GuildID:            guildID,
		Volume:             s.defaults.DefaultVolume,
		MaxQueueSize:       s.defaults.MaxQueueSize,
		IdleTimeoutSeconds: int(s.defaults.IdleTimeout.Seconds()),
	}, nil
}

func (s *SettingsStore) invalidate(guildID string) {
	s.mu.Lock()
	delete(s.cache, guildID)
	s.mu.Unlock()
}
