package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Queries holds all SQL access for the bot's tables
type Queries struct {
	db DBTX
}

// NewQueries creates a query runner over a pool or transaction
func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to the given transaction
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

// GuildSettings is one row of guild_settings
type GuildSettings struct {
	GuildID            string
	Volume             int
	MaxQueueSize       int
	IdleTimeoutSeconds int
	ActivePreset       *string
	UpdatedAt          time.Time
}

// UserSettings is one row of user_settings
type UserSettings struct {
	UserID     string
	Volume     int
	RepeatMode string
	UpdatedAt  time.Time
}

// PlayHistoryEntry is one row of play_history
type PlayHistoryEntry struct {
	ID              int64
	GuildID         string
	Title           string
	Artist          *string
	URL             string
	SourceType      string
	RequestedBy     string
	DurationSeconds int
	PlayedAt        time.Time
}

const getGuildSettings = `
SELECT guild_id, volume, max_queue_size, idle_timeout_seconds, active_preset, updated_at
FROM guild_settings
WHERE guild_id = $1
`

// GetGuildSettings returns the stored settings for a guild, or pgx.ErrNoRows
func (q *Queries) GetGuildSettings(ctx context.Context, guildID string) (GuildSettings, error) {
	var s GuildSettings
	err := q.db.QueryRow(ctx, getGuildSettings, guildID).Scan(
		&s.GuildID, &s.Volume, &s.MaxQueueSize, &s.IdleTimeoutSeconds, &s.ActivePreset, &s.UpdatedAt,
	)
	return s, err
}

const upsertGuildSettings = `
INSERT INTO guild_settings (guild_id, volume, max_queue_size, idle_timeout_seconds, active_preset, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (guild_id) DO UPDATE SET
    volume = EXCLUDED.volume,
    max_queue_size = EXCLUDED.max_queue_size,
    idle_timeout_seconds = EXCLUDED.idle_timeout_seconds,
    active_preset = EXCLUDED.active_preset,
    updated_at = now()
`

// UpsertGuildSettings inserts or replaces a guild's settings row
func (q *Queries) UpsertGuildSettings(ctx context.Context, s GuildSettings) error {
	_, err := q.db.Exec(ctx, upsertGuildSettings,
		s.GuildID, s.Volume, s.MaxQueueSize, s.IdleTimeoutSeconds, s.ActivePreset,
	)
	return err
}

const getUserSettings = `
SELECT user_id, volume, repeat_mode, updated_at
FROM user_settings
WHERE user_id = $1
`

// GetUserSettings returns stored preferences for a user, or pgx.ErrNoRows
func (q *Queries) GetUserSettings(ctx context.Context, userID string) (UserSettings, error) {
	var s UserSettings
	err := q.db.QueryRow(ctx, getUserSettings, userID).Scan(
		&s.UserID, &s.Volume, &s.RepeatMode, &s.UpdatedAt,
	)
	return s, err
}

const upsertUserSettings = `
INSERT INTO user_settings (user_id, volume, repeat_mode, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (user_id) DO UPDATE SET
    volume = EXCLUDED.volume,
    repeat_mode = EXCLUDED.repeat_mode,
    updated_at = now()
`

// UpsertUserSettings inserts or replaces a user's preferences
func (q *Queries) UpsertUserSettings(ctx context.Context, s UserSettings) error {
	_, err := q.db.Exec(ctx, upsertUserSettings, s.UserID, s.Volume, s.RepeatMode)
	return err
}

const insertPlayHistory = `
INSERT INTO play_history (guild_id, title, artist, url, source_type, requested_by, duration_seconds, played_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// InsertPlayHistory records one played track
func (q *Queries) InsertPlayHistory(ctx context.Context, e PlayHistoryEntry) error {
	_, err := q.db.Exec(ctx, insertPlayHistory,
		e.GuildID, e.Title, e.Artist, e.URL, e.SourceType, e.RequestedBy, e.DurationSeconds, e.PlayedAt,
	)
	return err
}

const listRecentHistory = `
SELECT id, guild_id, title, artist, url, source_type, requested_by, duration_seconds, played_at
FROM play_history
WHERE guild_id = $1
ORDER BY played_at DESC
LIMIT $2
`

// ListRecentHistory returns the newest history entries for a guild
func (q *Queries) ListRecentHistory(ctx context.Context, guildID string, limit int) ([]PlayHistoryEntry, error) {
	rows, err := q.db.Query(ctx, listRecentHistory, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []PlayHistoryEntry
	for rows.Next() {
		var e PlayHistoryEntry
		if err := rows.Scan(
			&e.ID, &e.GuildID, &e.Title, &e.Artist, &e.URL,
			&e.SourceType, &e.RequestedBy, &e.DurationSeconds, &e.PlayedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const pruneHistory = `
DELETE FROM play_history
WHERE guild_id = $1 AND id NOT IN (
    SELECT id FROM play_history
    WHERE guild_id = $1
    ORDER BY played_at DESC
    LIMIT $2
)
`

// PruneHistory keeps only the newest keep entries for a guild
func (q *Queries) PruneHistory(ctx context.Context, guildID string, keep int) error {
	_, err := q.db.Exec(ctx, pruneHistory, guildID, keep)
	return err
}

// Playlist is one row of playlists
type Playlist struct {
	ID        int64
	GuildID   string
	Name      string
	CreatedBy string
	CreatedAt time.Time
}

// PlaylistSummary is a playlist with its track count, for listing
type PlaylistSummary struct {
	Name       string
	CreatedBy  string
	TrackCount int
	CreatedAt  time.Time
}

// PlaylistTrack is one row of playlist_tracks
type PlaylistTrack struct {
	ID              int64
	PlaylistID      int64
	Title           string
	Artist          *string
	URL             string
	SourceType      string
	DurationSeconds int
	Position        int
	AddedBy         string
	AddedAt         time.Time
}

const createPlaylist = `
INSERT INTO playlists (guild_id, name, created_by)
VALUES ($1, $2, $3)
RETURNING id, guild_id, name, created_by, created_at
`

// CreatePlaylist inserts a new named playlist for a guild. A duplicate name
// surfaces as a unique constraint violation.
func (q *Queries) CreatePlaylist(ctx context.Context, guildID, name, createdBy string) (Playlist, error) {
	var p Playlist
	err := q.db.QueryRow(ctx, createPlaylist, guildID, name, createdBy).Scan(
		&p.ID, &p.GuildID, &p.Name, &p.CreatedBy, &p.CreatedAt,
	)
	return p, err
}

const deletePlaylist = `
DELETE FROM playlists
WHERE guild_id = $1 AND name = $2
`

// DeletePlaylist removes a playlist and, via cascade, its tracks. Returns
// the number of playlists deleted.
func (q *Queries) DeletePlaylist(ctx context.Context, guildID, name string) (int64, error) {
	tag, err := q.db.Exec(ctx, deletePlaylist, guildID, name)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const getPlaylist = `
SELECT id, guild_id, name, created_by, created_at
FROM playlists
WHERE guild_id = $1 AND name = $2
`

// GetPlaylist returns a guild's playlist by name, or pgx.ErrNoRows
func (q *Queries) GetPlaylist(ctx context.Context, guildID, name string) (Playlist, error) {
	var p Playlist
	err := q.db.QueryRow(ctx, getPlaylist, guildID, name).Scan(
		&p.ID, &p.GuildID, &p.Name, &p.CreatedBy, &p.CreatedAt,
	)
	return p, err
}

const listPlaylists = `
SELECT p.name, p.created_by, count(t.id), p.created_at
FROM playlists p
LEFT JOIN playlist_tracks t ON t.playlist_id = p.id
WHERE p.guild_id = $1
GROUP BY p.id
ORDER BY p.name
`

// ListPlaylists returns all playlists of a guild with their track counts
func (q *Queries) ListPlaylists(ctx context.Context, guildID string) ([]PlaylistSummary, error) {
	rows, err := q.db.Query(ctx, listPlaylists, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []PlaylistSummary
	for rows.Next() {
		var s PlaylistSummary
		if err := rows.Scan(&s.Name, &s.CreatedBy, &s.TrackCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

const addPlaylistTrack = `
INSERT INTO playlist_tracks (playlist_id, title, artist, url, source_type, duration_seconds, position, added_by)
VALUES ($1, $2, $3, $4, $5, $6,
    (SELECT COALESCE(MAX(position), 0) + 1 FROM playlist_tracks WHERE playlist_id = $1),
    $7)
`

// AddPlaylistTrack appends a track to the end of a playlist
func (q *Queries) AddPlaylistTrack(ctx context.Context, t PlaylistTrack) error {
	_, err := q.db.Exec(ctx, addPlaylistTrack,
		t.PlaylistID, t.Title, t.Artist, t.URL, t.SourceType, t.DurationSeconds, t.AddedBy,
	)
	return err
}

const listPlaylistTracks = `
SELECT id, playlist_id, title, artist, url, source_type, duration_seconds, position, added_by, added_at
FROM playlist_tracks
WHERE playlist_id = $1
ORDER BY position
`

// ListPlaylistTracks returns a playlist's tracks in stored order
func (q *Queries) ListPlaylistTracks(ctx context.Context, playlistID int64) ([]PlaylistTrack, error) {
	rows, err := q.db.Query(ctx, listPlaylistTracks, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []PlaylistTrack
	for rows.Next() {
		var t PlaylistTrack
		if err := rows.Scan(
			&t.ID, &t.PlaylistID, &t.Title, &t.Artist, &t.URL,
			&t.SourceType, &t.DurationSeconds, &t.Position, &t.AddedBy, &t.AddedAt,
		); err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}
