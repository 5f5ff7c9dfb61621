package storage

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zhotheone/discordmusicbot/internal/database"
	"github.com/zhotheone/discordmusicbot/internal/domain/entities"
	"github.com/zhotheone/discordmusicbot/internal/domain/valueobjects"
	apperrors "github.com/zhotheone/discordmusicbot/internal/errors"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

// uniqueViolation is the Postgres error code for a unique constraint breach
const uniqueViolation = "23505"

// playlistQueries is the slice of database.Queries the store needs
type playlistQueries interface {
	CreatePlaylist(ctx context.Context, guildID, name, createdBy string) (database.Playlist, error)
	DeletePlaylist(ctx context.Context, guildID, name string) (int64, error)
	GetPlaylist(ctx context.Context, guildID, name string) (database.Playlist, error)
	ListPlaylists(ctx context.Context, guildID string) ([]database.PlaylistSummary, error)
	AddPlaylistTrack(ctx context.Context, t database.PlaylistTrack) error
	ListPlaylistTracks(ctx context.Context, playlistID int64) ([]database.PlaylistTrack, error)
}

// PlaylistStore manages named per-guild playlists
type PlaylistStore struct {
	queries playlistQueries
	logger  *logger.Logger
}

// NewPlaylistStore creates a store over the given queries
func NewPlaylistStore(queries *database.Queries, log *logger.Logger) *PlaylistStore {
	return &PlaylistStore{queries: queries, logger: log}
}

// Create makes a new empty playlist. A duplicate name within the guild
// returns ErrPlaylistExists.
func (s *PlaylistStore) Create(ctx context.Context, guildID, name, createdBy string) error {
	_, err := s.queries.CreatePlaylist(ctx, guildID, name, createdBy)
	var pgErr *pgconn.PgError
	if goerrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperrors.ErrPlaylistExists
	}
	return err
}

// Delete removes a playlist and its tracks. A missing playlist returns
// ErrPlaylistNotFound.
func (s *PlaylistStore) Delete(ctx context.Context, guildID, name string) error {
	deleted, err := s.queries.DeletePlaylist(ctx, guildID, name)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apperrors.ErrPlaylistNotFound
	}
	return nil
}

// List returns the guild's playlists with their track counts
func (s *PlaylistStore) List(ctx context.Context, guildID string) ([]database.PlaylistSummary, error) {
	return s.queries.ListPlaylists(ctx, guildID)
}

// Tracks returns a playlist's stored tracks in order
func (s *PlaylistStore) Tracks(ctx context.Context, guildID, name string) ([]database.PlaylistTrack, error) {
	playlist, err := s.lookup(ctx, guildID, name)
	if err != nil {
		return nil, err
	}
	return s.queries.ListPlaylistTracks(ctx, playlist.ID)
}

// AddTracks appends resolved tracks to a playlist and returns how many were
// stored. Individual insert failures are logged and skipped.
func (s *PlaylistStore) AddTracks(ctx context.Context, guildID, name, addedBy string, tracks []*entities.Track) (int, error) {
	playlist, err := s.lookup(ctx, guildID, name)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, track := range tracks {
		row := database.PlaylistTrack{
			PlaylistID:      playlist.ID,
			Title:           track.Title,
			URL:             track.URL,
			SourceType:      track.SourceType.String(),
			DurationSeconds: int(track.Duration.Seconds()),
			AddedBy:         addedBy,
		}
		if track.Artist != "" {
			artist := track.Artist
			row.Artist = &artist
		}

		if err := s.queries.AddPlaylistTrack(ctx, row); err != nil {
			s.logger.WithGuild(guildID).WithError(err).Warn("Failed to store playlist track")
			continue
		}
		added++
	}
	return added, nil
}

// PlayableTracks converts a playlist's stored rows into fresh queue tracks
// requested by the given user
func (s *PlaylistStore) PlayableTracks(ctx context.Context, guildID, name, requestedBy string) ([]*entities.Track, error) {
	rows, err := s.Tracks(ctx, guildID, name)
	if err != nil {
		return nil, err
	}

	tracks := make([]*entities.Track, 0, len(rows))
	for _, row := range rows {
		track := entities.NewTrack(
			row.Title,
			row.URL,
			time.Duration(row.DurationSeconds)*time.Second,
			valueobjects.SourceType(row.SourceType),
			requestedBy,
			guildID,
		)
		if row.Artist != nil {
			track.Artist = *row.Artist
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

func (s *PlaylistStore) lookup(ctx context.Context, guildID, name string) (database.Playlist, error) {
	playlist, err := s.queries.GetPlaylist(ctx, guildID, name)
	if err != nil {
		if goerrors.Is(err, pgx.ErrNoRows) {
			return database.Playlist{}, apperrors.ErrPlaylistNotFound
		}
		return database.Playlist{}, err
	}
	return playlist, nil
}
