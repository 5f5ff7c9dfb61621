package storage

import (
	"context"
	goerrors "errors"

	"github.com/jackc/pgx/v5"

	"github.com/zhotheone/discordmusicbot/internal/database"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

// userQueries is the slice of database.Queries the store needs
type userQueries interface {
	GetUserSettings(ctx context.Context, userID string) (database.UserSettings, error)
	UpsertUserSettings(ctx context.Context, s database.UserSettings) error
}

// UserStore reads and writes per-user playback preferences. Like the guild
// settings store it tolerates a missing database, in which case users simply
// have no stored preferences.
type UserStore struct {
	queries userQueries
	logger  *logger.Logger
}

// NewUserStore creates a store over the given queries; queries may be nil
func NewUserStore(queries *database.Queries, log *logger.Logger) *UserStore {
	s := &UserStore{logger: log}
	if queries != nil {
		s.queries = queries
	}
	return s
}

// Preferences returns the user's stored preferences. The bool reports whether
// a row exists; lookup failures are logged and treated as no preferences.
func (s *UserStore) Preferences(ctx context.Context, userID string) (database.UserSettings, bool) {
	if s.queries == nil {
		return database.UserSettings{}, false
	}

	row, err := s.queries.GetUserSettings(ctx, userID)
	if err != nil {
		if !goerrors.Is(err, pgx.ErrNoRows) {
			s.logger.WithField("user", userID).WithError(err).Warn("User settings lookup failed")
		}
		return database.UserSettings{}, false
	}
	return row, true
}

// SetPreferences stores a user's default volume and repeat mode
func (s *UserStore) SetPreferences(ctx context.Context, userID string, volume int, repeatMode string) error {
	if s.queries == nil {
		return nil
	}

	return s.queries.UpsertUserSettings(ctx, database.UserSettings{
		UserID:     userID,
		Volume:     volume,
		RepeatMode: repeatMode,
	})
}
