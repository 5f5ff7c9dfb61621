package storage

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/zhotheone/discordmusicbot/internal/database"
	"github.com/zhotheone/discordmusicbot/internal/events"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

// pruneEvery controls how often per-guild history is trimmed back down
const pruneEvery = 50

// historyQueries is the slice of database.Queries the recorder needs
type historyQueries interface {
	InsertPlayHistory(ctx context.Context, e database.PlayHistoryEntry) error
	ListRecentHistory(ctx context.Context, guildID string, limit int) ([]database.PlayHistoryEntry, error)
	PruneHistory(ctx context.Context, guildID string, keep int) error
}

// HistoryRecorder persists every started track by listening for now-playing
// events on the bus
type HistoryRecorder struct {
	queries historyQueries
	keep    int
	logger  *logger.Logger

	inserts atomic.Int64
	subID   string
}

// NewHistoryRecorder creates a recorder keeping at most keep entries per guild
func NewHistoryRecorder(queries *database.Queries, keep int, log *logger.Logger) *HistoryRecorder {
	return &HistoryRecorder{
		queries: queries,
		keep:    keep,
		logger:  log,
	}
}

// Attach subscribes the recorder to the bus. Call Detach on shutdown.
func (r *HistoryRecorder) Attach(bus *events.Bus) {
	r.subID = bus.Subscribe(events.ForKinds(events.KindNowPlaying), r.record)
}

// Detach removes the bus subscription
func (r *HistoryRecorder) Detach(bus *events.Bus) {
	if r.subID != "" {
		bus.Unsubscribe(r.subID)
	}
}

// Recent returns the newest history entries for a guild
func (r *HistoryRecorder) Recent(ctx context.Context, guildID string, limit int) ([]database.PlayHistoryEntry, error) {
	return r.queries.ListRecentHistory(ctx, guildID, limit)
}

func (r *HistoryRecorder) record(ev events.Event) {
	if ev.Track == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry := database.PlayHistoryEntry{
		GuildID:         ev.GuildID,
		Title:           ev.Track.Title,
		URL:             ev.Track.URL,
		SourceType:      ev.Track.SourceType.String(),
		RequestedBy:     ev.Track.RequestedBy,
		DurationSeconds: int(ev.Track.Duration.Seconds()),
		PlayedAt:        ev.At,
	}
	if ev.Track.Artist != "" {
		artist := ev.Track.Artist
		entry.Artist = &artist
	}

	if err := r.queries.InsertPlayHistory(ctx, entry); err != nil {
		r.logger.WithGuild(ev.GuildID).WithError(err).Warn("Failed to record play history")
		return
	}

	if r.inserts.Add(1)%pruneEvery == 0 {
		if err := r.queries.PruneHistory(ctx, ev.GuildID, r.keep); err != nil {
			r.logger.WithGuild(ev.GuildID).WithError(err).Warn("Failed to prune play history")
		}
	}
}
