package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zhotheone/discordmusicbot/internal/domain/valueobjects"
)

// Track is an immutable description of a playable item. Once constructed it is
// never mutated; the queue entry that references it is its sole owner.
type Track struct {
	ID         string                  `json:"id"`
	Title      string                  `json:"title"`
	Artist     string                  `json:"artist,omitempty"`
	URL        string                  `json:"url"`
	Duration   time.Duration           `json:"duration"`
	SourceType valueobjects.SourceType `json:"source_type"`
	Thumbnail  string                  `json:"thumbnail,omitempty"`

	RequestedBy string    `json:"requested_by"`
	GuildID     string    `json:"guild_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTrack creates a track for a guild request
func NewTrack(title, url string, duration time.Duration, source valueobjects.SourceType, requestedBy, guildID string) *Track {
	return &Track{
		ID:          uuid.New().String(),
		Title:       title,
		URL:         url,
		Duration:    duration,
		SourceType:  source,
		RequestedBy: requestedBy,
		GuildID:     guildID,
		CreatedAt:   time.Now(),
	}
}

// DisplayName returns the best display name for the track
func (t *Track) DisplayName() string {
	if t.Artist != "" {
		return fmt.Sprintf("%s - %s", t.Artist, t.Title)
	}
	return t.Title
}

// DurationFormatted returns duration in MM:SS format
func (t *Track) DurationFormatted() string {
	total := int(t.Duration.Seconds())
	if total <= 0 {
		return "00:00"
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
