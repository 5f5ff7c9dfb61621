package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/zhotheone/discordmusicbot/internal/domain/entities"
	"github.com/zhotheone/discordmusicbot/internal/domain/valueobjects"
	apperrors "github.com/zhotheone/discordmusicbot/internal/errors"
	"github.com/zhotheone/discordmusicbot/internal/validation"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

// TrackResolver turns raw user input (URL or search query) into playable
// tracks
type TrackResolver interface {
	Resolve(ctx context.Context, input, requestedBy, guildID string) ([]*entities.Track, error)
}

type youtubeAPI interface {
	Lookup(ctx context.Context, url string) (*videoInfo, error)
	Search(ctx context.Context, query string, maxResults int) ([]*videoInfo, error)
	Playlist(ctx context.Context, url string) ([]*videoInfo, error)
}

type spotifyAPI interface {
	Track(ctx context.Context, trackID string) (*spotifyTrack, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]spotifyTrack, error)
	AlbumTracks(ctx context.Context, albumID string) ([]spotifyTrack, error)
}

// Service routes input to the right backend and caches resolution results
type Service struct {
	youtube youtubeAPI
	spotify spotifyAPI
	cache   *resultCache
	logger  *logger.Logger
}

// NewService builds a resolver. spotify may be nil when credentials are not
// configured; Spotify links are then rejected with a user-facing message.
func NewService(youtube *YouTubeClient, spotify *SpotifyClient, cacheSize int, cacheTTL time.Duration, log *logger.Logger) *Service {
	s := &Service{
		youtube: youtube,
		cache:   newResultCache(cacheSize, cacheTTL),
		logger:  log,
	}
	if spotify != nil {
		s.spotify = spotify
	}
	return s
}

// Resolve classifies the input and produces one or more tracks for the guild.
// Playlist inputs resolve to every entry; everything else resolves to a
// single track.
func (s *Service) Resolve(ctx context.Context, input, requestedBy, guildID string) ([]*entities.Track, error) {
	input = validation.SanitizeInput(input)
	if input == "" {
		return nil, fmt.Errorf("%w: empty input", apperrors.ErrInvalidURL)
	}

	if cached, ok := s.cache.get(input); ok {
		s.logger.WithField("input", input).Debug("Resolver cache hit")
		return materialize(cached, requestedBy, guildID), nil
	}

	source := validation.DetectSource(input)
	s.logger.WithFields(map[string]interface{}{
		"input":  validation.TruncateString(input, 120),
		"source": source,
		"guild":  guildID,
	}).Info("Resolving input")

	var (
		templates []*entities.Track
		err       error
	)
	switch source {
	case valueobjects.SourceTypeYouTube:
		templates, err = s.resolveYouTube(ctx, input)
	case valueobjects.SourceTypeSpotify:
		templates, err = s.resolveSpotify(ctx, input)
	case valueobjects.SourceTypeURL:
		templates, err = s.resolveDirect(ctx, input)
	default:
		templates, err = s.resolveSearch(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	s.cache.put(input, templates)
	return materialize(templates, requestedBy, guildID), nil
}

// CacheStats returns resolution cache statistics
func (s *Service) CacheStats() (hits, misses, evictions int64, size int) {
	return s.cache.stats()
}

// RunCacheCleanup evicts expired cache entries until stop is closed
func (s *Service) RunCacheCleanup(interval time.Duration, stop <-chan struct{}) {
	s.cache.runCleanup(interval, stop)
}

func (s *Service) resolveYouTube(ctx context.Context, input string) ([]*entities.Track, error) {
	if validation.IsYouTubePlaylistURL(input) {
		videos, err := s.youtube.Playlist(ctx, input)
		if err != nil {
			return nil, err
		}
		tracks := make([]*entities.Track, 0, len(videos))
		for _, v := range videos {
			tracks = append(tracks, trackFromVideo(v, valueobjects.SourceTypeYouTube))
		}
		return tracks, nil
	}

	info, err := s.youtube.Lookup(ctx, input)
	if err != nil {
		return nil, err
	}
	return []*entities.Track{trackFromVideo(info, valueobjects.SourceTypeYouTube)}, nil
}

func (s *Service) resolveSearch(ctx context.Context, query string) ([]*entities.Track, error) {
	videos, err := s.youtube.Search(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	return []*entities.Track{trackFromVideo(videos[0], valueobjects.SourceTypeSearch)}, nil
}

func (s *Service) resolveDirect(ctx context.Context, input string) ([]*entities.Track, error) {
	if err := validation.ValidateURL(input); err != nil {
		return nil, err
	}

	info, err := s.youtube.Lookup(ctx, input)
	if err != nil {
		return nil, err
	}
	return []*entities.Track{trackFromVideo(info, valueobjects.SourceTypeURL)}, nil
}

// resolveSpotify maps Spotify resources onto YouTube uploads. A single track
// is matched immediately; playlist and album entries get a deferred search
// URL so one link does not fan out into hundreds of lookups at enqueue time.
func (s *Service) resolveSpotify(ctx context.Context, input string) ([]*entities.Track, error) {
	if s.spotify == nil {
		return nil, apperrors.NewUserError(apperrors.ErrInvalidURL, "🎧 Spotify support is not configured on this bot")
	}

	urlType, id, err := parseSpotifyURL(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidURL, err)
	}

	switch urlType {
	case "track":
		st, err := s.spotify.Track(ctx, id)
		if err != nil {
			return nil, err
		}
		videos, err := s.youtube.Search(ctx, st.searchQuery(), 1)
		if err != nil {
			return nil, err
		}
		track := trackFromSpotify(st, videos[0].pageURL())
		return []*entities.Track{track}, nil

	case "playlist":
		sts, err := s.spotify.PlaylistTracks(ctx, id)
		if err != nil {
			return nil, err
		}
		return deferredSpotifyTracks(sts), nil

	case "album":
		sts, err := s.spotify.AlbumTracks(ctx, id)
		if err != nil {
			return nil, err
		}
		return deferredSpotifyTracks(sts), nil
	}

	return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidURL, input)
}

func deferredSpotifyTracks(sts []spotifyTrack) []*entities.Track {
	tracks := make([]*entities.Track, 0, len(sts))
	for i := range sts {
		st := &sts[i]
		if st.ID == "" {
			continue // local or unavailable playlist entry
		}
		tracks = append(tracks, trackFromSpotify(st, "ytsearch1:"+st.searchQuery()))
	}
	return tracks
}

func trackFromVideo(v *videoInfo, source valueobjects.SourceType) *entities.Track {
	duration := time.Duration(v.Duration * float64(time.Second))
	track := entities.NewTrack(v.Title, v.pageURL(), duration, source, "", "")
	track.Artist = v.Uploader
	track.Thumbnail = v.Thumbnail
	return track
}

func trackFromSpotify(st *spotifyTrack, url string) *entities.Track {
	duration := time.Duration(st.DurationMs) * time.Millisecond
	track := entities.NewTrack(st.Name, url, duration, valueobjects.SourceTypeSpotify, "", "")
	track.Artist = st.artist()
	track.Thumbnail = st.thumbnail()
	return track
}

// materialize copies cached templates into fresh tracks owned by this request
func materialize(templates []*entities.Track, requestedBy, guildID string) []*entities.Track {
	tracks := make([]*entities.Track, 0, len(templates))
	for _, tpl := range templates {
		track := entities.NewTrack(tpl.Title, tpl.URL, tpl.Duration, tpl.SourceType, requestedBy, guildID)
		track.Artist = tpl.Artist
		track.Thumbnail = tpl.Thumbnail
		tracks = append(tracks, track)
	}
	return tracks
}
