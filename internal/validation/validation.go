package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/zhotheone/discordmusicbot/internal/domain/valueobjects"
	"github.com/zhotheone/discordmusicbot/internal/errors"
)

var (
	// URL patterns
	youtubePattern = regexp.MustCompile(`^(https?://)?(www\.|music\.)?(youtube\.com|youtu\.be)/.+$`)
	spotifyPattern = regexp.MustCompile(`^https?://open\.spotify\.com/(track|album|playlist)/.+$`)
)

// ValidateURL validates if a string is a well-formed URL
func ValidateURL(input string) error {
	if input == "" {
		return fmt.Errorf("%w: URL cannot be empty", errors.ErrInvalidURL)
	}

	_, err := url.ParseRequestURI(input)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidURL, err)
	}

	return nil
}

// IsYouTubeURL checks if input is a YouTube URL
func IsYouTubeURL(input string) bool {
	return youtubePattern.MatchString(input)
}

// IsSpotifyURL checks if input is a Spotify URL
func IsSpotifyURL(input string) bool {
	return spotifyPattern.MatchString(input)
}

// IsURL reports whether input looks like a URL at all. Anything else is
// treated as a search query.
func IsURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// DetectSource classifies user input into the source it should be resolved
// through
func DetectSource(input string) valueobjects.SourceType {
	switch {
	case IsYouTubeURL(input):
		return valueobjects.SourceTypeYouTube
	case IsSpotifyURL(input):
		return valueobjects.SourceTypeSpotify
	case IsURL(input):
		return valueobjects.SourceTypeURL
	default:
		return valueobjects.SourceTypeSearch
	}
}

// IsYouTubePlaylistURL checks if URL addresses a whole playlist
func IsYouTubePlaylistURL(input string) bool {
	return IsYouTubeURL(input) &&
		(strings.Contains(input, "playlist?list=") || strings.Contains(input, "&list="))
}

// ValidateVolume validates volume level (0-150)
func ValidateVolume(volume int) error {
	if volume < 0 || volume > 150 {
		return fmt.Errorf("%w: volume must be between 0 and 150", errors.ErrParameterOutOfRange)
	}
	return nil
}

// SanitizeInput sanitizes user input by removing potentially dangerous characters
func SanitizeInput(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}

// TruncateString safely truncates a string to max length
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	// Try to truncate at word boundary
	if maxLen > 3 {
		s = s[:maxLen-3]
		if idx := strings.LastIndexAny(s, " \t\n"); idx > 0 {
			s = s[:idx]
		}
		return s + "..."
	}

	return s[:maxLen]
}
