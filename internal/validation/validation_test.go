package validation

import (
	goerrors "errors"
	"testing"

	"github.com/zhotheone/discordmusicbot/internal/domain/valueobjects"
	"github.com/zhotheone/discordmusicbot/internal/errors"
)

func TestDetectSource(t *testing.T) {
	tests := []struct {
		input string
		want  valueobjects.SourceType
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", valueobjects.SourceTypeYouTube},
		{"https://youtu.be/dQw4w9WgXcQ", valueobjects.SourceTypeYouTube},
		{"https://music.youtube.com/watch?v=abc123", valueobjects.SourceTypeYouTube},
		{"https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT", valueobjects.SourceTypeSpotify},
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", valueobjects.SourceTypeSpotify},
		{"https://open.spotify.com/album/6dVIqQ8qmQ5GBnJ9shOYGE", valueobjects.SourceTypeSpotify},
		{"https://example.com/audio.mp3", valueobjects.SourceTypeURL},
		{"never gonna give you up", valueobjects.SourceTypeSearch},
		{"rick astley", valueobjects.SourceTypeSearch},
	}

	for _, tt := range tests {
		if got := DetectSource(tt.input); got != tt.want {
			t.Errorf("DetectSource(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestIsYouTubePlaylistURL(t *testing.T) {
	if !IsYouTubePlaylistURL("https://www.youtube.com/playlist?list=PLx0sYbCqOb8TBPRdmBHs5Iftvv9TPboYG") {
		t.Error("Expected playlist URL to be detected")
	}
	if !IsYouTubePlaylistURL("https://www.youtube.com/watch?v=abc&list=PLx0s") {
		t.Error("Expected watch URL with list param to be detected")
	}
	if IsYouTubePlaylistURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ") {
		t.Error("Plain watch URL is not a playlist")
	}
	if IsYouTubePlaylistURL("https://example.com/playlist?list=x") {
		t.Error("Non-YouTube URL is not a YouTube playlist")
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("https://www.youtube.com/watch?v=abc"); err != nil {
		t.Errorf("Expected valid URL, got %v", err)
	}
	if err := ValidateURL(""); !goerrors.Is(err, errors.ErrInvalidURL) {
		t.Errorf("Expected ErrInvalidURL for empty input, got %v", err)
	}
	if err := ValidateURL("not a url"); !goerrors.Is(err, errors.ErrInvalidURL) {
		t.Errorf("Expected ErrInvalidURL for garbage, got %v", err)
	}
}

func TestValidateVolume(t *testing.T) {
	for _, v := range []int{0, 50, 150} {
		if err := ValidateVolume(v); err != nil {
			t.Errorf("ValidateVolume(%d) should pass: %v", v, err)
		}
	}
	for _, v := range []int{-1, 151, 500} {
		if err := ValidateVolume(v); !goerrors.Is(err, errors.ErrParameterOutOfRange) {
			t.Errorf("ValidateVolume(%d) should fail with ErrParameterOutOfRange, got %v", v, err)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := SanitizeInput("  hello\x00world  "); got != "helloworld" {
		t.Errorf("Expected helloworld, got %q", got)
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("Short strings pass through, got %q", got)
	}
	got := TruncateString("a very long track title here", 15)
	if len(got) > 15 {
		t.Errorf("Truncated string too long: %q", got)
	}
}
