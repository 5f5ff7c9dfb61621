package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	apperrors "github.com/zhotheone/discordmusicbot/internal/errors"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

// videoInfo is the subset of yt-dlp's --dump-json output we care about
type videoInfo struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	Uploader   string  `json:"uploader"`
	Thumbnail  string  `json:"thumbnail"`
	WebpageURL string  `json:"webpage_url"`
	URL        string  `json:"url,omitempty"` // flat playlist entries carry the page URL here
}

func (v *videoInfo) pageURL() string {
	if v.WebpageURL != "" {
		return v.WebpageURL
	}
	if v.URL != "" {
		return v.URL
	}
	return "https://www.youtube.com/watch?v=" + v.ID
}

// YouTubeClient extracts track metadata through yt-dlp
type YouTubeClient struct {
	ytDlpPath string
	logger    *logger.Logger
}

// NewYouTubeClient fails if yt-dlp is not installed
func NewYouTubeClient(log *logger.Logger) (*YouTubeClient, error) {
	ytDlpPath, err := exec.LookPath("yt-dlp")
	if err != nil {
		return nil, fmt.Errorf("yt-dlp not found in PATH: %w", err)
	}

	log.WithField("ytdlp_path", ytDlpPath).Info("YouTube client initialized")
	return &YouTubeClient{ytDlpPath: ytDlpPath, logger: log}, nil
}

// Lookup extracts metadata for a single video URL
func (c *YouTubeClient) Lookup(ctx context.Context, url string) (*videoInfo, error) {
	args := []string{
		"--dump-json",
		"--no-playlist",
		"--format", "bestaudio/best",
		"--no-check-certificate",
		"--geo-bypass",
		url,
	}

	output, err := exec.CommandContext(ctx, c.ytDlpPath, args...).Output()
	if err != nil {
		c.logger.WithError(err).WithField("url", url).Error("yt-dlp extraction failed")
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTrackNotFound, url)
	}

	var info videoInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	return &info, nil
}

// Search returns up to maxResults videos matching the query
func (c *YouTubeClient) Search(ctx context.Context, query string, maxResults int) ([]*videoInfo, error) {
	if maxResults <= 0 {
		maxResults = 1
	}

	args := []string{
		"--dump-json",
		"--no-check-certificate",
		"--geo-bypass",
		fmt.Sprintf("ytsearch%d:%s", maxResults, query),
	}

	output, err := exec.CommandContext(ctx, c.ytDlpPath, args...).Output()
	if err != nil {
		c.logger.WithError(err).WithField("query", query).Error("YouTube search failed")
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTrackNotFound, query)
	}

	return parseLines(output, c.logger)
}

// Playlist extracts all entries of a playlist URL. Flat extraction returns
// page URLs and titles only; full metadata is fetched lazily when each track
// starts.
func (c *YouTubeClient) Playlist(ctx context.Context, url string) ([]*videoInfo, error) {
	args := []string{
		"--dump-json",
		"--flat-playlist",
		"--no-check-certificate",
		"--geo-bypass",
		url,
	}

	output, err := exec.CommandContext(ctx, c.ytDlpPath, args...).Output()
	if err != nil {
		c.logger.WithError(err).WithField("url", url).Error("Playlist extraction failed")
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTrackNotFound, url)
	}

	return parseLines(output, c.logger)
}

// parseLines parses one JSON object per line, skipping malformed entries
func parseLines(output []byte, log *logger.Logger) ([]*videoInfo, error) {
	var videos []*videoInfo
	for _, line := range strings.Split(string(output), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		var info videoInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			log.WithError(err).Warn("Failed to parse yt-dlp entry")
			continue
		}
		videos = append(videos, &info)
	}

	if len(videos) == 0 {
		return nil, apperrors.ErrTrackNotFound
	}
	return videos, nil
}
