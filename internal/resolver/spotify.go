package resolver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

var (
	spotifyTrackRegex    = regexp.MustCompile(`spotify\.com/track/([a-zA-Z0-9]+)`)
	spotifyPlaylistRegex = regexp.MustCompile(`spotify\.com/playlist/([a-zA-Z0-9]+)`)
	spotifyAlbumRegex    = regexp.MustCompile(`spotify\.com/album/([a-zA-Z0-9]+)`)
)

// SpotifyClient resolves Spotify links to track metadata through the Web API.
// Spotify streams cannot be played directly; resolved tracks are matched on
// YouTube by artist and title.
type SpotifyClient struct {
	clientID     string
	clientSecret string
	logger       *logger.Logger
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// spotifyTrack is a track object from the Web API
type spotifyTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DurationMs int    `json:"duration_ms"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

func (t *spotifyTrack) artist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// searchQuery builds the YouTube query used to find a playable upload
func (t *spotifyTrack) searchQuery() string {
	if t.artist() == "" {
		return t.Name
	}
	return fmt.Sprintf("%s - %s", t.artist(), t.Name)
}

func (t *spotifyTrack) thumbnail() string {
	if len(t.Album.Images) == 0 {
		return ""
	}
	return t.Album.Images[0].URL
}

type spotifyTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type spotifyPlaylistResponse struct {
	Items []struct {
		Track spotifyTrack `json:"track"`
	} `json:"items"`
	Next string `json:"next"`
}

type spotifyAlbumResponse struct {
	Items []spotifyTrack `json:"items"`
	Next  string         `json:"next"`
}

// NewSpotifyClient creates a client and verifies the credentials by fetching
// an initial access token
func NewSpotifyClient(ctx context.Context, clientID, clientSecret string, log *logger.Logger) (*SpotifyClient, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("spotify credentials not provided")
	}

	c := &SpotifyClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       log,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}

	if err := c.refreshAccessToken(ctx); err != nil {
		return nil, fmt.Errorf("spotify auth: %w", err)
	}

	log.Info("Spotify client initialized")
	return c, nil
}

func (c *SpotifyClient) refreshAccessToken(ctx context.Context) error {
	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://accounts.spotify.com/api/token", strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}

	auth := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("spotify auth failed: %s - %s", resp.Status, string(body))
	}

	var tokenResp spotifyTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return err
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	c.logger.Debug("Spotify access token refreshed")
	return nil
}

// token returns a valid bearer token, refreshing it when close to expiry
func (c *SpotifyClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().After(c.tokenExpiry.Add(-5 * time.Minute)) {
		if err := c.refreshAccessToken(ctx); err != nil {
			return "", err
		}
	}
	return c.accessToken, nil
}

func (c *SpotifyClient) apiGet(ctx context.Context, endpoint string) ([]byte, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("spotify API error: %s - %s", resp.Status, string(body))
	}

	return io.ReadAll(resp.Body)
}

// Track fetches a single track by ID
func (c *SpotifyClient) Track(ctx context.Context, trackID string) (*spotifyTrack, error) {
	body, err := c.apiGet(ctx, "https://api.spotify.com/v1/tracks/"+trackID)
	if err != nil {
		return nil, err
	}

	var track spotifyTrack
	if err := json.Unmarshal(body, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// PlaylistTracks fetches every track of a playlist, following pagination
func (c *SpotifyClient) PlaylistTracks(ctx context.Context, playlistID string) ([]spotifyTrack, error) {
	var all []spotifyTrack
	endpoint := fmt.Sprintf("https://api.spotify.com/v1/playlists/%s/tracks", playlistID)

	for endpoint != "" {
		body, err := c.apiGet(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		var resp spotifyPlaylistResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			all = append(all, item.Track)
		}
		endpoint = resp.Next
	}

	return all, nil
}

// AlbumTracks fetches every track of an album, following pagination
func (c *SpotifyClient) AlbumTracks(ctx context.Context, albumID string) ([]spotifyTrack, error) {
	var all []spotifyTrack
	endpoint := fmt.Sprintf("https://api.spotify.com/v1/albums/%s/tracks", albumID)

	for endpoint != "" {
		body, err := c.apiGet(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		var resp spotifyAlbumResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}

		all = append(all, resp.Items...)
		endpoint = resp.Next
	}

	return all, nil
}

// parseSpotifyURL returns the resource type and ID of a Spotify link
func parseSpotifyURL(urlStr string) (urlType, id string, err error) {
	if matches := spotifyTrackRegex.FindStringSubmatch(urlStr); len(matches) > 1 {
		return "track", matches[1], nil
	}
	if matches := spotifyPlaylistRegex.FindStringSubmatch(urlStr); len(matches) > 1 {
		return "playlist", matches[1], nil
	}
	if matches := spotifyAlbumRegex.FindStringSubmatch(urlStr); len(matches) > 1 {
		return "album", matches[1], nil
	}
	return "", "", fmt.Errorf("unrecognized Spotify URL")
}
