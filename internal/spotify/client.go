package spotify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/justestif/go-music-catalog/internal/cache"
)

const (
	defaultBaseURL  = "https://api.spotify.com/v1"
	defaultTokenURL = "https://accounts.spotify.com/api/token"

	searchTimeout = 15 * time.Second

	// Outbound request budget shared by all lookups, so batch enrichment of a
	// large listing cannot stampede the API.
	requestsPerSecond = 10
)

// Client performs authenticated lookups against the Spotify Web API.
//
// Every method returns nil instead of an error when the lookup cannot be
// completed: missing credentials, transport failures, non-200 statuses, and
// malformed response bodies are all logged and absorbed. Callers treat nil as
// "no external data" and continue.
type Client struct {
	creds      *Credentials
	cache      cache.Store
	logger     *log.Logger
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	tokenURL   string
}

// NewClient creates a Client. creds may be nil, in which case every lookup
// returns nil; store backs the access-token cache and may be shared across
// processes.
func NewClient(creds *Credentials, store cache.Store, logger *log.Logger) *Client {
	return &Client{
		creds:      creds,
		cache:      store,
		logger:     logger,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		baseURL:    defaultBaseURL,
		tokenURL:   defaultTokenURL,
	}
}

// Enabled reports whether credentials were configured. When false, lookups
// are no-ops.
func (c *Client) Enabled() bool {
	return c.creds != nil
}

// SearchTrack searches for a track by title and artist, returning the
// highest-relevance match or nil.
func (c *Client) SearchTrack(ctx context.Context, title, artist string) *Track {
	body := c.search(ctx, fmt.Sprintf("track:%s artist:%s", title, artist), "track")
	if body == nil {
		return nil
	}

	var resp searchResponse
	if err := decodeLenient(body, &resp); err != nil {
		c.logger.Error("parsing track search response", "err", err)
		return nil
	}
	if len(resp.Tracks.Items) == 0 {
		c.logger.Warn("no tracks found", "title", title, "artist", artist)
		return nil
	}
	return resp.Tracks.Items[0].normalize()
}

// SearchAlbum searches for an album by title and artist, returning the
// highest-relevance match or nil.
func (c *Client) SearchAlbum(ctx context.Context, title, artist string) *Album {
	body := c.search(ctx, fmt.Sprintf("album:%s artist:%s", title, artist), "album")
	if body == nil {
		return nil
	}

	var resp searchResponse
	if err := decodeLenient(body, &resp); err != nil {
		c.logger.Error("parsing album search response", "err", err)
		return nil
	}
	if len(resp.Albums.Items) == 0 {
		c.logger.Warn("no albums found", "title", title, "artist", artist)
		return nil
	}
	return resp.Albums.Items[0].normalize()
}

// SearchArtist searches for an artist by name, returning the
// highest-relevance match or nil.
func (c *Client) SearchArtist(ctx context.Context, name string) *Artist {
	body := c.search(ctx, fmt.Sprintf("artist:%s", name), "artist")
	if body == nil {
		return nil
	}

	var resp searchResponse
	if err := decodeLenient(body, &resp); err != nil {
		c.logger.Error("parsing artist search response", "err", err)
		return nil
	}
	if len(resp.Artists.Items) == 0 {
		c.logger.Warn("no artists found", "name", name)
		return nil
	}
	return resp.Artists.Items[0].normalize()
}

// AudioFeatures fetches the audio descriptors for a track id. A 404 means
// the track has no features and returns nil without being treated as a
// failure.
func (c *Client) AudioFeatures(ctx context.Context, trackID string) *AudioFeatures {
	reqURL := c.baseURL + "/audio-features/" + url.PathEscape(trackID)

	body, status := c.doAuthorized(ctx, reqURL)
	switch {
	case body == nil:
		return nil
	case status == http.StatusNotFound:
		c.logger.Warn("audio features not available", "track_id", trackID)
		return nil
	case status != http.StatusOK:
		c.logger.Error("audio features request failed", "track_id", trackID, "status", status)
		return nil
	}

	var features AudioFeatures
	if err := decodeLenient(body, &features); err != nil {
		c.logger.Error("parsing audio features response", "err", err)
		return nil
	}
	return &features
}

// TrackData searches for a track and attaches its audio features. A missing
// feature set degrades the result rather than discarding it: the track is
// returned without Features.
func (c *Client) TrackData(ctx context.Context, title, artist string) *Track {
	track := c.SearchTrack(ctx, title, artist)
	if track == nil {
		return nil
	}
	if track.SpotifyID == "" {
		c.logger.Warn("search result carried no track id", "title", title)
		return track
	}
	track.Features = c.AudioFeatures(ctx, track.SpotifyID)
	return track
}

// search performs a GET /search with the given structured query, returning
// the raw body on a 200 and nil on any failure.
func (c *Client) search(ctx context.Context, query, kind string) []byte {
	params := url.Values{
		"q":     {query},
		"type":  {kind},
		"limit": {"1"},
	}
	reqURL := c.baseURL + "/search?" + params.Encode()

	body, status := c.doAuthorized(ctx, reqURL)
	if body == nil {
		return nil
	}
	if status != http.StatusOK {
		c.logger.Error("search request failed", "type", kind, "status", status)
		return nil
	}
	return body
}

// doAuthorized performs a bearer-authorized GET. A 401 evicts the cached
// token and retries once with a fresh one, since the cache TTL undershooting
// the real expiry is not guaranteed. Returns (nil, 0) when no token is
// obtainable or the transport fails.
func (c *Client) doAuthorized(ctx context.Context, reqURL string) (body []byte, status int) {
	body, status = c.doOnce(ctx, reqURL)
	if status != http.StatusUnauthorized {
		return body, status
	}

	c.logger.Warn("access token rejected, refreshing", "url", reqURL)
	c.invalidateToken()
	return c.doOnce(ctx, reqURL)
}

func (c *Client) doOnce(ctx context.Context, reqURL string) (body []byte, status int) {
	token := c.accessToken(ctx)
	if token == "" {
		return nil, 0
	}

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Error("waiting for rate limiter", "err", err)
		return nil, 0
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error("building request", "err", err)
		return nil, 0
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("executing request", "url", reqURL, "err", err)
		return nil, 0
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("reading response body", "err", err)
		return nil, 0
	}
	return body, resp.StatusCode
}
