// Spotify Web API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiobox/internal/shared"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	maxErrorBody    = 512
	maxResponseBody = 4 << 20
	maxRetryAfter   = 5 * time.Second
)

// SpotifyImage represents an image resource. The API lists images largest first.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	AlbumType   string          `json:"album_type"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	Images      []SpotifyImage  `json:"images"`
	URI         string          `json:"uri"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyTrack represents a full Spotify track object.
//
// PreviewURL is empty when the API returns null.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	PreviewURL  string          `json:"preview_url"`
	Explicit    bool            `json:"explicit"`
	ExternalIDs externalIDs     `json:"external_ids"`
	Popularity  int             `json:"popularity"`
	URI         string          `json:"uri"`
}

// SpotifyTrackRef is the simplified track listed on an album. It carries no album or artwork.
type SpotifyTrackRef struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	DurationMS  int             `json:"duration_ms"`
	PreviewURL  string          `json:"preview_url"`
	TrackNumber int             `json:"track_number"`
}

type paging[T any] struct {
	Items  []T     `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

type searchResponse struct {
	Tracks paging[SpotifyTrack] `json:"tracks"`
}

type newReleasesResponse struct {
	Albums paging[SpotifyAlbum] `json:"albums"`
}

// Catalog is the read-only surface of the provider used by the workflows.
type Catalog interface {
	// Search returns raw tracks matching query.
	Search(ctx context.Context, query string, limit int) ([]SpotifyTrack, error)
	// NewReleaseAlbums returns the provider's new-release album page.
	NewReleaseAlbums(ctx context.Context, limit int) ([]SpotifyAlbum, error)
	// AlbumTracks returns the track references of an album.
	AlbumTracks(ctx context.Context, albumID string, limit int) ([]SpotifyTrackRef, error)
	// Track returns a full track. Unknown ids fail with [shared.ErrTrackNotFound].
	Track(ctx context.Context, trackID string) (*SpotifyTrack, error)
}

// RequestError is returned for a non-2xx catalog response.
type RequestError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%v: %s returned status %d", shared.ErrCatalogRequest, e.Endpoint, e.Status)
}

func (e *RequestError) Unwrap() error { return shared.ErrCatalogRequest }

// CatalogOptions tunes a [SpotifyCatalog]. Zero values fall back to defaults.
type CatalogOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	RetryBackoff      time.Duration
	HTTPClient        *http.Client
	Logger            *log.Logger
}

// SpotifyCatalog implements [Catalog] against the Spotify Web API.
//
// Each call is rate limited, bounded by a timeout and retried once on a network
// error, 429 or 5xx. A 401 refreshes the token once before giving up.
type SpotifyCatalog struct {
	creds      CredentialCache
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	backoff    time.Duration
	logger     *log.Logger
}

// NewSpotifyCatalog creates a [SpotifyCatalog] that authenticates through creds.
func NewSpotifyCatalog(creds CredentialCache, opts CatalogOptions) *SpotifyCatalog {
	c := &SpotifyCatalog{
		creds:      creds,
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
		backoff:    opts.RetryBackoff,
		logger:     opts.Logger,
	}

	if c.baseURL == "" {
		c.baseURL = spotifyBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	if c.backoff <= 0 {
		c.backoff = 500 * time.Millisecond
	}
	if c.logger == nil {
		c.logger = shared.NewLogger(nil)
	}

	limit, burst := rate.Inf, opts.Burst
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(limit, burst)

	return c
}

// Search returns tracks matching query, in provider order.
func (c *SpotifyCatalog) Search(ctx context.Context, query string, limit int) ([]SpotifyTrack, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))

	var response searchResponse
	if err := c.doRequest(ctx, "/search", params, &response); err != nil {
		return nil, err
	}
	return response.Tracks.Items, nil
}

// NewReleaseAlbums returns up to limit new-release albums.
func (c *SpotifyCatalog) NewReleaseAlbums(ctx context.Context, limit int) ([]SpotifyAlbum, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var response newReleasesResponse
	if err := c.doRequest(ctx, "/browse/new-releases", params, &response); err != nil {
		return nil, err
	}
	return response.Albums.Items, nil
}

// AlbumTracks returns up to limit track references for albumID.
func (c *SpotifyCatalog) AlbumTracks(ctx context.Context, albumID string, limit int) ([]SpotifyTrackRef, error) {
	if albumID == "" {
		return nil, fmt.Errorf("%w: album id is required", shared.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var response paging[SpotifyTrackRef]
	endpoint := "/albums/" + url.PathEscape(albumID) + "/tracks"
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}
	return response.Items, nil
}

// Track retrieves a single track by ID.
//
// The API answers 400 for malformed ids and 404 for unknown ones; both become [shared.ErrTrackNotFound].
func (c *SpotifyCatalog) Track(ctx context.Context, trackID string) (*SpotifyTrack, error) {
	if trackID == "" {
		return nil, fmt.Errorf("%w: track id is required", shared.ErrInvalidInput)
	}

	var track SpotifyTrack
	if err := c.doRequest(ctx, "/tracks/"+url.PathEscape(trackID), nil, &track); err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) && (reqErr.Status == http.StatusNotFound || reqErr.Status == http.StatusBadRequest) {
			return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
		}
		return nil, err
	}
	return &track, nil
}

type reply struct {
	status     int
	body       []byte
	retryAfter time.Duration
}

// doRequest performs an authenticated GET against the API and decodes the JSON body into result.
func (c *SpotifyCatalog) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return err
	}

	var retried, refreshed bool
	for {
		rep, err := c.send(ctx, endpoint, params, token)

		switch {
		case err != nil:
			if retried || ctx.Err() != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					return fmt.Errorf("%w: %w: %s: %v", shared.ErrCatalogRequest, shared.ErrTimeout, endpoint, err)
				}
				return fmt.Errorf("%w: %s: %v", shared.ErrCatalogRequest, endpoint, err)
			}
		case rep.status == http.StatusUnauthorized && !refreshed:
			refreshed = true
			c.logger.Debug("catalog token rejected, refreshing", "endpoint", endpoint)
			if token, err = c.creds.Refresh(ctx); err != nil {
				return err
			}
			continue
		case transient(rep.status) && !retried:
		case rep.status < 200 || rep.status >= 300:
			return &RequestError{Endpoint: endpoint, Status: rep.status, Body: truncate(rep.body, maxErrorBody)}
		default:
			if result == nil {
				return nil
			}
			if err := json.Unmarshal(rep.body, result); err != nil {
				return fmt.Errorf("%w: failed to decode %s: %v", shared.ErrCatalogRequest, endpoint, err)
			}
			return nil
		}

		retried = true
		wait := c.backoff
		if rep.retryAfter > 0 {
			wait = min(rep.retryAfter, maxRetryAfter)
		}
		c.logger.Warn("retrying catalog request", "endpoint", endpoint, "status", rep.status, "error", err, "wait", wait)
		if err := sleep(ctx, wait); err != nil {
			return fmt.Errorf("%w: %s: %v", shared.ErrCatalogRequest, endpoint, err)
		}
	}
}

// send performs a single rate-limited attempt bounded by the per-call timeout.
func (c *SpotifyCatalog) send(ctx context.Context, endpoint string, params url.Values, token string) (reply, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return reply{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return reply{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return reply{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return reply{}, fmt.Errorf("failed to read response: %w", err)
	}

	rep := reply{status: resp.StatusCode, body: body}
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			rep.retryAfter = time.Duration(secs) * time.Second
		}
	}
	return rep, nil
}

func transient(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
