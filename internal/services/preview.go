package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiobox/internal/shared"
	"github.com/tidwall/gjson"
)

const (
	spotifyEmbedURL = "https://open.spotify.com"
	embedUserAgent  = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Locations of the preview clip inside the embed page's __NEXT_DATA__ payload.
var nextDataPreviewPaths = []string{
	"props.pageProps.state.data.entity.audioPreview.url",
	"props.pageProps.state.data.entity.previewUrl",
}

var previewURLPattern = regexp.MustCompile(`https://p\.scdn\.co/mp3-preview/[A-Za-z0-9]+(\?[A-Za-z0-9=&%._-]*)?`)

// PreviewResolver finds a preview clip for a track whose catalog record has none.
//
// A false result means no preview is available. It is not an error.
type PreviewResolver interface {
	ResolvePreview(ctx context.Context, trackID string) (string, bool)
}

// NoPreviews is a [PreviewResolver] that never finds anything.
type NoPreviews struct{}

func (NoPreviews) ResolvePreview(context.Context, string) (string, bool) { return "", false }

// EmbedPreviewResolver implements [PreviewResolver] by reading the provider's public embed page.
type EmbedPreviewResolver struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *log.Logger
}

// NewEmbedPreviewResolver creates an [EmbedPreviewResolver].
//
// baseURL defaults to https://open.spotify.com and timeout to eight seconds.
func NewEmbedPreviewResolver(baseURL string, timeout time.Duration, client *http.Client, logger *log.Logger) *EmbedPreviewResolver {
	if baseURL == "" {
		baseURL = spotifyEmbedURL
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &EmbedPreviewResolver{baseURL: baseURL, httpClient: client, timeout: timeout, logger: logger}
}

// ResolvePreview fetches the embed page for trackID and extracts the preview URL.
//
// Every failure is reported as absent and logged at info level.
func (r *EmbedPreviewResolver) ResolvePreview(ctx context.Context, trackID string) (string, bool) {
	if trackID == "" {
		return "", false
	}

	body, err := r.fetch(ctx, trackID)
	if err != nil {
		r.logger.Info("preview unavailable", "track_id", trackID, "reason", err)
		return "", false
	}

	if u := previewFromDocument(body); u != "" {
		return u, true
	}

	r.logger.Info("preview unavailable", "track_id", trackID, "reason", "no preview in embed page")
	return "", false
}

func (r *EmbedPreviewResolver) fetch(ctx context.Context, trackID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	endpoint := r.baseURL + "/embed/track/" + url.PathEscape(trackID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", embedUserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embed page returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
}

// previewFromDocument looks in the __NEXT_DATA__ script first and then anywhere in the page.
func previewFromDocument(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		payload := doc.Find("script#__NEXT_DATA__").First().Text()
		if u := previewFromNextData(payload); u != "" {
			return u
		}
	}
	return string(previewURLPattern.Find(body))
}

func previewFromNextData(payload string) string {
	if payload == "" || !gjson.Valid(payload) {
		return ""
	}
	for _, path := range nextDataPreviewPaths {
		if u := gjson.Get(payload, path).String(); u != "" {
			return u
		}
	}
	return ""
}
