// package tasks implements the catalog workflows behind the HTTP API and the CLI.
//
// The core abstraction is CatalogEngine, which combines the catalog client, the preview resolver
// and the normalizer into search, new-releases and track lookups.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiobox/internal/models"
	"github.com/desertthunder/audiobox/internal/services"
	"github.com/desertthunder/audiobox/internal/shared"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSearchLimit      = 20
	MaxSearchLimit          = 50
	DefaultNewReleasesLimit = 20
	DefaultAlbumPage        = 8
	DefaultTracksPerAlbum   = 2
	DefaultConcurrency      = 4
)

// Workflows is the surface consumed by the HTTP handlers and the terminal browser.
type Workflows interface {
	Search(ctx context.Context, query string, limit int) ([]models.Track, error)
	NewReleases(ctx context.Context, limit int) ([]models.Track, error)
	TrackByID(ctx context.Context, id string) (*models.Track, error)
	FavoriteTracks(ctx context.Context, ids []string) ([]models.Track, error)
}

// EngineOptions tunes a [CatalogEngine]. Zero values fall back to the package defaults.
type EngineOptions struct {
	AlbumPage      int
	TracksPerAlbum int
	Concurrency    int
	Unplayable     UnplayablePolicy // applies to new releases only
	Logger         *log.Logger
}

// CatalogEngine implements [Workflows].
type CatalogEngine struct {
	catalog  services.Catalog
	previews services.PreviewResolver
	opts     EngineOptions
	logger   *log.Logger
}

// NewCatalogEngine creates a [CatalogEngine]. A nil resolver never finds previews.
func NewCatalogEngine(catalog services.Catalog, previews services.PreviewResolver, opts EngineOptions) *CatalogEngine {
	if previews == nil {
		previews = services.NoPreviews{}
	}
	if opts.AlbumPage <= 0 {
		opts.AlbumPage = DefaultAlbumPage
	}
	if opts.TracksPerAlbum <= 0 {
		opts.TracksPerAlbum = DefaultTracksPerAlbum
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &CatalogEngine{catalog: catalog, previews: previews, opts: opts, logger: logger}
}

// Search returns normalized tracks for query in provider order.
//
// Previews are not resolved, so results may have an empty audioUrl. Upstream failures propagate.
func (e *CatalogEngine) Search(ctx context.Context, query string, limit int) ([]models.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", shared.ErrInvalidInput)
	}

	switch {
	case limit <= 0:
		limit = DefaultSearchLimit
	case limit > MaxSearchLimit:
		limit = MaxSearchLimit
	}

	raws, err := e.catalog.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return services.NormalizeTracks(raws), nil
}

// NewReleases returns at most limit tracks from the new-release albums.
func (e *CatalogEngine) NewReleases(ctx context.Context, limit int) ([]models.Track, error) {
	report, err := e.NewReleasesReport(ctx, limit, nil)
	return report.Tracks, err
}

// NewReleasesReport lists new-release albums, takes the first few tracks of each, fetches
// their details and resolves missing previews, stopping once limit tracks are collected.
//
// Albums are visited in order. Within an album, track details are fetched concurrently
// in waves no larger than the number of tracks still needed, so nothing past the limit
// is ever requested. Per-item failures are recorded in the report and skipped.
// Only a failure to list the albums is returned, together with an empty track list.
func (e *CatalogEngine) NewReleasesReport(ctx context.Context, limit int, progress chan<- ProgressUpdate) (*NewReleasesReport, error) {
	if limit <= 0 {
		limit = DefaultNewReleasesLimit
	}
	report := &NewReleasesReport{Tracks: []models.Track{}}

	sendProgress(progress, fetchAlbumsUpdate())
	albums, err := e.catalog.NewReleaseAlbums(ctx, e.opts.AlbumPage)
	if err != nil {
		return report, fmt.Errorf("list new releases: %w", err)
	}
	report.AlbumsListed = len(albums)

	for i, album := range albums {
		if len(report.Tracks) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.AlbumsVisited++
		sendProgress(progress, albumTracksUpdate(i+1, len(albums), album.Name))

		refs, err := e.catalog.AlbumTracks(ctx, album.ID, e.opts.TracksPerAlbum)
		if err != nil {
			e.logger.Warn("skipping album", "album_id", album.ID, "error", err)
			item := Skipped(SkipAlbumTracks, album.ID, err)
			item.Skipped.AlbumID = album.ID
			report.Items = append(report.Items, item)
			continue
		}

		pending := refs
		for len(pending) > 0 && len(report.Tracks) < limit {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			n := min(limit-len(report.Tracks), len(pending))
			wave := pending[:n]
			pending = pending[n:]

			ids := make([]string, len(wave))
			for j, ref := range wave {
				ids[j] = ref.ID
			}

			for _, item := range e.resolveAll(ctx, ids, e.opts.Unplayable) {
				if item.Skipped != nil {
					item.Skipped.AlbumID = album.ID
				}
				report.Items = append(report.Items, item)

				if item.IsOk() {
					report.Tracks = append(report.Tracks, *item.Track)
					sendProgress(progress, trackUpdate(len(report.Tracks), limit, *item.Track))
				} else {
					sendProgress(progress, skippedUpdate(len(report.Tracks), limit, item.Skipped))
				}
			}
		}
	}

	if len(report.Tracks) > limit {
		report.Tracks = report.Tracks[:limit]
	}
	sendProgress(progress, doneUpdate(len(report.Tracks)))
	return report, nil
}

// TrackByID returns the track with a playable preview, or [shared.ErrTrackNotFound]
// when the provider does not know it or no preview can be found.
func (e *CatalogEngine) TrackByID(ctx context.Context, id string) (*models.Track, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: track id is required", shared.ErrInvalidInput)
	}

	item := e.resolve(ctx, id, ExcludeUnplayable)
	if item.IsOk() {
		return item.Track, nil
	}

	switch skip := item.Skipped; skip.Reason {
	case SkipUnplayable:
		return nil, fmt.Errorf("%w: %s has no playable preview", shared.ErrTrackNotFound, id)
	default:
		return nil, skip.Err
	}
}

// FavoriteTracks resolves saved track ids into playable tracks, keeping their order.
//
// Ids that are unknown, unplayable or fail to load are dropped.
func (e *CatalogEngine) FavoriteTracks(ctx context.Context, ids []string) ([]models.Track, error) {
	tracks := make([]models.Track, 0, len(ids))
	for _, item := range e.resolveAll(ctx, ids, ExcludeUnplayable) {
		if item.IsOk() {
			tracks = append(tracks, *item.Track)
			continue
		}
		if !errors.Is(item.Skipped, shared.ErrTrackNotFound) && item.Skipped.Reason != SkipUnplayable {
			e.logger.Warn("dropping favorite", "track_id", item.Skipped.ID, "error", item.Skipped.Err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return tracks, nil
}

// resolveAll resolves ids with bounded concurrency and returns results in input order.
func (e *CatalogEngine) resolveAll(ctx context.Context, ids []string, policy UnplayablePolicy) []ItemResult {
	results := make([]ItemResult, len(ids))

	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = e.resolve(ctx, id, policy)
			return nil
		})
	}
	g.Wait()

	return results
}

// resolve fetches one track, fills a missing preview through the resolver and applies policy.
func (e *CatalogEngine) resolve(ctx context.Context, id string, policy UnplayablePolicy) ItemResult {
	raw, err := e.catalog.Track(ctx, id)
	if err != nil {
		if !errors.Is(err, shared.ErrTrackNotFound) {
			e.logger.Warn("track fetch failed", "track_id", id, "error", err)
		}
		return Skipped(SkipTrackFetch, id, err)
	}

	var preview string
	if raw.PreviewURL == "" {
		if u, ok := e.previews.ResolvePreview(ctx, raw.ID); ok {
			preview = u
		}
	}

	track := services.NormalizeTrack(*raw, preview)
	if !track.Playable() {
		e.logger.Info("preview unavailable", "track_id", id, "policy", policy)
		if policy == ExcludeUnplayable {
			return Skipped(SkipUnplayable, id, nil)
		}
	}
	return Ok(track)
}
