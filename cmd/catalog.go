package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/audiobox/internal/formatter"
	"github.com/desertthunder/audiobox/internal/models"
	"github.com/desertthunder/audiobox/internal/shared"
	"github.com/desertthunder/audiobox/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CatalogSearch prints normalized search results for the query argument.
func (r *Runner) CatalogSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	engine, err := r.Engine()
	if err != nil {
		return err
	}

	r.logger.Debug("searching catalog", "query", query, "limit", cmd.Int("limit"))
	tracks, err := engine.Search(ctx, query, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if err := r.exportTracks(cmd, fmt.Sprintf("Search: %s", query), tracks); err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Results for %q", query))
	r.writeTracks(tracks)
	return nil
}

// CatalogReleases collects tracks from new-release albums and reports progress as it goes.
func (r *Runner) CatalogReleases(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()

	report, err := engine.NewReleasesReport(ctx, cmd.Int("limit"), progress)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("new releases failed: %w", err)
	}

	if err := r.exportTracks(cmd, "New Releases", report.Tracks); err != nil {
		return err
	}

	if cmd.Bool("json") {
		if cmd.Bool("report") {
			return r.writeJSON(releasesReportJSON(report), cmd.Bool("pretty"))
		}
		return r.writeJSON(report.Tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("New Releases (%d albums listed, %d visited)", report.AlbumsListed, report.AlbumsVisited))
	r.writeTracks(report.Tracks)

	if cmd.Bool("report") {
		skips := report.Skips()
		r.writePlain("\nSkipped: %d\n", len(skips))
		for _, s := range skips {
			r.writePlain("  • %s\n", s.Error())
		}
	}
	return nil
}

// CatalogTrack prints one track with a playable preview.
func (r *Runner) CatalogTrack(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	engine, err := r.Engine()
	if err != nil {
		return err
	}

	track, err := engine.TrackByID(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(track, cmd.Bool("pretty"))
	}

	r.writePlainHeader(track.Title)
	r.writePlain("Artist:   %s\n", track.Artist)
	r.writePlain("Album:    %s\n", track.Album)
	r.writePlain("Duration: %s\n", shared.FormatDuration(track.Duration))
	r.writePlain("Cover:    %s\n", track.Cover)
	r.writePlain("Preview:  %s\n", track.AudioURL)
	return nil
}

// exportTracks writes tracks to the --export path when one was given.
func (r *Runner) exportTracks(cmd *cli.Command, title string, tracks []models.Track) error {
	path := cmd.String("export")
	if path == "" {
		return nil
	}

	format, err := formatter.ParseFormat(cmd.String("format"), path)
	if err != nil {
		return err
	}

	if err := formatter.WriteExport(path, format, title, tracks); err != nil {
		return err
	}
	r.logger.Info("exported tracks", "path", path, "format", format, "count", len(tracks))
	return nil
}

func (r *Runner) writeTracks(tracks []models.Track) {
	if len(tracks) == 0 {
		r.writePlain("No tracks found\n")
		return
	}

	for i, t := range tracks {
		preview := "preview"
		if !t.Playable() {
			preview = "no preview"
		}
		r.writePlain("%2d. %s - %s (%s) [%s] %s\n", i+1, t.Artist, t.Title, shared.FormatDuration(t.Duration), preview, t.ID)
	}
}

type skipJSON struct {
	Reason  tasks.SkipReason `json:"reason"`
	ID      string           `json:"id"`
	AlbumID string           `json:"albumId,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func releasesReportJSON(report *tasks.NewReleasesReport) map[string]any {
	skips := []skipJSON{}
	for _, s := range report.Skips() {
		entry := skipJSON{Reason: s.Reason, ID: s.ID, AlbumID: s.AlbumID}
		if s.Err != nil {
			entry.Error = s.Err.Error()
		}
		skips = append(skips, entry)
	}

	return map[string]any{
		"tracks":        report.Tracks,
		"albumsListed":  report.AlbumsListed,
		"albumsVisited": report.AlbumsVisited,
		"skipped":       skips,
	}
}
