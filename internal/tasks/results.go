package tasks

import (
	"fmt"

	"github.com/desertthunder/audiobox/internal/models"
)

// UnplayablePolicy decides what happens to a track that has no preview after resolution.
type UnplayablePolicy int

const (
	// IncludeUnplayable keeps the track with an empty audioUrl.
	IncludeUnplayable UnplayablePolicy = iota
	// ExcludeUnplayable drops the track.
	ExcludeUnplayable
)

func (p UnplayablePolicy) String() string {
	switch p {
	case IncludeUnplayable:
		return "include_unplayable"
	case ExcludeUnplayable:
		return "exclude_unplayable"
	default:
		return fmt.Sprintf("UnplayablePolicy(%d)", int(p))
	}
}

// SkipReason names why an item was left out of a batch.
type SkipReason string

const (
	SkipAlbumTracks SkipReason = "album_tracks_failed"
	SkipTrackFetch  SkipReason = "track_fetch_failed"
	SkipUnplayable  SkipReason = "unplayable"
)

// Skip describes an absorbed per-item failure.
type Skip struct {
	Reason  SkipReason
	ID      string // album id for SkipAlbumTracks, track id otherwise
	AlbumID string
	Err     error
}

func (s *Skip) Error() string {
	if s.Err != nil {
		return fmt.Sprintf("%s %s: %v", s.Reason, s.ID, s.Err)
	}
	return fmt.Sprintf("%s %s", s.Reason, s.ID)
}

func (s *Skip) Unwrap() error { return s.Err }

// ItemResult is the outcome of one item in a batch: exactly one of Track or Skipped is set.
type ItemResult struct {
	Track   *models.Track
	Skipped *Skip
}

// Ok wraps a resolved track.
func Ok(t models.Track) ItemResult { return ItemResult{Track: &t} }

// Skipped wraps an absorbed failure.
func Skipped(reason SkipReason, id string, err error) ItemResult {
	return ItemResult{Skipped: &Skip{Reason: reason, ID: id, Err: err}}
}

// IsOk reports whether the item produced a track.
func (r ItemResult) IsOk() bool { return r.Track != nil }

// NewReleasesReport is the full account of a new-releases run.
type NewReleasesReport struct {
	Tracks        []models.Track // at most limit tracks, in album order
	Items         []ItemResult   // every attempted item, in order
	AlbumsListed  int
	AlbumsVisited int
}

// Skips returns the absorbed failures of the run.
func (r *NewReleasesReport) Skips() []Skip {
	var skips []Skip
	for _, item := range r.Items {
		if item.Skipped != nil {
			skips = append(skips, *item.Skipped)
		}
	}
	return skips
}
