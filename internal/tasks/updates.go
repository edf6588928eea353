package tasks

import (
	"fmt"

	"github.com/desertthunder/audiobox/internal/models"
)

// ProgressUpdate represents a progress event during a long-running workflow.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Workflow phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Workflow phase enumeration
type Phase int

const (
	FetchAlbums Phase = iota
	FetchAlbumTracks
	FetchTracks
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchAlbums:
		return "fetch_albums"
	case FetchAlbumTracks:
		return "fetch_album_tracks"
	case FetchTracks:
		return "fetch_tracks"
	case Done:
		return "done"
	default:
		return ""
	}
}

// sendProgress sends update without blocking. A nil or full channel drops it.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchAlbumsUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchAlbums, Step: 0, Total: 1, Message: "Fetching new releases..."}
}

func albumTracksUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbumTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Listing tracks of %s...", step, total, name),
	}
}

func trackUpdate(step, limit int, tr models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   limit,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, limit, tr.Artist, tr.Title),
		Data:    tr,
	}
}

func skippedUpdate(step, limit int, skip *Skip) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   limit,
		Message: fmt.Sprintf("Skipped %s (%s)", skip.ID, skip.Reason),
		Data:    skip,
	}
}

func doneUpdate(count int) ProgressUpdate {
	return ProgressUpdate{Phase: Done, Step: count, Total: count, Message: fmt.Sprintf("Collected %d tracks", count)}
}
