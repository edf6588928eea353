package services

import (
	"strings"

	"github.com/desertthunder/audiobox/internal/models"
)

// NormalizeTrack maps a raw catalog track into a [models.Track].
//
// The native preview wins over resolvedPreview. An empty artist list becomes
// [models.UnknownArtist]; an empty album name is kept as is.
func NormalizeTrack(raw SpotifyTrack, resolvedPreview string) models.Track {
	audio := raw.PreviewURL
	if audio == "" {
		audio = resolvedPreview
	}

	var cover string
	if len(raw.Album.Images) > 0 {
		cover = raw.Album.Images[0].URL
	}

	return models.Track{
		ID:       raw.ID,
		Title:    raw.Name,
		Artist:   joinArtists(raw.Artists),
		Album:    raw.Album.Name,
		Cover:    cover,
		AudioURL: audio,
		Duration: float64(raw.DurationMS) / 1000,
	}
}

// NormalizeTracks maps raws in order without resolving previews.
func NormalizeTracks(raws []SpotifyTrack) []models.Track {
	tracks := make([]models.Track, 0, len(raws))
	for _, raw := range raws {
		tracks = append(tracks, NormalizeTrack(raw, ""))
	}
	return tracks
}

func joinArtists(artists []SpotifyArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	if len(names) == 0 {
		return models.UnknownArtist
	}
	return strings.Join(names, ", ")
}
