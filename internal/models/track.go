package models

// UnknownArtist is used when a catalog record carries no artist names.
const UnknownArtist = "Unknown Artist"

// Track is the client-facing shape of a catalog track.
//
// AudioURL is empty when neither the catalog nor the embed page offered a preview.
// Duration is in seconds.
type Track struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album"`
	Cover    string  `json:"cover"`
	AudioURL string  `json:"audioUrl"`
	Duration float64 `json:"duration"`
	Genre    string  `json:"genre,omitempty"`
}

// Playable reports whether the track has a preview clip.
func (t Track) Playable() bool {
	return t.AudioURL != ""
}
