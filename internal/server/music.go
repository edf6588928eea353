package server

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiobox/internal/models"
	"github.com/desertthunder/audiobox/internal/tasks"
)

type tracksResponse struct {
	Tracks []models.Track `json:"tracks"`
	Count  int            `json:"count"`
}

func newTracksResponse(tracks []models.Track) tracksResponse {
	if tracks == nil {
		tracks = []models.Track{}
	}
	return tracksResponse{Tracks: tracks, Count: len(tracks)}
}

// MusicHandler serves catalog search, new releases and single track lookup.
type MusicHandler struct {
	workflows tasks.Workflows
	logger    *log.Logger
}

// NewMusicHandler creates a [MusicHandler].
func NewMusicHandler(workflows tasks.Workflows, logger *log.Logger) *MusicHandler {
	return &MusicHandler{workflows: workflows, logger: logger}
}

func (h *MusicHandler) Routes() []string {
	return []string{
		"GET /music/search",
		"GET /music/newreleases",
		"GET /music/getid/{trackId}",
	}
}

func (h *MusicHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case "GET /music/search":
		h.search(w, r)
	case "GET /music/newreleases":
		h.newReleases(w, r)
	default:
		h.track(w, r)
	}
}

func (h *MusicHandler) search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	limit, err := queryLimit(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	tracks, err := h.workflows.Search(r.Context(), query, limit)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newTracksResponse(tracks))
}

func (h *MusicHandler) newReleases(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	tracks, err := h.workflows.NewReleases(r.Context(), limit)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if tracks == nil {
		tracks = []models.Track{}
	}
	writeJSON(w, http.StatusOK, tracks)
}

func (h *MusicHandler) track(w http.ResponseWriter, r *http.Request) {
	track, err := h.workflows.TrackByID(r.Context(), r.PathValue("trackId"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, track)
}
