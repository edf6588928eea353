package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiobox/internal/models"
	"github.com/desertthunder/audiobox/internal/tasks"
)

// Preferences is the per-user surface used by [UserHandler].
type Preferences interface {
	SetTheme(userID, theme string) (models.Theme, error)
	Favorites(userID string) ([]string, error)
	AddFavorite(userID, trackID string) ([]string, error)
	RemoveFavorite(userID, trackID string) ([]string, error)
}

type themeRequest struct {
	Theme string `json:"themePref"`
}

type favoriteRequest struct {
	TrackID string `json:"trackId"`
}

type favoritesResponse struct {
	Message   string   `json:"message"`
	Favorites []string `json:"favorites"`
}

// UserHandler serves theme preference and favorites. Register it behind [RequireAuth].
type UserHandler struct {
	prefs     Preferences
	workflows tasks.Workflows
	logger    *log.Logger
}

// NewUserHandler creates a [UserHandler].
func NewUserHandler(prefs Preferences, workflows tasks.Workflows, logger *log.Logger) *UserHandler {
	return &UserHandler{prefs: prefs, workflows: workflows, logger: logger}
}

func (h *UserHandler) Routes() []string {
	return []string{
		"PATCH /user/theme",
		"GET /user/favorites",
		"POST /user/favorites",
		"DELETE /user/favorites/{trackId}",
		"GET /user/favorites/tracks",
	}
}

func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "token not found")
		return
	}

	switch r.Pattern {
	case "PATCH /user/theme":
		h.setTheme(w, r, session.UserID)
	case "GET /user/favorites":
		h.favorites(w, r, session.UserID)
	case "POST /user/favorites":
		h.addFavorite(w, r, session.UserID)
	case "DELETE /user/favorites/{trackId}":
		h.removeFavorite(w, r, session.UserID)
	default:
		h.favoriteTracks(w, r, session.UserID)
	}
}

func (h *UserHandler) setTheme(w http.ResponseWriter, r *http.Request, userID string) {
	var req themeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	theme, err := h.prefs.SetTheme(userID, req.Theme)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Theme updated", "themePref": string(theme)})
}

func (h *UserHandler) favorites(w http.ResponseWriter, r *http.Request, userID string) {
	ids, err := h.prefs.Favorites(userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"favorites": nonNil(ids), "count": len(ids)})
}

func (h *UserHandler) addFavorite(w http.ResponseWriter, r *http.Request, userID string) {
	var req favoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	ids, err := h.prefs.AddFavorite(userID, req.TrackID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, favoritesResponse{Message: "Added to favorites", Favorites: nonNil(ids)})
}

func (h *UserHandler) removeFavorite(w http.ResponseWriter, r *http.Request, userID string) {
	ids, err := h.prefs.RemoveFavorite(userID, r.PathValue("trackId"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, favoritesResponse{Message: "Removed from favorites", Favorites: nonNil(ids)})
}

func (h *UserHandler) favoriteTracks(w http.ResponseWriter, r *http.Request, userID string) {
	ids, err := h.prefs.Favorites(userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	tracks, err := h.workflows.FavoriteTracks(r.Context(), ids)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newTracksResponse(tracks))
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
