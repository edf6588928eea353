package models

import (
	"fmt"
	"time"
)

// Favorite is a catalog track id saved by a user.
type Favorite struct {
	UserID    string    `json:"userId"`
	TrackID   string    `json:"trackId"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewFavorite creates a [Favorite] stamped with the current time.
func NewFavorite(userID, trackID string) Favorite {
	return Favorite{UserID: userID, TrackID: trackID, CreatedAt: time.Now()}
}

// Validate checks both ids are present.
func (f Favorite) Validate() error {
	if f.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if f.TrackID == "" {
		return fmt.Errorf("track id is required")
	}
	return nil
}
