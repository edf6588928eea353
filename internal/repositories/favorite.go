package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/audiobox/internal/models"
	"github.com/desertthunder/audiobox/internal/shared"
)

// FavoriteRepository stores the track ids each user has saved.
type FavoriteRepository struct {
	db *sql.DB
}

// NewFavoriteRepository creates a new [FavoriteRepository] with the given database connection
func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add saves trackID for userID. Saving the same pair twice keeps the original timestamp.
func (r *FavoriteRepository) Add(userID, trackID string) error {
	fav := models.NewFavorite(userID, strings.TrimSpace(trackID))
	if err := fav.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	_, err := r.db.Exec(
		`INSERT INTO favorites (user_id, track_id, created_at) VALUES (?, ?, ?) ON CONFLICT (user_id, track_id) DO NOTHING`,
		fav.UserID, fav.TrackID, fav.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, userID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert favorite: %w", err)
	}
	return nil
}

// Remove drops trackID for userID. Removing a track that is not saved is a no-op.
func (r *FavoriteRepository) Remove(userID, trackID string) error {
	if _, err := r.db.Exec(`DELETE FROM favorites WHERE user_id = ? AND track_id = ?`, userID, trackID); err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return nil
}

// List returns the saved track ids of userID, oldest first.
func (r *FavoriteRepository) List(userID string) ([]string, error) {
	favorites, err := r.Favorites(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(favorites))
	for i, f := range favorites {
		ids[i] = f.TrackID
	}
	return ids, nil
}

// Favorites returns the saved favorites of userID with their timestamps, oldest first.
func (r *FavoriteRepository) Favorites(userID string) ([]models.Favorite, error) {
	rows, err := r.db.Query(
		`SELECT user_id, track_id, created_at FROM favorites WHERE user_id = ? ORDER BY created_at ASC, rowid ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	favorites := []models.Favorite{}
	for rows.Next() {
		var (
			f         models.Favorite
			createdAt time.Time
		)
		if err := rows.Scan(&f.UserID, &f.TrackID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		f.CreatedAt = createdAt
		favorites = append(favorites, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return favorites, nil
}
