// package models defines the data model for the audiobox web service
package models

import (
	"time"
)

// Model is implemented by every entity stored in SQLite.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

// Repository is the CRUD surface shared by entity stores keyed by a string id.
//
// Get on a missing or soft-deleted row returns an error matching the entity's not-found sentinel.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}
