package models

import (
	"fmt"
	"strings"
	"time"
)

// Theme is a user's interface color preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("theme must be light or dark, got %q", s)
	}
}

// User is an account of the HTTP API.
type User struct {
	id           string
	sequence     int
	email        string
	name         string
	passwordHash string
	theme        Theme
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewUser creates a [User] with the light theme and fresh timestamps.
func NewUser(sequence int, email, name, passwordHash string) *User {
	now := time.Now()
	return &User{
		sequence:     sequence,
		email:        email,
		name:         name,
		passwordHash: passwordHash,
		theme:        ThemeLight,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (u *User) ID() string { return u.id }
func (u *User) Sequence() int { return u.sequence }
func (u *User) Email() string { return u.email }
func (u *User) Name() string { return u.name }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Theme() Theme { return u.theme }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }
func (u *User) DeletedAt() *time.Time { return u.deletedAt }

func (u *User) SetID(id string) { u.id = id }
func (u *User) SetSequence(seq int) { u.sequence = seq }
func (u *User) SetTheme(t Theme) { u.theme = t }
func (u *User) SetCreatedAt(t time.Time) { u.createdAt = t }
func (u *User) SetUpdatedAt(t time.Time) { u.updatedAt = t }
func (u *User) SetDeletedAt(t *time.Time) { u.deletedAt = t }
func (u *User) SetPasswordHash(hash string) { u.passwordHash = hash }

// Validate checks required fields and the theme value.
func (u *User) Validate() error {
	if u.id == "" {
		return fmt.Errorf("id is required")
	}
	if u.email == "" || !strings.Contains(u.email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	if u.name == "" {
		return fmt.Errorf("name is required")
	}
	if u.passwordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	if _, err := ParseTheme(string(u.theme)); err != nil {
		return err
	}
	return nil
}

// UserProfile is the public view of a [User].
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Theme Theme  `json:"theme"`
}

// Profile returns the fields of the user safe to send to clients.
func (u *User) Profile() UserProfile {
	return UserProfile{ID: u.id, Name: u.name, Email: u.email, Theme: u.theme}
}
