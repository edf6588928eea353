package models

import "testing"

func TestParseTheme(t *testing.T) {
	tc := []struct {
		in      string
		want    Theme
		wantErr bool
	}{
		{in: "light", want: ThemeLight},
		{in: "DARK", want: ThemeDark},
		{in: " dark ", want: ThemeDark},
		{in: "sepia", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTheme(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTheme(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTheme(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUserValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		u := NewUser(1, "a@example.com", "A", "hash")
		u.SetID("id-1")
		if err := u.Validate(); err != nil {
			t.Errorf("expected valid user, got %v", err)
		}
		if u.Theme() != ThemeLight {
			t.Errorf("expected default theme light, got %s", u.Theme())
		}
	})

	t.Run("missing id", func(t *testing.T) {
		u := NewUser(1, "a@example.com", "A", "hash")
		if err := u.Validate(); err == nil {
			t.Error("expected error for missing id")
		}
	})

	t.Run("bad email", func(t *testing.T) {
		u := NewUser(1, "nope", "A", "hash")
		u.SetID("id-1")
		if err := u.Validate(); err == nil {
			t.Error("expected error for bad email")
		}
	})

	t.Run("bad theme", func(t *testing.T) {
		u := NewUser(1, "a@example.com", "A", "hash")
		u.SetID("id-1")
		u.SetTheme("sepia")
		if err := u.Validate(); err == nil {
			t.Error("expected error for bad theme")
		}
	})

	t.Run("profile hides hash", func(t *testing.T) {
		u := NewUser(1, "a@example.com", "A", "hash")
		u.SetID("id-1")
		p := u.Profile()
		if p.ID != "id-1" || p.Email != "a@example.com" || p.Theme != ThemeLight {
			t.Errorf("unexpected profile %+v", p)
		}
	})
}

func TestTrackPlayable(t *testing.T) {
	if (Track{ID: "x"}).Playable() {
		t.Error("track without audio url should not be playable")
	}
	if !(Track{ID: "x", AudioURL: "https://p.scdn.co/mp3-preview/x"}).Playable() {
		t.Error("track with audio url should be playable")
	}
}

func TestFavoriteValidate(t *testing.T) {
	if err := NewFavorite("u", "t").Validate(); err != nil {
		t.Errorf("expected valid favorite, got %v", err)
	}
	if err := NewFavorite("", "t").Validate(); err == nil {
		t.Error("expected error for missing user id")
	}
	if err := NewFavorite("u", "").Validate(); err == nil {
		t.Error("expected error for missing track id")
	}
}
