package repositories

import (
	"database/sql"
	"errors"
	"slices"
	"testing"

	"github.com/desertthunder/audiobox/internal/models"
	"github.com/desertthunder/audiobox/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, repo *UserRepository, email string) *models.User {
	t.Helper()
	user := models.NewUser(0, email, "Test User", "hash")
	if err := repo.Create(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	first, err := NextSequence(db, "users")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}
	second, err := NextSequence(db, "users")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}
	if second != first+1 {
		t.Errorf("expected %d, got %d", first+1, second)
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for table without a sequence")
	}
}

func TestUserRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := createUser(t, repo, "test@example.com")

		if user.ID() == "" {
			t.Error("user ID should be set after creation")
		}
		if user.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", user.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := createUser(t, repo, "test@example.com")

		retrieved, err := repo.Get(user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}

		if retrieved.ID() != user.ID() {
			t.Errorf("expected ID %s, got %s", user.ID(), retrieved.ID())
		}
		if retrieved.Email() != user.Email() {
			t.Errorf("expected email %s, got %s", user.Email(), retrieved.Email())
		}
		if retrieved.PasswordHash() != "hash" {
			t.Errorf("expected stored hash, got %s", retrieved.PasswordHash())
		}
		if retrieved.Theme() != models.ThemeLight {
			t.Errorf("expected light theme, got %s", retrieved.Theme())
		}
	})

	t.Run("GetByEmail", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := createUser(t, repo, "test@example.com")

		retrieved, err := repo.GetByEmail("  TEST@example.com")
		if err != nil {
			t.Fatalf("failed to get user by email: %v", err)
		}
		if retrieved.ID() != user.ID() {
			t.Errorf("expected ID %s, got %s", user.ID(), retrieved.ID())
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := createUser(t, repo, "test@example.com")

		user.SetTheme(models.ThemeDark)
		if err := repo.Update(user); err != nil {
			t.Fatalf("failed to update user: %v", err)
		}

		retrieved, err := repo.Get(user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if retrieved.Theme() != models.ThemeDark {
			t.Errorf("expected dark theme, got %s", retrieved.Theme())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserRepository(db)
		favs := NewFavoriteRepository(db)
		user := createUser(t, repo, "test@example.com")

		if err := favs.Add(user.ID(), "t1"); err != nil {
			t.Fatalf("failed to add favorite: %v", err)
		}

		if err := repo.Delete(user.ID()); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}

		if _, err := repo.Get(user.ID()); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound for deleted user, got %v", err)
		}

		ids, err := favs.List(user.ID())
		if err != nil {
			t.Fatalf("failed to list favorites: %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("expected favorites to be dropped, got %v", ids)
		}

		createUser(t, repo, "test@example.com")
	})

	t.Run("List", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		createUser(t, repo, "a@example.com")
		dark := createUser(t, repo, "b@example.com")
		createUser(t, repo, "c@example.com")

		dark.SetTheme(models.ThemeDark)
		if err := repo.Update(dark); err != nil {
			t.Fatalf("failed to update user: %v", err)
		}

		users, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(users) != 3 {
			t.Fatalf("expected 3 users, got %d", len(users))
		}
		for i := 1; i < len(users); i++ {
			if users[i].Sequence() <= users[i-1].Sequence() {
				t.Error("users should be ordered by sequence")
			}
		}

		filtered, err := repo.List(map[string]any{"theme": "dark"})
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(filtered) != 1 || filtered[0].ID() != dark.ID() {
			t.Errorf("expected only the dark user, got %d users", len(filtered))
		}

		byEmail, err := repo.List(map[string]any{"email": "C@example.com"})
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(byEmail) != 1 {
			t.Errorf("expected one user for email filter, got %d", len(byEmail))
		}
	})
}

func TestUserRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))
			user := models.NewUser(0, "", "Test User", "hash")

			if err := repo.Create(user); !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput for empty email, got %v", err)
			}
		})

		t.Run("DuplicateEmail", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))
			createUser(t, repo, "test@example.com")

			user2 := models.NewUser(0, "test@example.com", "User Two", "hash")
			if err := repo.Create(user2); !errors.Is(err, shared.ErrUserExists) {
				t.Fatalf("expected ErrUserExists, got %v", err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))

			if _, err := repo.Get("nonexistent-id"); !errors.Is(err, shared.ErrUserNotFound) {
				t.Fatalf("expected ErrUserNotFound, got %v", err)
			}
			if _, err := repo.GetByEmail("nobody@example.com"); !errors.Is(err, shared.ErrUserNotFound) {
				t.Fatalf("expected ErrUserNotFound, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))
			user := models.NewUser(0, "test@example.com", "Test User", "hash")
			user.SetID("nonexistent-id")

			if err := repo.Update(user); !errors.Is(err, shared.ErrUserNotFound) {
				t.Fatalf("expected ErrUserNotFound, got %v", err)
			}
		})

		t.Run("InvalidTheme", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))
			user := createUser(t, repo, "test@example.com")
			user.SetTheme("sepia")

			if err := repo.Update(user); !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("Twice", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))
			user := createUser(t, repo, "test@example.com")

			if err := repo.Delete(user.ID()); err != nil {
				t.Fatalf("failed to delete user: %v", err)
			}
			if err := repo.Delete(user.ID()); !errors.Is(err, shared.ErrUserNotFound) {
				t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
			}
		})
	})
}

func TestFavoriteRepository(t *testing.T) {
	t.Run("Add and List keep insertion order", func(t *testing.T) {
		db := setupTestDB(t)
		user := createUser(t, NewUserRepository(db), "test@example.com")
		repo := NewFavoriteRepository(db)

		for _, id := range []string{"t3", "t1", "t2"} {
			if err := repo.Add(user.ID(), id); err != nil {
				t.Fatalf("failed to add favorite %s: %v", id, err)
			}
		}

		ids, err := repo.List(user.ID())
		if err != nil {
			t.Fatalf("failed to list favorites: %v", err)
		}
		if !slices.Equal(ids, []string{"t3", "t1", "t2"}) {
			t.Errorf("expected [t3 t1 t2], got %v", ids)
		}
	})

	t.Run("Add is idempotent", func(t *testing.T) {
		db := setupTestDB(t)
		user := createUser(t, NewUserRepository(db), "test@example.com")
		repo := NewFavoriteRepository(db)

		repo.Add(user.ID(), "t1")
		if err := repo.Add(user.ID(), "t1"); err != nil {
			t.Fatalf("expected duplicate add to succeed, got %v", err)
		}

		favs, err := repo.Favorites(user.ID())
		if err != nil {
			t.Fatalf("failed to list favorites: %v", err)
		}
		if len(favs) != 1 || favs[0].TrackID != "t1" || favs[0].CreatedAt.IsZero() {
			t.Errorf("expected one t1 favorite with a timestamp, got %+v", favs)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		db := setupTestDB(t)
		user := createUser(t, NewUserRepository(db), "test@example.com")
		repo := NewFavoriteRepository(db)

		repo.Add(user.ID(), "t1")
		repo.Add(user.ID(), "t2")

		if err := repo.Remove(user.ID(), "t1"); err != nil {
			t.Fatalf("failed to remove favorite: %v", err)
		}
		if err := repo.Remove(user.ID(), "never-added"); err != nil {
			t.Fatalf("removing an unknown favorite should be a no-op, got %v", err)
		}

		ids, _ := repo.List(user.ID())
		if !slices.Equal(ids, []string{"t2"}) {
			t.Errorf("expected [t2], got %v", ids)
		}
	})

	t.Run("Per user isolation", func(t *testing.T) {
		db := setupTestDB(t)
		users := NewUserRepository(db)
		a := createUser(t, users, "a@example.com")
		b := createUser(t, users, "b@example.com")
		repo := NewFavoriteRepository(db)

		repo.Add(a.ID(), "t1")
		repo.Add(b.ID(), "t2")

		ids, _ := repo.List(a.ID())
		if !slices.Equal(ids, []string{"t1"}) {
			t.Errorf("expected [t1] for a, got %v", ids)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		repo := NewFavoriteRepository(setupTestDB(t))

		if err := repo.Add("ghost", "t1"); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound for unknown user, got %v", err)
		}
		if err := repo.Add("ghost", " "); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty track, got %v", err)
		}

		ids, err := repo.List("ghost")
		if err != nil || len(ids) != 0 {
			t.Errorf("expected empty list, got %v, %v", ids, err)
		}
	})
}
