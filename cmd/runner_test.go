package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiobox/internal/models"
	"github.com/desertthunder/audiobox/internal/services"
	"github.com/desertthunder/audiobox/internal/shared"
	tu "github.com/desertthunder/audiobox/internal/testing"
)

// runApp runs the CLI with args against runner, isolating it from any config or .env in the working directory.
func runApp(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	dir := t.TempDir()
	base := []string{"audiobox", "--env-file", filepath.Join(dir, "missing.env")}
	if !slices.Contains(args, "--config") {
		base = append(base, "--config", filepath.Join(dir, "missing.toml"))
	}
	return newApp(r).Run(context.Background(), append(base, args...))
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func newMockRunner(catalog *tu.MockCatalog, output *bytes.Buffer) *Runner {
	return NewRunner(RunnerOpts{
		Catalog:  catalog,
		Previews: tu.NewMockResolver(nil),
		Logger:   log.New(&bytes.Buffer{}),
		Output:   output,
	})
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			catalog := tu.NewMockCatalog()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Catalog:    catalog,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("Load", func(t *testing.T) {
		t.Run("reads config file and env overrides", func(t *testing.T) {
			t.Setenv("SPOTIFY_CLIENT_ID", "from-env")
			t.Setenv("PORT", "4321")
			path := writeConfig(t, `
[credentials.spotify]
client_id = "from-file"
client_secret = "file-secret"

[catalog]
concurrency = 2
`)
			runner := newMockRunner(tu.NewMockCatalog(), &bytes.Buffer{})
			if err := runApp(t, runner, "--config", path, "setup", "config"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if runner.config.Credentials.Spotify.ClientID != "from-env" {
				t.Errorf("expected env client id, got %q", runner.config.Credentials.Spotify.ClientID)
			}
			if runner.config.Credentials.Spotify.ClientSecret != "file-secret" {
				t.Errorf("expected file secret, got %q", runner.config.Credentials.Spotify.ClientSecret)
			}
			if runner.config.Catalog.Concurrency != 2 {
				t.Errorf("expected concurrency 2, got %d", runner.config.Catalog.Concurrency)
			}
			if runner.config.Server.Port != 4321 {
				t.Errorf("expected port 4321, got %d", runner.config.Server.Port)
			}
			if runner.config.Catalog.Timeout.Duration == 0 {
				t.Error("expected defaults for keys missing from the file")
			}
		})

		t.Run("reads env file", func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			os.Unsetenv("JWT_SECRET")

			envPath := filepath.Join(t.TempDir(), ".env")
			os.WriteFile(envPath, []byte("JWT_SECRET=from-dotenv\n"), 0644)

			runner := newMockRunner(tu.NewMockCatalog(), &bytes.Buffer{})
			args := []string{"audiobox", "--env-file", envPath, "--config", filepath.Join(t.TempDir(), "config.toml"), "setup", "config"}
			if err := newApp(runner).Run(context.Background(), args); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if runner.config.Auth.JWTSecret != "from-dotenv" {
				t.Errorf("expected secret from .env, got %q", runner.config.Auth.JWTSecret)
			}
		})

		t.Run("rejects malformed config", func(t *testing.T) {
			path := writeConfig(t, "[catalog\ntimeout = ")
			runner := newMockRunner(tu.NewMockCatalog(), &bytes.Buffer{})

			if err := runApp(t, runner, "--config", path, "setup", "config"); err == nil {
				t.Error("expected parse error")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("pretty", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"a": 1}, true); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output.String() != "{\n  \"a\": 1\n}\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]int{"a": 1}, false); err == nil {
				t.Error("expected write error")
			}
		})
	})
}

func TestEngine(t *testing.T) {
	t.Run("requires credentials without an injected catalog", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials.Spotify.ClientID = ""
		runner := NewRunner(RunnerOpts{Config: config, Logger: log.New(&bytes.Buffer{})})

		if _, err := runner.Engine(); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("upstream token failures surface as auth exchange errors", func(t *testing.T) {
		tests := []struct {
			name      string
			transport *tu.MockRoundTripper
		}{
			{"transport error", tu.NewMockRoundTripper(nil, errors.New("connection refused"))},
			{"server error", tu.NewMockRoundTripper(tu.JSONResponse(http.StatusInternalServerError, `{"error":"server_error"}`), nil)},
			{"unreadable body", tu.NewMockRoundTripper(&http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}, nil)},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				config := shared.DefaultConfig()
				config.Credentials.Spotify.ClientID = "id"
				config.Credentials.Spotify.ClientSecret = "secret"

				runner := NewRunner(RunnerOpts{
					Config:     config,
					HTTPClient: &http.Client{Transport: tt.transport},
					Logger:     log.New(&bytes.Buffer{}),
					Output:     &bytes.Buffer{},
				})

				engine, err := runner.Engine()
				if err != nil {
					t.Fatalf("failed to build engine: %v", err)
				}

				_, err = engine.Search(context.Background(), "anything", 5)
				if !errors.Is(err, shared.ErrAuthExchange) {
					t.Errorf("expected ErrAuthExchange, got %v", err)
				}
				if err := runner.probe(context.Background()); !errors.Is(err, shared.ErrAuthExchange) {
					t.Errorf("expected probe to fail with ErrAuthExchange, got %v", err)
				}
			})
		}
	})
}

func TestCatalogCommands(t *testing.T) {
	t.Run("search", func(t *testing.T) {
		catalog := tu.NewMockCatalog()
		catalog.SearchResults = []services.SpotifyTrack{tu.Playable("s1"), tu.Silent("s2")}
		output := &bytes.Buffer{}

		if err := runApp(t, newMockRunner(catalog, output), "catalog", "search", "--limit", "5", "hello"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := output.String()
		for _, want := range []string{`Results for "hello"`, "Artist s1 - Track s1 (0:30) [preview]", "[no preview] s2"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
		if catalog.SearchLimit != 5 {
			t.Errorf("expected limit 5, got %d", catalog.SearchLimit)
		}
	})

	t.Run("search json", func(t *testing.T) {
		catalog := tu.NewMockCatalog()
		catalog.SearchResults = []services.SpotifyTrack{tu.Playable("s1")}
		output := &bytes.Buffer{}

		if err := runApp(t, newMockRunner(catalog, output), "catalog", "search", "--json", "hello"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var tracks []models.Track
		if err := json.Unmarshal(output.Bytes(), &tracks); err != nil {
			t.Fatalf("invalid JSON output: %v", err)
		}
		if len(tracks) != 1 || tracks[0].AudioURL == "" {
			t.Errorf("unexpected tracks %+v", tracks)
		}
	})

	t.Run("search export", func(t *testing.T) {
		catalog := tu.NewMockCatalog()
		catalog.SearchResults = []services.SpotifyTrack{tu.Playable("s1"), tu.Silent("s2")}
		path := filepath.Join(t.TempDir(), "exports", "hello.csv")

		if err := runApp(t, newMockRunner(catalog, &bytes.Buffer{}), "catalog", "search", "--export", path, "hello"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected export file: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 || !strings.HasPrefix(lines[1], "s1,Track s1,Artist s1") {
			t.Errorf("unexpected export:\n%s", string(data))
		}

		err = runApp(t, newMockRunner(catalog, &bytes.Buffer{}), "catalog", "search", "--export", path, "--format", "xlsx", "hello")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("search requires a query", func(t *testing.T) {
		err := runApp(t, newMockRunner(tu.NewMockCatalog(), &bytes.Buffer{}), "catalog", "search")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("releases with report", func(t *testing.T) {
		catalog := tu.NewMockCatalog()
		catalog.AddAlbum("a1", tu.Playable("t1"), tu.Playable("t2"))
		catalog.AddAlbum("a2", tu.Playable("t3"))
		catalog.AlbumTracksErr["a2"] = errors.New("boom")
		catalog.AddAlbum("a3", tu.Playable("t4"))
		output := &bytes.Buffer{}

		if err := runApp(t, newMockRunner(catalog, output), "catalog", "releases", "--limit", "3", "--report"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := output.String()
		for _, want := range []string{"3 albums listed, 3 visited", "Track t1", "Track t4", "Skipped: 1"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("releases json report", func(t *testing.T) {
		catalog := tu.NewMockCatalog()
		catalog.AddAlbum("a1", tu.Playable("t1"))
		catalog.TrackErr["t1"] = errors.New("boom")
		output := &bytes.Buffer{}

		if err := runApp(t, newMockRunner(catalog, output), "catalog", "releases", "--json", "--report"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var report struct {
			Tracks  []models.Track `json:"tracks"`
			Skipped []skipJSON     `json:"skipped"`
		}
		if err := json.Unmarshal(output.Bytes(), &report); err != nil {
			t.Fatalf("invalid JSON output: %v", err)
		}
		if len(report.Tracks) != 0 || len(report.Skipped) != 1 || report.Skipped[0].AlbumID != "a1" {
			t.Errorf("unexpected report %+v", report)
		}
	})

	t.Run("releases listing failure", func(t *testing.T) {
		catalog := tu.NewMockCatalog()
		catalog.AlbumsErr = shared.ErrCatalogRequest

		err := runApp(t, newMockRunner(catalog, &bytes.Buffer{}), "catalog", "releases")
		if !errors.Is(err, shared.ErrCatalogRequest) {
			t.Errorf("expected ErrCatalogRequest, got %v", err)
		}
	})

	t.Run("track", func(t *testing.T) {
		catalog := tu.NewMockCatalog()
		catalog.Tracks["t1"] = tu.Playable("t1")
		output := &bytes.Buffer{}

		if err := runApp(t, newMockRunner(catalog, output), "catalog", "track", "t1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "Preview:  https://p.scdn.co/mp3-preview/t1") {
			t.Errorf("unexpected output:\n%s", output.String())
		}

		err := runApp(t, newMockRunner(catalog, &bytes.Buffer{}), "catalog", "track", "missing")
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		output := &bytes.Buffer{}
		runner := newMockRunner(tu.NewMockCatalog(), output)

		if err := runApp(t, runner, "--config", path, "setup", "config"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected config file: %v", err)
		}
		if _, err := shared.LoadConfig(path); err != nil {
			t.Errorf("written config does not load: %v", err)
		}

		output.Reset()
		if err := runApp(t, runner, "--config", path, "setup", "config"); err != nil {
			t.Fatalf("unexpected error on second run: %v", err)
		}
		if !strings.Contains(output.String(), "already exists") {
			t.Errorf("expected already-exists notice, got %q", output.String())
		}
	})

	t.Run("database", func(t *testing.T) {
		t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "audiobox.db"))
		output := &bytes.Buffer{}

		if err := runApp(t, newMockRunner(tu.NewMockCatalog(), output), "setup", "database"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := output.String()
		if !strings.Contains(out, "[✓] 0000 create_users") || !strings.Contains(out, "[✓] 0001 create_favorites") {
			t.Errorf("expected applied migrations:\n%s", out)
		}

		output.Reset()
		if err := runApp(t, newMockRunner(tu.NewMockCatalog(), output), "setup", "database", "--rollback"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "[ ] 0001 create_favorites") {
			t.Errorf("expected favorites rolled back:\n%s", output.String())
		}

		output.Reset()
		if err := runApp(t, newMockRunner(tu.NewMockCatalog(), output), "setup", "database", "--status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "[✓] 0000 create_users") {
			t.Errorf("expected users migration still applied:\n%s", output.String())
		}
	})
}

func TestServe(t *testing.T) {
	t.Run("validates config before starting", func(t *testing.T) {
		path := writeConfig(t, `
[credentials.spotify]
client_id = "id"
client_secret = "secret"

[auth]
jwt_secret = ""
`)
		t.Setenv("JWT_SECRET", "")

		err := runApp(t, newMockRunner(tu.NewMockCatalog(), &bytes.Buffer{}), "--config", path, "serve")
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("refuses to start on the embedded defaults", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "")
		t.Setenv("SPOTIFY_CLIENT_SECRET", "")
		t.Setenv("JWT_SECRET", "")

		err := runApp(t, newMockRunner(tu.NewMockCatalog(), &bytes.Buffer{}), "serve")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("rejects a port out of range", func(t *testing.T) {
		path := writeConfig(t, `
[credentials.spotify]
client_id = "id"
client_secret = "secret"

[auth]
jwt_secret = "a-private-signing-key"
`)
		err := runApp(t, newMockRunner(tu.NewMockCatalog(), &bytes.Buffer{}), "--config", path, "serve", "--port", "70000")
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
