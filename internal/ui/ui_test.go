package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiobox/internal/models"
	"github.com/desertthunder/audiobox/internal/tasks"
)

type fakeBrowser struct {
	tracks      []models.Track
	searchErr   error
	report      *tasks.NewReleasesReport
	releasesErr error
	queries     []string
}

func (f *fakeBrowser) Search(ctx context.Context, query string, limit int) ([]models.Track, error) {
	f.queries = append(f.queries, query)
	return f.tracks, f.searchErr
}

func (f *fakeBrowser) NewReleasesReport(ctx context.Context, limit int, progress chan<- tasks.ProgressUpdate) (*tasks.NewReleasesReport, error) {
	progress <- tasks.ProgressUpdate{Phase: tasks.FetchAlbums, Message: "Fetching new releases..."}
	if f.releasesErr != nil {
		return &tasks.NewReleasesReport{Tracks: []models.Track{}}, f.releasesErr
	}
	progress <- tasks.ProgressUpdate{Phase: tasks.Done, Message: "Collected"}
	return f.report, nil
}

func newTestModel(b *fakeBrowser) *Model {
	m := NewModel(context.Background(), b, 10, log.New(io.Discard))
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// drain runs cmd and every command it produces until a [Msg] arrives, feeding it to m.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for range 20 {
		msg, ok := firstMsg(cmd)
		if !ok {
			return
		}
		_, cmd = m.Update(msg)
		if cmd == nil {
			return
		}
	}
	t.Fatal("command chain did not settle")
}

func firstMsg(cmd tea.Cmd) (Msg, bool) {
	if cmd == nil {
		return Msg{}, false
	}
	switch msg := cmd().(type) {
	case Msg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if m, ok := firstMsg(c); ok {
				return m, true
			}
		}
	}
	return Msg{}, false
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func track(id string, playable bool) models.Track {
	tr := models.Track{ID: id, Title: "Song " + id, Artist: "Artist", Album: "Album", Duration: 125}
	if playable {
		tr.AudioURL = "https://p.scdn.co/mp3-preview/" + id
	}
	return tr
}

func TestModelSearch(t *testing.T) {
	t.Run("shows results", func(t *testing.T) {
		b := &fakeBrowser{tracks: []models.Track{track("a", true), track("b", false)}}
		m := newTestModel(b)

		typeText(m, "daft punk")
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != LoadingView {
			t.Fatalf("expected loading view, got %v", m.view)
		}

		drain(t, m, cmd)

		if m.view != TrackListView {
			t.Fatalf("expected track list view, got %v", m.view)
		}
		if len(b.queries) != 1 || b.queries[0] != "daft punk" {
			t.Errorf("unexpected queries %v", b.queries)
		}
		if len(m.tracks) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(m.tracks))
		}
		if !strings.Contains(m.View(), "Song a") {
			t.Error("expected track title in view")
		}
	})

	t.Run("ignores empty query", func(t *testing.T) {
		b := &fakeBrowser{}
		m := newTestModel(b)

		typeText(m, "   ")
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		if cmd != nil || m.view != SearchView {
			t.Error("empty query should not start a search")
		}
	})

	t.Run("error returns to search", func(t *testing.T) {
		b := &fakeBrowser{searchErr: errors.New("catalog request failed")}
		m := newTestModel(b)

		typeText(m, "x")
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		drain(t, m, cmd)

		if m.view != SearchView {
			t.Fatalf("expected search view, got %v", m.view)
		}
		if !strings.Contains(m.View(), "catalog request failed") {
			t.Errorf("expected error in view, got %q", m.View())
		}
	})

	t.Run("empty results", func(t *testing.T) {
		m := newTestModel(&fakeBrowser{})

		typeText(m, "nothing")
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		drain(t, m, cmd)

		if !strings.Contains(m.View(), "No tracks found") {
			t.Errorf("expected empty state, got %q", m.View())
		}
	})
}

func TestModelNewReleases(t *testing.T) {
	t.Run("collects report", func(t *testing.T) {
		report := &tasks.NewReleasesReport{
			Tracks: []models.Track{track("n1", true), track("n2", false)},
			Items: []tasks.ItemResult{
				tasks.Ok(track("n1", true)),
				tasks.Skipped(tasks.SkipTrackFetch, "n3", errors.New("boom")),
				tasks.Ok(track("n2", false)),
			},
		}
		m := newTestModel(&fakeBrowser{report: report})

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		if m.view != LoadingView {
			t.Fatalf("expected loading view, got %v", m.view)
		}
		drain(t, m, cmd)

		if m.view != TrackListView {
			t.Fatalf("expected track list view, got %v", m.view)
		}
		if m.report != report {
			t.Error("expected report to be kept")
		}
		if !strings.Contains(m.trackList.Title, "1 skipped") {
			t.Errorf("unexpected title %q", m.trackList.Title)
		}
	})

	t.Run("failure returns to search", func(t *testing.T) {
		m := newTestModel(&fakeBrowser{releasesErr: errors.New("list new releases: 503")})

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		drain(t, m, cmd)

		if m.view != SearchView || m.err == nil {
			t.Errorf("expected search view with error, got %v %v", m.view, m.err)
		}
	})
}

func TestModelNavigation(t *testing.T) {
	b := &fakeBrowser{tracks: []models.Track{track("a", true), track("b", false)}}
	m := newTestModel(b)

	typeText(m, "q")
	if m.input.Value() != "q" {
		t.Fatalf("q should be typed into the search box, got %q", m.input.Value())
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drain(t, m, cmd)

	t.Run("detail", func(t *testing.T) {
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != DetailView || m.selected == nil || m.selected.ID != "a" {
			t.Fatalf("expected detail of a, got %v %+v", m.view, m.selected)
		}

		out := m.View()
		if !strings.Contains(out, "2:05") || !strings.Contains(out, "mp3-preview/a") {
			t.Errorf("unexpected detail view %q", out)
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != TrackListView {
			t.Errorf("expected track list view, got %v", m.view)
		}
	})

	t.Run("refresh repeats search", func(t *testing.T) {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
		drain(t, m, cmd)

		if len(b.queries) != 2 || b.queries[1] != "q" {
			t.Errorf("expected repeated query, got %v", b.queries)
		}
	})

	t.Run("back to search", func(t *testing.T) {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
		if m.view != SearchView || m.input.Value() != "" {
			t.Errorf("expected empty search view, got %v %q", m.view, m.input.Value())
		}
	})

	t.Run("quit", func(t *testing.T) {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}
