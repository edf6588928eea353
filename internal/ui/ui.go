package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiobox/internal/models"
	"github.com/desertthunder/audiobox/internal/shared"
	"github.com/desertthunder/audiobox/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	LoadingView
	TrackListView
	DetailView
)

// Browser is the workflow surface the TUI drives. [tasks.CatalogEngine] implements it.
type Browser interface {
	Search(ctx context.Context, query string, limit int) ([]models.Track, error)
	NewReleasesReport(ctx context.Context, limit int, progress chan<- tasks.ProgressUpdate) (*tasks.NewReleasesReport, error)
}

type source int

const (
	fromSearch source = iota
	fromReleases
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	browser Browser
	limit   int
	logger  *log.Logger

	width  int
	height int

	input     textinput.Model
	spinner   spinner.Model
	trackList list.Model
	tracks    []models.Track
	selected  *models.Track

	source       source
	query        string
	progressChan chan tasks.ProgressUpdate
	doneChan     chan releasesResult
	progress     tasks.ProgressUpdate
	report       *tasks.NewReleasesReport

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model. limit applies to both searches and new releases; 0 uses the workflow defaults.
func NewModel(ctx context.Context, browser Browser, limit int, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	input := textinput.New()
	input.Placeholder = "Search tracks, artists, albums"
	input.Prompt = "♪ "
	input.CharLimit = 120
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.ok

	return &Model{
		ctx:     ctx,
		view:    SearchView,
		browser: browser,
		limit:   limit,
		logger:  logger,
		input:   input,
		spinner: spin,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the cursor blink of the search box.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-8, 20)
		if m.tracks != nil {
			m.resizeList()
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case LoadingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != LoadingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSearchResults:
		res := msg.data.(searchResults)
		if res.err != nil {
			m.logger.Error("search failed", "query", res.query, "error", res.err)
			m.err = res.err
			m.view = SearchView
			return m, m.input.Focus()
		}
		m.err = nil
		m.report = nil
		m.showTracks(fmt.Sprintf("Results for %q", res.query), res.tracks)
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, waitForProgress(m.progressChan, m.doneChan)

	case MsgReleasesComplete:
		res := msg.data.(releasesResult)
		m.progressChan = nil
		m.doneChan = nil
		if res.err != nil {
			m.logger.Error("new releases failed", "error", res.err)
			m.err = res.err
			m.view = SearchView
			return m, m.input.Focus()
		}

		m.err = nil
		m.report = res.report
		title := fmt.Sprintf("New Releases (%d tracks)", len(res.report.Tracks))
		if skips := len(res.report.Skips()); skips > 0 {
			title = fmt.Sprintf("New Releases (%d tracks, %d skipped)", len(res.report.Tracks), skips)
		}
		m.showTracks(title, res.report.Tracks)
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SearchView:
		return m.renderSearch()
	case LoadingView:
		return m.renderLoading()
	case TrackListView:
		return m.renderTrackList()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		return m, m.startReleases()
	case "enter":
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return m, nil
		}
		return m, m.startSearch(query)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search), key.Matches(msg, m.keys.back):
		m.view = SearchView
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.releases):
		return m, m.startReleases()
	case key.Matches(msg, m.keys.refresh):
		if m.source == fromReleases {
			return m, m.startReleases()
		}
		return m, m.startSearch(m.query)
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.trackList.SelectedItem().(trackItem); ok {
			tr := item.track
			m.selected = &tr
			m.view = DetailView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.enter):
		m.view = TrackListView
		m.selected = nil
	}
	return m, nil
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.input, cmd = m.input.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) showTracks(title string, tracks []models.Track) {
	if tracks == nil {
		tracks = []models.Track{}
	}
	m.tracks = tracks
	m.trackList = list.New(trackItems(tracks), list.NewDefaultDelegate(), 0, 0)
	m.trackList.Title = title
	m.trackList.SetFilteringEnabled(false)
	m.trackList.SetShowHelp(false)
	m.resizeList()
	m.view = TrackListView
}

func (m *Model) resizeList() {
	m.trackList.SetSize(max(m.width-4, 40), max(m.height-6, 10))
}

func (m *Model) startSearch(query string) tea.Cmd {
	m.view = LoadingView
	m.source = fromSearch
	m.query = query
	m.progress = tasks.ProgressUpdate{Message: fmt.Sprintf("Searching for %q...", query)}
	m.input.Blur()
	m.logger.Info("search", "query", query, "limit", m.limit)

	ctx, browser, limit := m.ctx, m.browser, m.limit
	search := func() tea.Msg {
		tracks, err := browser.Search(ctx, query, limit)
		return searchResultsMsg(query, tracks, err)
	}
	return tea.Batch(m.spinner.Tick, search)
}

func (m *Model) startReleases() tea.Cmd {
	m.view = LoadingView
	m.source = fromReleases
	m.progress = tasks.ProgressUpdate{Message: "Fetching new releases..."}
	m.input.Blur()
	m.logger.Info("new releases", "limit", m.limit)

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan releasesResult, 1)
	m.progressChan = progress
	m.doneChan = done

	ctx, browser, limit := m.ctx, m.browser, m.limit
	go func() {
		report, err := browser.NewReleasesReport(ctx, limit, progress)
		close(progress)
		done <- releasesResult{report: report, err: err}
	}()

	return tea.Batch(m.spinner.Tick, waitForProgress(progress, done))
}

// waitForProgress delivers the next progress update, or the final result once the channel closes.
func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan releasesResult) tea.Cmd {
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		res := <-done
		return releasesCompleteMsg(res.report, res.err)
	}
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("audiobox")

	var errView string
	if m.err != nil {
		errView = "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}

	searchKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search"))
	releasesKey := key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "new releases"))
	quitKey := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "quit"))
	helpView := m.help.ShortHelpView([]key.Binding{searchKey, releasesKey, quitKey})

	return fmt.Sprintf("%s\n%s\n%s\n%s", title, m.input.View(), errView, helpView)
}

func (m *Model) renderLoading() string {
	title := styles.title.Render("audiobox")

	status := m.progress.Message
	if m.progress.Phase == tasks.FetchTracks && m.progress.Total > 0 {
		status = fmt.Sprintf("%s\n%s", styles.help.Render(fmt.Sprintf("%d of %d tracks", m.progress.Step, m.progress.Total)), status)
	}

	return fmt.Sprintf("%s\n%s %s", title, m.spinner.View(), status)
}

func (m *Model) renderTrackList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.search, m.keys.releases, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if len(m.tracks) == 0 {
		return fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render(m.trackList.Title), styles.warn.Render("No tracks found"), helpView)
	}
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}
	tr := m.selected

	preview := styles.ok.Render(tr.AudioURL)
	if !tr.Playable() {
		preview = styles.silent.Render("no preview available")
	}

	rows := []string{
		styles.label.Render("Title") + tr.Title,
		styles.label.Render("Artist") + tr.Artist,
		styles.label.Render("Album") + tr.Album,
		styles.label.Render("Duration") + shared.FormatDuration(tr.Duration),
		styles.label.Render("ID") + tr.ID,
		styles.label.Render("Preview") + preview,
	}
	if tr.Cover != "" {
		rows = append(rows, styles.label.Render("Cover")+tr.Cover)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render(tr.Title), styles.boxed.Render(strings.Join(rows, "\n")), helpView)
}
