package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/audiobox/internal/models"
	"github.com/desertthunder/audiobox/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSearchResults MsgKind = iota
	MsgProgressUpdate
	MsgReleasesComplete
)

type searchResults struct {
	query  string
	tracks []models.Track
	err    error
}

type releasesResult struct {
	report *tasks.NewReleasesReport
	err    error
}

// searchResultsMsg is the constructor for [MsgSearchResults]
func searchResultsMsg(query string, tracks []models.Track, err error) Msg {
	return Msg{kind: MsgSearchResults, data: searchResults{query: query, tracks: tracks, err: err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// releasesCompleteMsg is the constructor for [MsgReleasesComplete]
func releasesCompleteMsg(report *tasks.NewReleasesReport, err error) Msg {
	return Msg{kind: MsgReleasesComplete, data: releasesResult{report: report, err: err}}
}
