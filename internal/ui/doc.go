// Package ui implements an interactive terminal catalog browser using bubbletea's Elm architecture.
//
// The browser moves between a few views:
//  1. [SearchView] : Type a query, or jump to new releases
//  2. [LoadingView] : Spinner and live progress while a workflow runs
//  3. [TrackListView] : Browse normalized tracks, unplayable ones flagged
//  4. [DetailView] : Inspect one track and its preview URL
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// New-release progress flows through a channel from the CatalogEngine, so long fan-outs stay responsive.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, s, n, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
