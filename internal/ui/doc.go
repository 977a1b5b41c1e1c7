// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for building a playlist from a mood:
//  1. [PromptView] : Enter a mood or feeling
//  2. [GenerateView] : Monitor real-time resolution progress
//  3. [TrackListView] : Browse the resolved tracks
//  4. [ConfirmView] : Confirm saving the playlist to Spotify
//  5. [ResultView] : Display the saved playlist or failure details
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the resolution Engine, providing
// non-blocking status reporting while tracks resolve. Updates are tagged with a
// run id so that events from a superseded run are dropped rather than rendered.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
