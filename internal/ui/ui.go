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
	"github.com/moodlist/moodlist/internal/models"
	"github.com/moodlist/moodlist/internal/shared"
	"github.com/moodlist/moodlist/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PromptView ViewState = iota
	GenerateView
	TrackListView
	ConfirmView
	SaveView
	ResultView
)

// Default number of recommendations requested per run.
const defaultTrackCount = 10

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	engine   *tasks.Engine
	defaults shared.PlaylistConfig
	count    int
	width    int
	height   int

	input   textinput.Model
	spin    spinner.Model
	mood    string
	runID   string
	tracks  []models.Track
	skipped []string
	status  string

	trackList    list.Model
	progressChan chan tasks.ProgressUpdate
	result       *tasks.GenerateResult
	saved        *models.Playlist
	err          error
	help         help.Model
	keys         keyMap
}

type progressUpdateMsg tasks.ProgressUpdate

type generateDoneMsg struct {
	result *tasks.GenerateResult
	err    error
}

type saveDoneMsg struct {
	playlist *models.Playlist
	err      error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.Engine, defaults shared.PlaylistConfig) *Model {
	input := textinput.New()
	input.Placeholder = "I'm feeling like dancing in the rain..."
	input.CharLimit = 200
	input.Width = 60
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = NewStyle("#1DB954")

	return &Model{
		ctx:      ctx,
		view:     PromptView,
		engine:   engine,
		defaults: defaults,
		count:    defaultTrackCount,
		input:    input,
		spin:     spin,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init focuses the mood input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PromptView:
			return m.handlePromptKeys(msg)
		case GenerateView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case spinner.TickMsg:
		if m.view == GenerateView || m.view == SaveView {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case progressUpdateMsg:
		return m.applyProgress(tasks.ProgressUpdate(msg))

	case generateDoneMsg:
		m.result = msg.result
		m.err = msg.err
		if m.progressChan != nil {
			m.progressChan = nil
		}
		if msg.err != nil || msg.result == nil || msg.result.Resolution == nil || len(msg.result.Resolution.Tracks) == 0 {
			if m.err == nil {
				m.err = fmt.Errorf("no tracks resolved")
			}
			m.view = ResultView
			return m, nil
		}
		m.tracks = msg.result.Resolution.Tracks
		items := make([]list.Item, len(m.tracks))
		for i, track := range m.tracks {
			items[i] = trackItem{track: track}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Tracks for '%s'", m.mood)
		m.trackList.SetSize(m.width-4, m.height-8)
		m.view = TrackListView
		return m, nil

	case saveDoneMsg:
		m.saved = msg.playlist
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	var cmd tea.Cmd
	switch m.view {
	case PromptView:
		m.input, cmd = m.input.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PromptView:
		return m.renderPrompt()
	case GenerateView:
		return m.renderGenerate()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case SaveView:
		return m.renderSave()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		mood := strings.TrimSpace(m.input.Value())
		if mood == "" {
			return m, nil
		}
		m.mood = mood
		m.view = GenerateView
		return m, tea.Batch(m.spin.Tick, m.startGenerate())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "r":
		return m.restart()
	case "s", "enter":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = TrackListView
		return m, nil
	case "y":
		m.view = SaveView
		return m, tea.Batch(m.spin.Tick, m.startSave())
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m.restart()
	}
	return m, nil
}

// restart returns to the prompt view and discards the previous run.
//
// The run id is cleared so late events from the abandoned run are dropped
// instead of appended to the next run's track list.
func (m *Model) restart() (tea.Model, tea.Cmd) {
	m.view = PromptView
	m.runID = ""
	m.tracks = nil
	m.skipped = nil
	m.status = ""
	m.result = nil
	m.saved = nil
	m.err = nil
	m.progressChan = nil
	m.input.SetValue("")
	m.input.Focus()
	return m, textinput.Blink
}

// applyProgress folds a pipeline event into the visible state.
//
// The first event of a run pins the run id; events carrying any other id
// belong to a superseded run and are ignored.
func (m *Model) applyProgress(update tasks.ProgressUpdate) (tea.Model, tea.Cmd) {
	if m.runID == "" {
		m.runID = update.RunID
	}
	if update.RunID != m.runID {
		return m, m.waitForProgress()
	}

	m.status = update.Message
	switch update.Phase {
	case tasks.TrackResolved:
		if update.Track != nil {
			m.tracks = append(m.tracks, *update.Track)
		}
	case tasks.LineSkipped:
		m.skipped = append(m.skipped, update.Message)
	}
	return m, m.waitForProgress()
}

func (m *Model) startGenerate() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.tracks = nil
	m.skipped = nil
	m.runID = ""

	ch := m.progressChan
	go func() {
		result, err := m.engine.Generate(m.ctx, m.mood, m.count, ch)
		m.result = result
		m.err = err
		close(ch)
	}()

	return m.waitForProgress()
}

func (m *Model) startSave() tea.Cmd {
	name := m.defaults.Name
	description := m.defaults.Description
	public := m.defaults.Public
	tracks := m.tracks

	return func() tea.Msg {
		playlist, err := m.engine.SavePlaylist(m.ctx, name, description, public, tracks, nil)
		return saveDoneMsg{playlist: playlist, err: err}
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return generateDoneMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return generateDoneMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPrompt() string {
	title := styles.title.Render("What's your mood?")
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.input.View(), helpView)
}

func (m *Model) renderGenerate() string {
	title := styles.title.Render("Building Playlist")

	var resolved strings.Builder
	for _, track := range m.tracks {
		resolved.WriteString(fmt.Sprintf("  %s %s - %s\n", styles.ok.Render("✓"), track.Artist, track.Title))
	}
	for _, line := range m.skipped {
		resolved.WriteString(fmt.Sprintf("  %s\n", styles.warn.Render(line)))
	}

	return fmt.Sprintf("%s\n%s %s\n\n%s", title, m.spin.View(), m.status, resolved.String())
}

func (m *Model) renderTrackList() string {
	saveKey := key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s/enter", "save to Spotify"),
	)
	helpKeys := []key.Binding{saveKey, m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Save '%s' to Spotify?", m.defaults.Name))
	info := fmt.Sprintf("\nMood: %s\nTracks: %d\n", m.mood, len(m.tracks))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSave() string {
	title := styles.title.Render("Saving Playlist")
	return fmt.Sprintf("%s\n%s Creating playlist on Spotify...", title, m.spin.View())
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.err != nil {
		body := styles.err.Render(fmt.Sprintf("Failed: %v", m.err))
		return fmt.Sprintf("%s\n\n%s", body, helpView)
	}

	if m.saved != nil {
		title := styles.ok.Render("✓ Playlist Saved!")
		info := fmt.Sprintf("\nName: %s\nTracks: %d\n", m.saved.Name, m.saved.TrackCount)
		return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
	}

	var summary string
	if m.result != nil && m.result.Resolution != nil {
		summary = fmt.Sprintf("\nResolved %d of %d recommendations\n", len(m.result.Resolution.Tracks), m.result.Resolution.TotalLines)
	}
	return fmt.Sprintf("%s%s\n%s", styles.title.Render("Run Complete"), summary, helpView)
}
