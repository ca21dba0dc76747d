// Package tui provides a Bubble Tea terminal user interface for ytmusic-downloader.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/ytmusic-downloader/internal/config"
	"github.com/handiism/ytmusic-downloader/internal/download"
	"github.com/handiism/ytmusic-downloader/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	stageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// runResult carries the outcome of a pipeline run.
type runResult struct {
	path string
	err  error
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry

	stage   model.Stage
	percent float64
	output  string
	err     error

	// Run context
	ctx    context.Context
	cancel context.CancelFunc

	// Event plumbing for the active run
	events  chan download.ProgressEvent
	results chan runResult

	// Options
	embedArt  bool
	folderArt bool
	verbose   bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel() Model {
	ti := textinput.New()
	ti.Placeholder = "https://music.youtube.com/watch?v=..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	settings := config.DefaultSettings()

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		stage:     model.StageIdle,
		ctx:       ctx,
		cancel:    cancel,
		embedArt:  settings.SaveCoverArtInTags,
		folderArt: settings.SaveCoverArtInFolder,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent for every pipeline progress event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// RunDoneMsg is sent when the pipeline run finishes.
	RunDoneMsg struct {
		Path string
		Err  error
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateRunning {
				m.cancel()
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateRunning
				m.logs = nil
				m.stage = model.StageIdle
				m.percent = 0
				m.events = make(chan download.ProgressEvent, 128)
				m.results = make(chan runResult, 1)
				return m, tea.Batch(m.startRun(), m.waitForEvent(), m.spinner.Tick)
			}

		case "a":
			if m.state == StateInput {
				m.embedArt = !m.embedArt
			}

		case "f":
			if m.state == StateInput {
				m.folderArt = !m.folderArt
			}

		case "v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new download
				m.state = StateInput
				m.logs = nil
				m.stage = model.StageIdle
				m.percent = 0
				m.output = ""
				m.err = nil
				m.events = nil
				m.results = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		m.stage = msg.Event.Stage

		if msg.Event.Message == "" {
			// Percent tick
			m.percent = msg.Event.Percent
		} else if msg.Event.Level != download.LevelVerbose || m.verbose {
			if msg.Event.Message == msg.Event.Stage.Label() {
				// Stage transition, reset the bar for the new stage
				m.percent = 0
			} else {
				m.logs = append(m.logs, LogEntry{
					Message: msg.Event.Message,
					Level:   msg.Event.Level,
				})
				// Keep only last 10 logs
				if len(m.logs) > 10 {
					m.logs = m.logs[len(m.logs)-10:]
				}
			}
		}
		cmds = append(cmds, m.waitForEvent())

	case RunDoneMsg:
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
			m.output = msg.Path
		}
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// startRun creates the pipeline and runs it in the background.
func (m Model) startRun() tea.Cmd {
	url := strings.TrimSpace(m.textInput.Value())
	events, results := m.events, m.results
	ctx := m.ctx

	settings := *m.settings
	settings.SaveCoverArtInTags = m.embedArt
	settings.SaveCoverArtInFolder = m.folderArt

	return func() tea.Msg {
		pipeline, err := download.NewPipeline(&settings, func(event download.ProgressEvent) {
			events <- event
		})
		if err != nil {
			close(events)
			results <- runResult{err: err}
			return nil
		}

		go func() {
			path, runErr := pipeline.Run(ctx, url)
			close(events)
			results <- runResult{path: path, err: runErr}
		}()
		return nil
	}
}

// waitForEvent delivers pipeline events in order, followed by the run
// result once the event channel is drained.
func (m Model) waitForEvent() tea.Cmd {
	events, results := m.events, m.results
	return func() tea.Msg {
		if event, ok := <-events; ok {
			return ProgressMsg{Event: event}
		}
		result := <-results
		return RunDoneMsg{Path: result.path, Err: result.err}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🎵 YouTube Music Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download a track from YouTube or YouTube Music"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter video URL:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	// Options
	embedCheck := "[ ]"
	if m.embedArt {
		embedCheck = "[x]"
	}
	folderCheck := "[ ]"
	if m.folderArt {
		folderCheck = "[x]"
	}
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[x]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Embed cover art (a)\n", embedCheck))
	b.WriteString(fmt.Sprintf("  %s Save cover art in folder (f)\n", folderCheck))
	b.WriteString(fmt.Sprintf("  %s Verbose output (v)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.settings.DownloadsPath)))
	b.WriteString("\n")

	return b.String()
}

// activeStages returns the stages the current run will pass through.
func (m Model) activeStages() []model.Stage {
	stages := []model.Stage{
		model.StageDownloading,
		model.StageConverting,
	}
	if m.embedArt || m.folderArt {
		stages = append(stages, model.StageFetchingArt)
	}
	return append(stages, model.StageTagging, model.StageCleaningUp)
}

func (m Model) viewRunning() string {
	var b strings.Builder

	// Stage checklist
	reached := false
	for _, stage := range m.activeStages() {
		switch {
		case stage == m.stage:
			reached = true
			b.WriteString("  " + m.spinner.View() + " ")
			b.WriteString(stageStyle.Render(stage.Label()))
		case !reached:
			b.WriteString(successStyle.Render("  ✓ " + stage.Label()))
		default:
			b.WriteString(dimStyle.Render("    " + stage.Label()))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Progress bar for the stage that is ticking
	if m.percent > 0 {
		b.WriteString(m.progress.ViewAs(m.percent))
		b.WriteString("\n\n")
	}

	// Logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Download Complete!\n\n%s",
		m.output,
	))
	b.WriteString(box)

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • a: embed art • f: folder art • v: verbose • esc: quit"
	case StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run() error {
	p := tea.NewProgram(NewModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
